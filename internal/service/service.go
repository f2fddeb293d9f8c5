package service

import (
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/pkg/app"
	"github.com/haierkeys/map-annotation-sync-service/pkg/writequeue"

	"go.uber.org/zap"
)

// Config 业务层配置
type Config struct {
	// HistoryRetention 变更历史保留时长，默认 90 天
	HistoryRetention time.Duration
	// HistoryKeepVersions 清理时每个实体保留的最近版本数，默认 10
	HistoryKeepVersions int
	// RegisterEnabled 是否开放用户注册
	RegisterEnabled bool
}

// DefaultConfig 返回默认业务层配置
func DefaultConfig() Config {
	return Config{
		HistoryRetention:    90 * 24 * time.Hour,
		HistoryKeepVersions: 10,
		RegisterEnabled:     true,
	}
}

// Services 业务服务集合
type Services struct {
	Config    Config
	Resolver  ConflictResolver
	Batch     BatchService
	Features  FeatureService
	Comments  CommentService
	Maps      MapService
	Histories HistoryService
	Users     UserService
}

// NewServices 组装全部业务服务
// queue 为每地图写入队列，批量回放与单条变更共用
func NewServices(cfg Config, uow domain.UnitOfWork, repos *domain.Repositories, queue *writequeue.Manager, tokens app.TokenManager, lg *zap.Logger) *Services {
	if cfg.HistoryRetention <= 0 {
		cfg.HistoryRetention = 90 * 24 * time.Hour
	}
	if cfg.HistoryKeepVersions <= 0 {
		cfg.HistoryKeepVersions = 10
	}
	if lg == nil {
		lg = zap.NewNop()
	}

	resolver := NewConflictResolver(uow, lg)
	return &Services{
		Config:    cfg,
		Resolver:  resolver,
		Batch:     NewBatchService(resolver, queue, lg),
		Features:  NewFeatureService(resolver, repos.Features, queue, lg),
		Comments:  NewCommentService(resolver, repos.Comments, repos.Replies, queue, lg),
		Maps:      NewMapService(repos.Maps, lg),
		Histories: NewHistoryService(repos.Histories, lg),
		Users:     NewUserService(repos.Users, tokens, cfg.RegisterEnabled, lg),
	}
}
