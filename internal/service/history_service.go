package service

import (
	"context"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"

	"go.uber.org/zap"
)

// HistoryService 变更历史查询与清理
type HistoryService interface {
	// ListByMap 分页获取地图的变更历史，按时间倒序
	ListByMap(ctx context.Context, req *dto.HistoryListRequest, page, pageSize int) ([]*dto.History, int64, error)

	// ListByEntity 获取单个实体的全部变更历史
	ListByEntity(ctx context.Context, req *dto.HistoryEntityRequest) ([]*dto.History, error)

	// Prune 清理 retention 之前的历史，每个实体保留最近 keepVersions 条
	Prune(ctx context.Context, retention time.Duration, keepVersions int) (int64, error)
}

type historyService struct {
	histories domain.HistoryRepository
	logger    *zap.Logger
}

var _ HistoryService = (*historyService)(nil)

// NewHistoryService 创建 HistoryService 实例
func NewHistoryService(histories domain.HistoryRepository, lg *zap.Logger) HistoryService {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &historyService{histories: histories, logger: lg}
}

func (s *historyService) ListByMap(ctx context.Context, req *dto.HistoryListRequest, page, pageSize int) ([]*dto.History, int64, error) {
	entries, total, err := s.histories.ListByMap(ctx, req.MapID, page, pageSize)
	if err != nil {
		return nil, 0, code.ErrorHistoryListFailed.WithDetails(err.Error())
	}
	out := make([]*dto.History, 0, len(entries))
	for _, h := range entries {
		out = append(out, dto.HistoryFromDomain(h))
	}
	return out, total, nil
}

func (s *historyService) ListByEntity(ctx context.Context, req *dto.HistoryEntityRequest) ([]*dto.History, error) {
	entries, err := s.histories.ListByEntity(ctx, domain.HistoryEntityType(req.EntityType), req.EntityID, req.MapID)
	if err != nil {
		return nil, code.ErrorHistoryListFailed.WithDetails(err.Error())
	}
	out := make([]*dto.History, 0, len(entries))
	for _, h := range entries {
		out = append(out, dto.HistoryFromDomain(h))
	}
	return out, nil
}

func (s *historyService) Prune(ctx context.Context, retention time.Duration, keepVersions int) (int64, error) {
	cutoff := time.Now().Add(-retention)
	removed, err := s.histories.PruneBefore(ctx, cutoff, keepVersions)
	if err != nil {
		return 0, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if removed > 0 {
		s.logger.Info("history pruned",
			zap.Int64("removed", removed),
			zap.Time("cutoff", cutoff),
			zap.Int("keepVersions", keepVersions))
	}
	return removed, nil
}
