package session

import (
	"time"

	"go.uber.org/zap"
)

// Config 会话层配置
type Config struct {
	// PresenceStaleAfter away 会话的移除时限，默认 4 小时
	PresenceStaleAfter time.Duration
	Cursor             CursorConfig
}

// DefaultConfig 返回默认会话层配置
func DefaultConfig() Config {
	return Config{
		PresenceStaleAfter: 4 * time.Hour,
		Cursor:             DefaultCursorConfig(),
	}
}

// Registry 聚合在线状态跟踪与光标节流，是会话层的唯一入口
type Registry struct {
	config   Config
	logger   *zap.Logger
	Presence *PresenceTracker
	Cursor   *CursorThrottler
}

// NewRegistry 创建会话注册表
// emitCursor 为光标广播回调，由路由层注入
func NewRegistry(cfg Config, logger *zap.Logger, emitCursor func(CursorUpdate)) *Registry {
	if cfg.PresenceStaleAfter <= 0 {
		cfg.PresenceStaleAfter = 4 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		config:   cfg,
		logger:   logger,
		Presence: NewPresenceTracker(),
		Cursor:   NewCursorThrottler(cfg.Cursor, emitCursor),
	}
}

// SweepPresence 执行一次在线状态清扫，返回需要广播的事件
func (r *Registry) SweepPresence(now time.Time) []Event {
	events := r.Presence.SweepStale(now, r.config.PresenceStaleAfter)
	for _, ev := range events {
		r.Cursor.PurgeUser(ev.MapID, ev.UID)
		r.logger.Info("presence session expired",
			zap.String("mapId", ev.MapID),
			zap.Int64("uid", ev.UID))
	}
	return events
}

// SweepCursors 执行一次光标条目清扫
func (r *Registry) SweepCursors(now time.Time) int {
	return r.Cursor.Sweep(now)
}

// Shutdown 停止会话层的全部定时器
func (r *Registry) Shutdown() {
	r.Cursor.Shutdown()
	r.logger.Info("session registry shutdown completed")
}
