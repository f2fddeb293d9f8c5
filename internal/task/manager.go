// Package task 提供后台定时任务：在线状态清扫、光标回收与历史清理
package task

import (
	"github.com/haierkeys/map-annotation-sync-service/internal/app"
	"github.com/haierkeys/map-annotation-sync-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器，负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	app       *app.App
	logger    *zap.Logger
}

// NewManager 创建任务管理器
func NewManager(a *app.App, logger *zap.Logger, sc *safe_close.SafeClose) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		app:       a,
		logger:    logger,
	}
}

// RegisterTasks 注册所有任务
func (m *Manager) RegisterTasks() error {
	m.scheduler.AddTask(NewPresenceSweepTask(m.app))
	m.scheduler.AddTask(NewCursorSweepTask(m.app))

	pruneTask, err := NewHistoryPruneTask(m.app)
	if err != nil {
		m.logger.Warn("failed to create history prune task", zap.Error(err))
		return err
	}
	m.scheduler.AddTask(pruneTask)

	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
