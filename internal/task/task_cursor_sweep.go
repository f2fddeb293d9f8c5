package task

import (
	"context"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/app"

	"go.uber.org/zap"
)

// CursorSweepTask 周期回收空闲的光标节流条目
type CursorSweepTask struct {
	app *app.App
}

// NewCursorSweepTask 创建光标回收任务
func NewCursorSweepTask(a *app.App) *CursorSweepTask {
	return &CursorSweepTask{app: a}
}

// Name 返回任务名称
func (t *CursorSweepTask) Name() string {
	return "CursorSweep"
}

// LoopInterval 返回执行间隔
func (t *CursorSweepTask) LoopInterval() time.Duration {
	return 30 * time.Second
}

// IsStartupRun 启动时无需立即执行
func (t *CursorSweepTask) IsStartupRun() bool {
	return false
}

// Run 执行一次回收
func (t *CursorSweepTask) Run(ctx context.Context) error {
	registry := t.app.Registry()
	if registry == nil {
		return nil
	}

	if removed := registry.SweepCursors(time.Now()); removed > 0 {
		t.app.Logger().Debug("cursor entries swept", zap.Int("removed", removed))
	}
	return nil
}
