package task

import (
	"context"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/app"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// HistoryPruneTask 按 cron 计划清理过期的变更历史
// 每个实体始终保留最近的若干个版本
type HistoryPruneTask struct {
	app      *app.App
	schedule cron.Schedule
	next     time.Time
}

// NewHistoryPruneTask 创建历史清理任务
func NewHistoryPruneTask(a *app.App) (*HistoryPruneTask, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(a.Config().App.HistoryPruneCron)
	if err != nil {
		return nil, err
	}
	return &HistoryPruneTask{
		app:      a,
		schedule: schedule,
		next:     schedule.Next(time.Now()),
	}, nil
}

// Name 返回任务名称
func (t *HistoryPruneTask) Name() string {
	return "HistoryPrune"
}

// LoopInterval 每分钟检查一次计划
func (t *HistoryPruneTask) LoopInterval() time.Duration {
	return time.Minute
}

// IsStartupRun 启动时无需立即执行
func (t *HistoryPruneTask) IsStartupRun() bool {
	return false
}

// Run 到达计划时间时执行清理并计算下一次执行时间
func (t *HistoryPruneTask) Run(ctx context.Context) error {
	now := time.Now()
	if now.Before(t.next) {
		return nil
	}
	t.next = t.schedule.Next(now)

	cfg := t.app.Services.Config
	removed, err := t.app.Services.Histories.Prune(ctx, cfg.HistoryRetention, cfg.HistoryKeepVersions)
	if err != nil {
		return err
	}

	t.app.Logger().Info("history prune completed",
		zap.Int64("removed", removed),
		zap.Time("nextRun", t.next))
	return nil
}
