package task

import (
	"context"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/app"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	"github.com/haierkeys/map-annotation-sync-service/internal/session"
)

// PresenceSweepTask 周期移除 away 超时的会话
// 每个被移除用户向其房间广播一次 UserDisconnected
type PresenceSweepTask struct {
	app *app.App
}

// NewPresenceSweepTask 创建在线状态清扫任务
func NewPresenceSweepTask(a *app.App) *PresenceSweepTask {
	return &PresenceSweepTask{app: a}
}

// Name 返回任务名称
func (t *PresenceSweepTask) Name() string {
	return "PresenceSweep"
}

// LoopInterval 返回执行间隔
func (t *PresenceSweepTask) LoopInterval() time.Duration {
	return time.Minute
}

// IsStartupRun 启动时无需立即执行
func (t *PresenceSweepTask) IsStartupRun() bool {
	return false
}

// Run 执行一次清扫并广播移除事件
func (t *PresenceSweepTask) Run(ctx context.Context) error {
	registry := t.app.Registry()
	if registry == nil {
		return nil
	}

	events := registry.SweepPresence(time.Now())
	for _, ev := range events {
		if ev.Kind != session.EventDisconnected {
			continue
		}
		t.app.BroadcastToMapRoom(ev.MapID, dto.UserDisconnected, dto.PresenceEvent{
			MapID:    ev.MapID,
			UID:      ev.UID,
			Nickname: ev.Nickname,
		})
	}
	return nil
}
