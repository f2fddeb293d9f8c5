// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"context"

	"github.com/haierkeys/map-annotation-sync-service/internal/app"
	"github.com/haierkeys/map-annotation-sync-service/internal/service"
	"github.com/haierkeys/map-annotation-sync-service/internal/session"
	pkgapp "github.com/haierkeys/map-annotation-sync-service/pkg/app"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
	WSS *pkgapp.WebsocketServer
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// NewHandlerWithWSS 创建带 WebSocket 服务的 Handler 实例
func NewHandlerWithWSS(a *app.App, wss *pkgapp.WebsocketServer) *Handler {
	return &Handler{App: a, WSS: wss}
}

// broadcastEvents 将 HTTP 变更产生的事件推送到对应地图的协作房间
// 扇出经 Worker Pool 异步执行，不阻塞 HTTP 响应
// 未装配 WebSocket 服务时静默跳过（仅测试场景）
func (h *Handler) broadcastEvents(mapID string, events ...*service.BroadcastEvent) {
	if h.WSS == nil {
		return
	}
	roomID := session.RoomForMap(mapID).Channel()
	for _, ev := range events {
		if ev == nil {
			continue
		}
		action, payload := ev.Action, ev.Payload
		content := pkgapp.Res{
			Code:    code.Success.Code(),
			Status:  true,
			Message: code.Success.Msg(),
			Data:    payload,
		}
		err := h.App.SubmitTaskAsync(context.Background(), func(ctx context.Context) error {
			h.WSS.BroadcastToRoom(roomID, action, content, nil)
			return nil
		})
		if err != nil {
			// 池满时退化为同步广播，事件不丢弃
			h.WSS.BroadcastToRoom(roomID, action, content, nil)
		}
		RecordRoomBroadcast(action)
	}
}
