// Package websocket_router 提供 WebSocket 路由处理器
package websocket_router

import (
	"context"
	"strings"

	"github.com/haierkeys/map-annotation-sync-service/internal/app"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	"github.com/haierkeys/map-annotation-sync-service/internal/session"
	pkgapp "github.com/haierkeys/map-annotation-sync-service/pkg/app"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"

	"go.uber.org/zap"
)

// WSHandler WebSocket 基础 Handler 结构体，封装 App Container
// 所有 WebSocket Handler 都应该嵌入此结构体以获得依赖注入能力
type WSHandler struct {
	App *app.App
	WSS *pkgapp.WebsocketServer
}

// NewWSHandler 创建 WebSocket 基础 Handler 实例
func NewWSHandler(a *app.App, wss *pkgapp.WebsocketServer) *WSHandler {
	return &WSHandler{App: a, WSS: wss}
}

// logError 记录错误日志，包含会话标识
// 连接关闭导致的错误降级为调试日志
func (h *WSHandler) logError(c *pkgapp.WebsocketClient, method string, err error) {
	sessionID := ""
	if c != nil {
		sessionID = c.SessionID
	}

	if isNetworkClosedError(err) {
		h.App.Logger().Debug(method,
			zap.Error(err),
			zap.String("sessionId", sessionID))
		return
	}

	h.App.Logger().Error(method,
		zap.Error(err),
		zap.String("sessionId", sessionID))
}

// logInfo 记录信息日志，包含会话标识
func (h *WSHandler) logInfo(c *pkgapp.WebsocketClient, method string, fields ...zap.Field) {
	sessionID := ""
	if c != nil {
		sessionID = c.SessionID
	}
	allFields := append([]zap.Field{zap.String("sessionId", sessionID)}, fields...)
	h.App.Logger().Info(method, allFields...)
}

// respondError 统一错误响应方法
// 记录错误日志并发送包含 Details 的错误响应给客户端
func (h *WSHandler) respondError(c *pkgapp.WebsocketClient, codeErr *code.Code, err error, method string, action dto.WebSocketAction) {
	h.logError(c, method, err)
	c.ToResponse(codeErr.Clone().WithDetails(err.Error()), action)
}

// respondServiceError 透传服务层返回的业务错误码，
// 非业务错误统一按内部错误响应
func (h *WSHandler) respondServiceError(c *pkgapp.WebsocketClient, err error, method string, action dto.WebSocketAction) {
	h.logError(c, method, err)
	if cErr, ok := err.(*code.Code); ok {
		c.ToResponse(cErr, action)
		return
	}
	c.ToResponse(code.ErrorServerInternal.Clone().WithDetails(err.Error()), action)
}

// requireRoom 校验会话已加入房间且房间与请求的地图一致
func (h *WSHandler) requireRoom(c *pkgapp.WebsocketClient, mapID string) (*session.Registry, *code.Code) {
	registry := h.App.Registry()
	if registry == nil {
		return nil, code.ErrorServerInternal
	}
	joinedMapID, _, ok := registry.Presence.Lookup(c.SessionID)
	if !ok {
		return nil, code.ErrorNotInRoom
	}
	if joinedMapID != mapID {
		return nil, code.ErrorRoomScopeMismatch
	}
	return registry, nil
}

// presenceAction 将在线状态事件映射为广播动作
func presenceAction(kind session.EventKind) dto.WebSocketAction {
	switch kind {
	case session.EventJoined:
		return dto.UserJoined
	case session.EventReturned:
		return dto.UserReturned
	case session.EventAway:
		return dto.UserAway
	case session.EventDisconnected:
		return dto.UserDisconnected
	}
	return ""
}

// broadcastPresenceEvents 将在线状态事件广播到房间，不回送给自己
func (h *WSHandler) broadcastPresenceEvents(c *pkgapp.WebsocketClient, events []session.Event) {
	for _, ev := range events {
		action := presenceAction(ev.Kind)
		if action == "" {
			continue
		}
		status := ""
		switch ev.Kind {
		case session.EventAway:
			status = string(session.StatusAway)
		case session.EventJoined, session.EventReturned:
			status = string(session.StatusActive)
		}
		payload := dto.PresenceEvent{
			MapID:    ev.MapID,
			UID:      ev.UID,
			Nickname: ev.Nickname,
			Status:   status,
		}
		c.ToRoomBroadcast(code.Success.Clone().WithData(payload), true, action)
	}
}

// presenceMembers 将会话层成员列表转换为响应结构
func presenceMembers(members []session.Member) []dto.PresenceMember {
	out := make([]dto.PresenceMember, 0, len(members))
	for _, m := range members {
		out = append(out, dto.PresenceMember{
			UID:          m.UID,
			Nickname:     m.Nickname,
			Status:       string(m.Status),
			LastActivity: m.LastActivity.UnixMilli(),
		})
	}
	return out
}

// isNetworkClosedError 检查是否为网络关闭相关的错误
func isNetworkClosedError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "connection reset by peer") ||
		strings.Contains(msg, "broken pipe") ||
		err == context.Canceled
}
