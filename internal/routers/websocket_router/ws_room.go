package websocket_router

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/app"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	"github.com/haierkeys/map-annotation-sync-service/internal/session"
	pkgapp "github.com/haierkeys/map-annotation-sync-service/pkg/app"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"

	"go.uber.org/zap"
)

// RoomHandler 地图协作房间处理器
// 负责加入、离开房间以及重连时的会话恢复
type RoomHandler struct {
	*WSHandler
}

// NewRoomHandler 创建 RoomHandler 实例
func NewRoomHandler(a *app.App, wss *pkgapp.WebsocketServer) *RoomHandler {
	return &RoomHandler{WSHandler: NewWSHandler(a, wss)}
}

// JoinRoom 加入地图协作房间
// 请求携带之前的 sessionId 时尝试恢复旧会话，恢复成功按重连处理：
// 回发 AutoRejoin 而不是 JoinRoom，且不重复广播 UserJoined
func (h *RoomHandler) JoinRoom(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.JoinRoomRequest{}
	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		c.ToResponse(code.ErrorInvalidParams.Clone().WithDetails(errs.Errors()...), dto.JoinRoom)
		return
	}

	ctx := context.Background()

	if _, err := h.App.Services.Maps.Get(ctx, params.MapID); err != nil {
		h.respondServiceError(c, err, "RoomHandler.JoinRoom", dto.JoinRoom)
		return
	}

	registry := h.App.Registry()
	if registry == nil {
		h.respondError(c, code.ErrorServerInternal, errors.New("session registry not initialized"), "RoomHandler.JoinRoom", dto.JoinRoom)
		return
	}

	h.WSS.JoinRoom(c, session.RoomForMap(params.MapID).Channel())

	result := registry.Presence.Join(c.SessionID, params.SessionID, params.MapID, c.User.UID, c.User.Nickname, time.Now())

	snapshot := dto.RoomSnapshot{
		MapID:     params.MapID,
		SessionID: c.SessionID,
		Members:   presenceMembers(result.Members),
		Rejoined:  result.Rejoined,
	}

	action := dto.JoinRoom
	if result.Rejoined {
		action = dto.AutoRejoin
		snapshot.Since = result.LastActivity.UnixMilli()
	}
	c.ToResponse(code.Success.Clone().WithData(snapshot), action)

	h.broadcastPresenceEvents(c, result.Events)

	h.logInfo(c, "RoomHandler.JoinRoom",
		zap.String("mapId", params.MapID),
		zap.Int64("uid", c.User.UID),
		zap.Bool("rejoined", result.Rejoined))
}

// LeaveRoom 显式离开房间，立即移除会话并清理光标状态
func (h *RoomHandler) LeaveRoom(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.LeaveRoomRequest{}
	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		c.ToResponse(code.ErrorInvalidParams.Clone().WithDetails(errs.Errors()...), dto.LeaveRoom)
		return
	}

	registry, codeErr := h.requireRoom(c, params.MapID)
	if codeErr != nil {
		c.ToResponse(codeErr.Clone(), dto.LeaveRoom)
		return
	}

	events := registry.Presence.Leave(c.SessionID)
	registry.Cursor.PurgeUser(params.MapID, c.User.UID)

	h.broadcastPresenceEvents(c, events)
	h.WSS.LeaveRoom(c)

	c.ToResponse(code.Success.Clone(), dto.LeaveRoom)

	h.logInfo(c, "RoomHandler.LeaveRoom",
		zap.String("mapId", params.MapID),
		zap.Int64("uid", c.User.UID))
}

// PresenceList 获取当前房间的在线列表
func (h *RoomHandler) PresenceList(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.LeaveRoomRequest{}
	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		c.ToResponse(code.ErrorInvalidParams.Clone().WithDetails(errs.Errors()...), dto.PresenceList)
		return
	}

	registry, codeErr := h.requireRoom(c, params.MapID)
	if codeErr != nil {
		c.ToResponse(codeErr.Clone(), dto.PresenceList)
		return
	}

	registry.Presence.Touch(c.SessionID, time.Now())

	members := presenceMembers(registry.Presence.Members(params.MapID))
	c.ToResponse(code.Success.Clone().WithData(members), dto.PresenceList)
}
