package websocket_router

import (
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/app"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	pkgapp "github.com/haierkeys/map-annotation-sync-service/pkg/app"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"
)

// CursorHandler 光标位置上报处理器
type CursorHandler struct {
	*WSHandler
}

// NewCursorHandler 创建 CursorHandler 实例
func NewCursorHandler(a *app.App, wss *pkgapp.WebsocketServer) *CursorHandler {
	return &CursorHandler{WSHandler: NewWSHandler(a, wss)}
}

// CursorMove 上报光标位置
// 上报本身不回发确认，节流后的位置由会话层通过广播回调
// 推送给房间内全部协作者
func (h *CursorHandler) CursorMove(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.CursorMoveRequest{}
	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		c.ToResponse(code.ErrorInvalidParams.Clone().WithDetails(errs.Errors()...), dto.CursorMove)
		return
	}

	registry, codeErr := h.requireRoom(c, params.MapID)
	if codeErr != nil {
		c.ToResponse(codeErr.Clone(), dto.CursorMove)
		return
	}

	now := time.Now()
	registry.Presence.Touch(c.SessionID, now)
	registry.Cursor.Submit(params.MapID, c.User.UID, c.User.Nickname, params.Position, now)
}
