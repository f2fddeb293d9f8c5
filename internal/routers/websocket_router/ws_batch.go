package websocket_router

import (
	"context"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/app"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	"github.com/haierkeys/map-annotation-sync-service/internal/routers/api_router"
	pkgapp "github.com/haierkeys/map-annotation-sync-service/pkg/app"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"

	"go.uber.org/zap"
)

// BatchHandler 批量离线操作处理器
type BatchHandler struct {
	*WSHandler
}

// NewBatchHandler 创建 BatchHandler 实例
func NewBatchHandler(a *app.App, wss *pkgapp.WebsocketServer) *BatchHandler {
	return &BatchHandler{WSHandler: NewWSHandler(a, wss)}
}

// BatchSubmit 按提交顺序回放一批离线操作
// 要求会话已加入对应地图的房间；逐条结果按原始顺序回发，
// 已提交的变更广播给房间内其他协作者，重放与被拒绝的操作不广播
func (h *BatchHandler) BatchSubmit(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.BatchSubmitRequest{}
	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		c.ToResponse(code.ErrorInvalidParams.Clone().WithDetails(errs.Errors()...), dto.BatchResults)
		return
	}

	registry, codeErr := h.requireRoom(c, params.MapID)
	if codeErr != nil {
		c.ToResponse(codeErr.Clone(), dto.BatchResults)
		return
	}
	registry.Presence.Touch(c.SessionID, time.Now())

	ctx := context.Background()

	resp, events, err := h.App.Services.Batch.Submit(ctx, c.User.UID, params)
	if err != nil {
		h.respondServiceError(c, err, "BatchHandler.BatchSubmit", dto.BatchResults)
		return
	}

	api_router.RecordBatchSize(len(params.Operations))
	for i := range resp.Results {
		api_router.RecordOperationResult(resp.Results[i])
	}

	c.ToResponse(code.Success.Clone().WithData(resp), dto.BatchResults)

	for _, ev := range events {
		c.ToRoomBroadcast(code.Success.Clone().WithData(ev.Payload), true, ev.Action)
		api_router.RecordRoomBroadcast(ev.Action)
	}

	h.logInfo(c, "BatchHandler.BatchSubmit",
		zap.String("mapId", params.MapID),
		zap.Int64("uid", c.User.UID),
		zap.Int("operations", len(params.Operations)),
		zap.Int("broadcasts", len(events)))
}
