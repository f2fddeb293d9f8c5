package api_router

import (
	"github.com/haierkeys/map-annotation-sync-service/internal/app"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	pkgapp "github.com/haierkeys/map-annotation-sync-service/pkg/app"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"
	apperrors "github.com/haierkeys/map-annotation-sync-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BatchHandler 批量离线操作 API 路由处理器
// 与 WebSocket 的 BatchSubmit 共用同一套服务，结果语义完全一致
type BatchHandler struct {
	*Handler
}

// NewBatchHandler 创建 BatchHandler 实例
func NewBatchHandler(a *app.App, wss *pkgapp.WebsocketServer) *BatchHandler {
	return &BatchHandler{
		Handler: NewHandlerWithWSS(a, wss),
	}
}

// Submit 按提交顺序回放一批离线操作
// 单条失败不会中断整批，逐条结果按原始顺序返回；
// 已提交的变更广播到地图房间，重放与被拒绝的操作不广播
func (h *BatchHandler) Submit(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.BatchSubmitRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("BatchHandler.Submit.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	resp, events, err := h.App.Services.Batch.Submit(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "BatchHandler.Submit", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	RecordBatchSize(len(params.Operations))
	for i := range resp.Results {
		RecordOperationResult(resp.Results[i])
	}
	for i := range events {
		h.broadcastEvents(params.MapID, &events[i])
	}

	response.ToResponse(code.Success.WithData(resp))
}
