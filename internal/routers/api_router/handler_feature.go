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

// FeatureHandler 标注要素 API 路由处理器
// 单条变更与批量回放共用冲突解析与幂等账本，
// 提交成功的变更通过 WebSocket 广播到地图房间
type FeatureHandler struct {
	*Handler
}

// NewFeatureHandler 创建 FeatureHandler 实例
func NewFeatureHandler(a *app.App, wss *pkgapp.WebsocketServer) *FeatureHandler {
	return &FeatureHandler{
		Handler: NewHandlerWithWSS(a, wss),
	}
}

// Create 创建要素
func (h *FeatureHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FeatureCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("FeatureHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	result, event, err := h.App.Services.Features.Create(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "FeatureHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	h.broadcastEvents(params.MapID, event)
	response.ToResponse(code.Success.WithData(result))
}

// Update 更新要素，乐观锁冲突通过结果体返回而不是错误
func (h *FeatureHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FeatureUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("FeatureHandler.Update.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	result, event, err := h.App.Services.Features.Update(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "FeatureHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	h.broadcastEvents(params.MapID, event)
	response.ToResponse(code.Success.WithData(result))
}

// Delete 删除要素
func (h *FeatureHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FeatureDeleteRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("FeatureHandler.Delete.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	result, event, err := h.App.Services.Features.Delete(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "FeatureHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	h.broadcastEvents(params.MapID, event)
	response.ToResponse(code.Success.WithData(result))
}

// List 获取地图要素列表，支持外包框过滤与增量同步
func (h *FeatureHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.FeatureListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	features, err := h.App.Services.Features.List(ctx, params)
	if err != nil {
		h.logError(ctx, "FeatureHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(features))
}
