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

// MapHandler 地图 API 路由处理器
type MapHandler struct {
	*Handler
}

// NewMapHandler 创建 MapHandler 实例
func NewMapHandler(a *app.App) *MapHandler {
	return &MapHandler{
		Handler: NewHandler(a),
	}
}

// Create 创建地图
func (h *MapHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.MapCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("MapHandler.Create.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	m, err := h.App.Services.Maps.Create(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "MapHandler.Create", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(m))
}

// Update 更新地图标题与描述，仅创建者可操作
func (h *MapHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.MapUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("MapHandler.Update.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	m, err := h.App.Services.Maps.Update(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "MapHandler.Update", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(m))
}

// Delete 删除地图，仅创建者可操作
func (h *MapHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.MapGetRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("MapHandler.Delete.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	if err := h.App.Services.Maps.Delete(ctx, pkgapp.GetUID(c), params.MapID); err != nil {
		h.logError(ctx, "MapHandler.Delete", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}

// Get 获取单张地图
func (h *MapHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.MapGetRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	m, err := h.App.Services.Maps.Get(ctx, params.MapID)
	if err != nil {
		h.logError(ctx, "MapHandler.Get", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(m))
}

// List 获取当前用户创建的地图列表
func (h *MapHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	ctx := c.Request.Context()

	maps, err := h.App.Services.Maps.ListByOwner(ctx, pkgapp.GetUID(c))
	if err != nil {
		h.logError(ctx, "MapHandler.List", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(maps))
}
