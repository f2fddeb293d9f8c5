package api_router

import (
	"github.com/haierkeys/map-annotation-sync-service/internal/app"
	"github.com/haierkeys/map-annotation-sync-service/internal/dto"
	pkgapp "github.com/haierkeys/map-annotation-sync-service/pkg/app"
	"github.com/haierkeys/map-annotation-sync-service/pkg/code"
	apperrors "github.com/haierkeys/map-annotation-sync-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

// HistoryHandler 变更历史 API 路由处理器
type HistoryHandler struct {
	*Handler
}

// NewHistoryHandler 创建 HistoryHandler 实例
func NewHistoryHandler(a *app.App) *HistoryHandler {
	return &HistoryHandler{
		Handler: NewHandler(a),
	}
}

// ListByMap 分页获取地图的变更历史，按时间倒序
func (h *HistoryHandler) ListByMap(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.HistoryListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()
	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSize(c)

	entries, total, err := h.App.Services.Histories.ListByMap(ctx, params, page, pageSize)
	if err != nil {
		h.logError(ctx, "HistoryHandler.ListByMap", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, entries, int(total))
}

// ListByEntity 获取单个实体的全部变更历史
func (h *HistoryHandler) ListByEntity(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.HistoryEntityRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	entries, err := h.App.Services.Histories.ListByEntity(ctx, params)
	if err != nil {
		h.logError(ctx, "HistoryHandler.ListByEntity", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(entries))
}
