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

// CommentHandler 评论与回复 API 路由处理器
type CommentHandler struct {
	*Handler
}

// NewCommentHandler 创建 CommentHandler 实例
func NewCommentHandler(a *app.App, wss *pkgapp.WebsocketServer) *CommentHandler {
	return &CommentHandler{
		Handler: NewHandlerWithWSS(a, wss),
	}
}

// CreateComment 创建评论
func (h *CommentHandler) CreateComment(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CommentCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("CommentHandler.CreateComment.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	result, event, err := h.App.Services.Comments.CreateComment(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "CommentHandler.CreateComment", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	h.broadcastEvents(params.MapID, event)
	response.ToResponse(code.Success.WithData(result))
}

// UpdateComment 更新评论内容，仅作者可操作
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CommentUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("CommentHandler.UpdateComment.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	result, event, err := h.App.Services.Comments.UpdateComment(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "CommentHandler.UpdateComment", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	h.broadcastEvents(params.MapID, event)
	response.ToResponse(code.Success.WithData(result))
}

// DeleteComment 删除评论及其回复，仅作者可操作
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CommentDeleteRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("CommentHandler.DeleteComment.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	result, event, err := h.App.Services.Comments.DeleteComment(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "CommentHandler.DeleteComment", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	h.broadcastEvents(params.MapID, event)
	response.ToResponse(code.Success.WithData(result))
}

// CreateReply 创建回复
func (h *CommentHandler) CreateReply(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ReplyCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("CommentHandler.CreateReply.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	result, event, err := h.App.Services.Comments.CreateReply(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "CommentHandler.CreateReply", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	h.broadcastEvents(params.MapID, event)
	response.ToResponse(code.Success.WithData(result))
}

// UpdateReply 更新回复内容，仅作者可操作
func (h *CommentHandler) UpdateReply(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ReplyUpdateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("CommentHandler.UpdateReply.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	result, event, err := h.App.Services.Comments.UpdateReply(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "CommentHandler.UpdateReply", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	h.broadcastEvents(params.MapID, event)
	response.ToResponse(code.Success.WithData(result))
}

// DeleteReply 删除回复，仅作者可操作
func (h *CommentHandler) DeleteReply(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.ReplyDeleteRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("CommentHandler.DeleteReply.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()

	result, event, err := h.App.Services.Comments.DeleteReply(ctx, pkgapp.GetUID(c), params)
	if err != nil {
		h.logError(ctx, "CommentHandler.DeleteReply", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	h.broadcastEvents(params.MapID, event)
	response.ToResponse(code.Success.WithData(result))
}

// ListComments 分页获取要素评论列表
func (h *CommentHandler) ListComments(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.CommentListRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.Errors()...))
		return
	}

	ctx := c.Request.Context()
	page := pkgapp.GetPage(c)
	pageSize := pkgapp.GetPageSize(c)

	comments, total, err := h.App.Services.Comments.ListComments(ctx, params, page, pageSize)
	if err != nil {
		h.logError(ctx, "CommentHandler.ListComments", err)
		apperrors.ErrorResponse(c, err)
		return
	}

	response.ToResponseList(code.Success, comments, int(total))
}
