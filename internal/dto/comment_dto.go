package dto

import (
	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"
)

// Comment 评论响应结构
type Comment struct {
	ID        string     `json:"id"`
	MapID     string     `json:"mapId"`
	FeatureID string     `json:"featureId"`
	AuthorUID int64      `json:"authorUid"`
	Content   string     `json:"content"`
	Version   int64      `json:"version"`
	CreatedAt timex.Time `json:"createdAt"`
	UpdatedAt timex.Time `json:"updatedAt"`
}

// CommentFromDomain 将领域模型转换为响应结构
func CommentFromDomain(c *domain.Comment) *Comment {
	if c == nil {
		return nil
	}
	return &Comment{
		ID:        c.ID,
		MapID:     c.MapID,
		FeatureID: c.FeatureID,
		AuthorUID: c.AuthorUID,
		Content:   c.Content,
		Version:   c.Version,
		CreatedAt: timex.Time(c.CreatedAt),
		UpdatedAt: timex.Time(c.UpdatedAt),
	}
}

// Reply 回复响应结构
type Reply struct {
	ID        string     `json:"id"`
	MapID     string     `json:"mapId"`
	CommentID string     `json:"commentId"`
	AuthorUID int64      `json:"authorUid"`
	Content   string     `json:"content"`
	Version   int64      `json:"version"`
	CreatedAt timex.Time `json:"createdAt"`
	UpdatedAt timex.Time `json:"updatedAt"`
}

// ReplyFromDomain 将领域模型转换为响应结构
func ReplyFromDomain(r *domain.Reply) *Reply {
	if r == nil {
		return nil
	}
	return &Reply{
		ID:        r.ID,
		MapID:     r.MapID,
		CommentID: r.CommentID,
		AuthorUID: r.AuthorUID,
		Content:   r.Content,
		Version:   r.Version,
		CreatedAt: timex.Time(r.CreatedAt),
		UpdatedAt: timex.Time(r.UpdatedAt),
	}
}

// CommentWithReplies 评论列表项，携带全部回复
type CommentWithReplies struct {
	*Comment
	Replies []*Reply `json:"replies"`
}

// CommentCreateRequest 创建评论的请求参数
type CommentCreateRequest struct {
	MapID       string `json:"mapId" form:"mapId" binding:"required"`
	CommentID   string `json:"commentId" form:"commentId"`
	FeatureID   string `json:"featureId" form:"featureId" binding:"required"`
	OperationID string `json:"operationId" form:"operationId" binding:"required"`
	Content     string `json:"content" form:"content" binding:"required,max=4096"`
}

// CommentUpdateRequest 更新评论内容的请求参数
type CommentUpdateRequest struct {
	MapID       string `json:"mapId" form:"mapId" binding:"required"`
	CommentID   string `json:"commentId" form:"commentId" binding:"required"`
	OperationID string `json:"operationId" form:"operationId" binding:"required"`
	BaseVersion int64  `json:"baseVersion" form:"baseVersion" binding:"required"`
	Content     string `json:"content" form:"content" binding:"required,max=4096"`
}

// CommentDeleteRequest 删除评论的请求参数
type CommentDeleteRequest struct {
	MapID       string `json:"mapId" form:"mapId" binding:"required"`
	CommentID   string `json:"commentId" form:"commentId" binding:"required"`
	OperationID string `json:"operationId" form:"operationId" binding:"required"`
	BaseVersion int64  `json:"baseVersion" form:"baseVersion" binding:"required"`
}

// CommentListRequest 获取要素评论列表的请求参数
type CommentListRequest struct {
	MapID     string `json:"mapId" form:"mapId" binding:"required"`
	FeatureID string `json:"featureId" form:"featureId" binding:"required"`
}

// ReplyCreateRequest 创建回复的请求参数
type ReplyCreateRequest struct {
	MapID       string `json:"mapId" form:"mapId" binding:"required"`
	ReplyID     string `json:"replyId" form:"replyId"`
	CommentID   string `json:"commentId" form:"commentId" binding:"required"`
	OperationID string `json:"operationId" form:"operationId" binding:"required"`
	Content     string `json:"content" form:"content" binding:"required,max=4096"`
}

// ReplyUpdateRequest 更新回复内容的请求参数
type ReplyUpdateRequest struct {
	MapID       string `json:"mapId" form:"mapId" binding:"required"`
	ReplyID     string `json:"replyId" form:"replyId" binding:"required"`
	OperationID string `json:"operationId" form:"operationId" binding:"required"`
	BaseVersion int64  `json:"baseVersion" form:"baseVersion" binding:"required"`
	Content     string `json:"content" form:"content" binding:"required,max=4096"`
}

// ReplyDeleteRequest 删除回复的请求参数
type ReplyDeleteRequest struct {
	MapID       string `json:"mapId" form:"mapId" binding:"required"`
	ReplyID     string `json:"replyId" form:"replyId" binding:"required"`
	OperationID string `json:"operationId" form:"operationId" binding:"required"`
	BaseVersion int64  `json:"baseVersion" form:"baseVersion" binding:"required"`
}
