package dao

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/internal/model"
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"

	"gorm.io/gorm"
)

// replyRepository 实现 domain.ReplyRepository 接口
type replyRepository struct {
	dao *Dao
}

var _ domain.ReplyRepository = (*replyRepository)(nil)

// NewReplyRepository 创建 ReplyRepository 实例
func NewReplyRepository(dao *Dao) domain.ReplyRepository {
	return &replyRepository{dao: dao}
}

func (r *replyRepository) toDomain(m *model.Reply) *domain.Reply {
	if m == nil {
		return nil
	}
	return &domain.Reply{
		ID:        m.ID,
		MapID:     m.MapID,
		CommentID: m.CommentID,
		AuthorUID: m.AuthorUID,
		Content:   m.Content,
		Version:   m.Version,
		CreatedAt: time.Time(m.CreatedAt),
		UpdatedAt: time.Time(m.UpdatedAt),
	}
}

func (r *replyRepository) toModel(reply *domain.Reply) *model.Reply {
	if reply == nil {
		return nil
	}
	return &model.Reply{
		ID:        reply.ID,
		MapID:     reply.MapID,
		CommentID: reply.CommentID,
		AuthorUID: reply.AuthorUID,
		Content:   reply.Content,
		Version:   reply.Version,
		CreatedAt: timex.Time(reply.CreatedAt),
		UpdatedAt: timex.Time(reply.UpdatedAt),
	}
}

// GetByID 根据ID获取回复，未找到时返回 nil
func (r *replyRepository) GetByID(ctx context.Context, id string, mapID string) (*domain.Reply, error) {
	var m model.Reply
	err := r.dao.db.WithContext(ctx).
		Where("id = ? AND map_id = ?", id, mapID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建回复，初始版本为 1
func (r *replyRepository) Create(ctx context.Context, reply *domain.Reply) (*domain.Reply, error) {
	m := r.toModel(reply)
	m.Version = 1
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdateIfVersion 带版本条件更新回复内容
func (r *replyRepository) UpdateIfVersion(ctx context.Context, reply *domain.Reply, expectedVersion int64) (bool, error) {
	result := r.dao.db.WithContext(ctx).
		Model(&model.Reply{}).
		Where("id = ? AND map_id = ? AND version = ?", reply.ID, reply.MapID, expectedVersion).
		Updates(map[string]interface{}{
			"content":    reply.Content,
			"updated_at": timex.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteIfVersion 带版本条件删除回复
func (r *replyRepository) DeleteIfVersion(ctx context.Context, id string, mapID string, expectedVersion int64) (bool, error) {
	result := r.dao.db.WithContext(ctx).
		Where("id = ? AND map_id = ? AND version = ?", id, mapID, expectedVersion).
		Delete(&model.Reply{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteByComment 删除评论时级联删除其全部回复
func (r *replyRepository) DeleteByComment(ctx context.Context, commentID string, mapID string) (int64, error) {
	result := r.dao.db.WithContext(ctx).
		Where("comment_id = ? AND map_id = ?", commentID, mapID).
		Delete(&model.Reply{})
	return result.RowsAffected, result.Error
}

// ListByComment 获取评论下的回复，按创建时间正序
func (r *replyRepository) ListByComment(ctx context.Context, commentID string, mapID string) ([]*domain.Reply, error) {
	var ms []*model.Reply
	err := r.dao.db.WithContext(ctx).
		Model(&model.Reply{}).
		Where("comment_id = ? AND map_id = ?", commentID, mapID).
		Order("created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	replies := make([]*domain.Reply, 0, len(ms))
	for _, m := range ms {
		replies = append(replies, r.toDomain(m))
	}
	return replies, nil
}
