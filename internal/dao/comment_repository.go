package dao

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/internal/model"
	"github.com/haierkeys/map-annotation-sync-service/pkg/app"
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"

	"gorm.io/gorm"
)

// commentRepository 实现 domain.CommentRepository 接口
type commentRepository struct {
	dao *Dao
}

var _ domain.CommentRepository = (*commentRepository)(nil)

// NewCommentRepository 创建 CommentRepository 实例
func NewCommentRepository(dao *Dao) domain.CommentRepository {
	return &commentRepository{dao: dao}
}

func (r *commentRepository) toDomain(m *model.Comment) *domain.Comment {
	if m == nil {
		return nil
	}
	return &domain.Comment{
		ID:        m.ID,
		MapID:     m.MapID,
		FeatureID: m.FeatureID,
		AuthorUID: m.AuthorUID,
		Content:   m.Content,
		Version:   m.Version,
		CreatedAt: time.Time(m.CreatedAt),
		UpdatedAt: time.Time(m.UpdatedAt),
	}
}

func (r *commentRepository) toModel(c *domain.Comment) *model.Comment {
	if c == nil {
		return nil
	}
	return &model.Comment{
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

// GetByID 根据ID获取评论，未找到时返回 nil
func (r *commentRepository) GetByID(ctx context.Context, id string, mapID string) (*domain.Comment, error) {
	var m model.Comment
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

// Create 创建评论，初始版本为 1
func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	m := r.toModel(comment)
	m.Version = 1
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdateIfVersion 带版本条件更新评论内容
func (r *commentRepository) UpdateIfVersion(ctx context.Context, comment *domain.Comment, expectedVersion int64) (bool, error) {
	result := r.dao.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ? AND map_id = ? AND version = ?", comment.ID, comment.MapID, expectedVersion).
		Updates(map[string]interface{}{
			"content":    comment.Content,
			"updated_at": timex.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteIfVersion 带版本条件删除评论
func (r *commentRepository) DeleteIfVersion(ctx context.Context, id string, mapID string, expectedVersion int64) (bool, error) {
	result := r.dao.db.WithContext(ctx).
		Where("id = ? AND map_id = ? AND version = ?", id, mapID, expectedVersion).
		Delete(&model.Comment{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteByFeature 删除要素时级联删除其全部评论
func (r *commentRepository) DeleteByFeature(ctx context.Context, featureID string, mapID string) (int64, error) {
	result := r.dao.db.WithContext(ctx).
		Where("feature_id = ? AND map_id = ?", featureID, mapID).
		Delete(&model.Comment{})
	return result.RowsAffected, result.Error
}

// ListByFeature 分页获取要素下的评论，按创建时间正序
func (r *commentRepository) ListByFeature(ctx context.Context, featureID string, mapID string, page, pageSize int) ([]*domain.Comment, int64, error) {
	q := r.dao.db.WithContext(ctx).
		Model(&model.Comment{}).
		Where("feature_id = ? AND map_id = ?", featureID, mapID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []*model.Comment
	err := q.Order("created_at ASC").
		Offset(app.GetPageOffset(page, pageSize)).
		Limit(pageSize).
		Find(&ms).Error
	if err != nil {
		return nil, 0, err
	}

	comments := make([]*domain.Comment, 0, len(ms))
	for _, m := range ms {
		comments = append(comments, r.toDomain(m))
	}
	return comments, total, nil
}
