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

// mapRepository 实现 domain.MapRepository 接口
type mapRepository struct {
	dao *Dao
}

var _ domain.MapRepository = (*mapRepository)(nil)

// NewMapRepository 创建 MapRepository 实例
func NewMapRepository(dao *Dao) domain.MapRepository {
	return &mapRepository{dao: dao}
}

func (r *mapRepository) toDomain(m *model.Map) *domain.MapInfo {
	if m == nil {
		return nil
	}
	return &domain.MapInfo{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		OwnerUID:    m.OwnerUID,
		CreatedAt:   time.Time(m.CreatedAt),
		UpdatedAt:   time.Time(m.UpdatedAt),
	}
}

func (r *mapRepository) toModel(m *domain.MapInfo) *model.Map {
	if m == nil {
		return nil
	}
	return &model.Map{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		OwnerUID:    m.OwnerUID,
		CreatedAt:   timex.Time(m.CreatedAt),
		UpdatedAt:   timex.Time(m.UpdatedAt),
	}
}

// GetByID 根据ID获取地图，未找到时返回 nil
func (r *mapRepository) GetByID(ctx context.Context, id string) (*domain.MapInfo, error) {
	var m model.Map
	err := r.dao.db.WithContext(ctx).
		Where("id = ?", id).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建地图
func (r *mapRepository) Create(ctx context.Context, mi *domain.MapInfo) (*domain.MapInfo, error) {
	m := r.toModel(mi)
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update 更新地图标题与描述
func (r *mapRepository) Update(ctx context.Context, mi *domain.MapInfo) error {
	return r.dao.db.WithContext(ctx).
		Model(&model.Map{}).
		Where("id = ?", mi.ID).
		Updates(map[string]interface{}{
			"title":       mi.Title,
			"description": mi.Description,
			"updated_at":  timex.Now(),
		}).Error
}

// ListByOwner 获取用户创建的地图列表
func (r *mapRepository) ListByOwner(ctx context.Context, ownerUID int64) ([]*domain.MapInfo, error) {
	var ms []*model.Map
	err := r.dao.db.WithContext(ctx).
		Model(&model.Map{}).
		Where("owner_uid = ?", ownerUID).
		Order("created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	maps := make([]*domain.MapInfo, 0, len(ms))
	for _, m := range ms {
		maps = append(maps, r.toDomain(m))
	}
	return maps, nil
}

// Delete 删除地图
func (r *mapRepository) Delete(ctx context.Context, id string, ownerUID int64) error {
	return r.dao.db.WithContext(ctx).
		Where("id = ? AND owner_uid = ?", id, ownerUID).
		Delete(&model.Map{}).Error
}
