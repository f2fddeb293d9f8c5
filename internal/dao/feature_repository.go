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

// featureRepository 实现 domain.FeatureRepository 接口
type featureRepository struct {
	dao *Dao
}

var _ domain.FeatureRepository = (*featureRepository)(nil)

// NewFeatureRepository 创建 FeatureRepository 实例
func NewFeatureRepository(dao *Dao) domain.FeatureRepository {
	return &featureRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *featureRepository) toDomain(m *model.Feature) *domain.Feature {
	if m == nil {
		return nil
	}
	return &domain.Feature{
		ID:         m.ID,
		MapID:      m.MapID,
		Type:       domain.FeatureType(m.Type),
		Geometry:   m.Geometry,
		Properties: m.Properties,
		MinLng:     m.MinLng,
		MinLat:     m.MinLat,
		MaxLng:     m.MaxLng,
		MaxLat:     m.MaxLat,
		Version:    m.Version,
		CreatedBy:  m.CreatedBy,
		UpdatedBy:  m.UpdatedBy,
		CreatedAt:  time.Time(m.CreatedAt),
		UpdatedAt:  time.Time(m.UpdatedAt),
	}
}

// toModel 将领域模型转换为数据库模型
func (r *featureRepository) toModel(f *domain.Feature) *model.Feature {
	if f == nil {
		return nil
	}
	return &model.Feature{
		ID:         f.ID,
		MapID:      f.MapID,
		Type:       string(f.Type),
		Geometry:   f.Geometry,
		Properties: f.Properties,
		MinLng:     f.MinLng,
		MinLat:     f.MinLat,
		MaxLng:     f.MaxLng,
		MaxLat:     f.MaxLat,
		Version:    f.Version,
		CreatedBy:  f.CreatedBy,
		UpdatedBy:  f.UpdatedBy,
		CreatedAt:  timex.Time(f.CreatedAt),
		UpdatedAt:  timex.Time(f.UpdatedAt),
	}
}

// GetByID 根据ID获取要素，未找到时返回 nil
func (r *featureRepository) GetByID(ctx context.Context, id string, mapID string) (*domain.Feature, error) {
	var m model.Feature
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

// Create 创建要素，初始版本为 1
func (r *featureRepository) Create(ctx context.Context, feature *domain.Feature) (*domain.Feature, error) {
	m := r.toModel(feature)
	m.Version = 1
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdateIfVersion 带版本条件更新要素
// 版本匹配时一并将 version 加 1，RowsAffected 为 0 即版本不匹配
func (r *featureRepository) UpdateIfVersion(ctx context.Context, feature *domain.Feature, expectedVersion int64) (bool, error) {
	result := r.dao.db.WithContext(ctx).
		Model(&model.Feature{}).
		Where("id = ? AND map_id = ? AND version = ?", feature.ID, feature.MapID, expectedVersion).
		Updates(map[string]interface{}{
			"geometry":   feature.Geometry,
			"properties": feature.Properties,
			"type":       string(feature.Type),
			"min_lng":    feature.MinLng,
			"min_lat":    feature.MinLat,
			"max_lng":    feature.MaxLng,
			"max_lat":    feature.MaxLat,
			"updated_by": feature.UpdatedBy,
			"updated_at": timex.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteIfVersion 带版本条件删除要素
func (r *featureRepository) DeleteIfVersion(ctx context.Context, id string, mapID string, expectedVersion int64) (bool, error) {
	result := r.dao.db.WithContext(ctx).
		Where("id = ? AND map_id = ? AND version = ?", id, mapID, expectedVersion).
		Delete(&model.Feature{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByMap 获取地图下的要素，bbox 不为 nil 时按外包框相交过滤
func (r *featureRepository) ListByMap(ctx context.Context, mapID string, bbox *domain.BoundingBox) ([]*domain.Feature, error) {
	q := r.dao.db.WithContext(ctx).
		Model(&model.Feature{}).
		Where("map_id = ?", mapID)

	if bbox != nil {
		q = q.Where("min_lng <= ? AND max_lng >= ? AND min_lat <= ? AND max_lat >= ?",
			bbox.MaxLng, bbox.MinLng, bbox.MaxLat, bbox.MinLat)
	}

	var ms []*model.Feature
	if err := q.Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}

	features := make([]*domain.Feature, 0, len(ms))
	for _, m := range ms {
		features = append(features, r.toDomain(m))
	}
	return features, nil
}

// ListChangedSince 获取指定时间之后变更过的要素
func (r *featureRepository) ListChangedSince(ctx context.Context, mapID string, since time.Time) ([]*domain.Feature, error) {
	var ms []*model.Feature
	err := r.dao.db.WithContext(ctx).
		Model(&model.Feature{}).
		Where("map_id = ? AND updated_at > ?", mapID, timex.Time(since)).
		Order("updated_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	features := make([]*domain.Feature, 0, len(ms))
	for _, m := range ms {
		features = append(features, r.toDomain(m))
	}
	return features, nil
}

// CountByMap 获取地图下的要素数量
func (r *featureRepository) CountByMap(ctx context.Context, mapID string) (int64, error) {
	var count int64
	err := r.dao.db.WithContext(ctx).
		Model(&model.Feature{}).
		Where("map_id = ?", mapID).
		Count(&count).Error
	return count, err
}
