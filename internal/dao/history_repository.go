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

// historyRepository 实现 domain.HistoryRepository 接口
type historyRepository struct {
	dao *Dao
}

var _ domain.HistoryRepository = (*historyRepository)(nil)

// NewHistoryRepository 创建 HistoryRepository 实例
func NewHistoryRepository(dao *Dao) domain.HistoryRepository {
	return &historyRepository{dao: dao}
}

func (r *historyRepository) toDomain(m *model.History) *domain.History {
	if m == nil {
		return nil
	}
	return &domain.History{
		ID:                m.ID,
		MapID:             m.MapID,
		ClientOperationID: m.ClientOperationID,
		EntityType:        domain.HistoryEntityType(m.EntityType),
		EntityID:          m.EntityID,
		Action:            domain.HistoryAction(m.Action),
		UID:               m.UID,
		Version:           m.Version,
		Snapshot:          m.Snapshot,
		ContentDiff:       m.ContentDiff,
		CreatedAt:         time.Time(m.CreatedAt),
	}
}

func (r *historyRepository) toModel(h *domain.History) *model.History {
	if h == nil {
		return nil
	}
	return &model.History{
		ID:                h.ID,
		MapID:             h.MapID,
		ClientOperationID: h.ClientOperationID,
		EntityType:        string(h.EntityType),
		EntityID:          h.EntityID,
		Action:            string(h.Action),
		UID:               h.UID,
		Version:           h.Version,
		Snapshot:          h.Snapshot,
		ContentDiff:       h.ContentDiff,
		CreatedAt:         timex.Time(h.CreatedAt),
	}
}

// Create 追加一条历史记录
// client_operation_id 的唯一约束由数据库保证
func (r *historyRepository) Create(ctx context.Context, history *domain.History) (*domain.History, error) {
	m := r.toModel(history)
	m.ID = 0
	m.CreatedAt = timex.Now()
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// GetByClientOperationID 根据客户端操作ID查找历史记录，未找到时返回 nil
func (r *historyRepository) GetByClientOperationID(ctx context.Context, clientOperationID string) (*domain.History, error) {
	var m model.History
	err := r.dao.db.WithContext(ctx).
		Where("client_operation_id = ?", clientOperationID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// ListByMap 分页获取地图的变更历史，按时间倒序
func (r *historyRepository) ListByMap(ctx context.Context, mapID string, page, pageSize int) ([]*domain.History, int64, error) {
	q := r.dao.db.WithContext(ctx).
		Model(&model.History{}).
		Where("map_id = ?", mapID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []*model.History
	err := q.Order("id DESC").
		Offset(app.GetPageOffset(page, pageSize)).
		Limit(pageSize).
		Find(&ms).Error
	if err != nil {
		return nil, 0, err
	}

	histories := make([]*domain.History, 0, len(ms))
	for _, m := range ms {
		histories = append(histories, r.toDomain(m))
	}
	return histories, total, nil
}

// ListByEntity 获取单个实体的变更历史，按时间倒序
func (r *historyRepository) ListByEntity(ctx context.Context, entityType domain.HistoryEntityType, entityID string, mapID string) ([]*domain.History, error) {
	var ms []*model.History
	err := r.dao.db.WithContext(ctx).
		Model(&model.History{}).
		Where("entity_type = ? AND entity_id = ? AND map_id = ?", string(entityType), entityID, mapID).
		Order("id DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	histories := make([]*domain.History, 0, len(ms))
	for _, m := range ms {
		histories = append(histories, r.toDomain(m))
	}
	return histories, nil
}

// PruneBefore 删除指定时间之前的历史记录，每个实体保留最近 keepVersions 条
func (r *historyRepository) PruneBefore(ctx context.Context, cutoff time.Time, keepVersions int) (int64, error) {
	// 子查询挑出每个实体要保留的最近 keepVersions 条记录
	keep := r.dao.db.
		Table("history h2").
		Select("h2.id").
		Where("h2.entity_type = history.entity_type AND h2.entity_id = history.entity_id").
		Order("h2.id DESC").
		Limit(keepVersions)

	result := r.dao.db.WithContext(ctx).
		Where("created_at < ?", timex.Time(cutoff)).
		Where("id NOT IN (?)", keep).
		Delete(&model.History{})
	return result.RowsAffected, result.Error
}
