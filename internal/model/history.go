package model

import (
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"
)

// History 变更历史表，client_operation_id 唯一约束兼作幂等账本
type History struct {
	ID                int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	MapID             string     `gorm:"column:map_id;type:varchar(64);index:idx_history_map;not null" json:"mapId"`
	ClientOperationID string     `gorm:"column:client_operation_id;type:varchar(128);uniqueIndex:udx_history_client_op;not null" json:"clientOperationId"`
	EntityType        string     `gorm:"column:entity_type;type:varchar(32);index:idx_history_entity;not null" json:"entityType"`
	EntityID          string     `gorm:"column:entity_id;type:varchar(64);index:idx_history_entity;not null" json:"entityId"`
	Action            string     `gorm:"column:action;type:varchar(32);not null" json:"action"`
	UID               int64      `gorm:"column:uid;index;not null" json:"uid"`
	Version           int64      `gorm:"column:version;not null" json:"version"`
	Snapshot          string     `gorm:"column:snapshot;type:text" json:"snapshot"`
	ContentDiff       string     `gorm:"column:content_diff;type:text" json:"contentDiff"`
	CreatedAt         timex.Time `gorm:"column:created_at;index" json:"createdAt"`
}

func (History) TableName() string {
	return "history"
}
