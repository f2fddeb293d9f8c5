package model

import (
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"
)

// Map 地图表，一张地图对应一个协作房间
type Map struct {
	ID          string     `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	Title       string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	OwnerUID    int64      `gorm:"column:owner_uid;index;not null" json:"ownerUid"`
	CreatedAt   timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Map) TableName() string {
	return "map"
}
