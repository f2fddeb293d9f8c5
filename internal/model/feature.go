package model

import (
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"
)

// Feature 标注要素表
type Feature struct {
	ID         string     `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	MapID      string     `gorm:"column:map_id;type:varchar(64);index:idx_feature_map;not null" json:"mapId"`
	Type       string     `gorm:"column:type;type:varchar(32);not null" json:"type"`
	Geometry   string     `gorm:"column:geometry;type:text" json:"geometry"`
	Properties string     `gorm:"column:properties;type:text" json:"properties"`
	MinLng     float64    `gorm:"column:min_lng;index:idx_feature_bounds" json:"minLng"`
	MinLat     float64    `gorm:"column:min_lat;index:idx_feature_bounds" json:"minLat"`
	MaxLng     float64    `gorm:"column:max_lng" json:"maxLng"`
	MaxLat     float64    `gorm:"column:max_lat" json:"maxLat"`
	Version    int64      `gorm:"column:version;not null;default:1" json:"version"`
	CreatedBy  int64      `gorm:"column:created_by;index" json:"createdBy"`
	UpdatedBy  int64      `gorm:"column:updated_by" json:"updatedBy"`
	CreatedAt  timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt  timex.Time `gorm:"column:updated_at;index" json:"updatedAt"`
}

func (Feature) TableName() string {
	return "feature"
}
