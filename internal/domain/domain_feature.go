// Package domain 定义领域模型和接口
package domain

import "time"

// FeatureType 定义标注要素类型
type FeatureType string

const (
	FeatureTypeMarker   FeatureType = "marker"
	FeatureTypePolyline FeatureType = "polyline"
	FeatureTypePolygon  FeatureType = "polygon"
)

// Feature 地图标注要素领域模型
// Version 从 1 开始，每次成功变更加 1
type Feature struct {
	ID         string
	MapID      string
	Type       FeatureType
	Geometry   string
	Properties string
	// MinLng/MinLat/MaxLng/MaxLat 要素几何的外包框，写入时由服务层计算
	MinLng    float64
	MinLat    float64
	MaxLng    float64
	MaxLat    float64
	Version   int64
	CreatedBy int64
	UpdatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BoundingBox 经纬度范围查询条件
type BoundingBox struct {
	MinLng float64
	MinLat float64
	MaxLng float64
	MaxLat float64
}

// Intersects 判断两个外包框是否相交
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.MinLng <= o.MaxLng && b.MaxLng >= o.MinLng &&
		b.MinLat <= o.MaxLat && b.MaxLat >= o.MinLat
}

// FeatureApply 要素变更结果
// Accepted 为 false 时表示版本冲突，Feature 携带服务器当前状态
type FeatureApply struct {
	Accepted       bool
	CurrentVersion int64
	Feature        *Feature
}

// IsValidFeatureType 校验要素类型合法性
func IsValidFeatureType(t FeatureType) bool {
	switch t {
	case FeatureTypeMarker, FeatureTypePolyline, FeatureTypePolygon:
		return true
	}
	return false
}
