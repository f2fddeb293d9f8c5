package service

import (
	"encoding/json"
	"fmt"

	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
)

// geoJSONGeometry GeoJSON 几何对象的最小解析结构
type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// computeBounds 解析 GeoJSON 几何并计算外包框
// 支持 Point / LineString / Polygon 及其 Multi 形式
func computeBounds(geometry string) (domain.BoundingBox, error) {
	var g geoJSONGeometry
	if err := json.Unmarshal([]byte(geometry), &g); err != nil {
		return domain.BoundingBox{}, fmt.Errorf("invalid geometry: %w", err)
	}
	if g.Type == "" || len(g.Coordinates) == 0 {
		return domain.BoundingBox{}, fmt.Errorf("geometry missing type or coordinates")
	}

	var raw interface{}
	if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
		return domain.BoundingBox{}, fmt.Errorf("invalid coordinates: %w", err)
	}

	bounds := domain.BoundingBox{MinLng: 181, MinLat: 91, MaxLng: -181, MaxLat: -91}
	count := 0
	if err := collectPositions(raw, &bounds, &count); err != nil {
		return domain.BoundingBox{}, err
	}
	if count == 0 {
		return domain.BoundingBox{}, fmt.Errorf("geometry has no positions")
	}
	return bounds, nil
}

// collectPositions 递归遍历坐标嵌套数组，累积外包框
func collectPositions(node interface{}, bounds *domain.BoundingBox, count *int) error {
	arr, ok := node.([]interface{})
	if !ok || len(arr) == 0 {
		return fmt.Errorf("malformed coordinates")
	}

	// 叶子节点是 [lng, lat] 数值对
	if lng, isNum := arr[0].(float64); isNum {
		if len(arr) < 2 {
			return fmt.Errorf("position needs lng and lat")
		}
		lat, isLat := arr[1].(float64)
		if !isLat {
			return fmt.Errorf("position needs lng and lat")
		}
		if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
			return fmt.Errorf("position out of range: %v,%v", lng, lat)
		}
		if lng < bounds.MinLng {
			bounds.MinLng = lng
		}
		if lng > bounds.MaxLng {
			bounds.MaxLng = lng
		}
		if lat < bounds.MinLat {
			bounds.MinLat = lat
		}
		if lat > bounds.MaxLat {
			bounds.MaxLat = lat
		}
		*count++
		return nil
	}

	for _, child := range arr {
		if err := collectPositions(child, bounds, count); err != nil {
			return err
		}
	}
	return nil
}
