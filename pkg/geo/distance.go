// Package geo provides small geographic helpers used by the cursor throttler
// Package geo 提供光标节流器使用的地理计算小工具
package geo

import (
	"math"
)

// EarthRadiusMeters 地球平均半径（米）
const EarthRadiusMeters = 6371000.0

// Point 经纬度坐标点
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// HaversineDistance returns the great-circle distance in meters between two points
// HaversineDistance 返回两点之间的大圆距离（米）
func HaversineDistance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}
