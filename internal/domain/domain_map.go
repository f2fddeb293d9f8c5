package domain

import "time"

// MapInfo 地图领域模型，一张地图对应一个协作房间
type MapInfo struct {
	ID          string
	Title       string
	Description string
	OwnerUID    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
