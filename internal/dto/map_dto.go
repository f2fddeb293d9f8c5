package dto

import (
	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"
)

// Map 地图响应结构
type Map struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	OwnerUID    int64      `json:"ownerUid"`
	CreatedAt   timex.Time `json:"createdAt"`
	UpdatedAt   timex.Time `json:"updatedAt"`
}

// MapFromDomain 将领域模型转换为响应结构
func MapFromDomain(m *domain.MapInfo) *Map {
	if m == nil {
		return nil
	}
	return &Map{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		OwnerUID:    m.OwnerUID,
		CreatedAt:   timex.Time(m.CreatedAt),
		UpdatedAt:   timex.Time(m.UpdatedAt),
	}
}

// MapCreateRequest 创建地图的请求参数
type MapCreateRequest struct {
	MapID       string `json:"mapId" form:"mapId"`
	Title       string `json:"title" form:"title" binding:"required,max=255"`
	Description string `json:"description" form:"description" binding:"max=4096"`
}

// MapUpdateRequest 更新地图的请求参数
type MapUpdateRequest struct {
	MapID       string `json:"mapId" form:"mapId" binding:"required"`
	Title       string `json:"title" form:"title" binding:"required,max=255"`
	Description string `json:"description" form:"description" binding:"max=4096"`
}

// MapGetRequest 获取单张地图的请求参数
type MapGetRequest struct {
	MapID string `json:"mapId" form:"mapId" binding:"required"`
}
