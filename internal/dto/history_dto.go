package dto

import (
	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"
)

// History 变更历史响应结构
type History struct {
	ID                int64      `json:"id"`
	MapID             string     `json:"mapId"`
	ClientOperationID string     `json:"clientOperationId"`
	EntityType        string     `json:"entityType"`
	EntityID          string     `json:"entityId"`
	Action            string     `json:"action"`
	UID               int64      `json:"uid"`
	Version           int64      `json:"version"`
	Snapshot          string     `json:"snapshot"`
	ContentDiff       string     `json:"contentDiff,omitempty"`
	CreatedAt         timex.Time `json:"createdAt"`
}

// HistoryFromDomain 将领域模型转换为响应结构
func HistoryFromDomain(h *domain.History) *History {
	if h == nil {
		return nil
	}
	return &History{
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

// HistoryListRequest 获取地图变更历史的请求参数
type HistoryListRequest struct {
	MapID string `json:"mapId" form:"mapId" binding:"required"`
}

// HistoryEntityRequest 获取单个实体变更历史的请求参数
type HistoryEntityRequest struct {
	MapID      string `json:"mapId" form:"mapId" binding:"required"`
	EntityType string `json:"entityType" form:"entityType" binding:"required,oneof=feature comment reply"`
	EntityID   string `json:"entityId" form:"entityId" binding:"required"`
}
