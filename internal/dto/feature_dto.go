package dto

import (
	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"
)

// Feature 要素响应结构
type Feature struct {
	ID         string     `json:"id"`
	MapID      string     `json:"mapId"`
	Type       string     `json:"type"`
	Geometry   string     `json:"geometry"`
	Properties string     `json:"properties"`
	Version    int64      `json:"version"`
	CreatedBy  int64      `json:"createdBy"`
	UpdatedBy  int64      `json:"updatedBy"`
	CreatedAt  timex.Time `json:"createdAt"`
	UpdatedAt  timex.Time `json:"updatedAt"`
}

// FeatureFromDomain 将领域模型转换为响应结构
func FeatureFromDomain(f *domain.Feature) *Feature {
	if f == nil {
		return nil
	}
	return &Feature{
		ID:         f.ID,
		MapID:      f.MapID,
		Type:       string(f.Type),
		Geometry:   f.Geometry,
		Properties: f.Properties,
		Version:    f.Version,
		CreatedBy:  f.CreatedBy,
		UpdatedBy:  f.UpdatedBy,
		CreatedAt:  timex.Time(f.CreatedAt),
		UpdatedAt:  timex.Time(f.UpdatedAt),
	}
}

// FeatureCreateRequest 创建要素的请求参数
type FeatureCreateRequest struct {
	MapID       string `json:"mapId" form:"mapId" binding:"required"`
	FeatureID   string `json:"featureId" form:"featureId"`
	OperationID string `json:"operationId" form:"operationId" binding:"required"`
	Type        string `json:"type" form:"type" binding:"required"`
	Geometry    string `json:"geometry" form:"geometry" binding:"required"`
	Properties  string `json:"properties" form:"properties"`
}

// FeatureUpdateRequest 更新要素的请求参数
// BaseVersion 为客户端所见版本，服务端据此做乐观锁校验
type FeatureUpdateRequest struct {
	MapID       string `json:"mapId" form:"mapId" binding:"required"`
	FeatureID   string `json:"featureId" form:"featureId" binding:"required"`
	OperationID string `json:"operationId" form:"operationId" binding:"required"`
	BaseVersion int64  `json:"baseVersion" form:"baseVersion" binding:"required"`
	Type        string `json:"type" form:"type"`
	Geometry    string `json:"geometry" form:"geometry"`
	Properties  string `json:"properties" form:"properties"`
}

// FeatureDeleteRequest 删除要素的请求参数
type FeatureDeleteRequest struct {
	MapID       string `json:"mapId" form:"mapId" binding:"required"`
	FeatureID   string `json:"featureId" form:"featureId" binding:"required"`
	OperationID string `json:"operationId" form:"operationId" binding:"required"`
	BaseVersion int64  `json:"baseVersion" form:"baseVersion" binding:"required"`
}

// FeatureListRequest 获取地图要素列表的请求参数
// BBox 格式为 "minLng,minLat,maxLng,maxLat"，为空时返回全部
type FeatureListRequest struct {
	MapID string `json:"mapId" form:"mapId" binding:"required"`
	BBox  string `json:"bbox" form:"bbox" binding:"omitempty,bbox"`
	// Since 毫秒时间戳，不为 0 时只返回此后变更过的要素
	Since int64 `json:"since" form:"since"`
}
