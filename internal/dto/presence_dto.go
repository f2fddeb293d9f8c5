package dto

import "github.com/haierkeys/map-annotation-sync-service/pkg/geo"

// JoinRoomRequest 加入地图协作房间的请求参数
// SessionID 不为空时表示重连，服务端据此恢复之前的会话
type JoinRoomRequest struct {
	MapID     string `json:"mapId" binding:"required"`
	SessionID string `json:"sessionId"`
}

// LeaveRoomRequest 离开房间的请求参数
type LeaveRoomRequest struct {
	MapID string `json:"mapId" binding:"required"`
}

// PresenceMember 房间内单个协作者的在线状态
type PresenceMember struct {
	UID      int64  `json:"uid"`
	Nickname string `json:"nickname"`
	// Status active 或 away
	Status string `json:"status"`
	// LastActivity 毫秒时间戳
	LastActivity int64 `json:"lastActivity"`
}

// PresenceEvent 房间在线状态变化广播
type PresenceEvent struct {
	MapID    string `json:"mapId"`
	UID      int64  `json:"uid"`
	Nickname string `json:"nickname"`
	Status   string `json:"status,omitempty"`
}

// RoomSnapshot 加入房间后下发的初始状态
type RoomSnapshot struct {
	MapID     string           `json:"mapId"`
	SessionID string           `json:"sessionId"`
	Members   []PresenceMember `json:"members"`
	// Rejoined 为 true 表示本次是重连恢复
	Rejoined bool `json:"rejoined"`
	// Since 重连前的最后活动时间（毫秒），客户端用它增量拉取变更
	Since int64 `json:"since,omitempty"`
}

// CursorMoveRequest 客户端上报光标位置
type CursorMoveRequest struct {
	MapID    string    `json:"mapId" binding:"required"`
	Position geo.Point `json:"position" binding:"required"`
}

// CursorEvent 光标位置广播
type CursorEvent struct {
	MapID    string    `json:"mapId"`
	UID      int64     `json:"uid"`
	Nickname string    `json:"nickname"`
	Position geo.Point `json:"position"`
	// Timestamp 毫秒时间戳
	Timestamp int64 `json:"timestamp"`
}
