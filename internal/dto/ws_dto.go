package dto

// WebSocketAction WebSocket text message type
// WebSocket 文本消息类型
type WebSocketAction = string

const (
	// Room related
	// 房间相关

	// JoinRoom 加入地图协作房间
	JoinRoom WebSocketAction = "JoinRoom"
	// LeaveRoom 离开地图协作房间
	LeaveRoom WebSocketAction = "LeaveRoom"
	// UserJoined broadcast when a collaborator enters the room
	// UserJoined 协作者进入房间时广播
	UserJoined WebSocketAction = "UserJoined"
	// UserAway broadcast when a collaborator drops into away state
	// UserAway 协作者断线进入离开状态时广播
	UserAway WebSocketAction = "UserAway"
	// UserReturned broadcast when an away collaborator reconnects
	// UserReturned 离开状态的协作者重连时广播
	UserReturned WebSocketAction = "UserReturned"
	// UserDisconnected broadcast exactly once when a collaborator is removed
	// UserDisconnected 协作者被移除时广播，且只广播一次
	UserDisconnected WebSocketAction = "UserDisconnected"
	// AutoRejoin sent to a reconnecting session to restore its room
	// AutoRejoin 发给重连会话用于恢复房间状态
	AutoRejoin WebSocketAction = "AutoRejoin"
	// PresenceList 房间在线列表
	PresenceList WebSocketAction = "PresenceList"

	// Batch replay related
	// 批量回放相关

	// BatchSubmit 提交一批离线操作
	BatchSubmit WebSocketAction = "BatchSubmit"
	// BatchResults 批量操作的逐条结果
	BatchResults WebSocketAction = "BatchResults"

	// Mutation broadcast related
	// 变更广播相关

	// FeatureCreated 要素创建广播
	FeatureCreated WebSocketAction = "FeatureCreated"
	// FeatureUpdated 要素更新广播
	FeatureUpdated WebSocketAction = "FeatureUpdated"
	// FeatureDeleted 要素删除广播
	FeatureDeleted WebSocketAction = "FeatureDeleted"
	// CommentCreated 评论创建广播
	CommentCreated WebSocketAction = "CommentCreated"
	// CommentUpdated 评论更新广播
	CommentUpdated WebSocketAction = "CommentUpdated"
	// CommentDeleted 评论删除广播
	CommentDeleted WebSocketAction = "CommentDeleted"
	// ReplyCreated 回复创建广播
	ReplyCreated WebSocketAction = "ReplyCreated"
	// ReplyUpdated 回复更新广播
	ReplyUpdated WebSocketAction = "ReplyUpdated"
	// ReplyDeleted 回复删除广播
	ReplyDeleted WebSocketAction = "ReplyDeleted"

	// Cursor related
	// 光标相关

	// CursorMove 客户端上报光标位置
	CursorMove WebSocketAction = "CursorMove"
	// CursorMoved 光标位置广播
	CursorMoved WebSocketAction = "CursorMoved"
)

// EntityDeleted 删除广播的载荷，动作类型区分实体种类
type EntityDeleted struct {
	MapID   string `json:"mapId"`
	ID      string `json:"id"`
	Version int64  `json:"version"`
	UID     int64  `json:"uid"`
}
