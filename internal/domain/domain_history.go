package domain

import "time"

// HistoryEntityType 历史记录实体类型
type HistoryEntityType string

const (
	HistoryEntityFeature HistoryEntityType = "feature"
	HistoryEntityComment HistoryEntityType = "comment"
	HistoryEntityReply   HistoryEntityType = "reply"
)

// HistoryAction 历史记录动作类型
type HistoryAction string

const (
	HistoryActionCreate HistoryAction = "create"
	HistoryActionUpdate HistoryAction = "update"
	HistoryActionDelete HistoryAction = "delete"
)

// History 变更历史领域模型，兼作幂等账本
// ClientOperationID 全局唯一，同一操作重放时据此短路
type History struct {
	ID                int64
	MapID             string
	ClientOperationID string
	EntityType        HistoryEntityType
	EntityID          string
	Action            HistoryAction
	UID               int64
	// Version 本次变更后实体的版本号
	Version int64
	// Snapshot 变更后实体的 JSON 快照
	Snapshot string
	// ContentDiff 文本内容的补丁，仅评论与回复编辑时填充
	ContentDiff string
	CreatedAt   time.Time
}
