// Package domain 定义领域模型和接口
package domain

import (
	"context"
	"time"
)

// FeatureRepository 标注要素仓储接口
type FeatureRepository interface {
	// GetByID 根据ID获取要素
	GetByID(ctx context.Context, id string, mapID string) (*Feature, error)

	// Create 创建要素，初始版本为 1
	Create(ctx context.Context, feature *Feature) (*Feature, error)

	// UpdateIfVersion 带版本条件更新要素
	// 只有当数据库当前版本等于 expectedVersion 时才更新并将版本加 1
	// 返回 false 表示版本不匹配，未产生任何写入
	UpdateIfVersion(ctx context.Context, feature *Feature, expectedVersion int64) (bool, error)

	// DeleteIfVersion 带版本条件删除要素
	DeleteIfVersion(ctx context.Context, id string, mapID string, expectedVersion int64) (bool, error)

	// ListByMap 获取地图下的要素，bbox 不为 nil 时按外包框过滤
	ListByMap(ctx context.Context, mapID string, bbox *BoundingBox) ([]*Feature, error)

	// ListChangedSince 获取指定时间之后变更过的要素
	ListChangedSince(ctx context.Context, mapID string, since time.Time) ([]*Feature, error)

	// CountByMap 获取地图下的要素数量
	CountByMap(ctx context.Context, mapID string) (int64, error)
}

// CommentRepository 评论仓储接口
type CommentRepository interface {
	// GetByID 根据ID获取评论
	GetByID(ctx context.Context, id string, mapID string) (*Comment, error)

	// Create 创建评论，初始版本为 1
	Create(ctx context.Context, comment *Comment) (*Comment, error)

	// UpdateIfVersion 带版本条件更新评论内容
	UpdateIfVersion(ctx context.Context, comment *Comment, expectedVersion int64) (bool, error)

	// DeleteIfVersion 带版本条件删除评论
	DeleteIfVersion(ctx context.Context, id string, mapID string, expectedVersion int64) (bool, error)

	// DeleteByFeature 删除要素时级联删除其全部评论，返回删除条数
	DeleteByFeature(ctx context.Context, featureID string, mapID string) (int64, error)

	// ListByFeature 分页获取要素下的评论
	ListByFeature(ctx context.Context, featureID string, mapID string, page, pageSize int) ([]*Comment, int64, error)
}

// ReplyRepository 回复仓储接口
type ReplyRepository interface {
	// GetByID 根据ID获取回复
	GetByID(ctx context.Context, id string, mapID string) (*Reply, error)

	// Create 创建回复，初始版本为 1
	Create(ctx context.Context, reply *Reply) (*Reply, error)

	// UpdateIfVersion 带版本条件更新回复内容
	UpdateIfVersion(ctx context.Context, reply *Reply, expectedVersion int64) (bool, error)

	// DeleteIfVersion 带版本条件删除回复
	DeleteIfVersion(ctx context.Context, id string, mapID string, expectedVersion int64) (bool, error)

	// DeleteByComment 删除评论时级联删除其全部回复，返回删除条数
	DeleteByComment(ctx context.Context, commentID string, mapID string) (int64, error)

	// ListByComment 获取评论下的回复
	ListByComment(ctx context.Context, commentID string, mapID string) ([]*Reply, error)
}

// MapRepository 地图仓储接口
type MapRepository interface {
	// GetByID 根据ID获取地图
	GetByID(ctx context.Context, id string) (*MapInfo, error)

	// Create 创建地图
	Create(ctx context.Context, m *MapInfo) (*MapInfo, error)

	// Update 更新地图标题与描述
	Update(ctx context.Context, m *MapInfo) error

	// ListByOwner 获取用户创建的地图列表
	ListByOwner(ctx context.Context, ownerUID int64) ([]*MapInfo, error)

	// Delete 删除地图
	Delete(ctx context.Context, id string, ownerUID int64) error
}

// HistoryRepository 变更历史仓储接口，兼作幂等账本
type HistoryRepository interface {
	// Create 追加一条历史记录
	// client_operation_id 带唯一约束，与业务写入同一事务提交
	Create(ctx context.Context, history *History) (*History, error)

	// GetByClientOperationID 根据客户端操作ID查找历史记录
	// 未找到时返回 nil，不视为错误
	GetByClientOperationID(ctx context.Context, clientOperationID string) (*History, error)

	// ListByMap 分页获取地图的变更历史，按时间倒序
	ListByMap(ctx context.Context, mapID string, page, pageSize int) ([]*History, int64, error)

	// ListByEntity 获取单个实体的变更历史，按时间倒序
	ListByEntity(ctx context.Context, entityType HistoryEntityType, entityID string, mapID string) ([]*History, error)

	// PruneBefore 删除指定时间之前的历史记录，每个实体保留最近 keepVersions 条
	PruneBefore(ctx context.Context, cutoff time.Time, keepVersions int) (int64, error)
}

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUID 根据UID获取用户
	GetByUID(ctx context.Context, uid int64) (*User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)

	// UpdatePassword 更新用户密码
	UpdatePassword(ctx context.Context, password, salt string, uid int64) error
}

// Repositories 事务内可用的仓储集合
type Repositories struct {
	Features  FeatureRepository
	Comments  CommentRepository
	Replies   ReplyRepository
	Maps      MapRepository
	Histories HistoryRepository
	Users     UserRepository
}

// UnitOfWork 事务边界
// fn 返回错误时整个事务回滚，变更与历史记录要么同时落库要么都不落
type UnitOfWork interface {
	Transaction(ctx context.Context, fn func(r *Repositories) error) error
}
