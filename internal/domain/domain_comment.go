package domain

import "time"

// Comment 要素评论领域模型
// Version 从 1 开始，内容编辑走乐观锁
type Comment struct {
	ID        string
	MapID     string
	FeatureID string
	AuthorUID int64
	Content   string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentApply 评论变更结果
type CommentApply struct {
	Accepted       bool
	CurrentVersion int64
	Comment        *Comment
}
