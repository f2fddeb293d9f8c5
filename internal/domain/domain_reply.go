package domain

import "time"

// Reply 评论回复领域模型
type Reply struct {
	ID        string
	MapID     string
	CommentID string
	AuthorUID int64
	Content   string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReplyApply 回复变更结果
type ReplyApply struct {
	Accepted       bool
	CurrentVersion int64
	Reply          *Reply
}
