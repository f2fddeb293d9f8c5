package model

import (
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"
)

// Reply 评论回复表
type Reply struct {
	ID        string     `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	MapID     string     `gorm:"column:map_id;type:varchar(64);index:idx_reply_map;not null" json:"mapId"`
	CommentID string     `gorm:"column:comment_id;type:varchar(64);index:idx_reply_comment;not null" json:"commentId"`
	AuthorUID int64      `gorm:"column:author_uid;index;not null" json:"authorUid"`
	Content   string     `gorm:"column:content;type:text" json:"content"`
	Version   int64      `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Reply) TableName() string {
	return "reply"
}
