package model

import (
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"
)

// Comment 要素评论表
type Comment struct {
	ID        string     `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	MapID     string     `gorm:"column:map_id;type:varchar(64);index:idx_comment_map;not null" json:"mapId"`
	FeatureID string     `gorm:"column:feature_id;type:varchar(64);index:idx_comment_feature;not null" json:"featureId"`
	AuthorUID int64      `gorm:"column:author_uid;index;not null" json:"authorUid"`
	Content   string     `gorm:"column:content;type:text" json:"content"`
	Version   int64      `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Comment) TableName() string {
	return "comment"
}
