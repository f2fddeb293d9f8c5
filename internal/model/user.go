package model

import (
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"
)

// User 用户表
type User struct {
	UID       int64      `gorm:"column:uid;primaryKey;autoIncrement" json:"uid"`
	Email     string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Username  string     `gorm:"column:username;type:varchar(64)" json:"username"`
	Nickname  string     `gorm:"column:nickname;type:varchar(64)" json:"nickname"`
	Password  string     `gorm:"column:password;type:varchar(255)" json:"-"`
	Salt      string     `gorm:"column:salt;type:varchar(64)" json:"-"`
	Avatar    string     `gorm:"column:avatar;type:varchar(255)" json:"avatar"`
	IsDeleted bool       `gorm:"column:is_deleted;default:false" json:"-"`
	CreatedAt timex.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string {
	return "user"
}
