package dto

import (
	"github.com/haierkeys/map-annotation-sync-service/internal/domain"
	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"
)

// User 用户响应结构
type User struct {
	UID       int64      `json:"uid"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Nickname  string     `json:"nickname"`
	Avatar    string     `json:"avatar"`
	Token     string     `json:"token,omitempty"`
	CreatedAt timex.Time `json:"createdAt"`
}

// UserFromDomain 将领域模型转换为响应结构
func UserFromDomain(u *domain.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		UID:       u.UID,
		Email:     u.Email,
		Username:  u.Username,
		Nickname:  u.Nickname,
		Avatar:    u.Avatar,
		CreatedAt: timex.Time(u.CreatedAt),
	}
}

// UserRegisterRequest 用户注册请求参数
type UserRegisterRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Nickname string `json:"nickname" form:"nickname" binding:"required,max=64"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=64"`
}

// UserLoginRequest 用户登录请求参数
type UserLoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}
