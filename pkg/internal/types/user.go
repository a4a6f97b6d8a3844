package types

import (
	"time"

	"github.com/yeisme/xianshiji/pkg/internal/model"
)

// RegisterRequest 注册，手机号与邮箱至少填写一个.
type RegisterRequest struct {
	Phone    *string `json:"phone"    rule:"omitempty,max=20"`
	Email    *string `json:"email"    rule:"omitempty,email"`
	Password string  `json:"password" rule:"required,min=6,max=64"`
	Nickname string  `json:"nickname" rule:"required,max=64"`
}

// LoginRequest 登录，account 可为手机号或邮箱.
type LoginRequest struct {
	Account  string `json:"account"  rule:"required"`
	Password string `json:"password" rule:"required"`
}

// LoginResponse 登录结果.
type LoginResponse struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token,omitempty"`
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
}

// UpdateUserRequest 修改资料，修改密码时需提供旧密码.
type UpdateUserRequest struct {
	Nickname    string  `json:"nickname"    rule:"max=64"`
	Phone       *string `json:"phone"       rule:"omitempty,max=20"`
	Email       *string `json:"email"       rule:"omitempty,email"`
	OldPassword string  `json:"oldPassword"`
	NewPassword string  `json:"newPassword" rule:"omitempty,min=6,max=64"`
}

// ImageUploadResponse 图片上传结果.
type ImageUploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}
