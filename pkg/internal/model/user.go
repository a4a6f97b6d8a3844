package model

import "time"

// 用户状态.
const (
	UserStatusDisabled int8 = 0
	UserStatusActive   int8 = 1
)

// User 用户账号，手机号与邮箱至少提供一个.
type User struct {
	ID           uint      `gorm:"primaryKey"          json:"id"`
	Phone        *string   `gorm:"size:20;uniqueIndex" json:"phone,omitempty"`
	Email        *string   `gorm:"size:128;uniqueIndex" json:"email,omitempty"`
	PasswordHash string    `gorm:"column:password;size:100;not null" json:"-"`
	Nickname     string    `gorm:"size:64;not null"    json:"nickname"`
	AvatarURL    string    `gorm:"size:512"            json:"avatarUrl"`
	Status       int8      `gorm:"not null;default:1"  json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName 表名.
func (User) TableName() string { return "users" }
