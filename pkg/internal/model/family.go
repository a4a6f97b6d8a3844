package model

import "time"

// FamilyRole 家庭成员角色.
type FamilyRole string

const (
	RoleOwner  FamilyRole = "OWNER"
	RoleMember FamilyRole = "MEMBER"
)

// Family 家庭组.
type Family struct {
	ID         uint      `gorm:"primaryKey"                   json:"id"`
	Name       string    `gorm:"size:64;not null"             json:"name"`
	InviteCode string    `gorm:"size:16;not null;uniqueIndex" json:"inviteCode"`
	CreatedBy  uint      `gorm:"not null;index"               json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName 表名.
func (Family) TableName() string { return "families" }

// UserFamily 用户与家庭组的成员关系.
type UserFamily struct {
	ID       uint       `gorm:"primaryKey"                               json:"id"`
	UserID   uint       `gorm:"not null;uniqueIndex:uk_user_family"      json:"userId"`
	FamilyID uint       `gorm:"not null;uniqueIndex:uk_user_family;index" json:"familyId"`
	Role     FamilyRole `gorm:"size:16;not null"                         json:"role"`
	JoinedAt time.Time  `json:"joinedAt"`
}

// TableName 表名.
func (UserFamily) TableName() string { return "user_families" }
