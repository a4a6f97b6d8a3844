package types

// CreateFamilyRequest 创建家庭组，名称为空由处理器给出提示.
type CreateFamilyRequest struct {
	FamilyName string `json:"familyName" rule:"max=64"`
	CreatorID  uint   `json:"creatorId"`
}

// JoinFamilyRequest 通过邀请码加入家庭组.
type JoinFamilyRequest struct {
	InviteCode string `json:"inviteCode" rule:"max=16"`
	UserID     uint   `json:"userId"`
}
