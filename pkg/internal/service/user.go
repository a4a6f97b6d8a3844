package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeisme/xianshiji/pkg/configs"
	ctxPkg "github.com/yeisme/xianshiji/pkg/context"
	"github.com/yeisme/xianshiji/pkg/internal/dao"
	"github.com/yeisme/xianshiji/pkg/internal/model"
	"github.com/yeisme/xianshiji/pkg/log"
	"github.com/yeisme/xianshiji/pkg/token"
)

// UserService 用户注册、登录与资料维护.
type UserService struct {
	users  *dao.UserDAO
	tokens *token.Issuer
	cost   int
	now    func() time.Time
	logger zerolog.Logger
}

// NewUserServiceWith 直接注入依赖，tokens 为 nil 时登录不签发令牌.
func NewUserServiceWith(db *gorm.DB, tokens *token.Issuer, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &UserService{
		users:  dao.NewUserDAO(db),
		tokens: tokens,
		cost:   bcryptCost,
		now:    time.Now,
		logger: log.With("user"),
	}
}

// NewUserService 从 context 中的存储管理器构造.
func NewUserService(c context.Context) *UserService {
	auth := configs.GetConfig().Auth

	return NewUserServiceWith(
		ctxPkg.GetDBClient(c).GetDB(),
		token.NewIssuer(auth.JWTSecret, auth.Issuer, auth.TokenTTL),
		auth.BcryptCost,
	)
}

// Tokens 返回令牌签发器.
func (u *UserService) Tokens() *token.Issuer {
	return u.tokens
}

func normalize(s *string) *string {
	if s == nil {
		return nil
	}

	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}

	return &v
}

// Register 注册新用户，密码以 bcrypt 哈希保存.
func (u *UserService) Register(ctx context.Context, phone, email *string, password, nickname string) (*model.User, error) {
	phone, email = normalize(phone), normalize(email)
	if phone == nil && email == nil {
		return nil, ErrAccountRequired
	}

	exists, err := u.users.ExistsAccount(ctx, phone, email, 0)
	if err != nil {
		return nil, wrap("check account", err)
	}

	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return nil, wrap("hash password", err)
	}

	now := u.now()
	user := &model.User{
		Phone:        phone,
		Email:        email,
		PasswordHash: string(hash),
		Nickname:     nickname,
		Status:       model.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}

		return nil, wrap("create user", err)
	}

	u.logger.Info().Uint("user_id", user.ID).Msg("user registered")

	return user, nil
}

// Login 校验账号密码，成功时签发访问令牌.
func (u *UserService) Login(ctx context.Context, account, password string) (*model.User, string, time.Time, error) {
	user, err := u.users.FindByAccount(ctx, strings.TrimSpace(account))
	if err != nil {
		return nil, "", time.Time{}, wrap("find user", err)
	}

	if user == nil || user.Status != model.UserStatusActive ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", time.Time{}, ErrBadCredentials
	}

	user.UpdatedAt = u.now()
	if _, err := u.users.UpdateFields(ctx, user.ID, map[string]any{"updated_at": user.UpdatedAt}); err != nil {
		return nil, "", time.Time{}, wrap("touch user", err)
	}

	if u.tokens == nil {
		return user, "", time.Time{}, nil
	}

	signed, exp, err := u.tokens.Generate(user.ID)
	if err != nil {
		return nil, "", time.Time{}, wrap("sign token", err)
	}

	return user, signed, exp, nil
}

// UserUpdate 资料修改，nil 字段保持不变.
type UserUpdate struct {
	Nickname    string
	Phone       *string
	Email       *string
	OldPassword string
	NewPassword string
}

// Update 修改资料；修改密码必须提供正确的旧密码.
func (u *UserService) Update(ctx context.Context, userID uint, in UserUpdate) (*model.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrap("find user", err)
	}

	if user == nil {
		return nil, ErrUserNotFound
	}

	fields := map[string]any{}

	if strings.TrimSpace(in.NewPassword) != "" {
		if in.OldPassword == "" ||
			bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.OldPassword)) != nil {
			return nil, ErrWrongPassword
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), u.cost)
		if err != nil {
			return nil, wrap("hash password", err)
		}

		user.PasswordHash = string(hash)
		fields["password"] = user.PasswordHash
	}

	phone, email := normalize(in.Phone), normalize(in.Email)
	if phone != nil || email != nil {
		taken, err := u.users.ExistsAccount(ctx, phone, email, userID)
		if err != nil {
			return nil, wrap("check account", err)
		}

		if taken {
			return nil, ErrUserExists
		}
	}

	if phone != nil {
		user.Phone = phone
		fields["phone"] = *phone
	}

	if email != nil {
		user.Email = email
		fields["email"] = *email
	}

	if nick := strings.TrimSpace(in.Nickname); nick != "" {
		user.Nickname = nick
		fields["nickname"] = nick
	}

	user.UpdatedAt = u.now()
	fields["updated_at"] = user.UpdatedAt

	if _, err := u.users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, wrap("update user", err)
	}

	return user, nil
}

// UpdateAvatar 修改头像，用户不存在时忽略.
func (u *UserService) UpdateAvatar(ctx context.Context, userID uint, avatarURL string) error {
	_, err := u.users.UpdateFields(ctx, userID, map[string]any{
		"avatar_url": avatarURL,
		"updated_at": u.now(),
	})

	return wrap("update avatar", err)
}

// Get 按 ID 查询，不存在时返回 nil.
func (u *UserService) Get(ctx context.Context, userID uint) (*model.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	return user, wrap("get user", err)
}

// List 全部用户.
func (u *UserService) List(ctx context.Context) ([]model.User, error) {
	list, err := u.users.List(ctx)
	return list, wrap("list users", err)
}
