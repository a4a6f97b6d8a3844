package service

import (
	"context"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/yeisme/xianshiji/pkg/configs"
	ctxPkg "github.com/yeisme/xianshiji/pkg/context"
	"github.com/yeisme/xianshiji/pkg/internal/dao"
	"github.com/yeisme/xianshiji/pkg/internal/model"
	"github.com/yeisme/xianshiji/pkg/log"
	"github.com/yeisme/xianshiji/pkg/queue"
)

const inviteCodeAttempts = 3

// FamilyService 家庭组：创建、邀请码加入与成员查询.
type FamilyService struct {
	db      *gorm.DB
	sink    eventSink
	now     func() time.Time
	newCode func() string
	logger  zerolog.Logger
}

// NewFamilyServiceWith 直接注入 gorm 连接.
func NewFamilyServiceWith(db *gorm.DB) *FamilyService {
	f := &FamilyService{db: db, now: time.Now, newCode: newInviteCode, logger: log.With("family")}
	f.sink.logger = f.logger

	return f
}

// NewFamilyService 从 context 中的存储管理器构造.
func NewFamilyService(c context.Context) *FamilyService {
	f := NewFamilyServiceWith(ctxPkg.GetDBClient(c).GetDB())

	_, sink := depsFromContext(c)
	f.sink.pub, f.sink.events = sink.pub, sink.events

	return f
}

// WithInviteCodes 替换邀请码生成函数.
func (f *FamilyService) WithInviteCodes(gen func() string) *FamilyService {
	f.newCode = gen
	return f
}

// WithPublisher 启用家庭组事件.
func (f *FamilyService) WithPublisher(pub message.Publisher, events configs.EventsConfig) *FamilyService {
	f.sink.pub, f.sink.events = pub, events
	return f
}

// newInviteCode UUID 前 8 位转大写.
func newInviteCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// Create 创建家庭组，创建者以 OWNER 身份加入.
func (f *FamilyService) Create(ctx context.Context, name string, creatorID uint) (*model.Family, error) {
	var family *model.Family

	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := dao.NewFamilyDAO(tx)

		code, err := f.uniqueCode(ctx, d)
		if err != nil {
			return err
		}

		now := f.now()
		family = &model.Family{Name: name, InviteCode: code, CreatedBy: creatorID, CreatedAt: now}

		if err := d.Create(ctx, family); err != nil {
			return err
		}

		return d.AddMember(ctx, &model.UserFamily{
			UserID: creatorID, FamilyID: family.ID, Role: model.RoleOwner, JoinedAt: now,
		})
	})
	if err != nil {
		return nil, wrap("create family", err)
	}

	emit(ctx, f.sink, f.sink.events.Family, queue.TopicFamilyJoined, queue.FamilyJoinedPayload{
		FamilyID: family.ID, UserID: creatorID, Role: string(model.RoleOwner),
	})

	return family, nil
}

func (f *FamilyService) uniqueCode(ctx context.Context, d *dao.FamilyDAO) (string, error) {
	for range inviteCodeAttempts {
		code := f.newCode()

		exists, err := d.InviteCodeExists(ctx, code)
		if err != nil {
			return "", err
		}

		if !exists {
			return code, nil
		}
	}

	return "", ErrInviteCodeExhausted
}

// Join 通过邀请码加入家庭组，邀请码无效或已是成员时返回 false.
func (f *FamilyService) Join(ctx context.Context, inviteCode string, userID uint) (bool, error) {
	d := dao.NewFamilyDAO(f.db)

	family, err := d.FindByInviteCode(ctx, strings.ToUpper(strings.TrimSpace(inviteCode)))
	if err != nil {
		return false, wrap("find family", err)
	}

	if family == nil {
		return false, nil
	}

	member, err := d.IsMember(ctx, userID, family.ID)
	if err != nil {
		return false, wrap("check membership", err)
	}

	if member {
		return false, nil
	}

	if err := d.AddMember(ctx, &model.UserFamily{
		UserID: userID, FamilyID: family.ID, Role: model.RoleMember, JoinedAt: f.now(),
	}); err != nil {
		return false, wrap("join family", err)
	}

	emit(ctx, f.sink, f.sink.events.Family, queue.TopicFamilyJoined, queue.FamilyJoinedPayload{
		FamilyID: family.ID, UserID: userID, Role: string(model.RoleMember),
	})

	return true, nil
}

// ListByUser 用户所在的家庭组.
func (f *FamilyService) ListByUser(ctx context.Context, userID uint) ([]model.Family, error) {
	list, err := dao.NewFamilyDAO(f.db).ListByUser(ctx, userID)
	return list, wrap("list families", err)
}

// Members 家庭组成员.
func (f *FamilyService) Members(ctx context.Context, familyID uint) ([]model.UserFamily, error) {
	list, err := dao.NewFamilyDAO(f.db).Members(ctx, familyID)
	return list, wrap("list family members", err)
}
