package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/model"
	"github.com/yeisme/xianshiji/pkg/internal/service"
	"github.com/yeisme/xianshiji/pkg/queue"
)

var inviteCodePattern = regexp.MustCompile(`^[0-9A-Z]{8}$`)

func TestFamilyCreateAndJoin(t *testing.T) {
	svc := service.NewFamilyServiceWith(newTestDB(t))
	ctx := context.Background()

	family, err := svc.Create(ctx, "张家", 1)
	if err != nil {
		t.Fatal(err)
	}

	if !inviteCodePattern.MatchString(family.InviteCode) {
		t.Errorf("invite code %q does not match %s", family.InviteCode, inviteCodePattern)
	}

	members, err := svc.Members(ctx, family.ID)
	if err != nil || len(members) != 1 || members[0].Role != model.RoleOwner || members[0].UserID != 1 {
		t.Fatalf("Members() = %+v, %v", members, err)
	}

	joined, err := svc.Join(ctx, family.InviteCode, 2)
	if err != nil || !joined {
		t.Fatalf("Join() = %v, %v", joined, err)
	}

	if again, _ := svc.Join(ctx, family.InviteCode, 2); again {
		t.Error("joining twice succeeded")
	}

	if unknown, err := svc.Join(ctx, "ZZZZZZZZ", 3); unknown || err != nil {
		t.Errorf("Join(unknown code) = %v, %v", unknown, err)
	}

	families, err := svc.ListByUser(ctx, 2)
	if err != nil || len(families) != 1 || families[0].ID != family.ID {
		t.Errorf("ListByUser(2) = %+v, %v", families, err)
	}
}

func TestFamilyInviteCodeRetries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	codes := []string{"AAAAAAAA", "AAAAAAAA", "BBBBBBBB"}
	next := func() string {
		c := codes[0]
		codes = codes[1:]

		return c
	}

	ps := newPubSub(t)
	svc := service.NewFamilyServiceWith(db).
		WithInviteCodes(next).
		WithPublisher(ps, configs.EventsConfig{Enabled: true, Family: true})

	first, err := svc.Create(ctx, "一号", 1)
	if err != nil || first.InviteCode != "AAAAAAAA" {
		t.Fatalf("first Create() = %+v, %v", first, err)
	}

	second, err := svc.Create(ctx, "二号", 2)
	if err != nil || second.InviteCode != "BBBBBBBB" {
		t.Fatalf("second Create() = %+v, %v", second, err)
	}

	svc.WithInviteCodes(func() string { return "AAAAAAAA" })

	if _, err := svc.Create(ctx, "三号", 3); !errors.Is(err, service.ErrInviteCodeExhausted) {
		t.Errorf("Create() with exhausted codes = %v", err)
	}

	evt, err := queue.ParseWatermillMessage[queue.FamilyJoinedPayload](receive(t, ps, queue.TopicFamilyJoined))
	if err != nil {
		t.Fatal(err)
	}

	if evt.Payload.Role != string(model.RoleOwner) {
		t.Errorf("family joined event = %+v", evt.Payload)
	}
}
