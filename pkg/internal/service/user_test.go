package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yeisme/xianshiji/pkg/internal/service"
	"github.com/yeisme/xianshiji/pkg/token"
)

func str(s string) *string { return &s }

func newUserService(t *testing.T) *service.UserService {
	t.Helper()

	issuer := token.NewIssuer("test-secret", "xianshiji-test", time.Hour)

	return service.NewUserServiceWith(newTestDB(t), issuer, bcrypt.MinCost)
}

func TestUserRegisterAndLogin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, nil, str("  "), "secret", "无名"); !errors.Is(err, service.ErrAccountRequired) {
		t.Errorf("Register without account = %v", err)
	}

	user, err := svc.Register(ctx, str("13800000000"), nil, "secret", "小明")
	if err != nil {
		t.Fatal(err)
	}

	if user.PasswordHash == "secret" || user.PasswordHash == "" {
		t.Errorf("password stored as %q", user.PasswordHash)
	}

	if _, err := svc.Register(ctx, str("13800000000"), nil, "other", "冒名"); !errors.Is(err, service.ErrUserExists) {
		t.Errorf("duplicate Register = %v", err)
	}

	if _, _, _, err := svc.Login(ctx, "13800000000", "wrong"); !errors.Is(err, service.ErrBadCredentials) {
		t.Errorf("Login(wrong password) = %v", err)
	}

	if _, _, _, err := svc.Login(ctx, "nobody@example.com", "secret"); !errors.Is(err, service.ErrBadCredentials) {
		t.Errorf("Login(unknown) = %v", err)
	}

	got, signed, exp, err := svc.Login(ctx, "13800000000", "secret")
	if err != nil || got.ID != user.ID || signed == "" || exp.IsZero() {
		t.Fatalf("Login() = %+v, %q, %v, %v", got, signed, exp, err)
	}

	claims, err := svc.Tokens().Parse(signed)
	if err != nil || claims.UserID != user.ID {
		t.Errorf("token claims = %+v, %v", claims, err)
	}
}

func TestUserUpdate(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, nil, str("alice@example.com"), "pw-a", "Alice")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Register(ctx, nil, str("bob@example.com"), "pw-b", "Bob"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Update(ctx, alice.ID, service.UserUpdate{Email: str("bob@example.com")}); !errors.Is(err, service.ErrUserExists) {
		t.Errorf("taking another user's email = %v", err)
	}

	if _, err := svc.Update(ctx, alice.ID, service.UserUpdate{NewPassword: "new", OldPassword: "bad"}); !errors.Is(err, service.ErrWrongPassword) {
		t.Errorf("password change with wrong old password = %v", err)
	}

	updated, err := svc.Update(ctx, alice.ID, service.UserUpdate{
		Phone:       str("13900000000"),
		OldPassword: "pw-a",
		NewPassword: "pw-new",
	})
	if err != nil {
		t.Fatal(err)
	}

	if updated.Nickname != "Alice" || updated.Email == nil || *updated.Email != "alice@example.com" {
		t.Errorf("unchanged fields lost: %+v", updated)
	}

	if _, _, _, err := svc.Login(ctx, "13900000000", "pw-new"); err != nil {
		t.Errorf("Login with new phone and password = %v", err)
	}

	if _, err := svc.Update(ctx, 999, service.UserUpdate{Nickname: "x"}); !errors.Is(err, service.ErrUserNotFound) {
		t.Errorf("Update(missing) = %v", err)
	}

	if err := svc.UpdateAvatar(ctx, alice.ID, "http://cdn/avatar.png"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Get(ctx, alice.ID)
	if err != nil || got.AvatarURL != "http://cdn/avatar.png" {
		t.Errorf("Get() = %+v, %v", got, err)
	}

	all, err := svc.List(ctx)
	if err != nil || len(all) != 2 {
		t.Errorf("List() = %d users, %v", len(all), err)
	}
}
