package handle_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/model"
	"github.com/yeisme/xianshiji/pkg/internal/router"
	"github.com/yeisme/xianshiji/pkg/internal/storage"
	"github.com/yeisme/xianshiji/pkg/internal/storage/db"
	"github.com/yeisme/xianshiji/pkg/middleware"
	"github.com/yeisme/xianshiji/pkg/token"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func (e envelope) object(t *testing.T) map[string]any {
	t.Helper()

	m, ok := e.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is %T, want object", e.Data)
	}

	return m
}

func (e envelope) list(t *testing.T) []any {
	t.Helper()

	l, ok := e.Data.([]any)
	if !ok {
		t.Fatalf("data is %T, want array", e.Data)
	}

	return l
}

type server struct {
	engine *gin.Engine
	issuer *token.Issuer
}

func newServer(t *testing.T, mutate func(*configs.AppConfig)) *server {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := configs.Defaults()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.BcryptCost = 4
	cfg.Janitor.Enabled = false

	if mutate != nil {
		mutate(&cfg)
	}

	configs.SetConfig(cfg)

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatal(err)
	}

	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := gdb.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	issuer := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)

	e := gin.New()
	e.Use(
		middleware.StorageMiddleware(&storage.Manager{DB: db.Wrap(gdb)}),
		middleware.AuthMiddleware(cfg.Auth, issuer),
	)
	router.Register(e, router.Options{Config: &cfg})

	return &server{engine: e, issuer: issuer}
}

func (s *server) do(t *testing.T, method, path string, body any, bearer string) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader

	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(v)
	default:
		b, err := sonic.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}

		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var env envelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}

	return rec.Code, env
}

func dateFromToday(days int) string {
	return time.Now().AddDate(0, 0, days).Format(time.DateOnly)
}

func TestFoodItemLifecycle(t *testing.T) {
	s := newServer(t, nil)

	code, env := s.do(t, http.MethodPost, "/food-items", map[string]any{
		"userId":      7,
		"name":        "酸奶",
		"category":    "乳制品",
		"quantity":    3,
		"unit":        "盒",
		"minQuantity": 1,
		"expiryDate":  dateFromToday(2),
	}, "")
	if code != http.StatusOK || !env.Success {
		t.Fatalf("add: code=%d env=%+v", code, env)
	}

	added := env.object(t)
	if added["status"] != "NEAR_EXPIRY" {
		t.Errorf("status = %v, want NEAR_EXPIRY", added["status"])
	}

	id := int(added["id"].(float64))

	_, env = s.do(t, http.MethodGet, "/food-items/user/7", nil, "")
	if got := len(env.list(t)); got != 1 {
		t.Fatalf("list = %d items, want 1", got)
	}

	_, env = s.do(t, http.MethodGet, "/food-items/user/7/status/NEAR_EXPIRY", nil, "")
	if got := len(env.list(t)); got != 1 {
		t.Errorf("status filter = %d items, want 1", got)
	}

	_, env = s.do(t, http.MethodGet, "/food-items/user/7/statistics", nil, "")
	if stats := env.object(t); stats["totalItems"] != float64(1) || stats["nearExpiry"] != float64(1) {
		t.Errorf("statistics = %v", stats)
	}

	// 其他用户不可见
	_, env = s.do(t, http.MethodGet, fmt.Sprintf("/food-items/%d?userId=8", id), nil, "")
	if env.Success || env.Message != "食材不存在或无权限" {
		t.Errorf("foreign get = %+v", env)
	}

	_, env = s.do(t, http.MethodPut, fmt.Sprintf("/food-items/%d/quantity", id), map[string]any{
		"userId": 7, "quantity": 0,
	}, "")
	if !env.Success {
		t.Fatalf("zero quantity: %+v", env)
	}

	_, env = s.do(t, http.MethodGet, fmt.Sprintf("/food-items/%d?userId=7", id), nil, "")
	if env.Success {
		t.Error("item still visible after quantity reached zero")
	}

	_, env = s.do(t, http.MethodGet, "/food-items/trash?userId=7", nil, "")
	if trash := env.object(t); trash["total"] != float64(1) {
		t.Errorf("trash total = %v, want 1", trash["total"])
	}

	_, env = s.do(t, http.MethodPost, "/food-items/trash/restore", map[string]any{
		"userId": 7, "ids": []int{id},
	}, "")
	if res := env.object(t); res["affected"] != float64(1) {
		t.Errorf("restore affected = %v, want 1", res["affected"])
	}
}

func TestFoodItemValidation(t *testing.T) {
	s := newServer(t, nil)

	cases := []struct {
		name    string
		method  string
		path    string
		body    any
		code    int
		message string
	}{
		{"missing user", http.MethodGet, "/food-items/1", nil, http.StatusBadRequest, "用户ID不能为空"},
		{"bad id", http.MethodGet, "/food-items/abc?userId=1", nil, http.StatusBadRequest, "ID格式错误"},
		{"missing quantity", http.MethodPut, "/food-items/1/quantity", map[string]any{"userId": 1}, http.StatusBadRequest, "数量不能为空"},
		{"unknown item", http.MethodDelete, "/food-items/99?userId=1", nil, http.StatusOK, "删除失败，食材不存在或无权限"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, env := s.do(t, tc.method, tc.path, tc.body, "")
			if code != tc.code || env.Success || env.Message != tc.message {
				t.Errorf("got code=%d env=%+v, want code=%d message=%q", code, env, tc.code, tc.message)
			}
		})
	}

	code, env := s.do(t, http.MethodPost, "/food-items", map[string]any{"userId": 1, "quantity": 1}, "")
	if code != http.StatusBadRequest || env.Message == "" {
		t.Errorf("missing name accepted: code=%d env=%+v", code, env)
	}

	code, env = s.do(t, http.MethodPost, "/food-items", map[string]any{"userId": 1, "name": "空盒", "quantity": 0}, "")
	if code != http.StatusBadRequest || !strings.Contains(env.Message, "quantity") {
		t.Errorf("zero quantity accepted: code=%d env=%+v", code, env)
	}

	_, env = s.do(t, http.MethodGet, "/food-items/user/1", nil, "")
	if got := len(env.list(t)); got != 0 {
		t.Errorf("rejected items stored: %d", got)
	}
}

func TestRecipeEndpoints(t *testing.T) {
	s := newServer(t, nil)

	_, env := s.do(t, http.MethodPost, "/recipes", map[string]any{
		"recipe": map[string]any{"name": "番茄炒蛋", "cuisineType": "家常菜", "servings": 2},
		"ingredients": []map[string]any{
			{"ingredientName": "番茄", "amount": "2个"},
			{"ingredientName": "鸡蛋", "amount": "3个"},
		},
	}, "")
	if !env.Success {
		t.Fatalf("add recipe: %+v", env)
	}

	recipe := env.object(t)["recipe"].(map[string]any)
	id := int(recipe["id"].(float64))

	_, env = s.do(t, http.MethodGet, fmt.Sprintf("/recipes/%d/ingredients", id), nil, "")
	if got := len(env.list(t)); got != 2 {
		t.Errorf("ingredients = %d, want 2", got)
	}

	_, env = s.do(t, http.MethodGet, "/recipes/cuisine/"+url.PathEscape("家常菜"), nil, "")
	if got := len(env.list(t)); got != 1 {
		t.Errorf("by cuisine = %d, want 1", got)
	}

	_, env = s.do(t, http.MethodDelete, fmt.Sprintf("/recipes/%d", id), nil, "")
	if !env.Success {
		t.Errorf("delete: %+v", env)
	}

	_, env = s.do(t, http.MethodGet, fmt.Sprintf("/recipes/%d", id), nil, "")
	if env.Success || env.Message != "菜谱不存在" {
		t.Errorf("get deleted = %+v", env)
	}
}

func TestFamilyEndpoints(t *testing.T) {
	s := newServer(t, nil)

	code, env := s.do(t, http.MethodPost, "/families/create", map[string]any{"creatorId": 1}, "")
	if code != http.StatusBadRequest || env.Message != "家庭组名称不能为空" {
		t.Errorf("empty name: code=%d env=%+v", code, env)
	}

	code, env = s.do(t, http.MethodPost, "/families/create", map[string]any{"familyName": "我家"}, "")
	if code != http.StatusBadRequest || env.Message != "创建者ID不能为空" {
		t.Errorf("missing creator: code=%d env=%+v", code, env)
	}

	for _, path := range []string{"/families/create", "/families/join"} {
		code, env = s.do(t, http.MethodPost, path, []byte(`{"familyName":`), "")
		if code != http.StatusBadRequest || !strings.HasPrefix(env.Message, "参数不完整") {
			t.Errorf("%s malformed body: code=%d env=%+v", path, code, env)
		}
	}

	code, env = s.do(t, http.MethodPost, "/families/join", map[string]any{"userId": 2}, "")
	if code != http.StatusBadRequest || env.Message != "邀请码不能为空" {
		t.Errorf("empty code: code=%d env=%+v", code, env)
	}

	_, env = s.do(t, http.MethodPost, "/families/create", map[string]any{"familyName": "我家", "creatorId": 1}, "")
	if !env.Success {
		t.Fatalf("create: %+v", env)
	}

	family := env.object(t)
	invite := family["inviteCode"].(string)

	_, env = s.do(t, http.MethodPost, "/families/join", map[string]any{"inviteCode": "NOPE1234", "userId": 2}, "")
	if env.Success || env.Message != "邀请码无效或已过期" {
		t.Errorf("bad code = %+v", env)
	}

	_, env = s.do(t, http.MethodPost, "/families/join", map[string]any{"inviteCode": invite, "userId": 2}, "")
	if !env.Success || env.Message != "加入家庭组成功" {
		t.Errorf("join = %+v", env)
	}

	_, env = s.do(t, http.MethodGet, fmt.Sprintf("/families/%d/members", int(family["id"].(float64))), nil, "")
	if got := len(env.list(t)); got != 2 {
		t.Errorf("members = %d, want 2", got)
	}

	_, env = s.do(t, http.MethodGet, "/families/my?userId=2", nil, "")
	if got := len(env.list(t)); got != 1 {
		t.Errorf("my families = %d, want 1", got)
	}
}

func TestAuthenticatedRequester(t *testing.T) {
	s := newServer(t, func(cfg *configs.AppConfig) { cfg.Auth.Enabled = true })

	code, env := s.do(t, http.MethodGet, "/food-items/user/1", nil, "")
	if code != http.StatusUnauthorized || env.Message != "未登录" {
		t.Errorf("anonymous: code=%d env=%+v", code, env)
	}

	code, _ = s.do(t, http.MethodGet, "/food-items/user/1", nil, "garbage")
	if code != http.StatusUnauthorized {
		t.Errorf("bad token code = %d, want 401", code)
	}

	_, env = s.do(t, http.MethodPost, "/users/register", map[string]any{
		"phone": "13800000000", "password": "secret1", "nickname": "小鲜",
	}, "")
	if !env.Success {
		t.Fatalf("register: %+v", env)
	}

	uid := int(env.object(t)["id"].(float64))

	code, env = s.do(t, http.MethodPost, "/users/login", map[string]any{
		"account": "13800000000", "password": "wrong",
	}, "")
	if code != http.StatusUnauthorized || env.Success {
		t.Errorf("bad password: code=%d env=%+v", code, env)
	}

	_, env = s.do(t, http.MethodPost, "/users/login", map[string]any{
		"account": "13800000000", "password": "secret1",
	}, "")
	if !env.Success {
		t.Fatalf("login: %+v", env)
	}

	bearer, _ := env.object(t)["token"].(string)
	if bearer == "" {
		t.Fatal("login returned no token")
	}

	code, env = s.do(t, http.MethodGet, fmt.Sprintf("/food-items/user/%d", uid+1), nil, bearer)
	if code != http.StatusForbidden || env.Message != "无权访问其他用户的数据" {
		t.Errorf("foreign user: code=%d env=%+v", code, env)
	}

	// 令牌中的用户即请求者，body 中可以省略 userId
	_, env = s.do(t, http.MethodPost, "/food-items", map[string]any{"name": "鸡蛋", "quantity": 10}, bearer)
	if !env.Success {
		t.Fatalf("add with token: %+v", env)
	}

	if owner := env.object(t)["userId"]; owner != float64(uid) {
		t.Errorf("owner = %v, want %d", owner, uid)
	}
}

func TestHealth(t *testing.T) {
	s := newServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("health code = %d, body %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}

	components := body["components"].(map[string]any)
	if components["db"] != "ok" {
		t.Errorf("db = %v, want ok", components["db"])
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health/s3", nil)
	rec = httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("s3 health code = %d, want 503", rec.Code)
	}
}
