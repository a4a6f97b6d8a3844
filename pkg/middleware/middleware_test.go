package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/cache"
	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/storage/kv"
	"github.com/yeisme/xianshiji/pkg/internal/types"
	"github.com/yeisme/xianshiji/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(e *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	return w
}

func newCachedEngine(t *testing.T) (*gin.Engine, *int) {
	t.Helper()

	store, err := kv.NewMemoryKV(context.Background(), nil)
	if err != nil {
		t.Fatalf("new memory kv: %v", err)
	}

	t.Cleanup(func() { _ = store.Close() })

	calls := 0
	e := gin.New()
	g := e.Group("/recipes", middleware.ResponseCache(middleware.ResponseCacheOptions{
		Cache:       cache.NewCache(store, "xs:"),
		Namespace:   "recipes",
		TTL:         time.Minute,
		VaryHeaders: []string{"Authorization"},
	}))
	g.GET("", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, types.OK(calls))
	})
	g.POST("", func(c *gin.Context) {
		c.JSON(http.StatusOK, types.OKMessage("ok"))
	})

	return e, &calls
}

func TestResponseCacheHitAndInvalidate(t *testing.T) {
	e, calls := newCachedEngine(t)

	first := serve(e, http.MethodGet, "/recipes", nil)
	if first.Header().Get("X-Cache") == "HIT" {
		t.Fatal("first request should miss")
	}

	second := serve(e, http.MethodGet, "/recipes", nil)
	if second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second request should hit, headers=%v", second.Header())
	}

	if second.Body.String() != first.Body.String() || *calls != 1 {
		t.Fatalf("cached body mismatch or handler re-run: calls=%d", *calls)
	}

	etag := second.Header().Get("ETag")
	if notModified := serve(e, http.MethodGet, "/recipes", map[string]string{"If-None-Match": etag}); notModified.Code != http.StatusNotModified {
		t.Fatalf("If-None-Match: got %d", notModified.Code)
	}

	serve(e, http.MethodPost, "/recipes", nil)
	serve(e, http.MethodGet, "/recipes", nil)

	if *calls != 2 {
		t.Fatalf("write should invalidate the namespace, calls=%d", *calls)
	}
}

func TestResponseCacheVaryHeader(t *testing.T) {
	e, calls := newCachedEngine(t)

	serve(e, http.MethodGet, "/recipes", map[string]string{"Authorization": "Bearer a"})
	serve(e, http.MethodGet, "/recipes", map[string]string{"Authorization": "Bearer b"})

	if *calls != 2 {
		t.Fatalf("different tokens must not share a response, calls=%d", *calls)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	e := gin.New()
	e.Use(middleware.RateLimitMiddleware(configs.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2, Key: "global"}))
	e.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for range 3 {
		codes = append(codes, serve(e, http.MethodGet, "/ping", nil).Code)
	}

	want := []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("request %d: got %d, want %d", i, codes[i], want[i])
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	e := gin.New()
	e.Use(middleware.RateLimitMiddleware(configs.RateLimitConfig{Enabled: false}))
	e.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for range 5 {
		if w := serve(e, http.MethodGet, "/ping", nil); w.Code != http.StatusNoContent {
			t.Fatalf("got %d", w.Code)
		}
	}
}
