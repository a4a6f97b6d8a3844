package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/types"
)

const (
	rateLimitedMsg = "请求过于频繁，请稍后再试"
	limiterIdleTTL = 10 * time.Minute
)

// limiterSet 按键维护令牌桶，空闲超过 limiterIdleTTL 的键在下次清扫时移除.
type limiterSet struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	entries   map[string]*limiterEntry
	lastSweep time.Time
}

type limiterEntry struct {
	*rate.Limiter
	seen time.Time
}

func newLimiterSet(rps float64, burst int) *limiterSet {
	return &limiterSet{
		rps:       rate.Limit(rps),
		burst:     burst,
		entries:   map[string]*limiterEntry{},
		lastSweep: time.Now(),
	}
}

func (s *limiterSet) allow(key string) bool {
	now := time.Now()

	s.mu.Lock()

	if now.Sub(s.lastSweep) > limiterIdleTTL {
		for k, e := range s.entries {
			if now.Sub(e.seen) > limiterIdleTTL {
				delete(s.entries, k)
			}
		}

		s.lastSweep = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{Limiter: rate.NewLimiter(s.rps, s.burst)}
		s.entries[key] = e
	}

	e.seen = now
	s.mu.Unlock()

	return e.AllowN(now, 1)
}

// RateLimitMiddleware 令牌桶限流，超限返回 429.
// key 取值 global、ip、user（未登录回退到 IP）或 header:Name.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	mode := strings.ToLower(strings.TrimSpace(cfg.Key))
	set := newLimiterSet(cfg.RPS, cfg.Burst)

	return func(c *gin.Context) {
		if !set.allow(limitKey(c, mode)) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.Fail(rateLimitedMsg))

			return
		}

		c.Next()
	}
}

func limitKey(c *gin.Context, mode string) string {
	switch {
	case mode == "" || mode == "global":
		return "global"
	case strings.HasPrefix(mode, "header:"):
		if v := c.GetHeader(strings.TrimPrefix(mode, "header:")); v != "" {
			return "h:" + v
		}
	case mode == "user":
		if id, ok := RequesterID(c); ok {
			return "u:" + strconv.FormatUint(uint64(id), 10)
		}
	}

	return "ip:" + c.ClientIP()
}
