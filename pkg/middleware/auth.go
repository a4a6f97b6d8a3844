package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/types"
	"github.com/yeisme/xianshiji/pkg/token"
)

const userIDKey = "requester_id"

type userIDCtxKey struct{}

// AuthMiddleware 校验 Authorization: Bearer <jwt>，并把令牌中的用户 ID 写入上下文.
// 未启用认证或命中 skip_paths 时直接放行，此时由请求参数中的 userId 标识请求者.
func AuthMiddleware(conf configs.AuthConfig, issuer *token.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		raw := strings.TrimSpace(c.GetHeader("Authorization"))

		bearer, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(bearer) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.Fail("未登录"))
			return
		}

		claims, err := issuer.Parse(strings.TrimSpace(bearer))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.Fail("登录已失效，请重新登录"))
			return
		}

		SetRequesterID(c, claims.UserID)
		c.Next()
	}
}

// SetRequesterID 记录已认证的请求者.
func SetRequesterID(c *gin.Context, userID uint) {
	c.Set(userIDKey, userID)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), userIDCtxKey{}, userID))
}

// RequesterID 返回已认证的请求者，未认证时 ok 为 false.
func RequesterID(c *gin.Context) (uint, bool) {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(uint); ok {
			return id, true
		}
	}

	if id, ok := c.Request.Context().Value(userIDCtxKey{}).(uint); ok {
		return id, true
	}

	return 0, false
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
