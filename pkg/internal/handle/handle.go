// Package handle 提供 HTTP 请求处理器，统一返回 types.Response 信封.
package handle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/xianshiji/pkg/context"
	"github.com/yeisme/xianshiji/pkg/internal/types"
	"github.com/yeisme/xianshiji/pkg/middleware"
	"github.com/yeisme/xianshiji/pkg/rule"
)

const (
	msgUpdateDenied = "更新失败，食材不存在或无权限"
	msgDeleteDenied = "删除失败，食材不存在或无权限"
	msgFoodDenied   = "食材不存在或无权限"
	msgForbidden    = "无权访问其他用户的数据"
	msgUserIDEmpty  = "用户ID不能为空"
	msgBadID        = "ID格式错误"
	msgBadParams    = "参数不完整"
)

func init() {
	// 绑定请求体前完成校验引擎初始化，使 rule 标签生效
	rule.Engine()
}

// bindJSON 解析并校验请求体，失败时写 400.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if verrs := rule.Errors(err); verrs != nil {
			c.JSON(http.StatusBadRequest, types.Fail(msgBadParams+": "+verrs.Error()))
		} else {
			c.JSON(http.StatusBadRequest, types.Fail(msgBadParams+": "+err.Error()))
		}

		return false
	}

	return true
}

// pathID 读取路径中的正整数 ID.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, types.Fail(msgBadID))
		return 0, false
	}

	return uint(id), true
}

// queryUserID 读取 query 中的 userId，缺省为 0.
func queryUserID(c *gin.Context) (uint, bool) {
	raw := c.Query("userId")
	if raw == "" {
		return 0, true
	}

	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(msgBadID))
		return 0, false
	}

	return uint(id), true
}

// requester 确定请求者.
// 已认证时以令牌中的用户为准，claimed 非 0 且不一致返回 403；未认证时 claimed 即请求者.
func requester(c *gin.Context, claimed uint) (uint, bool) {
	if id, ok := middleware.RequesterID(c); ok {
		if claimed != 0 && claimed != id {
			c.JSON(http.StatusForbidden, types.Fail(msgForbidden))
			return 0, false
		}

		return id, true
	}

	if claimed == 0 {
		c.JSON(http.StatusBadRequest, types.Fail(msgUserIDEmpty))
		return 0, false
	}

	return claimed, true
}

// failure 记录错误并按错误类型写响应.
func failure(c *gin.Context, component string, status int, err error) {
	logger := ctxPkg.GetLogger(c.Request.Context(), component)
	logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")

	_ = c.Error(err)
	c.JSON(status, types.Fail(err.Error()))
}

// known 命中任一业务错误时返回它，用于直接把业务提示返回给调用方.
func known(err error, targets ...error) error {
	for _, t := range targets {
		if errors.Is(err, t) {
			return t
		}
	}

	return nil
}
