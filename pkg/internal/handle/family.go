package handle

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/internal/service"
	"github.com/yeisme/xianshiji/pkg/internal/types"
	"github.com/yeisme/xianshiji/pkg/middleware"
)

// CreateFamily 创建家庭组，创建者成为 OWNER.
//
//	@Summary	创建家庭组
//	@Tags		家庭组
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.CreateFamilyRequest	true	"名称与创建者"
//	@Success	200		{object}	types.Response{data=model.Family}
//	@Failure	400		{object}	types.Response
//	@Router		/families/create [post]
func CreateFamily(c *gin.Context) {
	var req types.CreateFamilyRequest
	if !bindJSON(c, &req) {
		return
	}

	if strings.TrimSpace(req.FamilyName) == "" {
		c.JSON(http.StatusBadRequest, types.Fail("家庭组名称不能为空"))
		return
	}

	if _, authed := middleware.RequesterID(c); !authed && req.CreatorID == 0 {
		c.JSON(http.StatusBadRequest, types.Fail("创建者ID不能为空"))
		return
	}

	uid, ok := requester(c, req.CreatorID)
	if !ok {
		return
	}

	family, err := service.NewFamilyService(c.Request.Context()).
		Create(c.Request.Context(), strings.TrimSpace(req.FamilyName), uid)
	if err != nil {
		failure(c, "family", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(family))
}

// JoinFamily 通过邀请码加入家庭组.
//
//	@Summary	加入家庭组
//	@Tags		家庭组
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.JoinFamilyRequest	true	"邀请码与用户"
//	@Success	200		{object}	types.Response
//	@Failure	400		{object}	types.Response
//	@Router		/families/join [post]
func JoinFamily(c *gin.Context) {
	var req types.JoinFamilyRequest
	if !bindJSON(c, &req) {
		return
	}

	if strings.TrimSpace(req.InviteCode) == "" {
		c.JSON(http.StatusBadRequest, types.Fail("邀请码不能为空"))
		return
	}

	uid, ok := requester(c, req.UserID)
	if !ok {
		return
	}

	joined, err := service.NewFamilyService(c.Request.Context()).Join(c.Request.Context(), req.InviteCode, uid)
	if err != nil {
		failure(c, "family", http.StatusBadRequest, err)
		return
	}

	if !joined {
		c.JSON(http.StatusOK, types.Fail("邀请码无效或已过期"))
		return
	}

	c.JSON(http.StatusOK, types.OKMessage("加入家庭组成功"))
}

// MyFamilies 用户所在的家庭组.
//
//	@Summary	我的家庭组
//	@Tags		家庭组
//	@Produce	json
//	@Param		userId	query		int	false	"用户ID（未启用认证时必填）"
//	@Success	200		{object}	types.Response{data=[]model.Family}
//	@Router		/families/my [get]
func MyFamilies(c *gin.Context) {
	claimed, ok := queryUserID(c)
	if !ok {
		return
	}

	uid, ok := requester(c, claimed)
	if !ok {
		return
	}

	list, err := service.NewFamilyService(c.Request.Context()).ListByUser(c.Request.Context(), uid)
	if err != nil {
		failure(c, "family", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(list))
}

// FamilyMembers 家庭组成员.
//
//	@Summary	家庭组成员
//	@Tags		家庭组
//	@Produce	json
//	@Param		id	path		int	true	"家庭组ID"
//	@Success	200	{object}	types.Response{data=[]model.UserFamily}
//	@Router		/families/{id}/members [get]
func FamilyMembers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := service.NewFamilyService(c.Request.Context()).Members(c.Request.Context(), id)
	if err != nil {
		failure(c, "family", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(list))
}
