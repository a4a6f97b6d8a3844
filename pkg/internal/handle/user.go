package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/internal/service"
	"github.com/yeisme/xianshiji/pkg/internal/types"
)

// ListUsers 全部用户.
//
//	@Summary	用户列表
//	@Tags		用户
//	@Produce	json
//	@Success	200	{object}	types.Response{data=[]model.User}
//	@Router		/users [get]
func ListUsers(c *gin.Context) {
	list, err := service.NewUserService(c.Request.Context()).List(c.Request.Context())
	if err != nil {
		failure(c, "user", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(list))
}

// GetUser 用户详情.
//
//	@Summary	用户详情
//	@Tags		用户
//	@Produce	json
//	@Param		id	path		int	true	"用户ID"
//	@Success	200	{object}	types.Response{data=model.User}
//	@Router		/users/{id} [get]
func GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := service.NewUserService(c.Request.Context()).Get(c.Request.Context(), id)
	if err != nil {
		failure(c, "user", http.StatusBadRequest, err)
		return
	}

	if user == nil {
		c.JSON(http.StatusOK, types.Fail(service.ErrUserNotFound.Error()))
		return
	}

	c.JSON(http.StatusOK, types.OK(user))
}

// Register 注册账号.
//
//	@Summary	注册
//	@Tags		用户
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.RegisterRequest	true	"注册信息"
//	@Success	200		{object}	types.Response{data=model.User}
//	@Failure	400		{object}	types.Response
//	@Router		/users/register [post]
func Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := service.NewUserService(c.Request.Context()).
		Register(c.Request.Context(), req.Phone, req.Email, req.Password, req.Nickname)
	if k := known(err, service.ErrUserExists, service.ErrAccountRequired); k != nil {
		c.JSON(http.StatusBadRequest, types.Fail(k.Error()))
		return
	}

	if err != nil {
		failure(c, "user", http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(user))
}

// Login 账号登录，认证启用时返回访问令牌.
//
//	@Summary	登录
//	@Tags		用户
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.LoginRequest	true	"账号与密码"
//	@Success	200		{object}	types.Response{data=types.LoginResponse}
//	@Failure	401		{object}	types.Response
//	@Router		/users/login [post]
func Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, expires, err := service.NewUserService(c.Request.Context()).
		Login(c.Request.Context(), req.Account, req.Password)
	if k := known(err, service.ErrBadCredentials); k != nil {
		c.JSON(http.StatusUnauthorized, types.Fail(k.Error()))
		return
	}

	if err != nil {
		failure(c, "user", http.StatusInternalServerError, err)
		return
	}

	resp := types.LoginResponse{User: user, Token: token}
	if token != "" {
		resp.ExpiresAt = &expires
	}

	c.JSON(http.StatusOK, types.OK(resp))
}

// UpdateUser 修改资料或密码.
//
//	@Summary	修改用户信息
//	@Tags		用户
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"用户ID"
//	@Param		body	body		types.UpdateUserRequest	true	"待修改字段"
//	@Success	200		{object}	types.Response{data=model.User}
//	@Failure	400		{object}	types.Response
//	@Router		/users/{id} [put]
func UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	uid, ok := requester(c, id)
	if !ok {
		return
	}

	var req types.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := service.NewUserService(c.Request.Context()).Update(c.Request.Context(), uid, service.UserUpdate{
		Nickname:    req.Nickname,
		Phone:       req.Phone,
		Email:       req.Email,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if k := known(err, service.ErrUserNotFound, service.ErrWrongPassword, service.ErrUserExists); k != nil {
		c.JSON(http.StatusBadRequest, types.Fail(k.Error()))
		return
	}

	if err != nil {
		failure(c, "user", http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(user))
}
