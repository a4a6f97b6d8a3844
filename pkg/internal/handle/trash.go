package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/internal/service"
	"github.com/yeisme/xianshiji/pkg/internal/types"
)

// ListTrash 回收站分页列表.
//
//	@Summary	回收站列表
//	@Tags		回收站
//	@Produce	json
//	@Param		userId	query		int	false	"用户ID（未启用认证时必填）"
//	@Param		page	query		int	false	"页码(默认1)"
//	@Param		size	query		int	false	"每页条数(默认20, 最大200)"
//	@Success	200		{object}	types.Response{data=types.TrashListResponse}
//	@Failure	400		{object}	types.Response
//	@Router		/food-items/trash [get]
func ListTrash(c *gin.Context) {
	claimed, ok := queryUserID(c)
	if !ok {
		return
	}

	uid, ok := requester(c, claimed)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	resp, err := service.NewTrashService(c.Request.Context()).List(c.Request.Context(), uid, page, size)
	if err != nil {
		failure(c, "trash", http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(resp))
}

// RestoreTrash 批量恢复.
//
//	@Summary	恢复回收站食材
//	@Tags		回收站
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.TrashBatchRequest	true	"食材ID列表"
//	@Success	200		{object}	types.Response{data=types.ActionResponse}
//	@Failure	400		{object}	types.Response
//	@Router		/food-items/trash/restore [post]
func RestoreTrash(c *gin.Context) {
	batchAction(c, func(svc *service.TrashService, uid uint, ids []uint) (int64, error) {
		return svc.Restore(c.Request.Context(), uid, ids)
	})
}

// PurgeTrash 彻底删除.
//
//	@Summary	彻底删除回收站食材
//	@Tags		回收站
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.TrashBatchRequest	true	"食材ID列表"
//	@Success	200		{object}	types.Response{data=types.ActionResponse}
//	@Failure	400		{object}	types.Response
//	@Router		/food-items/trash [delete]
func PurgeTrash(c *gin.Context) {
	batchAction(c, func(svc *service.TrashService, uid uint, ids []uint) (int64, error) {
		return svc.Purge(c.Request.Context(), uid, ids)
	})
}

// batchAction 校验请求体与请求者后执行批量动作.
func batchAction(c *gin.Context, act func(svc *service.TrashService, uid uint, ids []uint) (int64, error)) {
	var req types.TrashBatchRequest
	if !bindJSON(c, &req) {
		return
	}

	uid, ok := requester(c, req.UserID)
	if !ok {
		return
	}

	n, err := act(service.NewTrashService(c.Request.Context()), uid, req.IDs)
	if err != nil {
		failure(c, "trash", http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(types.ActionResponse{Affected: n}))
}
