package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/internal/service"
	"github.com/yeisme/xianshiji/pkg/internal/types"
)

// foodOwner 从路径读取 userId 并确定请求者.
func foodOwner(c *gin.Context) (uint, bool) {
	claimed, ok := pathID(c, "userId")
	if !ok {
		return 0, false
	}

	return requester(c, claimed)
}

// ListFoodItems 用户全部食材.
//
//	@Summary	食材列表
//	@Tags		食材
//	@Produce	json
//	@Param		userId	path		int	true	"用户ID"
//	@Success	200		{object}	types.Response{data=[]model.FoodItem}
//	@Failure	400		{object}	types.Response
//	@Router		/food-items/user/{userId} [get]
func ListFoodItems(c *gin.Context) {
	uid, ok := foodOwner(c)
	if !ok {
		return
	}

	items, err := service.NewFoodItemService(c.Request.Context()).List(c.Request.Context(), uid)
	if err != nil {
		failure(c, "food", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(items))
}

// ListFoodItemsByCategory 按分类查询.
//
//	@Summary	按分类查询食材
//	@Tags		食材
//	@Produce	json
//	@Param		userId		path		int		true	"用户ID"
//	@Param		category	path		string	true	"分类"
//	@Success	200			{object}	types.Response{data=[]model.FoodItem}
//	@Router		/food-items/user/{userId}/category/{category} [get]
func ListFoodItemsByCategory(c *gin.Context) {
	uid, ok := foodOwner(c)
	if !ok {
		return
	}

	items, err := service.NewFoodItemService(c.Request.Context()).
		ListByCategory(c.Request.Context(), uid, c.Param("category"))
	if err != nil {
		failure(c, "food", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(items))
}

// SearchFoodItems 按名称关键字搜索.
//
//	@Summary	搜索食材
//	@Tags		食材
//	@Produce	json
//	@Param		userId	path		int		true	"用户ID"
//	@Param		keyword	query		string	true	"关键字"
//	@Success	200		{object}	types.Response{data=[]model.FoodItem}
//	@Router		/food-items/user/{userId}/search [get]
func SearchFoodItems(c *gin.Context) {
	uid, ok := foodOwner(c)
	if !ok {
		return
	}

	items, err := service.NewFoodItemService(c.Request.Context()).
		Search(c.Request.Context(), uid, c.Query("keyword"))
	if err != nil {
		failure(c, "food", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(items))
}

// ListFoodItemsByStatus 按状态过滤，未知状态返回全部.
//
//	@Summary	按状态查询食材
//	@Tags		食材
//	@Produce	json
//	@Param		userId	path		int		true	"用户ID"
//	@Param		status	path		string	true	"NORMAL/INSUFFICIENT/NEAR_EXPIRY/EXPIRED"
//	@Success	200		{object}	types.Response{data=[]model.FoodItem}
//	@Router		/food-items/user/{userId}/status/{status} [get]
func ListFoodItemsByStatus(c *gin.Context) {
	uid, ok := foodOwner(c)
	if !ok {
		return
	}

	items, err := service.NewFoodItemService(c.Request.Context()).
		ListByStatus(c.Request.Context(), uid, c.Param("status"))
	if err != nil {
		failure(c, "food", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(items))
}

// FoodItemStatistics 分类数与各状态数量.
//
//	@Summary	食材统计
//	@Tags		食材
//	@Produce	json
//	@Param		userId	path		int	true	"用户ID"
//	@Success	200		{object}	types.Response{data=types.FoodItemStatistics}
//	@Router		/food-items/user/{userId}/statistics [get]
func FoodItemStatistics(c *gin.Context) {
	uid, ok := foodOwner(c)
	if !ok {
		return
	}

	stats, err := service.NewFoodItemService(c.Request.Context()).Statistics(c.Request.Context(), uid)
	if err != nil {
		failure(c, "food", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(stats))
}

// GetFoodItem 查询单个食材.
//
//	@Summary	食材详情
//	@Tags		食材
//	@Produce	json
//	@Param		id		path		int	true	"食材ID"
//	@Param		userId	query		int	false	"用户ID（未启用认证时必填）"
//	@Success	200		{object}	types.Response{data=model.FoodItem}
//	@Router		/food-items/{id} [get]
func GetFoodItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	claimed, ok := queryUserID(c)
	if !ok {
		return
	}

	uid, ok := requester(c, claimed)
	if !ok {
		return
	}

	item, err := service.NewFoodItemService(c.Request.Context()).Get(c.Request.Context(), id, uid)
	if err != nil {
		failure(c, "food", http.StatusBadRequest, err)
		return
	}

	if item == nil {
		c.JSON(http.StatusOK, types.Fail(msgFoodDenied))
		return
	}

	c.JSON(http.StatusOK, types.OK(item))
}

// AddFoodItem 新增食材.
//
//	@Summary	新增食材
//	@Tags		食材
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.FoodItemRequest	true	"食材"
//	@Success	200		{object}	types.Response{data=model.FoodItem}
//	@Failure	400		{object}	types.Response
//	@Router		/food-items [post]
func AddFoodItem(c *gin.Context) {
	var req types.FoodItemRequest
	if !bindJSON(c, &req) {
		return
	}

	uid, ok := requester(c, req.UserID)
	if !ok {
		return
	}

	item := req.ToModel()
	item.UserID = uid

	saved, err := service.NewFoodItemService(c.Request.Context()).Add(c.Request.Context(), item)
	if err != nil {
		failure(c, "food", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(saved))
}

// UpdateFoodItem 整体更新食材.
//
//	@Summary	更新食材
//	@Tags		食材
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"食材ID"
//	@Param		body	body		types.FoodItemRequest	true	"食材"
//	@Success	200		{object}	types.Response
//	@Router		/food-items/{id} [put]
func UpdateFoodItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.FoodItemRequest
	if !bindJSON(c, &req) {
		return
	}

	uid, ok := requester(c, req.UserID)
	if !ok {
		return
	}

	done, err := service.NewFoodItemService(c.Request.Context()).
		UpdateFoodItem(c.Request.Context(), id, req.ToModel(), uid)
	actionResult(c, done, err, msgUpdateDenied)
}

// UpdateFoodQuantity 修改数量，数量不大于 0 时删除食材.
//
//	@Summary	修改食材数量
//	@Tags		食材
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"食材ID"
//	@Param		body	body		types.UpdateQuantityRequest	true	"数量"
//	@Success	200		{object}	types.Response
//	@Router		/food-items/{id}/quantity [put]
func UpdateFoodQuantity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.UpdateQuantityRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Quantity == nil {
		c.JSON(http.StatusBadRequest, types.Fail("数量不能为空"))
		return
	}

	uid, ok := requester(c, req.UserID)
	if !ok {
		return
	}

	done, err := service.NewFoodItemService(c.Request.Context()).
		UpdateQuantity(c.Request.Context(), id, *req.Quantity, uid)
	actionResult(c, done, err, msgUpdateDenied)
}

// UpdateFoodMinQuantity 修改或清除最低库存.
//
//	@Summary	修改最低库存
//	@Tags		食材
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int								true	"食材ID"
//	@Param		body	body		types.UpdateMinQuantityRequest	true	"最低库存，null 表示清除"
//	@Success	200		{object}	types.Response
//	@Router		/food-items/{id}/min-quantity [put]
func UpdateFoodMinQuantity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.UpdateMinQuantityRequest
	if !bindJSON(c, &req) {
		return
	}

	uid, ok := requester(c, req.UserID)
	if !ok {
		return
	}

	done, err := service.NewFoodItemService(c.Request.Context()).
		UpdateMinQuantity(c.Request.Context(), id, req.MinQuantity, uid)
	actionResult(c, done, err, msgUpdateDenied)
}

// DeleteFoodItem 软删除食材.
//
//	@Summary	删除食材
//	@Tags		食材
//	@Produce	json
//	@Param		id		path		int	true	"食材ID"
//	@Param		userId	query		int	false	"用户ID（未启用认证时必填）"
//	@Success	200		{object}	types.Response
//	@Router		/food-items/{id} [delete]
func DeleteFoodItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	claimed, ok := queryUserID(c)
	if !ok {
		return
	}

	uid, ok := requester(c, claimed)
	if !ok {
		return
	}

	done, err := service.NewFoodItemService(c.Request.Context()).Delete(c.Request.Context(), id, uid)
	actionResult(c, done, err, msgDeleteDenied)
}

// actionResult 写入 bool 结果，false 时附带统一提示.
func actionResult(c *gin.Context, done bool, err error, deniedMsg string) {
	if err != nil {
		failure(c, "food", http.StatusBadRequest, err)
		return
	}

	if !done {
		c.JSON(http.StatusOK, types.Fail(deniedMsg))
		return
	}

	c.JSON(http.StatusOK, types.Response{Success: true})
}
