package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/internal/service"
	"github.com/yeisme/xianshiji/pkg/internal/types"
)

// ListRecipes 全部菜谱.
//
//	@Summary	菜谱列表
//	@Tags		菜谱
//	@Produce	json
//	@Success	200	{object}	types.Response{data=[]model.Recipe}
//	@Router		/recipes [get]
func ListRecipes(c *gin.Context) {
	list, err := service.NewRecipeService(c.Request.Context()).List(c.Request.Context())
	if err != nil {
		failure(c, "recipe", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(list))
}

// ListRecipesByCuisine 按菜系查询.
//
//	@Summary	按菜系查询菜谱
//	@Tags		菜谱
//	@Produce	json
//	@Param		cuisineType	path		string	true	"菜系"
//	@Success	200			{object}	types.Response{data=[]model.Recipe}
//	@Router		/recipes/cuisine/{cuisineType} [get]
func ListRecipesByCuisine(c *gin.Context) {
	list, err := service.NewRecipeService(c.Request.Context()).
		ListByCuisine(c.Request.Context(), c.Param("cuisineType"))
	if err != nil {
		failure(c, "recipe", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(list))
}

// SearchRecipes 按名称或描述搜索.
//
//	@Summary	搜索菜谱
//	@Tags		菜谱
//	@Produce	json
//	@Param		keyword	query		string	true	"关键字"
//	@Success	200		{object}	types.Response{data=[]model.Recipe}
//	@Router		/recipes/search [get]
func SearchRecipes(c *gin.Context) {
	list, err := service.NewRecipeService(c.Request.Context()).Search(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		failure(c, "recipe", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(list))
}

// GetRecipe 菜谱详情.
//
//	@Summary	菜谱详情
//	@Tags		菜谱
//	@Produce	json
//	@Param		id	path		int	true	"菜谱ID"
//	@Success	200	{object}	types.Response{data=model.Recipe}
//	@Router		/recipes/{id} [get]
func GetRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	recipe, err := service.NewRecipeService(c.Request.Context()).Get(c.Request.Context(), id)
	if err != nil {
		failure(c, "recipe", http.StatusBadRequest, err)
		return
	}

	if recipe == nil {
		c.JSON(http.StatusOK, types.Fail(service.ErrRecipeNotFound.Error()))
		return
	}

	c.JSON(http.StatusOK, types.OK(recipe))
}

// RecipeIngredients 菜谱食材清单.
//
//	@Summary	菜谱食材
//	@Tags		菜谱
//	@Produce	json
//	@Param		id	path		int	true	"菜谱ID"
//	@Success	200	{object}	types.Response{data=[]model.RecipeIngredient}
//	@Router		/recipes/{id}/ingredients [get]
func RecipeIngredients(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := service.NewRecipeService(c.Request.Context()).Ingredients(c.Request.Context(), id)
	if err != nil {
		failure(c, "recipe", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(list))
}

// AddRecipe 新增菜谱及食材.
//
//	@Summary	新增菜谱
//	@Tags		菜谱
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.RecipeRequest	true	"菜谱与食材"
//	@Success	200		{object}	types.Response{data=types.RecipeDetail}
//	@Failure	400		{object}	types.Response
//	@Router		/recipes [post]
func AddRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, ings := req.ToModel()

	saved, err := service.NewRecipeService(c.Request.Context()).Add(c.Request.Context(), recipe, ings)
	if err != nil {
		failure(c, "recipe", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(types.RecipeDetail{Recipe: saved, Ingredients: ings}))
}

// UpdateRecipe 更新菜谱并替换食材清单.
//
//	@Summary	更新菜谱
//	@Tags		菜谱
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int					true	"菜谱ID"
//	@Param		body	body		types.RecipeRequest	true	"菜谱与食材"
//	@Success	200		{object}	types.Response{data=types.RecipeDetail}
//	@Failure	400		{object}	types.Response
//	@Router		/recipes/{id} [put]
func UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, ings := req.ToModel()

	saved, err := service.NewRecipeService(c.Request.Context()).Update(c.Request.Context(), id, recipe, ings)
	if errors.Is(err, service.ErrRecipeNotFound) {
		c.JSON(http.StatusOK, types.Fail(service.ErrRecipeNotFound.Error()))
		return
	}

	if err != nil {
		failure(c, "recipe", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(types.RecipeDetail{Recipe: saved, Ingredients: ings}))
}

// DeleteRecipe 删除菜谱.
//
//	@Summary	删除菜谱
//	@Tags		菜谱
//	@Produce	json
//	@Param		id	path		int	true	"菜谱ID"
//	@Success	200	{object}	types.Response
//	@Router		/recipes/{id} [delete]
func DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := service.NewRecipeService(c.Request.Context()).Delete(c.Request.Context(), id)
	if errors.Is(err, service.ErrRecipeNotFound) {
		c.JSON(http.StatusOK, types.Fail(service.ErrRecipeNotFound.Error()))
		return
	}

	if err != nil {
		failure(c, "recipe", http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, types.Response{Success: true})
}
