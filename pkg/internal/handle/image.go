package handle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/xianshiji/pkg/internal/service"
	"github.com/yeisme/xianshiji/pkg/internal/types"
)

const msgFileMissing = "请选择要上传的图片"

// readUpload 读取 multipart 中的 file 字段，调用方负责关闭 Body.
func readUpload(c *gin.Context) (service.ImageUpload, func(), bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(msgFileMissing))
		return service.ImageUpload{}, nil, false
	}

	f, err := fh.Open()
	if err != nil {
		failure(c, "image", http.StatusBadRequest, err)
		return service.ImageUpload{}, nil, false
	}

	return service.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, true
}

// uploadFailure 业务错误返回 400，其余返回 500.
func uploadFailure(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidImage), errors.Is(err, service.ErrImageTooLarge):
		c.JSON(http.StatusBadRequest, types.Fail(err.Error()))
	case errors.Is(err, service.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, types.Fail(err.Error()))
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusOK, types.Fail(err.Error()))
	default:
		failure(c, "image", http.StatusInternalServerError, err)
	}
}

// UploadFoodImage 上传食材图片.
//
//	@Summary	上传食材图片
//	@Tags		食材
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		file	formData	file	true	"图片"
//	@Param		userId	formData	int		false	"用户ID（未启用认证时必填）"
//	@Success	200		{object}	types.Response{data=types.ImageUploadResponse}
//	@Failure	400		{object}	types.Response
//	@Router		/food-items/image [post]
func UploadFoodImage(c *gin.Context) {
	claimed, _ := strconv.ParseUint(c.PostForm("userId"), 10, 0)

	uid, ok := requester(c, uint(claimed))
	if !ok {
		return
	}

	img, closeFn, ok := readUpload(c)
	if !ok {
		return
	}
	defer closeFn()

	resp, err := service.NewImageService(c.Request.Context()).UploadFoodImage(c.Request.Context(), uid, img)
	if err != nil {
		uploadFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(resp))
}

// UploadAvatar 上传头像并更新用户资料.
//
//	@Summary	上传头像
//	@Tags		用户
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		id		path		int		true	"用户ID"
//	@Param		file	formData	file	true	"图片"
//	@Success	200		{object}	types.Response{data=types.ImageUploadResponse}
//	@Failure	400		{object}	types.Response
//	@Router		/users/{id}/avatar [post]
func UploadAvatar(c *gin.Context) {
	claimed, ok := pathID(c, "id")
	if !ok {
		return
	}

	uid, ok := requester(c, claimed)
	if !ok {
		return
	}

	img, closeFn, ok := readUpload(c)
	if !ok {
		return
	}
	defer closeFn()

	resp, err := service.NewImageService(c.Request.Context()).UploadAvatar(c.Request.Context(), uid, img)
	if err != nil {
		uploadFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, types.OK(resp))
}
