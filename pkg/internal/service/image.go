package service

import (
	"context"
	crand "crypto/rand"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"
	"github.com/rs/zerolog"

	ctxPkg "github.com/yeisme/xianshiji/pkg/context"
	"github.com/yeisme/xianshiji/pkg/internal/storage/s3"
	"github.com/yeisme/xianshiji/pkg/internal/types"
	"github.com/yeisme/xianshiji/pkg/log"
	"github.com/yeisme/xianshiji/pkg/metrics"
)

// 图片类别，同时作为对象键前缀.
const (
	ImageKindFood   = "food"
	ImageKindAvatar = "avatar"
)

var (
	ulidMu      sync.Mutex
	ulidEntropy = ulid.Monotonic(crand.Reader, 0)
)

func newULID(t time.Time) ulid.ULID {
	ulidMu.Lock()
	defer ulidMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(t), ulidEntropy)
}

// ImageUpload 待上传的图片.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageService 食材图片与头像上传.
type ImageService struct {
	store  *s3.Client
	users  *UserService
	now    func() time.Time
	logger zerolog.Logger
}

// NewImageServiceWith 直接注入对象存储；users 为 nil 时头像上传不回写用户资料.
func NewImageServiceWith(store *s3.Client, users *UserService) *ImageService {
	return &ImageService{store: store, users: users, now: time.Now, logger: log.With("image")}
}

// NewImageService 从 context 中的存储管理器构造.
func NewImageService(c context.Context) *ImageService {
	return NewImageServiceWith(ctxPkg.GetS3Client(c), NewUserService(c))
}

// ObjectKey 生成 <kind>/<uid>/<yyyy>/<mm>/<ulid><ext> 形式的对象键.
func ObjectKey(kind string, userID uint, filename string, t time.Time) string {
	ext := strings.ToLower(path.Ext(filename))

	return fmt.Sprintf("%s/%d/%04d/%02d/%s%s", kind, userID, t.Year(), int(t.Month()), newULID(t), ext)
}

// UploadFoodImage 上传食材图片.
func (s *ImageService) UploadFoodImage(ctx context.Context, userID uint, img ImageUpload) (*types.ImageUploadResponse, error) {
	return s.upload(ctx, ImageKindFood, userID, img)
}

// UploadAvatar 上传头像并更新用户资料.
func (s *ImageService) UploadAvatar(ctx context.Context, userID uint, img ImageUpload) (*types.ImageUploadResponse, error) {
	if s.users != nil {
		u, err := s.users.Get(ctx, userID)
		if err != nil {
			return nil, err
		}

		if u == nil {
			return nil, ErrUserNotFound
		}
	}

	resp, err := s.upload(ctx, ImageKindAvatar, userID, img)
	if err != nil {
		return nil, err
	}

	if s.users != nil {
		if err := s.users.UpdateAvatar(ctx, userID, resp.URL); err != nil {
			return nil, err
		}
	}

	return resp, nil
}

func (s *ImageService) upload(ctx context.Context, kind string, userID uint, img ImageUpload) (resp *types.ImageUploadResponse, err error) {
	defer func() { metrics.ImageUploads.WithLabelValues(kind, metrics.Result(err)).Inc() }()

	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	mediaType, _, perr := mime.ParseMediaType(img.ContentType)
	if perr != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, ErrInvalidImage
	}

	if img.Size <= 0 {
		return nil, ErrInvalidImage
	}

	if limit := s.store.MaxUploadBytes(); limit > 0 && img.Size > limit {
		return nil, ErrImageTooLarge
	}

	key := ObjectKey(kind, userID, img.Filename, s.now())

	if err = s.store.Put(ctx, key, img.Body, img.Size, mediaType); err != nil {
		return nil, wrap("put object", err)
	}

	s.logger.Info().Str("key", key).Int64("size", img.Size).Msg("image uploaded")

	return &types.ImageUploadResponse{URL: s.store.URL(key), Key: key}, nil
}
