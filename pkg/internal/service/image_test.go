package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yeisme/xianshiji/pkg/configs"
	"github.com/yeisme/xianshiji/pkg/internal/service"
	"github.com/yeisme/xianshiji/pkg/internal/storage/s3"
)

type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryObjects) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = b
	m.types[key] = contentType

	return nil
}

func (m *memoryObjects) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)

	return nil
}

func (m *memoryObjects) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://presigned/" + key, nil
}

func (m *memoryObjects) HealthCheck(context.Context) error { return nil }

var _ s3.ObjectStore = (*memoryObjects)(nil)

func newImageStore(objects *memoryObjects) *s3.Client {
	return s3.NewWithStore(objects, configs.S3Config{
		BucketName:  "xianshiji",
		PublicURL:   "http://cdn.local/",
		MaxUploadMB: 1,
	})
}

func TestObjectKeyLayout(t *testing.T) {
	key := service.ObjectKey(service.ImageKindFood, 7, "Milk.JPG", time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))

	if !regexp.MustCompile(`^food/7/2026/03/[0-9A-Z]{26}\.jpg$`).MatchString(key) {
		t.Errorf("ObjectKey() = %q", key)
	}
}

func TestUploadFoodImage(t *testing.T) {
	objects := newMemoryObjects()
	svc := service.NewImageServiceWith(newImageStore(objects), nil)
	ctx := context.Background()

	body := []byte("fake png bytes")

	resp, err := svc.UploadFoodImage(ctx, 3, service.ImageUpload{
		Filename:    "apple.png",
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(resp.Key, "food/3/") || resp.URL != "http://cdn.local/xianshiji/"+resp.Key {
		t.Errorf("UploadFoodImage() = %+v", resp)
	}

	if !bytes.Equal(objects.objects[resp.Key], body) || objects.types[resp.Key] != "image/png" {
		t.Errorf("stored object mismatch for %s", resp.Key)
	}

	cases := []struct {
		name string
		img  service.ImageUpload
		want error
	}{
		{"not an image", service.ImageUpload{Filename: "a.txt", ContentType: "text/plain", Size: 3, Body: strings.NewReader("abc")}, service.ErrInvalidImage},
		{"empty", service.ImageUpload{Filename: "a.png", ContentType: "image/png", Size: 0, Body: strings.NewReader("")}, service.ErrInvalidImage},
		{"too large", service.ImageUpload{Filename: "a.png", ContentType: "image/png", Size: 2 << 20, Body: strings.NewReader("x")}, service.ErrImageTooLarge},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.UploadFoodImage(ctx, 3, tc.img); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestUploadAvatarUpdatesUser(t *testing.T) {
	users := newUserService(t)
	ctx := context.Background()

	u, err := users.Register(ctx, str("13700000000"), nil, "pw", "头像用户")
	if err != nil {
		t.Fatal(err)
	}

	svc := service.NewImageServiceWith(newImageStore(newMemoryObjects()), users)

	resp, err := svc.UploadAvatar(ctx, u.ID, service.ImageUpload{
		Filename: "me.jpeg", ContentType: "image/jpeg", Size: 4, Body: strings.NewReader("jpeg"),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _ := users.Get(ctx, u.ID)
	if got.AvatarURL != resp.URL {
		t.Errorf("avatar url = %q, want %q", got.AvatarURL, resp.URL)
	}

	if _, err := svc.UploadAvatar(ctx, 999, service.ImageUpload{
		Filename: "x.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x"),
	}); !errors.Is(err, service.ErrUserNotFound) {
		t.Errorf("UploadAvatar(missing user) = %v", err)
	}

	disabled := service.NewImageServiceWith(nil, nil)
	if _, err := disabled.UploadFoodImage(ctx, 1, service.ImageUpload{ContentType: "image/png", Size: 1}); !errors.Is(err, service.ErrStorageDisabled) {
		t.Errorf("upload without storage = %v", err)
	}
}
