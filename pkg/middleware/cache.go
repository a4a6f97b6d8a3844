package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/xianshiji/pkg/cache"
	"github.com/yeisme/xianshiji/pkg/log"
)

// DefaultMaxBodyBytes 可缓存响应体上限.
const DefaultMaxBodyBytes = 1 << 20

// ResponseCacheOptions 路由组响应缓存配置.
type ResponseCacheOptions struct {
	Cache *appcache.Cache
	// Namespace 同组键前缀，组内写请求成功后整组失效
	Namespace string
	TTL       time.Duration
	// VaryHeaders 参与缓存键的请求头
	VaryHeaders  []string
	MaxBodyBytes int
}

// cachedResponse KV 中保存的响应.
type cachedResponse struct {
	Status      int    `json:"s"`
	ContentType string `json:"ct,omitempty"`
	Body        []byte `json:"b,omitempty"`
	ETag        string `json:"e"`
	StoredAt    int64  `json:"t"`
}

type responseCache struct {
	opts ResponseCacheOptions
}

// ResponseCache 缓存 GET/HEAD 的 200 响应，命中时写 X-Cache: HIT 并支持 If-None-Match.
// 其它方法的请求放行，成功后清空 Namespace 下的全部缓存:
//
//	recipes := r.Group("/recipes", middleware.ResponseCache(middleware.ResponseCacheOptions{
//		Cache:     cache.NewCache(kvStore, "xs:"),
//		Namespace: "recipes",
//		TTL:       time.Minute,
//	}))
func ResponseCache(opts ResponseCacheOptions) gin.HandlerFunc {
	if opts.Cache == nil {
		panic("ResponseCache: Cache cannot be nil")
	}

	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	vary := slices.Clone(opts.VaryHeaders)
	slices.Sort(vary)
	opts.VaryHeaders = vary

	rc := &responseCache{opts: opts}

	return func(c *gin.Context) {
		if m := c.Request.Method; m != http.MethodGet && m != http.MethodHead {
			c.Next()
			rc.invalidate(c)

			return
		}

		key := rc.key(c)
		if rc.serve(c, key) {
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer, limit: opts.MaxBodyBytes}
		c.Writer = w
		c.Next()
		rc.store(c, key, w)
	}
}

func (rc *responseCache) prefix() string {
	return "rc:" + rc.opts.Namespace + ":"
}

// key 实际路径、排序后的 query 与 vary 头取 xxhash.
func (rc *responseCache) key(c *gin.Context) string {
	var b strings.Builder

	b.WriteString(c.Request.URL.Path)

	q := c.Request.URL.Query()
	names := make([]string, 0, len(q))

	for k := range q {
		names = append(names, k)
	}

	slices.Sort(names)

	for _, k := range names {
		b.WriteString("&" + k + "=" + strings.Join(q[k], ","))
	}

	for _, h := range rc.opts.VaryHeaders {
		b.WriteString("|" + h + "=" + c.GetHeader(h))
	}

	return fmt.Sprintf("%s%x", rc.prefix(), xxhash.Sum64String(b.String()))
}

func (rc *responseCache) serve(c *gin.Context, key string) bool {
	entry, err := appcache.Get[cachedResponse](c.Request.Context(), rc.opts.Cache, key)
	if err != nil {
		return false
	}

	h := c.Writer.Header()
	h.Set("ETag", entry.ETag)
	h.Set("Age", strconv.FormatInt(int64(time.Since(time.Unix(0, entry.StoredAt)).Seconds()), 10))
	h.Set("X-Cache", "HIT")

	if c.GetHeader("If-None-Match") == entry.ETag {
		c.AbortWithStatus(http.StatusNotModified)
		return true
	}

	if entry.ContentType != "" {
		h.Set("Content-Type", entry.ContentType)
	}

	c.Status(entry.Status)

	if c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(entry.Body)
	}

	c.Abort()

	return true
}

func (rc *responseCache) store(c *gin.Context, key string, w *captureWriter) {
	if c.Writer.Status() != http.StatusOK || w.overflow || rc.opts.TTL <= 0 {
		return
	}

	body := w.buf.Bytes()
	entry := cachedResponse{
		Status:      http.StatusOK,
		ContentType: c.Writer.Header().Get("Content-Type"),
		Body:        body,
		ETag:        fmt.Sprintf("%q", strconv.FormatUint(xxhash.Sum64(body), 16)),
		StoredAt:    time.Now().UnixNano(),
	}

	if err := appcache.Set(c.Request.Context(), rc.opts.Cache, key, entry, rc.opts.TTL); err != nil {
		log.Logger().Debug().Err(err).Str("key", key).Msg("response cache store failed")
	}
}

func (rc *responseCache) invalidate(c *gin.Context) {
	if c.Writer.Status() >= http.StatusBadRequest {
		return
	}

	if err := rc.opts.Cache.DeletePrefix(c.Request.Context(), rc.prefix()); err != nil {
		log.Logger().Warn().Err(err).Str("namespace", rc.opts.Namespace).Msg("response cache invalidation failed")
	}
}

// captureWriter 边写边复制响应体，超过上限后不再缓存.
type captureWriter struct {
	gin.ResponseWriter

	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.buf.Len()+len(b) > w.limit {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}

	return w.ResponseWriter.Write(b)
}
