package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// ErrPresignUnsupported is returned by gateways that cannot mint
// direct-upload URLs (local disk). The client-direct flow requires a
// presign-capable gateway.
var ErrPresignUnsupported = errors.New("storage: presigned uploads not supported by this provider")

// Gateway 存储网关接口
// 定义对象存储的基本操作，所有存储实现必须遵循此接口
type Gateway interface {
	// Put uploads a blob and returns its publicly resolvable URL.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)

	// PresignPut mints a time-limited direct-upload URL for key. The
	// caller transfers the bytes itself; no data flows through the gateway.
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Delete removes a blob. Deleting a non-existent key is success.
	Delete(ctx context.Context, key string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// Get 获取文件内容
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// PublicURL returns the public URL a key resolves to once uploaded.
	PublicURL(key string) string

	// Health 检查存储健康状态
	Health(ctx context.Context) error

	// Name 返回存储名称
	Name() string
}

// IsValidKey rejects empty keys and path traversal.
func IsValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
