package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// LocalGateway 本地文件存储实现，主要用于开发环境和测试
type LocalGateway struct {
	absBasePath   string
	publicBaseURL string
}

// NewLocalGateway 创建本地存储网关
func NewLocalGateway(basePath, publicBaseURL string) (*LocalGateway, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory '%s': %w", absPath, err)
	}

	testFile := filepath.Join(absPath, ".write_test_"+strconv.FormatInt(time.Now().UnixNano(), 10))
	f, err := os.Create(testFile)
	if err != nil {
		return nil, fmt.Errorf("local storage directory '%s' is not writable: %w", absPath, err)
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	return &LocalGateway{
		absBasePath:   absPath + string(os.PathSeparator),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Put 保存文件到本地存储
func (g *LocalGateway) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if !IsValidKey(key) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}

	dstPath := filepath.Join(g.absBasePath, key)
	if !strings.HasPrefix(dstPath, g.absBasePath) {
		return "", fmt.Errorf("invalid file path, potential directory traversal: %s", key)
	}

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for '%s': %w", key, err)
	}

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file '%s': %w", dstPath, err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to copy file content to '%s': %w", dstPath, err)
	}

	return g.PublicURL(key), nil
}

// PresignPut 本地存储不支持预签名直传
func (g *LocalGateway) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "", ErrPresignUnsupported
}

// Delete 删除文件；文件不存在视为成功
func (g *LocalGateway) Delete(ctx context.Context, key string) error {
	if !IsValidKey(key) {
		return fmt.Errorf("invalid storage key: %s", key)
	}

	fullPath := filepath.Join(g.absBasePath, key)
	if !strings.HasPrefix(fullPath, g.absBasePath) {
		return fmt.Errorf("invalid file path, potential directory traversal: %s", key)
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file '%s': %w", fullPath, err)
	}
	return nil
}

// Exists 检查文件是否存在
func (g *LocalGateway) Exists(ctx context.Context, key string) (bool, error) {
	fullPath := filepath.Join(g.absBasePath, key)
	if !strings.HasPrefix(fullPath, g.absBasePath) {
		return false, fmt.Errorf("invalid file path, potential directory traversal: %s", key)
	}

	_, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Get 获取文件内容
func (g *LocalGateway) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath := filepath.Join(g.absBasePath, key)
	if !strings.HasPrefix(fullPath, g.absBasePath) {
		return nil, fmt.Errorf("invalid file path, potential directory traversal: %s", key)
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", fullPath, err)
	}
	return f, nil
}

// PublicURL 返回文件的公共访问 URL
func (g *LocalGateway) PublicURL(key string) string {
	return g.publicBaseURL + "/" + key
}

// Health 检查存储健康状态
func (g *LocalGateway) Health(ctx context.Context) error {
	if _, err := os.Stat(g.absBasePath); err != nil {
		return fmt.Errorf("local storage directory unavailable: %w", err)
	}
	return nil
}

// Name 返回存储名称
func (g *LocalGateway) Name() string {
	return "local"
}

// Root 返回本地存储根目录，供路由挂载静态文件服务
func (g *LocalGateway) Root() string {
	return g.absBasePath
}
