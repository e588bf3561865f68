package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/velatra/photofolio/config"
)

// MinioGateway MinIO/S3 兼容对象存储网关（Cloudflare R2 等）
type MinioGateway struct {
	client        *minio.Client
	bucketName    string
	publicBaseURL string
}

// NewMinioGateway 创建 MinIO 存储网关
func NewMinioGateway(cfg *config.Config) (*MinioGateway, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 10 * time.Second,
		DisableCompression:    true,
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.MinioAccessKeyID, cfg.MinioSecretAccessKey, ""),
		Secure:    cfg.MinioUseSSL,
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket '%s' exists: %w", cfg.MinioBucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket '%s': %w", cfg.MinioBucketName, err)
		}
		log.Printf("Successfully created bucket: %s", cfg.MinioBucketName)
	}

	return &MinioGateway{
		client:        client,
		bucketName:    cfg.MinioBucketName,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL(), "/"),
	}, nil
}

// Put 上传文件并返回公共 URL
func (g *MinioGateway) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if !IsValidKey(key) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := g.client.PutObject(ctx, g.bucketName, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object '%s' to minio: %w", key, err)
	}

	return g.PublicURL(key), nil
}

// PresignPut 生成限时直传 URL
func (g *MinioGateway) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if !IsValidKey(key) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	u, err := g.client.PresignedPutObject(ctx, g.bucketName, key, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for '%s': %w", key, err)
	}
	return u.String(), nil
}

// Delete 删除对象；对象不存在视为成功
func (g *MinioGateway) Delete(ctx context.Context, key string) error {
	err := g.client.RemoveObject(ctx, g.bucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("failed to delete object '%s' from minio: %w", key, err)
	}
	return nil
}

// Exists 检查对象是否存在
func (g *MinioGateway) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.client.StatObject(ctx, g.bucketName, key, minio.StatObjectOptions{})
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object '%s': %w", key, err)
	}
	return true, nil
}

// Get 获取对象内容
func (g *MinioGateway) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := g.client.GetObject(ctx, g.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object '%s' from minio: %w", key, err)
	}
	return obj, nil
}

// PublicURL 返回对象的公共访问 URL
func (g *MinioGateway) PublicURL(key string) string {
	return g.publicBaseURL + "/" + key
}

// Health 检查存储健康状态
func (g *MinioGateway) Health(ctx context.Context) error {
	_, err := g.client.BucketExists(ctx, g.bucketName)
	return err
}

// Name 返回存储名称
func (g *MinioGateway) Name() string {
	return "minio"
}
