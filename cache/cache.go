package cache

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/velatra/photofolio/config"
)

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = errors.New("cache miss")

// Cache 进程内缓存接口
type Cache interface {
	// Set 设置缓存项
	Set(key string, value interface{}, expiration time.Duration) error

	// Get 获取缓存项并反序列化到 dest
	Get(key string, dest interface{}) error

	// Delete 删除缓存项
	Delete(key string) error

	// Clear 清空全部缓存项，写路径用它做整体失效
	Clear() error

	// Close 关闭缓存
	Close() error
}

// New 根据配置创建缓存；禁用时返回 no-op 实现
func New(cfg *config.Config) (Cache, error) {
	if !cfg.CacheEnabled {
		return &noopCache{}, nil
	}

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     64 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &ristrettoCache{client: client}, nil
}

// ristrettoCache 基于 ristretto 的进程内缓存
// 值统一以 JSON 字节存储，读取侧反序列化到调用方的类型
type ristrettoCache struct {
	client *ristretto.Cache
}

func (c *ristrettoCache) Set(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.client.SetWithTTL(key, data, int64(len(data)), expiration) {
		// 等待值被实际写入，保证后续读取可见
		c.client.Wait()
	}
	return nil
}

func (c *ristrettoCache) Get(key string, dest interface{}) error {
	value, found := c.client.Get(key)
	if !found {
		return ErrCacheMiss
	}
	data, ok := value.([]byte)
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrCacheMiss
	}
	return nil
}

func (c *ristrettoCache) Delete(key string) error {
	c.client.Del(key)
	return nil
}

func (c *ristrettoCache) Clear() error {
	c.client.Clear()
	return nil
}

func (c *ristrettoCache) Close() error {
	c.client.Close()
	return nil
}

// noopCache 缓存禁用时的空实现，所有读取都未命中
type noopCache struct{}

func (n *noopCache) Set(string, interface{}, time.Duration) error { return nil }
func (n *noopCache) Get(string, interface{}) error                { return ErrCacheMiss }
func (n *noopCache) Delete(string) error                          { return nil }
func (n *noopCache) Clear() error                                 { return nil }
func (n *noopCache) Close() error                                 { return nil }
