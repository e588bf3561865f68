package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// 存储配置
	StorageType          string `mapstructure:"storage_type"`
	StorageLocalPath     string `mapstructure:"storage_local_path"`
	StoragePublicBaseURL string `mapstructure:"storage_public_base_url"`
	MinioEndpoint        string `mapstructure:"minio_endpoint"`
	MinioAccessKeyID     string `mapstructure:"minio_access_key_id"`
	MinioSecretAccessKey string `mapstructure:"minio_secret_access_key"`
	MinioBucketName      string `mapstructure:"minio_bucket_name"`
	MinioUseSSL          bool   `mapstructure:"minio_use_ssl"`

	// 上传配置
	UploadMaxSizeMB     int  `mapstructure:"upload_max_size_mb"`
	UploadPresignTTL    int  `mapstructure:"upload_presign_ttl"`
	UploadVerifyDirect  bool `mapstructure:"upload_verify_direct"`
	ThumbnailMaxSize    int  `mapstructure:"thumbnail_max_size"`
	ThumbnailQuality    int  `mapstructure:"thumbnail_quality"`
	ThumbnailMultiSizes bool `mapstructure:"thumbnail_multi_sizes"`

	// 认证配置
	AdminToken string `mapstructure:"admin_token"`

	// 限流配置
	RateLimitApiRPS     float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitApiBurst   int           `mapstructure:"rate_limit_api_burst"`
	RateLimitExpireTime time.Duration `mapstructure:"rate_limit_expire_time"`

	// 缓存配置
	CacheEnabled bool `mapstructure:"cache_enabled"`
	CacheTTL     int  `mapstructure:"cache_ttl"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Info: .env file not found, using defaults and environment variables")
	} else {
		fmt.Fprintln(os.Stderr, "Info: Loaded configuration from .env file")
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}
}

// setDefaults 设置默认值
func setDefaults() {
	// 服务器配置默认值
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("server_domain", "")
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "30s")
	viper.SetDefault("server_idle_timeout", "120s")

	// 数据库配置默认值
	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "photofolio")
	viper.SetDefault("db_file_path", "")
	viper.SetDefault("db_max_open_conns", 100)
	viper.SetDefault("db_max_idle_conns", 25)
	viper.SetDefault("db_conn_max_lifetime", 3600)

	// 存储配置默认值
	viper.SetDefault("storage_type", "local")
	viper.SetDefault("storage_local_path", "./data/blobs")
	viper.SetDefault("storage_public_base_url", "")
	viper.SetDefault("minio_endpoint", "")
	viper.SetDefault("minio_access_key_id", "")
	viper.SetDefault("minio_secret_access_key", "")
	viper.SetDefault("minio_bucket_name", "photofolio")
	viper.SetDefault("minio_use_ssl", true)

	// 上传配置默认值
	viper.SetDefault("upload_max_size_mb", 30)
	viper.SetDefault("upload_presign_ttl", 3600)
	viper.SetDefault("upload_verify_direct", false)
	viper.SetDefault("thumbnail_max_size", 300)
	viper.SetDefault("thumbnail_quality", 80)
	viper.SetDefault("thumbnail_multi_sizes", false)

	// 认证配置默认值
	viper.SetDefault("admin_token", "")

	// 限流配置默认值
	viper.SetDefault("rate_limit_api_rps", 30.0)
	viper.SetDefault("rate_limit_api_burst", 60)
	viper.SetDefault("rate_limit_expire_time", "10m")

	// 缓存配置默认值
	viper.SetDefault("cache_enabled", true)
	viper.SetDefault("cache_ttl", 300)
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// BaseURL 返回基础 URL，用于生成图片链接
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return c.ServerDomain
	}
	host := c.ServerHost
	if host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.ServerPort)
}

// PublicBaseURL 返回对象存储公共访问基础 URL
func (c *Config) PublicBaseURL() string {
	if c.StoragePublicBaseURL != "" {
		return c.StoragePublicBaseURL
	}
	return c.BaseURL() + "/files"
}

// MaxUploadBytes 返回单文件上传大小上限
func (c *Config) MaxUploadBytes() int64 {
	mb := c.UploadMaxSizeMB
	if mb <= 0 {
		mb = 30
	}
	return int64(mb) << 20
}

// PresignTTL 返回预签名 URL 有效期
func (c *Config) PresignTTL() time.Duration {
	ttl := c.UploadPresignTTL
	if ttl <= 0 {
		ttl = 3600
	}
	return time.Duration(ttl) * time.Second
}
