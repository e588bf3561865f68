package core

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/velatra/photofolio/api/middleware"
	"github.com/velatra/photofolio/cache"
	"github.com/velatra/photofolio/config"
	"github.com/velatra/photofolio/database"
	"github.com/velatra/photofolio/storage"
)

var startTime = time.Now()

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	Provider database.Provider
	Store    storage.Gateway
	Cache    cache.Cache
	Config   *config.Config
}

// setupRouter 组装 gin 引擎与所有中间件
func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := deps.Config

	// 仅在开发版本时启用 gin 日志
	router := gin.New()
	if config.CommitHash == "n/a" {
		router.Use(gin.Logger())
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	_ = router.SetTrustedProxies(nil)

	// 上传经多部分表单进入，限制表单内存
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		apiRateLimiter.StopCleanup()
	}

	RegisterRoutes(router, deps, apiRateLimiter)

	return router, cleanup
}

// StartServer 创建 http.Server
func StartServer(deps *ServerDependencies) (*http.Server, func()) {
	cfg := deps.Config
	router, clean := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
