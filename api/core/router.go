package core

import (
	"github.com/gin-gonic/gin"

	"github.com/velatra/photofolio/api/common"
	handlerAlbums "github.com/velatra/photofolio/api/handler/albums"
	handlerPhotos "github.com/velatra/photofolio/api/handler/photos"
	"github.com/velatra/photofolio/api/middleware"
	"github.com/velatra/photofolio/config"
	albumsrepo "github.com/velatra/photofolio/database/repo/albums"
	photosrepo "github.com/velatra/photofolio/database/repo/photos"
	tagsrepo "github.com/velatra/photofolio/database/repo/tags"
	svcAlbums "github.com/velatra/photofolio/internal/albums"
	"github.com/velatra/photofolio/internal/ingest"
	svcPhotos "github.com/velatra/photofolio/internal/photos"
	"github.com/velatra/photofolio/internal/tags"
	"github.com/velatra/photofolio/storage"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *ServerDependencies, apiRateLimiter *middleware.IPRateLimiter) {
	cfg := deps.Config
	db := deps.Provider.DB()

	// 仓库与服务装配
	photosRepo := photosrepo.NewRepository(db)
	tagsRepo := tagsrepo.NewRepository(db)
	albumsRepo := albumsrepo.NewRepository(db)

	tagSvc := tags.NewService(tagsRepo)
	querySvc := svcPhotos.NewService(cfg, photosRepo, tagSvc, deps.Cache)
	ingestSvc := ingest.NewService(cfg, deps.Store, photosRepo, albumsRepo, tagSvc)
	ingestSvc.OnChange(querySvc.Invalidate)
	albumSvc := svcAlbums.NewService(albumsRepo, photosRepo)

	photoHandler := handlerPhotos.NewHandler(cfg, ingestSvc, querySvc)
	albumHandler := handlerAlbums.NewHandler(albumSvc)

	registerBasicRoutes(router, deps)

	// 本地存储时由应用自己提供 blob 访问；其他网关在未配置公共
	// 基础 URL 时同样落到 /files，经 Gateway.Get 回源
	if local, ok := deps.Store.(*storage.LocalGateway); ok {
		router.Static("/files", local.Root())
	} else {
		router.GET("/files/*key", blobHandler(deps.Store))
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	})

	v1 := apiGroup.Group("/v1")
	v1.Use(apiRateLimiter.Middleware())
	{
		photosGroup := v1.Group("/photos")
		{
			// 公共读
			photosGroup.GET("", photoHandler.List)            // GET /api/v1/photos
			photosGroup.GET("/:identifier", photoHandler.Get) // GET /api/v1/photos/{identifier}

			// 管理端写
			adminPhotos := photosGroup.Group("")
			adminPhotos.Use(middleware.AdminAuth(cfg))
			{
				adminPhotos.POST("/sign", photoHandler.Sign)            // POST /api/v1/photos/sign
				adminPhotos.POST("/upload", photoHandler.Upload)        // POST /api/v1/photos/upload
				adminPhotos.POST("/commit", photoHandler.Commit)        // POST /api/v1/photos/commit
				adminPhotos.PATCH("/:identifier", photoHandler.Update)  // PATCH /api/v1/photos/{identifier}
				adminPhotos.DELETE("/:identifier", photoHandler.Delete) // DELETE /api/v1/photos/{identifier}
			}
		}

		albumsGroup := v1.Group("/albums")
		{
			albumsGroup.GET("", albumHandler.List)      // GET /api/v1/albums
			albumsGroup.GET("/:slug", albumHandler.Get) // GET /api/v1/albums/{slug}

			adminAlbums := albumsGroup.Group("")
			adminAlbums.Use(middleware.AdminAuth(cfg))
			{
				adminAlbums.POST("", albumHandler.Create) // POST /api/v1/albums
			}
		}
	}
}

// registerBasicRoutes 健康检查与版本
func registerBasicRoutes(router *gin.Engine, deps *ServerDependencies) {
	router.GET("/health", healthHandler(deps))

	router.GET("/version", func(c *gin.Context) {
		common.RespondSuccess(c, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})
}
