package core

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/velatra/photofolio/config"
)

// healthHandler 汇总数据库与存储的健康状态
func healthHandler(deps *ServerDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{
			"database": checkDatabaseHealth(deps),
			"storage":  checkStorageHealth(deps),
		}

		httpStatus := http.StatusOK
		for _, result := range checks {
			if s, ok := result.(string); ok && s != "ok" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(httpStatus, gin.H{
			"status":  statusWord(httpStatus),
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks":  checks,
		})
	}
}

func checkDatabaseHealth(deps *ServerDependencies) string {
	if deps.Provider == nil {
		return "not initialized"
	}
	if err := deps.Provider.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkStorageHealth(deps *ServerDependencies) string {
	if deps.Store == nil {
		return "not initialized"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := deps.Store.Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func statusWord(httpStatus int) string {
	if httpStatus == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
