package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/velatra/photofolio/api/common"
	"github.com/velatra/photofolio/config"
)

// AdminAuth 管理端静态令牌守卫
// 会话体系在边界之外，这里只校验 Authorization 携带的共享令牌；
// 未配置 admin_token 时拒绝所有管理请求而不是放行
func AdminAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminToken == "" {
			common.RespondError(c, http.StatusForbidden, "Admin API is disabled: no admin token configured")
			c.Abort()
			return
		}

		token := c.GetHeader("Authorization")
		token = strings.TrimPrefix(token, "Bearer ")

		if token == "" {
			common.RespondError(c, http.StatusUnauthorized, "Admin token is required")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AdminToken)) != 1 {
			common.RespondError(c, http.StatusUnauthorized, "Invalid admin token")
			c.Abort()
			return
		}

		c.Next()
	}
}
