package core

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/velatra/photofolio/api/common"
	"github.com/velatra/photofolio/storage"
)

// blobHandler 按存储键回源 blob，服务 GET /files/*key
// 公共 URL 未指向 CDN 或对象存储域名时的兜底访问路径
func blobHandler(store storage.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		if !storage.IsValidKey(key) {
			common.RespondError(c, http.StatusBadRequest, "Invalid blob key")
			return
		}

		reader, err := store.Get(c.Request.Context(), key)
		if err != nil {
			common.RespondError(c, http.StatusNotFound, "Blob not found")
			return
		}
		defer func() { _ = reader.Close() }()

		contentType := mime.TypeByExtension(path.Ext(key))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.DataFromReader(http.StatusOK, -1, contentType, reader, nil)
	}
}
