package albums

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velatra/photofolio/api/common"
	albumsvc "github.com/velatra/photofolio/internal/albums"
)

// Handler 相册接口处理器
type Handler struct {
	albums *albumsvc.Service
}

// NewHandler 创建相册处理器
func NewHandler(albums *albumsvc.Service) *Handler {
	return &Handler{albums: albums}
}

type createAlbumRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// Create 处理 POST /api/v1/albums
func (h *Handler) Create(c *gin.Context) {
	var req createAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	album, err := h.albums.Create(req.Title, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, albumsvc.ErrSlugTaken):
			common.RespondError(c, http.StatusConflict, "An album with this title already exists")
		case errors.Is(err, albumsvc.ErrEmptyTitle):
			common.RespondError(c, http.StatusBadRequest, "Album title is required")
		default:
			common.RespondError(c, http.StatusInternalServerError, "Failed to create album")
		}
		return
	}

	common.RespondSuccessMessage(c, "Album created", gin.H{
		"slug":  album.Slug,
		"title": album.Title,
	})
}

// List 处理 GET /api/v1/albums
func (h *Handler) List(c *gin.Context) {
	views, err := h.albums.List()
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to list albums")
		return
	}
	common.RespondSuccess(c, views)
}

// Get 处理 GET /api/v1/albums/:slug
func (h *Handler) Get(c *gin.Context) {
	detail, err := h.albums.GetBySlug(c.Param("slug"))
	if err != nil {
		if albumsvc.IsNotFound(err) {
			common.RespondError(c, http.StatusNotFound, "Album not found")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to fetch album")
		return
	}
	common.RespondSuccess(c, detail)
}
