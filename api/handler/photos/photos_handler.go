package photos

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/velatra/photofolio/api/common"
	"github.com/velatra/photofolio/config"
	"github.com/velatra/photofolio/internal/ingest"
	photosvc "github.com/velatra/photofolio/internal/photos"
)

// Handler 照片接口处理器
type Handler struct {
	cfg    *config.Config
	ingest *ingest.Service
	query  *photosvc.Service
}

// NewHandler 创建照片处理器
func NewHandler(cfg *config.Config, ingestSvc *ingest.Service, querySvc *photosvc.Service) *Handler {
	return &Handler{cfg: cfg, ingest: ingestSvc, query: querySvc}
}

// Sign 处理 POST /api/v1/photos/sign 直传签名
func (h *Handler) Sign(c *gin.Context) {
	var req ingest.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.ingest.Sign(c.Request.Context(), req)
	if err != nil {
		respondIngestError(c, err)
		return
	}
	common.RespondSuccess(c, result)
}

// Upload 处理 POST /api/v1/photos/upload 服务器代理上传
// 单文件用 file 字段，批量用 files 字段；title/tags/status/album_id 随表单提交
func (h *Handler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	albumID, err := parseAlbumID(c.PostForm("album_id"))
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid album_id")
		return
	}

	shared := ingest.UploadInput{
		Title:   c.PostForm("title"),
		Tags:    c.PostForm("tags"),
		Status:  c.PostForm("status"),
		AlbumID: albumID,
	}

	if batch := form.File["files"]; len(batch) > 0 {
		h.uploadBatch(c, batch, shared)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "No file in request")
		return
	}

	in, err := h.readUpload(fileHeader, shared)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Failed to read upload: "+err.Error())
		return
	}

	photo, err := h.ingest.Ingest(c.Request.Context(), *in, nil)
	if err != nil {
		respondIngestError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Upload complete", photosvc.ToView(photo))
}

// uploadBatch 批量上传，逐个处理并聚合结果
func (h *Handler) uploadBatch(c *gin.Context, headers []*multipart.FileHeader, shared ingest.UploadInput) {
	files := make([]ingest.UploadInput, 0, len(headers))
	for _, fh := range headers {
		in, err := h.readUpload(fh, shared)
		if err != nil {
			common.RespondError(c, http.StatusBadRequest, "Failed to read upload '"+fh.Filename+"': "+err.Error())
			return
		}
		files = append(files, *in)
	}

	result, err := h.ingest.IngestBatch(c.Request.Context(), files, func(index int, filename string, ev ingest.Event) {
		log.Printf("Batch upload [%d/%d] %s: %s (%d%%)", index+1, len(files), filename, ev.Stage, ev.Percent)
	})
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Batch aborted: "+err.Error())
		return
	}

	succeeded := make([]photosvc.PhotoView, 0, len(result.Succeeded))
	for _, p := range result.Succeeded {
		succeeded = append(succeeded, photosvc.ToView(p))
	}
	common.RespondSuccess(c, gin.H{
		"succeeded": succeeded,
		"failed":    result.Failed,
	})
}

// readUpload 读取单个表单文件为摄取入参，批量字段随 shared 复制
func (h *Handler) readUpload(fh *multipart.FileHeader, shared ingest.UploadInput) (*ingest.UploadInput, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	// 读上限多留一字节，让超限文件走统一的校验错误
	data, err := io.ReadAll(io.LimitReader(f, h.cfg.MaxUploadBytes()+1))
	if err != nil {
		return nil, err
	}

	in := shared
	in.Filename = fh.Filename
	in.ContentType = fh.Header.Get("Content-Type")
	in.Size = int64(len(data))
	in.Data = data
	return &in, nil
}

// Commit 处理 POST /api/v1/photos/commit 直传流程的元数据提交
func (h *Handler) Commit(c *gin.Context) {
	var in ingest.CommitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	photo, err := h.ingest.CommitDirect(c.Request.Context(), in)
	if err != nil {
		respondIngestError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Commit complete", photosvc.ToView(photo))
}

// Update 处理 PATCH /api/v1/photos/:identifier
func (h *Handler) Update(c *gin.Context) {
	var in ingest.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	photo, err := h.ingest.Update(c.Param("identifier"), in)
	if err != nil {
		respondIngestError(c, err)
		return
	}
	common.RespondSuccess(c, photosvc.ToView(photo))
}

// Delete 处理 DELETE /api/v1/photos/:identifier
func (h *Handler) Delete(c *gin.Context) {
	if err := h.ingest.Delete(c.Request.Context(), c.Param("identifier")); err != nil {
		respondIngestError(c, err)
		return
	}
	common.RespondSuccessMessage(c, "Photo deleted", nil)
}

// List 处理 GET /api/v1/photos 公共列表
func (h *Handler) List(c *gin.Context) {
	result, err := h.query.List(c.Query("tag"), c.Query("status"))
	if err != nil {
		var ierr *photosvc.InvalidStatusError
		if errors.As(err, &ierr) {
			common.RespondError(c, http.StatusBadRequest, ierr.Error())
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to list photos")
		return
	}
	common.RespondSuccess(c, result)
}

// Get 处理 GET /api/v1/photos/:identifier
func (h *Handler) Get(c *gin.Context) {
	view, err := h.query.Get(c.Param("identifier"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.RespondError(c, http.StatusNotFound, "Photo not found")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Failed to fetch photo")
		return
	}
	common.RespondSuccess(c, view)
}

// respondIngestError 摄取错误分类到 HTTP 状态码
func respondIngestError(c *gin.Context, err error) {
	var verr *ingest.ValidationError
	var derr *ingest.DerivativeError
	var serr *ingest.StorageError
	var perr *ingest.PersistenceError

	switch {
	case errors.As(err, &verr):
		common.RespondError(c, http.StatusBadRequest, verr.Error())
	case errors.As(err, &derr):
		common.RespondError(c, http.StatusUnprocessableEntity, derr.Error())
	case errors.As(err, &serr):
		log.Printf("Storage error: %v", serr)
		common.RespondError(c, http.StatusBadGateway, "Storage operation failed")
	case errors.As(err, &perr):
		log.Printf("Persistence error: %v", perr)
		common.RespondError(c, http.StatusInternalServerError, "Failed to persist photo record")
	case errors.Is(err, gorm.ErrRecordNotFound):
		common.RespondError(c, http.StatusNotFound, "Photo not found")
	default:
		log.Printf("Unexpected ingest error: %v", err)
		common.RespondError(c, http.StatusInternalServerError, "Internal error")
	}
}

func parseAlbumID(raw string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, err
	}
	v := uint(id)
	return &v, nil
}
