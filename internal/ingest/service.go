package ingest

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velatra/photofolio/config"
	"github.com/velatra/photofolio/database/models"
	albumsrepo "github.com/velatra/photofolio/database/repo/albums"
	photosrepo "github.com/velatra/photofolio/database/repo/photos"
	"github.com/velatra/photofolio/internal/exif"
	"github.com/velatra/photofolio/internal/tags"
	"github.com/velatra/photofolio/internal/thumbnail"
	"github.com/velatra/photofolio/storage"
	"github.com/velatra/photofolio/utils/format"
	"github.com/velatra/photofolio/utils/generator"
)

// Service 摄取编排器
// 串联校验、上传、派生、元数据提取、标签协调与落库；两个存储与一个
// 元数据库之间没有分布式事务，一致性契约见各方法注释
type Service struct {
	cfg    *config.Config
	store  storage.Gateway
	photos *photosrepo.Repository
	albums *albumsrepo.Repository
	tags   *tags.Service
	keys   *generator.KeyGenerator

	// onChange 写路径完成后触发，用于读路径缓存失效
	onChange func()
}

// NewService 创建摄取服务
func NewService(cfg *config.Config, store storage.Gateway, photos *photosrepo.Repository,
	albums *albumsrepo.Repository, tagSvc *tags.Service) *Service {
	return &Service{
		cfg:    cfg,
		store:  store,
		photos: photos,
		albums: albums,
		tags:   tagSvc,
		keys:   generator.NewKeyGenerator(),
	}
}

// OnChange 注册写路径完成回调
func (s *Service) OnChange(fn func()) {
	s.onChange = fn
}

func (s *Service) notifyChange() {
	if s.onChange != nil {
		s.onChange()
	}
}

// UploadInput Flow A 服务器代理上传的单文件入参
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte

	Title   string
	Tags    string
	Status  string
	AlbumID *uint
}

// Ingest Flow A：文件字节经应用服务器代理入库
//
// 阶段严格顺序执行，任何一步失败整个上传中止，不会产生 Photo 行；
// 失败点之前已上传的 blob 不回滚（已接受的一致性缺口）
func (s *Service) Ingest(ctx context.Context, in UploadInput, progress ProgressFunc) (*models.Photo, error) {
	status, err := s.validateUpload(&in)
	if err != nil {
		return nil, err
	}
	album, err := s.resolveAlbum(in.AlbumID)
	if err != nil {
		return nil, err
	}
	emit(progress, StageReceived)

	originalKey := s.keys.OriginalKey(in.Filename)
	originalURL, err := s.store.Put(ctx, originalKey, bytes.NewReader(in.Data), in.Size, in.ContentType)
	if err != nil {
		return nil, &StorageError{Op: "put", Key: originalKey, Err: err}
	}
	emit(progress, StageOriginalUploaded)

	thumb, err := thumbnail.Generate(in.Data, s.cfg.ThumbnailMaxSize, s.cfg.ThumbnailQuality)
	if err != nil {
		return nil, &DerivativeError{Err: err}
	}
	emit(progress, StageThumbnailGenerated)

	thumbKey := s.keys.ThumbnailKey(in.Filename)
	thumbURL, err := s.store.Put(ctx, thumbKey, bytes.NewReader(thumb.Data), int64(len(thumb.Data)), "image/jpeg")
	if err != nil {
		return nil, &StorageError{Op: "put", Key: thumbKey, Err: err}
	}
	var variantKeys models.KeyList
	if s.cfg.ThumbnailMultiSizes {
		variantKeys, err = s.uploadSizedThumbnails(ctx, thumbKey, in.Data)
		if err != nil {
			return nil, err
		}
	}
	emit(progress, StageThumbnailUploaded)

	// EXIF 提取失败不致命，照片按无元数据入库
	meta, _ := exif.Extract(in.Data)
	takenAt := time.Now()
	if meta != nil && meta.TakenAt != nil {
		takenAt = *meta.TakenAt
	}
	emit(progress, StageExifExtracted)

	tagModels, err := s.tags.Reconcile(tags.ParseList(in.Tags))
	if err != nil {
		return nil, &PersistenceError{Op: "tag reconcile", Err: err}
	}
	emit(progress, StageTagsReconciled)

	photo := &models.Photo{
		Identifier:   uuid.NewString(),
		Title:        titleOrFilename(in.Title, in.Filename),
		OriginalName: in.Filename,
		FileSize:     in.Size,
		MimeType:     in.ContentType,
		URL:          originalURL,
		StorageKey:   originalKey,
		ThumbnailURL: &thumbURL,
		ThumbnailKey: &thumbKey,
		VariantKeys:  variantKeys,
		TakenAt:      takenAt,
		Status:       status,
		Exif:         exifBlob(meta),
		Tags:         tagModels,
	}
	if album != nil {
		photo.AlbumID = &album.ID
	}

	if err := s.photos.Create(photo); err != nil {
		return nil, &PersistenceError{Op: "photo create", Err: err}
	}
	emit(progress, StageRecordCommitted)
	s.notifyChange()

	return photo, nil
}

// uploadSizedThumbnails 多尺寸派生模式，附加 320/640/1024 三档
// 变体键从主缩略图键推导，返回的键列表随记录落库，删除时按此回收
func (s *Service) uploadSizedThumbnails(ctx context.Context, thumbKey string, data []byte) (models.KeyList, error) {
	results, err := thumbnail.GenerateSet(data, nil)
	if err != nil {
		return nil, &DerivativeError{Err: err}
	}
	keys := make(models.KeyList, 0, len(results))
	for i, r := range results {
		key := generator.SizedVariantKey(thumbKey, thumbnail.DefaultSizes[i].MaxDim)
		if _, err := s.store.Put(ctx, key, bytes.NewReader(r.Data), int64(len(r.Data)), "image/jpeg"); err != nil {
			return nil, &StorageError{Op: "put", Key: key, Err: err}
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// BatchFailure 批量上传中单个文件的失败记录
type BatchFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// BatchResult 批量上传聚合结果
type BatchResult struct {
	Succeeded []*models.Photo `json:"succeeded"`
	Failed    []BatchFailure  `json:"failed"`
}

// BatchProgressFunc 批量进度回调，index 为提交顺序中的文件下标
type BatchProgressFunc func(index int, filename string, ev Event)

// IngestBatch 按提交顺序逐个处理文件，单个失败不中止整批
// 文件之间响应 ctx 取消，单文件内部不可中断
func (s *Service) IngestBatch(ctx context.Context, files []UploadInput, progress BatchProgressFunc) (*BatchResult, error) {
	result := &BatchResult{}

	for i, in := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var fn ProgressFunc
		if progress != nil {
			idx, name := i, in.Filename
			fn = func(ev Event) { progress(idx, name, ev) }
		}

		photo, err := s.Ingest(ctx, in, fn)
		if err != nil {
			log.Printf("Batch ingest: file '%s' failed: %v", in.Filename, err)
			result.Failed = append(result.Failed, BatchFailure{Filename: in.Filename, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, photo)
	}

	return result, nil
}

// SignRequest Flow B 签名请求
type SignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required"`
}

// SignResult 一对预签名直传 URL 及其未来的公共地址
type SignResult struct {
	OriginalKey        string `json:"originalKey"`
	ThumbnailKey       string `json:"thumbnailKey"`
	OriginalUploadURL  string `json:"originalUploadUrl"`
	ThumbnailUploadURL string `json:"thumbnailUploadUrl"`
	OriginalPublicURL  string `json:"originalPublicUrl"`
	ThumbnailPublicURL string `json:"thumbnailPublicUrl"`
	ExpiresIn          int    `json:"expiresIn"`
}

// Sign Flow B 第一步：校验并签发原图与缩略图的直传 URL
// 字节不经过本服务；键名在签发时即确定，提交时原样回传
func (s *Service) Sign(ctx context.Context, req SignRequest) (*SignResult, error) {
	if err := s.validateSignRequest(req); err != nil {
		return nil, err
	}

	ttl := s.cfg.PresignTTL()
	originalKey := s.keys.OriginalKey(req.Filename)
	thumbKey := s.keys.ThumbnailKey(req.Filename)

	originalUpload, err := s.store.PresignPut(ctx, originalKey, ttl)
	if err != nil {
		return nil, &StorageError{Op: "presign", Key: originalKey, Err: err}
	}
	thumbUpload, err := s.store.PresignPut(ctx, thumbKey, ttl)
	if err != nil {
		return nil, &StorageError{Op: "presign", Key: thumbKey, Err: err}
	}

	return &SignResult{
		OriginalKey:        originalKey,
		ThumbnailKey:       thumbKey,
		OriginalUploadURL:  originalUpload,
		ThumbnailUploadURL: thumbUpload,
		OriginalPublicURL:  s.store.PublicURL(originalKey),
		ThumbnailPublicURL: s.store.PublicURL(thumbKey),
		ExpiresIn:          int(ttl / time.Second),
	}, nil
}

// CommitInput Flow B 元数据提交
// 客户端已直传原图与缩略图，此处只落库
type CommitInput struct {
	Title        string                 `json:"title"`
	Filename     string                 `json:"filename"`
	ContentType  string                 `json:"contentType"`
	FileSize     int64                  `json:"fileSize"`
	OriginalKey  string                 `json:"originalKey" binding:"required"`
	ThumbnailKey string                 `json:"thumbnailKey"`
	Tags         string                 `json:"tags"`
	Status       string                 `json:"status"`
	AlbumID      *uint                  `json:"albumId"`
	TakenAt      *time.Time             `json:"takenAt"`
	Exif         map[string]interface{} `json:"exif"`
}

// CommitDirect Flow B 第二步：接受元数据提交并创建记录
//
// 默认信任客户端已完成直传，不验证 blob 存在（记录可能悬空，已接受
// 的风险）；upload_verify_direct 开启时在提交前探测原图是否存在
func (s *Service) CommitDirect(ctx context.Context, in CommitInput) (*models.Photo, error) {
	status, err := models.ParsePhotoStatus(in.Status)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if in.OriginalKey == "" {
		return nil, &ValidationError{Reason: "originalKey is required"}
	}
	album, err := s.resolveAlbum(in.AlbumID)
	if err != nil {
		return nil, err
	}

	if s.cfg.UploadVerifyDirect {
		exists, err := s.store.Exists(ctx, in.OriginalKey)
		if err != nil {
			return nil, &StorageError{Op: "stat", Key: in.OriginalKey, Err: err}
		}
		if !exists {
			return nil, &ValidationError{Reason: "original blob not found at '" + in.OriginalKey + "'"}
		}
	}

	tagModels, err := s.tags.Reconcile(tags.ParseList(in.Tags))
	if err != nil {
		return nil, &PersistenceError{Op: "tag reconcile", Err: err}
	}

	takenAt := time.Now()
	if in.TakenAt != nil {
		takenAt = *in.TakenAt
	}

	photo := &models.Photo{
		Identifier:   uuid.NewString(),
		Title:        titleOrFilename(in.Title, in.Filename),
		OriginalName: in.Filename,
		FileSize:     in.FileSize,
		MimeType:     in.ContentType,
		URL:          s.store.PublicURL(in.OriginalKey),
		StorageKey:   in.OriginalKey,
		TakenAt:      takenAt,
		Status:       status,
		Exif:         models.ExifBlob(in.Exif),
		Tags:         tagModels,
	}
	if in.ThumbnailKey != "" {
		thumbURL := s.store.PublicURL(in.ThumbnailKey)
		photo.ThumbnailURL = &thumbURL
		thumbKey := in.ThumbnailKey
		photo.ThumbnailKey = &thumbKey
	}
	if album != nil {
		photo.AlbumID = &album.ID
	}

	if err := s.photos.Create(photo); err != nil {
		return nil, &PersistenceError{Op: "photo create", Err: err}
	}
	s.notifyChange()

	return photo, nil
}

// UpdateInput 元数据部分更新，nil 字段不变
type UpdateInput struct {
	Title   *string `json:"title"`
	Status  *string `json:"status"`
	AlbumID *uint   `json:"albumId"`
}

// Update 更新照片的标题、状态或所属相册
func (s *Service) Update(identifier string, in UpdateInput) (*models.Photo, error) {
	updates := map[string]interface{}{}

	if in.Title != nil {
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Status != nil {
		status, err := models.ParsePhotoStatus(*in.Status)
		if err != nil {
			return nil, &ValidationError{Reason: err.Error()}
		}
		updates["status"] = status
	}
	if in.AlbumID != nil {
		album, err := s.resolveAlbum(in.AlbumID)
		if err != nil {
			return nil, err
		}
		updates["album_id"] = album.ID
	}
	if len(updates) == 0 {
		return nil, &ValidationError{Reason: "no fields to update"}
	}

	photo, err := s.photos.Update(identifier, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, &PersistenceError{Op: "photo update", Err: err}
	}
	s.notifyChange()
	return photo, nil
}

// Delete 删除照片：先多尺寸变体与缩略图 blob，再原图 blob，最后数据库行
//
// 存储删除在行删除之前，中途失败留下「blob 在、行在」的可恢复状态；
// 任一 blob 删除失败则中止，不删行
func (s *Service) Delete(ctx context.Context, identifier string) error {
	photo, err := s.photos.GetByIdentifier(identifier)
	if err != nil {
		return err
	}

	for _, key := range photo.VariantKeys {
		if err := s.store.Delete(ctx, key); err != nil {
			return &StorageError{Op: "delete", Key: key, Err: err}
		}
	}
	if photo.ThumbnailKey != nil && *photo.ThumbnailKey != "" {
		if err := s.store.Delete(ctx, *photo.ThumbnailKey); err != nil {
			return &StorageError{Op: "delete", Key: *photo.ThumbnailKey, Err: err}
		}
	}
	if err := s.store.Delete(ctx, photo.StorageKey); err != nil {
		return &StorageError{Op: "delete", Key: photo.StorageKey, Err: err}
	}

	if err := s.photos.Delete(photo); err != nil {
		return &PersistenceError{Op: "photo delete", Err: err}
	}
	s.notifyChange()
	return nil
}

// validateUpload 任何 I/O 之前的校验，失败返回 ValidationError
func (s *Service) validateUpload(in *UploadInput) (models.PhotoStatus, error) {
	if len(in.Data) == 0 {
		return "", &ValidationError{Reason: "file is required"}
	}
	if in.Filename == "" {
		return "", &ValidationError{Reason: "filename is required"}
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return "", &ValidationError{Reason: "content type '" + in.ContentType + "' is not an image"}
	}
	if in.Size <= 0 {
		in.Size = int64(len(in.Data))
	}
	if in.Size > s.cfg.MaxUploadBytes() {
		return "", &ValidationError{Reason: "file exceeds maximum upload size of " + format.HumanReadableSize(s.cfg.MaxUploadBytes())}
	}

	status, err := models.ParsePhotoStatus(in.Status)
	if err != nil {
		return "", &ValidationError{Reason: err.Error()}
	}
	return status, nil
}

func (s *Service) validateSignRequest(req SignRequest) error {
	if req.Filename == "" {
		return &ValidationError{Reason: "filename is required"}
	}
	if !strings.HasPrefix(req.ContentType, "image/") {
		return &ValidationError{Reason: "content type '" + req.ContentType + "' is not an image"}
	}
	if req.FileSize <= 0 {
		return &ValidationError{Reason: "fileSize must be positive"}
	}
	if req.FileSize > s.cfg.MaxUploadBytes() {
		return &ValidationError{Reason: "file exceeds maximum upload size of " + format.HumanReadableSize(s.cfg.MaxUploadBytes())}
	}
	return nil
}

// resolveAlbum 校验相册外键；nil 入参返回 nil
func (s *Service) resolveAlbum(albumID *uint) (*models.Album, error) {
	if albumID == nil {
		return nil, nil
	}
	album, err := s.albums.GetByID(*albumID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Reason: "album not found"}
		}
		return nil, &PersistenceError{Op: "album lookup", Err: err}
	}
	return album, nil
}

func titleOrFilename(title, filename string) string {
	title = strings.TrimSpace(title)
	if title != "" {
		return title
	}
	return filename
}

// exifBlob 把归一化元数据铺平成 JSON 列的存储形态
func exifBlob(meta *exif.Metadata) models.ExifBlob {
	if meta == nil {
		return nil
	}
	blob := models.ExifBlob{}
	if meta.Camera != nil {
		blob["camera"] = *meta.Camera
	}
	if meta.Lens != nil {
		blob["lens"] = *meta.Lens
	}
	if meta.ISO != nil {
		blob["iso"] = *meta.ISO
	}
	if meta.ShutterSpeed != nil {
		blob["shutter"] = *meta.ShutterSpeed
	}
	if meta.Aperture != nil {
		blob["aperture"] = *meta.Aperture
	}
	if meta.FocalLength != nil {
		blob["focalLength"] = *meta.FocalLength
	}
	if meta.TakenAt != nil {
		blob["takenAt"] = meta.TakenAt.Format(time.RFC3339)
	}
	if len(meta.Raw) > 0 {
		blob["raw"] = meta.Raw
	}
	if len(blob) == 0 {
		return nil
	}
	return blob
}
