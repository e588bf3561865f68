package photos

import (
	"fmt"
	"log"
	"time"

	"github.com/velatra/photofolio/cache"
	"github.com/velatra/photofolio/config"
	"github.com/velatra/photofolio/database/models"
	photosrepo "github.com/velatra/photofolio/database/repo/photos"
	"github.com/velatra/photofolio/internal/tags"
)

// Service 照片读路径服务
// 列表查询带进程内缓存，任何写路径完成后整体失效
type Service struct {
	cfg   *config.Config
	repo  *photosrepo.Repository
	tags  *tags.Service
	cache cache.Cache
}

// NewService 创建照片查询服务
func NewService(cfg *config.Config, repo *photosrepo.Repository, tagSvc *tags.Service, c cache.Cache) *Service {
	return &Service{cfg: cfg, repo: repo, tags: tagSvc, cache: c}
}

// PhotoView 对外暴露的照片视图
type PhotoView struct {
	Identifier   string                 `json:"identifier"`
	Title        string                 `json:"title"`
	OriginalName string                 `json:"originalName,omitempty"`
	FileSize     int64                  `json:"fileSize,omitempty"`
	MimeType     string                 `json:"mimeType,omitempty"`
	URL          string                 `json:"url"`
	ThumbnailURL *string                `json:"thumbnailUrl,omitempty"`
	TakenAt      time.Time              `json:"takenAt"`
	Status       string                 `json:"status"`
	Exif         map[string]interface{} `json:"exif,omitempty"`
	SortOrder    int                    `json:"sortOrder"`
	AlbumID      *uint                  `json:"albumId,omitempty"`
	Tags         []string               `json:"tags"`
	CreatedAt    time.Time              `json:"createdAt"`
}

// ListResult 列表响应：过滤后的照片加完整标签表
type ListResult struct {
	Photos []PhotoView `json:"photos"`
	Tags   []string    `json:"tags"`
}

// InvalidStatusError 过滤参数里的非法状态，拒绝整个请求
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return "invalid status filter: " + e.Status
}

// List 按标签与状态过滤照片，默认只返回已发布
// 结果缓存 cache_ttl 秒，键由过滤条件构成
func (s *Service) List(tag, status string) (*ListResult, error) {
	st, err := models.ParsePhotoStatus(status)
	if err != nil {
		return nil, &InvalidStatusError{Status: status}
	}

	key := fmt.Sprintf("photos:list:%s:%s", tag, st)
	var cached ListResult
	if err := s.cache.Get(key, &cached); err == nil {
		return &cached, nil
	}

	list, err := s.repo.List(photosrepo.ListFilter{Tag: tag, Status: st})
	if err != nil {
		return nil, err
	}
	allTags, err := s.tags.ListAll()
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Photos: make([]PhotoView, 0, len(list)),
		Tags:   allTags,
	}
	for _, p := range list {
		result.Photos = append(result.Photos, ToView(p))
	}

	if err := s.cache.Set(key, result, s.cacheTTL()); err != nil {
		log.Printf("Warning: failed to cache photo list: %v", err)
	}
	return result, nil
}

// Get 按标识符读取单张照片
func (s *Service) Get(identifier string) (*PhotoView, error) {
	photo, err := s.repo.GetByIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	view := ToView(photo)
	return &view, nil
}

// Invalidate 写路径完成后清空读缓存
func (s *Service) Invalidate() {
	if err := s.cache.Clear(); err != nil {
		log.Printf("Warning: failed to clear photo cache: %v", err)
	}
}

func (s *Service) cacheTTL() time.Duration {
	ttl := s.cfg.CacheTTL
	if ttl <= 0 {
		ttl = 300
	}
	return time.Duration(ttl) * time.Second
}

// ToView 模型转视图
func ToView(p *models.Photo) PhotoView {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}

	return PhotoView{
		Identifier:   p.Identifier,
		Title:        p.Title,
		OriginalName: p.OriginalName,
		FileSize:     p.FileSize,
		MimeType:     p.MimeType,
		URL:          p.URL,
		ThumbnailURL: p.ThumbnailURL,
		TakenAt:      p.TakenAt,
		Status:       string(p.Status),
		Exif:         p.Exif,
		SortOrder:    p.SortOrder,
		AlbumID:      p.AlbumID,
		Tags:         names,
		CreatedAt:    p.CreatedAt,
	}
}
