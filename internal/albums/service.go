package albums

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/velatra/photofolio/database/models"
	albumsrepo "github.com/velatra/photofolio/database/repo/albums"
	photosrepo "github.com/velatra/photofolio/database/repo/photos"
	"github.com/velatra/photofolio/internal/photos"
)

// ErrSlugTaken slug 已被占用
var ErrSlugTaken = errors.New("album slug already taken")

// ErrEmptyTitle 标题为空
var ErrEmptyTitle = errors.New("album title is required")

// Service 相册服务层
type Service struct {
	repo   *albumsrepo.Repository
	photos *photosrepo.Repository
}

// NewService 创建相册服务
func NewService(repo *albumsrepo.Repository, photosRepo *photosrepo.Repository) *Service {
	return &Service{repo: repo, photos: photosRepo}
}

// AlbumView 相册列表视图
type AlbumView struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CoverURL    *string   `json:"coverUrl,omitempty"`
	PhotoCount  int64     `json:"photoCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AlbumDetail 相册详情，含有序照片列表
type AlbumDetail struct {
	AlbumView
	Photos []photos.PhotoView `json:"photos"`
}

// Create 创建相册，slug 由标题派生；重名返回 ErrSlugTaken
func (s *Service) Create(title, description string) (*models.Album, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	slug := models.SlugFromTitle(title)
	taken, err := s.repo.SlugExists(slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	album := &models.Album{
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(description),
	}
	if err := s.repo.Create(album); err != nil {
		return nil, err
	}
	return album, nil
}

// List 返回全部相册，附封面与照片数
func (s *Service) List() ([]AlbumView, error) {
	albums, err := s.repo.List()
	if err != nil {
		return nil, err
	}

	views := make([]AlbumView, 0, len(albums))
	for _, a := range albums {
		view := toView(a)
		count, err := s.photos.CountByAlbum(a.ID)
		if err != nil {
			return nil, err
		}
		view.PhotoCount = count
		views = append(views, view)
	}
	return views, nil
}

// GetBySlug 按 slug 返回相册详情与有序照片
func (s *Service) GetBySlug(slug string) (*AlbumDetail, error) {
	album, err := s.repo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}

	detail := &AlbumDetail{
		AlbumView: toView(album),
		Photos:    make([]photos.PhotoView, 0, len(album.Photos)),
	}
	detail.PhotoCount = int64(len(album.Photos))
	for _, p := range album.Photos {
		detail.Photos = append(detail.Photos, photos.ToView(p))
	}
	return detail, nil
}

// IsNotFound 相册不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func toView(a *models.Album) AlbumView {
	view := AlbumView{
		Slug:        a.Slug,
		Title:       a.Title,
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
	}
	if a.Cover != nil {
		cover := a.Cover.URL
		if a.Cover.ThumbnailURL != nil {
			cover = *a.Cover.ThumbnailURL
		}
		view.CoverURL = &cover
	}
	return view
}
