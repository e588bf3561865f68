package albums

import (
	"github.com/velatra/photofolio/database/models"
	"gorm.io/gorm"
)

// Repository 相册仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的相册仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 保存相册
func (r *Repository) Create(album *models.Album) error {
	return r.db.Create(album).Error
}

// GetByID 按主键获取相册
func (r *Repository) GetByID(id uint) (*models.Album, error) {
	var album models.Album
	err := r.db.First(&album, id).Error
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// GetBySlug 按 slug 获取相册及其照片（按手动顺序、拍摄时间、创建时间排序）
func (r *Repository) GetBySlug(slug string) (*models.Album, error) {
	var album models.Album
	err := r.db.
		Preload("Cover").
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC").Order("taken_at DESC").Order("created_at DESC")
		}).
		Where("slug = ?", slug).First(&album).Error
	if err != nil {
		return nil, err
	}
	return &album, nil
}

// List 返回全部相册，按创建时间倒序，附带封面
func (r *Repository) List() ([]*models.Album, error) {
	var list []*models.Album
	err := r.db.
		Preload("Cover").
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// SlugExists 检查 slug 是否已被占用
func (r *Repository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Album{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}
