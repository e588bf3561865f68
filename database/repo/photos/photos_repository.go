package photos

import (
	"github.com/velatra/photofolio/database/models"
	"gorm.io/gorm"
)

// Repository 照片仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的照片仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListFilter narrows the photo listing; zero values mean "no filter".
// Status filtering is resolved by the caller (default PUBLISHED-only).
type ListFilter struct {
	Tag    string
	Status models.PhotoStatus
}

// Create 保存照片及其标签关联
func (r *Repository) Create(photo *models.Photo) error {
	return r.db.Create(photo).Error
}

// GetByIdentifier 通过标识符获取照片
func (r *Repository) GetByIdentifier(identifier string) (*models.Photo, error) {
	var photo models.Photo
	err := r.db.Preload("Tags").Preload("Album").
		Where("identifier = ?", identifier).First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// List 返回过滤后的照片列表，按拍摄时间倒序，其次按创建时间倒序
func (r *Repository) List(filter ListFilter) ([]*models.Photo, error) {
	query := r.db.Model(&models.Photo{}).
		Preload("Tags").Preload("Album")

	if filter.Status != "" {
		query = query.Where("photos.status = ?", filter.Status)
	}

	if filter.Tag != "" {
		query = query.
			Joins("JOIN photo_tags ON photo_tags.photo_id = photos.id").
			Joins("JOIN tags ON tags.id = photo_tags.tag_id").
			Where("tags.name = ?", filter.Tag)
	}

	var list []*models.Photo
	err := query.Order("taken_at DESC").Order("photos.created_at DESC").Find(&list).Error
	return list, err
}

// Update 更新照片字段并返回最新记录
func (r *Repository) Update(identifier string, updates map[string]interface{}) (*models.Photo, error) {
	result := r.db.Model(&models.Photo{}).
		Where("identifier = ?", identifier).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByIdentifier(identifier)
}

// Delete 删除照片记录及其标签关联
func (r *Repository) Delete(photo *models.Photo) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(photo).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(photo).Error
	})
}

// CountByAlbum 统计相册内照片数量
func (r *Repository) CountByAlbum(albumID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Photo{}).Where("album_id = ?", albumID).Count(&count).Error
	return count, err
}
