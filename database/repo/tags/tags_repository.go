package tags

import (
	"errors"
	"strings"

	"github.com/velatra/photofolio/database/models"
	"gorm.io/gorm"
)

// Repository 标签仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的标签仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByName 按名称精确查找标签
func (r *Repository) GetByName(name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where("name = ?", name).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Upsert finds or creates a tag by exact name. The unique index on name is
// the arbiter under concurrency: if the insert loses the race, the winning
// row is fetched and returned.
func (r *Repository) Upsert(name string) (*models.Tag, error) {
	tag, err := r.GetByName(name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := &models.Tag{Name: name}
	if err := r.db.Create(created).Error; err != nil {
		if isUniqueViolation(err) {
			return r.GetByName(name)
		}
		return nil, err
	}
	return created, nil
}

// ListAll 返回全部标签，按名称升序
func (r *Repository) ListAll() ([]*models.Tag, error) {
	var list []*models.Tag
	err := r.db.Order("name ASC").Find(&list).Error
	return list, err
}

// isUniqueViolation reports whether err is a duplicate-key failure from
// sqlite or postgres. Neither driver exposes a portable sentinel, so the
// check is textual, as coarse as that is.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
