package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PhotoStatus 照片发布状态
type PhotoStatus string

const (
	StatusDraft     PhotoStatus = "DRAFT"
	StatusPublished PhotoStatus = "PUBLISHED"
	StatusArchived  PhotoStatus = "ARCHIVED"
)

// ParsePhotoStatus validates a caller-supplied status string.
// An empty string defaults to PUBLISHED.
func ParsePhotoStatus(s string) (PhotoStatus, error) {
	switch PhotoStatus(s) {
	case "":
		return StatusPublished, nil
	case StatusDraft, StatusPublished, StatusArchived:
		return PhotoStatus(s), nil
	default:
		return "", fmt.Errorf("invalid photo status: %q", s)
	}
}

// ExifBlob 照片元数据 JSON 列
// Stored as a text column; nil means no usable metadata was extracted.
type ExifBlob map[string]interface{}

func (b ExifBlob) Value() (driver.Value, error) {
	if b == nil {
		return nil, nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (b *ExifBlob) Scan(value interface{}) error {
	if value == nil {
		*b = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported exif column type %T", value)
	}
	if len(data) == 0 {
		*b = nil
		return nil
	}
	return json.Unmarshal(data, b)
}

// KeyList 存储键列表 JSON 列
type KeyList []string

func (l KeyList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *KeyList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported key list column type %T", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(data, l)
}

type Photo struct {
	gorm.Model
	Identifier   string `gorm:"uniqueIndex:idx_photo_identifier;not null"`
	Title        string
	OriginalName string `gorm:"not null"`
	FileSize     int64  `gorm:"not null"`
	MimeType     string `gorm:"not null"`

	// URL is the public location of the original blob; StorageKey is the
	// authoritative handle for deletion.
	URL        string `gorm:"not null"`
	StorageKey string `gorm:"uniqueIndex:idx_photo_storage_key;not null"`

	// Thumbnail fields stay nil when derivation was skipped (direct flow
	// without a thumbnail) so the record remains committable.
	ThumbnailURL *string
	ThumbnailKey *string

	// VariantKeys holds the sized thumbnail keys when multi-size
	// derivation is on; deletion walks this list so no blob is orphaned.
	VariantKeys KeyList `gorm:"type:text"`

	// TakenAt comes from EXIF when present, else the ingestion time.
	TakenAt time.Time `gorm:"index"`

	Status PhotoStatus `gorm:"type:varchar(16);default:PUBLISHED;not null;index"`
	Exif   ExifBlob    `gorm:"type:text"`

	// SortOrder is the position within an album; mutated only by explicit
	// reordering, never by ingestion.
	SortOrder int `gorm:"default:0;not null"`

	AlbumID *uint  `gorm:"index"`
	Album   *Album `gorm:"foreignKey:AlbumID"`

	Tags []*Tag `gorm:"many2many:photo_tags;"`
}
