package models

import "gorm.io/gorm"

// Tag 标签
// Names are case-sensitive and globally unique; tags are created on first
// reference and never deleted by the ingestion pipeline.
type Tag struct {
	gorm.Model
	Name string `gorm:"uniqueIndex:idx_tag_name;not null"`

	Photos []*Photo `gorm:"many2many:photo_tags;"`
}
