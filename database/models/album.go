package models

import (
	"regexp"
	"strings"

	"gorm.io/gorm"
)

type Album struct {
	gorm.Model
	Title       string `gorm:"type:varchar(100);not null"`
	Slug        string `gorm:"uniqueIndex:idx_album_slug;not null"`
	Description string `gorm:"type:varchar(255)"`

	// CoverID optionally designates one photo as the album cover.
	CoverID *uint
	Cover   *Photo `gorm:"foreignKey:CoverID"`

	Photos []*Photo `gorm:"foreignKey:AlbumID"`
}

var slugWhitespace = regexp.MustCompile(`\s+`)

// SlugFromTitle derives the unique album slug at creation time:
// lowercased, runs of whitespace collapsed to single dashes.
func SlugFromTitle(title string) string {
	return slugWhitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
}
