package albums

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/velatra/photofolio/database/models"
	albumsrepo "github.com/velatra/photofolio/database/repo/albums"
	photosrepo "github.com/velatra/photofolio/database/repo/photos"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:albums_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Photo{}, &models.Tag{}, &models.Album{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})
	return NewService(albumsrepo.NewRepository(db), photosrepo.NewRepository(db)), db
}

func TestCreate_SlugDerivation(t *testing.T) {
	svc, _ := setupService(t)

	album, err := svc.Create("Tokyo  Street Walks", "spring 2024")
	require.NoError(t, err)
	assert.Equal(t, "tokyo-street-walks", album.Slug)
}

func TestCreate_DuplicateSlugConflicts(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.Create("Iceland", "")
	require.NoError(t, err)

	_, err = svc.Create("iceland", "")
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestCreate_EmptyTitleRejected(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.Create("   ", "")
	assert.ErrorIs(t, err, ErrEmptyTitle)
}

func TestGetBySlug_OrderedPhotos(t *testing.T) {
	svc, db := setupService(t)
	album, err := svc.Create("Ordered", "")
	require.NoError(t, err)

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mk := func(identifier string, sortOrder int, takenAt time.Time) {
		require.NoError(t, db.Create(&models.Photo{
			Identifier: identifier,
			Title:      identifier,
			URL:        "https://cdn.test/" + identifier,
			StorageKey: "photos/" + identifier,
			TakenAt:    takenAt,
			Status:     models.StatusPublished,
			SortOrder:  sortOrder,
			AlbumID:    &album.ID,
		}).Error)
	}
	mk("pinned", 1, base)
	mk("newest", 2, base.Add(time.Hour))
	mk("older", 2, base.Add(-time.Hour))

	detail, err := svc.GetBySlug(album.Slug)
	require.NoError(t, err)
	require.Len(t, detail.Photos, 3)
	assert.Equal(t, "pinned", detail.Photos[0].Identifier, "manual sort order wins")
	assert.Equal(t, "newest", detail.Photos[1].Identifier)
	assert.Equal(t, "older", detail.Photos[2].Identifier)
	assert.Equal(t, int64(3), detail.PhotoCount)
}

func TestGetBySlug_NotFound(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.GetBySlug("nope")
	assert.True(t, IsNotFound(err))
}
