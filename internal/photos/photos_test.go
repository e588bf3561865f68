package photos

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/velatra/photofolio/cache"
	"github.com/velatra/photofolio/config"
	"github.com/velatra/photofolio/database/models"
	photosrepo "github.com/velatra/photofolio/database/repo/photos"
	tagsrepo "github.com/velatra/photofolio/database/repo/tags"
	"github.com/velatra/photofolio/internal/tags"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:photos_%s?mode=memory&cache=shared", t.Name())
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

	cfg := &config.Config{CacheEnabled: true, CacheTTL: 60}
	c, err := cache.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	tagSvc := tags.NewService(tagsrepo.NewRepository(db))
	return NewService(cfg, photosrepo.NewRepository(db), tagSvc, c), db
}

func seedPhoto(t *testing.T, db *gorm.DB, identifier string, status models.PhotoStatus, takenAt time.Time, tagNames ...string) *models.Photo {
	t.Helper()
	var tagModels []*models.Tag
	for _, name := range tagNames {
		var tag models.Tag
		require.NoError(t, db.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error)
		tagModels = append(tagModels, &tag)
	}
	photo := &models.Photo{
		Identifier: identifier,
		Title:      identifier,
		URL:        "https://cdn.test/photos/" + identifier + ".jpg",
		StorageKey: "photos/" + identifier + ".jpg",
		TakenAt:    takenAt,
		Status:     status,
		Tags:       tagModels,
	}
	require.NoError(t, db.Create(photo).Error)
	return photo
}

func TestList_DefaultsToPublished(t *testing.T) {
	svc, db := setupService(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seedPhoto(t, db, "pub", models.StatusPublished, base)
	seedPhoto(t, db, "draft", models.StatusDraft, base.Add(time.Hour))

	result, err := svc.List("", "")
	require.NoError(t, err)
	require.Len(t, result.Photos, 1)
	assert.Equal(t, "pub", result.Photos[0].Identifier)
}

func TestList_OrderedByTakenAtDesc(t *testing.T) {
	svc, db := setupService(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seedPhoto(t, db, "older", models.StatusPublished, base)
	seedPhoto(t, db, "newer", models.StatusPublished, base.Add(48*time.Hour))

	result, err := svc.List("", "")
	require.NoError(t, err)
	require.Len(t, result.Photos, 2)
	assert.Equal(t, "newer", result.Photos[0].Identifier)
	assert.Equal(t, "older", result.Photos[1].Identifier)
}

func TestList_TagFilterAndFullTagList(t *testing.T) {
	svc, db := setupService(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seedPhoto(t, db, "a", models.StatusPublished, base, "street")
	seedPhoto(t, db, "b", models.StatusPublished, base, "travel")

	result, err := svc.List("street", "")
	require.NoError(t, err)
	require.Len(t, result.Photos, 1)
	assert.Equal(t, "a", result.Photos[0].Identifier)
	// 标签表始终是全量的，与过滤无关
	assert.Equal(t, []string{"street", "travel"}, result.Tags)
}

func TestList_ExplicitStatusFilter(t *testing.T) {
	svc, db := setupService(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seedPhoto(t, db, "pub", models.StatusPublished, base)
	seedPhoto(t, db, "archived", models.StatusArchived, base)

	result, err := svc.List("", "ARCHIVED")
	require.NoError(t, err)
	require.Len(t, result.Photos, 1)
	assert.Equal(t, "archived", result.Photos[0].Identifier)
}

func TestList_InvalidStatusRejectsRequest(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.List("", "HIDDEN")
	var ierr *InvalidStatusError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "HIDDEN", ierr.Status)
}

func TestList_CacheInvalidation(t *testing.T) {
	svc, db := setupService(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seedPhoto(t, db, "first", models.StatusPublished, base)

	result, err := svc.List("", "")
	require.NoError(t, err)
	require.Len(t, result.Photos, 1)

	// 缓存未失效前，新行不可见
	seedPhoto(t, db, "second", models.StatusPublished, base.Add(time.Hour))
	result, err = svc.List("", "")
	require.NoError(t, err)
	assert.Len(t, result.Photos, 1)

	svc.Invalidate()
	result, err = svc.List("", "")
	require.NoError(t, err)
	assert.Len(t, result.Photos, 2)
}

func TestGet_ByIdentifier(t *testing.T) {
	svc, db := setupService(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seedPhoto(t, db, "solo", models.StatusPublished, base, "mono")

	view, err := svc.Get("solo")
	require.NoError(t, err)
	assert.Equal(t, "solo", view.Identifier)
	assert.Equal(t, []string{"mono"}, view.Tags)

	_, err = svc.Get("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
