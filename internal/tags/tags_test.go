package tags

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/velatra/photofolio/database/models"
	tagsrepo "github.com/velatra/photofolio/database/repo/tags"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Tag{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})
	return NewService(tagsrepo.NewRepository(db))
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"basic", "street, night", []string{"street", "night"}},
		{"dedupe and blanks", "a, a, b,,  c ", []string{"a", "b", "c"}},
		{"empty", "", nil},
		{"only separators", " , ,, ", nil},
		{"preserves first occurrence order", "b, a, b", []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseList(tt.in))
		})
	}
}

func TestReconcile_CreatesAndReuses(t *testing.T) {
	svc := setupService(t)

	first, err := svc.Reconcile([]string{"street", "night"})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := svc.Reconcile([]string{"night", "travel"})
	require.NoError(t, err)
	require.Len(t, second, 2)

	// "night" 复用同一行
	assert.Equal(t, first[1].ID, second[0].ID)

	names, err := svc.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"night", "street", "travel"}, names)
}

func TestReconcile_Idempotent(t *testing.T) {
	svc := setupService(t)

	a, err := svc.Reconcile([]string{"mono"})
	require.NoError(t, err)
	b, err := svc.Reconcile([]string{"mono"})
	require.NoError(t, err)

	assert.Equal(t, a[0].ID, b[0].ID)

	names, err := svc.ListAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"mono"}, names)
}
