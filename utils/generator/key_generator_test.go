package generator

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestKeyGenerator_OriginalKey(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	kg := NewKeyGeneratorAt(fixedClock(ts))

	key := kg.OriginalKey("DSC_1024.jpg")
	assert.Equal(t, "photos/"+strconv.FormatInt(ts.UnixMilli(), 10)+"_DSC_1024.jpg", key)
}

func TestKeyGenerator_ThumbnailKey(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	kg := NewKeyGeneratorAt(fixedClock(ts))

	key := kg.ThumbnailKey("DSC_1024.jpg")
	assert.Equal(t, "thumbnails/"+strconv.FormatInt(ts.UnixMilli(), 10)+"_DSC_1024.jpg", key)
}

func TestKeyGenerator_KeysDifferAcrossUploads(t *testing.T) {
	times := []time.Time{
		time.UnixMilli(1706000000000),
		time.UnixMilli(1706000000001),
	}
	i := 0
	kg := NewKeyGeneratorAt(func() time.Time {
		ts := times[i]
		i++
		return ts
	})

	first := kg.OriginalKey("same.jpg")
	second := kg.OriginalKey("same.jpg")
	assert.NotEqual(t, first, second)
}

func TestSizedVariantKey(t *testing.T) {
	thumbKey := "thumbnails/1706000000000_DSC_1024.jpg"

	assert.Equal(t, "thumbnails/1706000000000_DSC_1024_640.jpg", SizedVariantKey(thumbKey, 640))

	// 同一主键的推导是确定性的，删除侧可以复原上传侧的键
	assert.Equal(t, SizedVariantKey(thumbKey, 320), SizedVariantKey(thumbKey, 320))

	// 无扩展名的键宽度后缀直接拼在末尾
	assert.Equal(t, "thumbnails/1706_raw_1024", SizedVariantKey("thumbnails/1706_raw", 1024))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "photo.jpg", "photo.jpg"},
		{"spaces", "my holiday photo.jpg", "my_holiday_photo.jpg"},
		{"path traversal", "../../etc/passwd", "passwd"},
		{"windows path", `C:\Users\me\photo.jpg`, "photo.jpg"},
		{"unicode", "café photo.jpg", "caf_photo.jpg"},
		{"empty", "", "file"},
		{"only dots", "...", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}
