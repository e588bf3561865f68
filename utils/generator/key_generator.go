package generator

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	// FolderPhotos 原图存储目录
	FolderPhotos = "photos"
	// FolderThumbnails 缩略图存储目录
	FolderThumbnails = "thumbnails"
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// KeyGenerator 对象存储键名生成器
// 键名形如 photos/1706000000000_dsc_1024.jpg，毫秒时间戳前缀保证
// 同名文件重复上传互不覆盖
type KeyGenerator struct {
	now func() time.Time
}

// NewKeyGenerator 创建键名生成器
func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{now: time.Now}
}

// NewKeyGeneratorAt 使用固定时钟创建生成器，供测试使用
func NewKeyGeneratorAt(now func() time.Time) *KeyGenerator {
	return &KeyGenerator{now: now}
}

// OriginalKey 生成原图存储键
func (kg *KeyGenerator) OriginalKey(filename string) string {
	return kg.key(FolderPhotos, filename)
}

// ThumbnailKey 生成缩略图存储键
func (kg *KeyGenerator) ThumbnailKey(filename string) string {
	return kg.key(FolderThumbnails, filename)
}

// SizedVariantKey 从主缩略图键推导某一宽度档位的变体键
// 如 thumbnails/1706..._img.jpg -> thumbnails/1706..._img_640.jpg；
// 推导是确定性的，删除时可以从记录上的主键还原全部变体键
func SizedVariantKey(thumbKey string, width int) string {
	ext := path.Ext(thumbKey)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(thumbKey, ext), width, ext)
}

func (kg *KeyGenerator) key(folder, filename string) string {
	return fmt.Sprintf("%s/%d_%s", folder, kg.now().UnixMilli(), SanitizeFilename(filename))
}

// SanitizeFilename 清理文件名中不适合做对象键的字符
// 去除路径成分，空白与特殊字符替换为下划线
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSpace(base)
	base = unsafeKeyChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return "file"
	}
	return base
}
