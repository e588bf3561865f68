package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// 默认缩略图参数
const (
	DefaultMaxDim  = 300
	DefaultQuality = 80
)

// ErrUndecodable 图片字节无法解码，无法得出尺寸
var ErrUndecodable = errors.New("thumbnail: image data could not be decoded")

// Result 一次派生的产物
type Result struct {
	Data   []byte
	Width  int
	Height int
}

// Size 多尺寸派生的宽度与质量配置
type Size struct {
	MaxDim  int
	Quality int
}

// DefaultSizes 网页端常用的三档尺寸
var DefaultSizes = []Size{
	{MaxDim: 320, Quality: 75},
	{MaxDim: 640, Quality: 80},
	{MaxDim: 1024, Quality: 85},
}

// Generate 将图片缩放到长边不超过 maxDim 的 JPEG 缩略图
// 保持宽高比，绝不放大；小于 maxDim 的图片只做重编码
func Generate(data []byte, maxDim, quality int) (*Result, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrUndecodable
	}

	dstW, dstH := targetDims(w, h, maxDim)

	var out image.Image = src
	if dstW != w || dstH != h {
		dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return &Result{Data: buf.Bytes(), Width: dstW, Height: dstH}, nil
}

// GenerateSet 按 sizes 依次派生多档缩略图，顺序与入参一致
func GenerateSet(data []byte, sizes []Size) ([]*Result, error) {
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}

	results := make([]*Result, 0, len(sizes))
	for _, s := range sizes {
		r, err := Generate(data, s.MaxDim, s.Quality)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// targetDims 长边缩到 maxDim，另一边按比例取整，不放大
func targetDims(w, h, maxDim int) (int, int) {
	longest := w
	if h > w {
		longest = h
	}
	if longest <= maxDim {
		return w, h
	}

	scale := float64(maxDim) / float64(longest)
	dstW := int(math.Round(float64(w) * scale))
	dstH := int(math.Round(float64(h) * scale))
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}
	return dstW, dstH
}
