package exif

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// exifTimeLayout EXIF 日期时间格式
const exifTimeLayout = "2006:01:02 15:04:05"

// Metadata 归一化后的照片元数据
// 每个字段独立可选，缺失的标签对应 nil 指针
type Metadata struct {
	Camera       *string                `json:"camera,omitempty"`
	Lens         *string                `json:"lens,omitempty"`
	ISO          *int                   `json:"iso,omitempty"`
	ShutterSpeed *string                `json:"shutter,omitempty"`
	Aperture     *float64               `json:"aperture,omitempty"`
	FocalLength  *int                   `json:"focalLength,omitempty"`
	TakenAt      *time.Time             `json:"takenAt,omitempty"`
	Raw          map[string]interface{} `json:"raw,omitempty"`
}

// Extract 从图片字节中解析 EXIF 并归一化
// 图片没有 EXIF 段或解析失败时返回 nil, nil；上层把无元数据当作正常情况
func Extract(data []byte) (*Metadata, error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil || x == nil {
		return nil, nil
	}

	meta := &Metadata{
		Camera:       cameraName(x),
		Lens:         stringTag(x, exif.LensModel),
		ISO:          intTag(x, exif.ISOSpeedRatings),
		ShutterSpeed: shutterSpeed(x),
		Aperture:     aperture(x),
		FocalLength:  focalLength(x),
		TakenAt:      takenAt(x),
		Raw:          rawTags(x),
	}

	if meta.isEmpty() {
		return nil, nil
	}
	return meta, nil
}

func (m *Metadata) isEmpty() bool {
	return m.Camera == nil && m.Lens == nil && m.ISO == nil &&
		m.ShutterSpeed == nil && m.Aperture == nil && m.FocalLength == nil &&
		m.TakenAt == nil && len(m.Raw) == 0
}

// cameraName 拼接厂商与机型，如 "Canon EOS R5"
// 机型缺失时不降级为只有厂商的名字，相机字段留空
func cameraName(x *exif.Exif) *string {
	make := stringTag(x, exif.Make)
	model := stringTag(x, exif.Model)

	switch {
	case make != nil && model != nil:
		s := strings.TrimSpace(*make + " " + *model)
		return &s
	case model != nil:
		return model
	default:
		return nil
	}
}

// shutterSpeed 优先用 APEX ShutterSpeedValue 计算曝光时间，其次 ExposureTime
func shutterSpeed(x *exif.Exif) *string {
	if v, ok := ratTag(x, exif.ShutterSpeedValue); ok {
		return formatExposure(math.Pow(2, -v))
	}
	if v, ok := ratTag(x, exif.ExposureTime); ok {
		return formatExposure(v)
	}
	return nil
}

// formatExposure 一秒以下格式化为 "1/N"，否则保留原值
func formatExposure(seconds float64) *string {
	if seconds <= 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return nil
	}
	var s string
	if seconds < 1 {
		s = fmt.Sprintf("1/%d", int(math.Round(1/seconds)))
	} else {
		s = trimFloat(seconds)
	}
	return &s
}

// aperture 优先用 APEX ApertureValue 换算 f 值，其次 FNumber，保留一位小数
func aperture(x *exif.Exif) *float64 {
	if v, ok := ratTag(x, exif.ApertureValue); ok {
		f := math.Round(math.Pow(2, v/2)*10) / 10
		return &f
	}
	if v, ok := ratTag(x, exif.FNumber); ok {
		f := math.Round(v*10) / 10
		return &f
	}
	return nil
}

func focalLength(x *exif.Exif) *int {
	if v, ok := ratTag(x, exif.FocalLength); ok {
		n := int(math.Round(v))
		return &n
	}
	return nil
}

// takenAt 按 DateTimeOriginal、DateTime、DateTimeDigitized 的顺序取第一个可解析值
func takenAt(x *exif.Exif) *time.Time {
	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime, exif.DateTimeDigitized} {
		s := stringTag(x, field)
		if s == nil {
			continue
		}
		if ts, err := time.ParseInLocation(exifTimeLayout, *s, time.Local); err == nil {
			return &ts
		}
	}
	return nil
}

// rawTags 收集完整标签表，数值标签转为数字，其余保留字符串表示
func rawTags(x *exif.Exif) map[string]interface{} {
	raw := make(map[string]interface{})
	_ = x.Walk(walkerFunc(func(name exif.FieldName, tag *tiff.Tag) error {
		if tag == nil {
			return nil
		}
		switch tag.Format() {
		case tiff.IntVal:
			if v, err := tag.Int64(0); err == nil {
				raw[string(name)] = v
				return nil
			}
		case tiff.RatVal:
			if num, den, err := tag.Rat2(0); err == nil && den != 0 {
				raw[string(name)] = float64(num) / float64(den)
				return nil
			}
		case tiff.StringVal:
			if v, err := tag.StringVal(); err == nil {
				raw[string(name)] = strings.TrimSpace(v)
				return nil
			}
		}
		raw[string(name)] = tag.String()
		return nil
	}))
	if len(raw) == 0 {
		return nil
	}
	return raw
}

type walkerFunc func(name exif.FieldName, tag *tiff.Tag) error

func (f walkerFunc) Walk(name exif.FieldName, tag *tiff.Tag) error {
	return f(name, tag)
}

func stringTag(x *exif.Exif, field exif.FieldName) *string {
	tag, err := x.Get(field)
	if err != nil || tag == nil {
		return nil
	}
	s, err := tag.StringVal()
	if err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func intTag(x *exif.Exif, field exif.FieldName) *int {
	tag, err := x.Get(field)
	if err != nil || tag == nil {
		return nil
	}
	v, err := tag.Int(0)
	if err != nil {
		return nil
	}
	return &v
}

// ratTag 读取有理数标签为 float64，整数标签亦可接受
func ratTag(x *exif.Exif, field exif.FieldName) (float64, bool) {
	tag, err := x.Get(field)
	if err != nil || tag == nil {
		return 0, false
	}
	if num, den, err := tag.Rat2(0); err == nil && den != 0 {
		return float64(num) / float64(den), true
	}
	if v, err := tag.Int(0); err == nil {
		return float64(v), true
	}
	return 0, false
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}
