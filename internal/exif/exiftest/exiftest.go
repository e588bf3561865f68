// Package exiftest builds minimal EXIF payloads for tests. Real camera
// files are too large to commit as fixtures, so tests assemble a little
// endian TIFF structure by hand and splice it into a generated JPEG.
package exiftest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"sort"
)

// TIFF 数据类型
const (
	typeASCII     = 2
	typeShort     = 3
	typeLong      = 4
	typeRational  = 5
	typeSRational = 10
)

// 常用标签编号
const (
	TagMake              = 0x010F
	TagModel             = 0x0110
	TagExifIFDPointer    = 0x8769
	TagExposureTime      = 0x829A
	TagFNumber           = 0x829D
	TagISOSpeedRatings   = 0x8827
	TagShutterSpeedValue = 0x9201
	TagApertureValue     = 0x9202
	TagFocalLength       = 0x920A
	TagDateTimeOriginal  = 0x9003
	TagDateTime          = 0x0132
	TagLensModel         = 0xA434
)

// Entry 一条 IFD 记录
type Entry struct {
	Tag   uint16
	Type  uint16
	Count uint32
	Value []byte
}

// ASCII 构造字符串记录（含结尾 NUL）
func ASCII(tag uint16, s string) Entry {
	v := append([]byte(s), 0)
	return Entry{Tag: tag, Type: typeASCII, Count: uint32(len(v)), Value: v}
}

// Short 构造 16 位整数记录
func Short(tag uint16, v uint16) Entry {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return Entry{Tag: tag, Type: typeShort, Count: 1, Value: b}
}

// Rational 构造无符号有理数记录
func Rational(tag uint16, num, den uint32) Entry {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:], num)
	binary.LittleEndian.PutUint32(b[4:], den)
	return Entry{Tag: tag, Type: typeRational, Count: 1, Value: b}
}

// SRational 构造有符号有理数记录（APEX 值可为负）
func SRational(tag uint16, num, den int32) Entry {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:], uint32(num))
	binary.LittleEndian.PutUint32(b[4:], uint32(den))
	return Entry{Tag: tag, Type: typeSRational, Count: 1, Value: b}
}

func long(tag uint16, v uint32) Entry {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return Entry{Tag: tag, Type: typeLong, Count: 1, Value: b}
}

// BuildTIFF 组装小端 TIFF：IFD0 含相机信息与指向 Exif IFD 的指针
func BuildTIFF(ifd0, exifIFD []Entry) []byte {
	if len(exifIFD) > 0 {
		ifd0 = append(append([]Entry{}, ifd0...), long(TagExifIFDPointer, 0))
	}

	ifd0Off := uint32(8)
	ifd0Block, ifd0End := buildIFD(ifd0, ifd0Off, 0)

	var exifBlock []byte
	if len(exifIFD) > 0 {
		exifBlock, _ = buildIFD(exifIFD, ifd0End, 0)
		// 回填 Exif IFD 指针
		ifd0 = append(ifd0[:len(ifd0)-1], long(TagExifIFDPointer, ifd0End))
		ifd0Block, _ = buildIFD(ifd0, ifd0Off, 0)
	}

	buf := &bytes.Buffer{}
	buf.WriteString("II")
	_ = binary.Write(buf, binary.LittleEndian, uint16(42))
	_ = binary.Write(buf, binary.LittleEndian, ifd0Off)
	buf.Write(ifd0Block)
	buf.Write(exifBlock)
	return buf.Bytes()
}

// buildIFD 在 ifdOff 处生成一个 IFD 及其外置数据区，返回块内容与结束偏移
func buildIFD(entries []Entry, ifdOff, nextIFD uint32) ([]byte, uint32) {
	sorted := append([]Entry{}, entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tag < sorted[j].Tag })

	ifdSize := uint32(2 + 12*len(sorted) + 4)
	dataOff := ifdOff + ifdSize

	ifd := &bytes.Buffer{}
	data := &bytes.Buffer{}
	_ = binary.Write(ifd, binary.LittleEndian, uint16(len(sorted)))

	for _, e := range sorted {
		_ = binary.Write(ifd, binary.LittleEndian, e.Tag)
		_ = binary.Write(ifd, binary.LittleEndian, e.Type)
		_ = binary.Write(ifd, binary.LittleEndian, e.Count)
		if len(e.Value) <= 4 {
			padded := make([]byte, 4)
			copy(padded, e.Value)
			ifd.Write(padded)
		} else {
			_ = binary.Write(ifd, binary.LittleEndian, dataOff+uint32(data.Len()))
			data.Write(e.Value)
			if data.Len()%2 != 0 {
				data.WriteByte(0)
			}
		}
	}
	_ = binary.Write(ifd, binary.LittleEndian, nextIFD)

	block := append(ifd.Bytes(), data.Bytes()...)
	return block, ifdOff + uint32(len(block))
}

// JPEG 生成带 EXIF APP1 段的可解码 JPEG
func JPEG(width, height int, ifd0, exifIFD []Entry) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 96, A: 255})
		}
	}

	encoded := &bytes.Buffer{}
	_ = jpeg.Encode(encoded, img, &jpeg.Options{Quality: 90})
	plain := encoded.Bytes()

	tiffData := BuildTIFF(ifd0, exifIFD)
	payload := append([]byte("Exif\x00\x00"), tiffData...)

	app1 := &bytes.Buffer{}
	app1.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(app1, binary.BigEndian, uint16(len(payload)+2))
	app1.Write(payload)

	// SOI 之后插入 APP1，其余段原样保留
	out := &bytes.Buffer{}
	out.Write(plain[:2])
	out.Write(app1.Bytes())
	out.Write(plain[2:])
	return out.Bytes()
}
