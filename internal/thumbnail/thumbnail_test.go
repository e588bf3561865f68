package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, w, h int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, encode(buf, img))
	return buf.Bytes()
}

func encodeJPEG(buf *bytes.Buffer, img image.Image) error {
	return jpeg.Encode(buf, img, &jpeg.Options{Quality: 90})
}

func encodePNG(buf *bytes.Buffer, img image.Image) error {
	return png.Encode(buf, img)
}

func decodedDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	return cfg.Width, cfg.Height
}

func TestGenerate_LandscapeCapsWidth(t *testing.T) {
	data := testImage(t, 1200, 800, encodeJPEG)

	res, err := Generate(data, 300, 80)
	require.NoError(t, err)

	assert.Equal(t, 300, res.Width)
	assert.Equal(t, 200, res.Height)

	w, h := decodedDims(t, res.Data)
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)
}

func TestGenerate_PortraitCapsHeight(t *testing.T) {
	data := testImage(t, 800, 1200, encodeJPEG)

	res, err := Generate(data, 300, 80)
	require.NoError(t, err)

	assert.Equal(t, 200, res.Width)
	assert.Equal(t, 300, res.Height)
}

func TestGenerate_RoundsShortSide(t *testing.T) {
	// 997x600 → scale 300/997, short side 180.54 → 181
	data := testImage(t, 997, 600, encodeJPEG)

	res, err := Generate(data, 300, 80)
	require.NoError(t, err)
	assert.Equal(t, 300, res.Width)
	assert.Equal(t, 181, res.Height)
}

func TestGenerate_NeverEnlarges(t *testing.T) {
	data := testImage(t, 200, 150, encodeJPEG)

	res, err := Generate(data, 300, 80)
	require.NoError(t, err)
	assert.Equal(t, 200, res.Width)
	assert.Equal(t, 150, res.Height)
}

func TestGenerate_PNGInputProducesJPEG(t *testing.T) {
	data := testImage(t, 600, 400, encodePNG)

	res, err := Generate(data, 300, 80)
	require.NoError(t, err)

	w, h := decodedDims(t, res.Data)
	assert.Equal(t, 300, w)
	assert.Equal(t, 200, h)
}

func TestGenerate_Undecodable(t *testing.T) {
	res, err := Generate([]byte("%PDF-1.4 definitely not pixels"), 300, 80)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestGenerate_DefaultsApplied(t *testing.T) {
	data := testImage(t, 900, 600, encodeJPEG)

	res, err := Generate(data, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxDim, res.Width)
	assert.Equal(t, 200, res.Height)
}

func TestGenerateSet_DefaultSizes(t *testing.T) {
	data := testImage(t, 2048, 1024, encodeJPEG)

	results, err := GenerateSet(data, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 320, results[0].Width)
	assert.Equal(t, 640, results[1].Width)
	assert.Equal(t, 1024, results[2].Width)
	for _, r := range results {
		assert.Equal(t, r.Width/2, r.Height)
	}
}

func TestGenerateSet_UndecodableFailsWhole(t *testing.T) {
	results, err := GenerateSet([]byte("junk"), nil)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrUndecodable)
}
