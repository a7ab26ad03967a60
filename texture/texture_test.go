package texture

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 7, A: 128})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestDecodePNG(t *testing.T) {
	path := writePNG(t, t.TempDir(), "texture.png", 8, 6)
	img, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
	// Straight alpha survives decoding.
	assert.Equal(t, color.NRGBA{R: 3, G: 2, B: 7, A: 128}, img.NRGBAAt(3, 2))
}

func TestDecodeJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, image.NewGray(image.Rect(0, 0, 16, 9)), nil))
	require.NoError(t, f.Close())

	img, err := Decode(path)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 9, img.Bounds().Dy())
	assert.Equal(t, uint8(255), img.NRGBAAt(0, 0).A)
}

func TestDecodeMissing(t *testing.T) {
	_, err := Decode("./img/missing.webp")
	require.Error(t, err)
	var ale *AssetLoadError
	require.ErrorAs(t, err, &ale)
	assert.Equal(t, "./img/missing.webp", ale.Path)
	assert.Contains(t, err.Error(), "./img/missing.webp")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.webp")
	require.NoError(t, os.WriteFile(path, []byte("definitely not pixels"), 0o644))
	_, err := Decode(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	var ale *AssetLoadError
	assert.ErrorAs(t, err, &ale)
}

func TestDecodeCorrupt(t *testing.T) {
	// A PNG signature followed by garbage sniffs as png but fails to decode.
	data := append([]byte("\x89PNG\r\n\x1a\n"), []byte("garbage garbage garbage")...)
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	_, err := Decode(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}

func TestToNRGBAZeroSize(t *testing.T) {
	_, err := toNRGBA(image.NewNRGBA(image.Rect(0, 0, 0, 5)))
	assert.ErrorIs(t, err, ErrZeroSize)
}

func TestToNRGBAOffsetOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 14, 12))
	src.Set(10, 10, color.RGBA{R: 255, A: 255})
	dst, err := toNRGBA(src)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), dst.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, dst.NRGBAAt(0, 0))
}

type countingHandle struct{ released int }

func (h *countingHandle) Release() { h.released++ }

func TestResourceReleaseOnce(t *testing.T) {
	h := &countingHandle{}
	r := NewResource("a.png", 4, 4, h)
	r.Release()
	r.Release()
	assert.Equal(t, 1, h.released)
	assert.False(t, r.IsPlaceholder())

	p := Placeholder()
	assert.True(t, p.IsPlaceholder())
	assert.Equal(t, 1, p.Width)
	assert.Equal(t, 1, p.Height)
	p.Release()

	var nilRes *Resource
	assert.True(t, nilRes.IsPlaceholder())
	nilRes.Release()
}
