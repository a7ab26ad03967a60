package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/h2non/filetype"
	"github.com/mitchellh/go-homedir"
)

var (
	// ErrUnsupportedFormat is returned for files that are not a raster image
	// this package can decode.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrZeroSize is returned for images with no pixels.
	ErrZeroSize = errors.New("image has zero width or height")
)

// AssetLoadError reports a texture that could not be produced from Path.
type AssetLoadError struct {
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("failed to load texture %q: %v", e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// decodable lists the sniffed subtypes with a registered decoder.
var decodable = map[string]bool{
	"png":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
	"bmp":  true,
	"tiff": true,
}

// Decode reads the image at path into a non-premultiplied RGBA image.
// Every failure is an *AssetLoadError carrying path.
func Decode(path string) (*image.NRGBA, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, &AssetLoadError{Path: path, Err: err}
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, &AssetLoadError{Path: path, Err: err}
	}
	defer f.Close()
	img, err := DecodeReader(f)
	if err != nil {
		return nil, &AssetLoadError{Path: path, Err: err}
	}
	return img, nil
}

// DecodeReader sniffs and decodes an image stream.
func DecodeReader(r io.Reader) (*image.NRGBA, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, fmt.Errorf("sniff image: %w", err)
	}
	if kind == filetype.Unknown || !decodable[kind.MIME.Subtype] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, describe(kind.MIME.Value))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind.Extension, err)
	}
	return toNRGBA(img)
}

func describe(mime string) string {
	if mime == "" {
		return "unknown"
	}
	return mime
}

// toNRGBA converts to NRGBA with a zero origin. Straight alpha keeps the
// GPU's SRC_ALPHA blending correct.
func toNRGBA(img image.Image) (*image.NRGBA, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrZeroSize
	}
	if m, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) && m.Stride == b.Dx()*4 {
		return m, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst, nil
}
