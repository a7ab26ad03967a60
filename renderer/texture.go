package renderer

import (
	"errors"
	"image"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goreveal/texture"
)

// Texture is a GL texture object.
type Texture struct {
	ID     uint32
	Width  int32
	Height int32
}

// Release deletes the texture. It must run on the render thread.
func (t *Texture) Release() {
	if t.ID != 0 {
		gl.DeleteTextures(1, &t.ID)
		t.ID = 0
	}
}

func textureID(res *texture.Resource) uint32 {
	if res == nil {
		return 0
	}
	if t, ok := res.Handle.(*Texture); ok {
		return t.ID
	}
	return 0
}

// Upload creates a texture from img. It implements texture.Uploader and is
// only called from the render thread.
func (r *Renderer) Upload(path string, img *image.NRGBA) (texture.Handle, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	// Row 0 of a GL texture is the bottom of the image.
	flipped := texture.FlipVertical(img)
	width := int32(flipped.Rect.Size().X)
	height := int32(flipped.Rect.Size().Y)

	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_2D, textureID)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA8,
		width,
		height,
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(flipped.Pix),
	)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		gl.DeleteTextures(1, &textureID)
		return nil, &glError{op: "texture upload", code: errCode}
	}
	return &Texture{ID: textureID, Width: width, Height: height}, nil
}
