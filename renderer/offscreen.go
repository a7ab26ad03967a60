package renderer

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/richinsley/goreveal/logging"
)

type glError struct {
	op   string
	code uint32
}

func (e *glError) Error() string {
	return fmt.Sprintf("%s failed with GL error 0x%04X", e.op, e.code)
}

// OffscreenRenderer is an RGBA8 framebuffer recording renders into.
type OffscreenRenderer struct {
	fbo       uint32
	textureID uint32
	width     int
	height    int
	pixels    []byte
}

func NewOffscreenRenderer(width, height int) (*OffscreenRenderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid offscreen size %dx%d", width, height)
	}
	or := &OffscreenRenderer{
		width:  width,
		height: height,
		pixels: make([]byte, width*height*4),
	}

	gl.GenFramebuffers(1, &or.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, or.fbo)
	gl.GenTextures(1, &or.textureID)
	gl.BindTexture(gl.TEXTURE_2D, or.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, or.textureID, 0)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		or.Destroy()
		return nil, fmt.Errorf("offscreen fbo is not complete (0x%04X)", status)
	}
	logging.Logger().Info("Offscreen FBO created", "width", width, "height", height)
	return or, nil
}

// ReadPixels returns a copy of the framebuffer, bottom row first.
func (or *OffscreenRenderer) ReadPixels() ([]byte, error) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, or.fbo)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(or.width), int32(or.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(or.pixels))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		return nil, &glError{op: "pixel readback", code: errCode}
	}
	out := make([]byte, len(or.pixels))
	copy(out, or.pixels)
	return out, nil
}

func (or *OffscreenRenderer) Destroy() {
	gl.DeleteFramebuffers(1, &or.fbo)
	gl.DeleteTextures(1, &or.textureID)
}
