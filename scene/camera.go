package scene

import "github.com/go-gl/mathgl/mgl32"

// DefaultViewHeight is the visible height of the orthographic camera in
// world units.
const DefaultViewHeight float32 = 1

// Camera is an orthographic camera looking down -Z at the origin.
type Camera struct {
	ViewHeight float32
}

// Viewport returns the visible area in world units for a framebuffer of the
// given pixel size. An empty framebuffer yields an empty viewport.
func (c Camera) Viewport(fbWidth, fbHeight int) (float32, float32) {
	if fbWidth <= 0 || fbHeight <= 0 {
		return 0, 0
	}
	h := c.ViewHeight
	if !(h > 0) {
		h = DefaultViewHeight
	}
	return h * float32(fbWidth) / float32(fbHeight), h
}

// Projection returns the projection matrix for the framebuffer.
func (c Camera) Projection(fbWidth, fbHeight int) (mgl32.Mat4, bool) {
	w, h := c.Viewport(fbWidth, fbHeight)
	if w == 0 || h == 0 {
		return mgl32.Ident4(), false
	}
	return mgl32.Ortho(-w/2, w/2, -h/2, h/2, -1, 1), true
}
