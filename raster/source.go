package raster

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/richinsley/goreveal/scene"
)

// Source renders a scene through a Renderer, one frame per call.
type Source struct {
	Scene    *scene.Scene
	Renderer *Renderer
}

// RenderFrame advances the scene and returns a copy of the RGBA pixels.
// The background is opaque, so the straight-alpha target is also valid
// premultiplied RGBA.
func (s *Source) RenderFrame(elapsed float64, dt time.Duration) ([]byte, error) {
	w, h := s.Renderer.Size()
	img := s.Renderer.Draw(s.Scene.Frame(elapsed, dt, w, h))
	return bytes.Clone(img.Pix), nil
}

// Snapshot renders one frame at elapsed seconds and the given progress.
func Snapshot(s *scene.Scene, r *Renderer, elapsed float64, progress float32) *image.NRGBA {
	s.Controller.Seek(progress)
	w, h := r.Size()
	src := r.Draw(s.Frame(elapsed, 0, w, h))
	out := image.NewNRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
