package scene

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/richinsley/goreveal/texture"
	"github.com/richinsley/goreveal/uniforms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopHandle struct{}

func (nopHandle) Release() {}

var uploader = texture.UploaderFunc(func(string, *image.NRGBA) (texture.Handle, error) {
	return nopHandle{}, nil
})

func decoder(sizes map[string]image.Point) texture.LoaderOption {
	return texture.WithDecoder(func(path string) (*image.NRGBA, error) {
		sz, ok := sizes[path]
		if !ok {
			return nil, errors.New("no such image")
		}
		return image.NewNRGBA(image.Rect(0, 0, sz.X, sz.Y)), nil
	})
}

type recorder struct{ sets []uniforms.UniformSet }

func (r *recorder) ApplyUniforms(u uniforms.UniformSet) { r.sets = append(r.sets, u) }

func newScene(t *testing.T, cfg Config, opts ...Option) (*Scene, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append(opts, WithLoaderOptions(decoder(map[string]image.Point{
		"wide.png":           {X: 400, Y: 200},
		"tall.png":           {X: 100, Y: 200},
		"./img/texture.webp": {X: 800, Y: 600},
	})))
	s, err := New(cfg, uploader, rec, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Destroy)
	return s, rec
}

func TestNewRequiresImages(t *testing.T) {
	_, err := New(Config{}, uploader, nil)
	assert.Error(t, err)
}

func TestCameraViewport(t *testing.T) {
	c := Camera{ViewHeight: 1}
	w, h := c.Viewport(800, 600)
	assert.InDelta(t, 4.0/3.0, w, 1e-6)
	assert.Equal(t, float32(1), h)

	w, h = c.Viewport(0, 600)
	assert.Zero(t, w)
	assert.Zero(t, h)
	_, ok := c.Projection(800, 0)
	assert.False(t, ok)
}

func TestRevealedFrame(t *testing.T) {
	s, rec := newScene(t, Config{Images: []string{"wide.png"}, BaseUnit: 0.3, Revealed: true})
	require.NoError(t, s.Preload())

	f := s.Frame(0.5, 16*time.Millisecond, 800, 600)
	assert.True(t, f.Visible)
	assert.Equal(t, float32(1), f.Uniforms.Progress)
	assert.Equal(t, float32(0.5), f.Uniforms.ElapsedTime)
	assert.Equal(t, "wide.png", f.Uniforms.Texture.Path)
	assert.InDelta(t, 0.3, f.Scale.X, 1e-6)
	assert.InDelta(t, 0.15, f.Scale.Y, 1e-6)
	assert.InDelta(t, 0.3*2/(4.0/3.0), f.MVP.At(0, 0), 1e-5)
	assert.InDelta(t, 0.15*2, f.MVP.At(1, 1), 1e-5)
	require.Len(t, rec.sets, 1)
	assert.Equal(t, f.Uniforms, rec.sets[0])
}

func TestToggleAnimatesAcrossFrames(t *testing.T) {
	s, _ := newScene(t, Config{Images: []string{"wide.png"}, Revealed: true, Duration: time.Second})
	require.NoError(t, s.Preload())

	s.Toggle()
	f := s.Frame(0, 500*time.Millisecond, 800, 600)
	assert.InDelta(t, 0.5, f.Uniforms.Progress, 1e-3)

	f = s.Frame(1, 500*time.Millisecond, 800, 600)
	assert.Equal(t, float32(0), f.Uniforms.Progress)
	assert.False(t, s.Controller.State().IsRevealed)
}

func TestFullscreenFillsViewport(t *testing.T) {
	s, _ := newScene(t, Config{Images: []string{"tall.png"}, Fullscreen: true})
	require.NoError(t, s.Preload())

	f := s.Frame(0, 0, 800, 600)
	assert.True(t, f.Fullscreen)
	assert.InDelta(t, 4.0/3.0, f.Scale.X, 1e-6)
	assert.InDelta(t, 1, f.Scale.Y, 1e-6)

	s.ToggleFullscreen()
	f = s.Frame(0, 0, 800, 600)
	assert.False(t, f.Fullscreen)
	assert.InDelta(t, 0.15, f.Scale.X, 1e-6)
	assert.InDelta(t, 0.3, f.Scale.Y, 1e-6)
}

func TestEmptyFramebufferKeepsLastFrame(t *testing.T) {
	s, _ := newScene(t, Config{Images: []string{"wide.png"}, Fullscreen: true})
	require.NoError(t, s.Preload())

	before := s.Frame(0, 0, 800, 600)
	after := s.Frame(0, 0, 0, 0)
	assert.False(t, after.Visible)
	assert.Equal(t, before.Scale, after.Scale)
	assert.Equal(t, before.MVP, after.MVP)
}

func TestNotVisibleUntilLoaded(t *testing.T) {
	s, _ := newScene(t, Config{Images: []string{"wide.png"}})
	s.Loader.Wait()
	// The result is only applied by the next frame.
	assert.False(t, s.Mesh.Ready())
	f := s.Frame(0, 0, 800, 600)
	assert.True(t, f.Visible)
}

func TestLoadFailureReported(t *testing.T) {
	var reported []error
	s, _ := newScene(t, Config{Images: []string{"missing.png"}}, WithErrorHandler(func(err error) {
		reported = append(reported, err)
	}))
	s.Loader.Wait()
	f := s.Frame(0, 0, 800, 600)
	assert.False(t, f.Visible)
	require.Len(t, reported, 1)

	var ale *texture.AssetLoadError
	require.ErrorAs(t, reported[0], &ale)
	assert.Equal(t, "missing.png", ale.Path)
}

func TestPreloadFailure(t *testing.T) {
	s, _ := newScene(t, Config{Images: []string{"missing.png"}})
	assert.Error(t, s.Preload())
}

func TestNextImageCycles(t *testing.T) {
	s, _ := newScene(t, Config{Images: []string{"wide.png", "tall.png"}})
	require.NoError(t, s.Preload())

	assert.Equal(t, "tall.png", s.NextImage())
	require.NoError(t, s.Preload())
	assert.Equal(t, "tall.png", s.Mesh.Texture().Path)

	assert.Equal(t, "wide.png", s.NextImage())
	require.NoError(t, s.Preload())
	assert.Equal(t, "wide.png", s.Mesh.Texture().Path)
}

func TestRevealScenario(t *testing.T) {
	s, _ := newScene(t, Config{Images: []string{"./img/texture.webp"}, BaseUnit: 0.3})
	require.NoError(t, s.Preload())

	f := s.Frame(0, 0, 800, 600)
	assert.Equal(t, float32(0), f.Uniforms.Progress)
	assert.InDelta(t, 0.3, f.Scale.X, 1e-6)
	assert.InDelta(t, 0.225, f.Scale.Y, 1e-6)

	s.Toggle()
	elapsed := 0.0
	for i := 0; i < 95; i++ {
		elapsed += 1.0 / 60
		f = s.Frame(elapsed, time.Second/60, 800, 600)
	}
	assert.Equal(t, float32(1), f.Uniforms.Progress)
	assert.False(t, s.Controller.Animating())
}
