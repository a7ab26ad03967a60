// Package scene runs one reveal frame in the order the pipeline depends on:
// the animation tick happens before the uniform write, and the uniform
// write happens before the host draws.
package scene

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goreveal/anim"
	"github.com/richinsley/goreveal/logging"
	"github.com/richinsley/goreveal/mesh"
	"github.com/richinsley/goreveal/reveal"
	"github.com/richinsley/goreveal/scale"
	"github.com/richinsley/goreveal/shader"
	"github.com/richinsley/goreveal/texture"
	"github.com/richinsley/goreveal/uniforms"
)

// Config describes the reveal scene.
type Config struct {
	Title      string
	Images     []string
	BaseUnit   float32
	Fullscreen bool
	Revealed   bool
	Duration   time.Duration
	Easing     anim.Easing
	Edge       float32
	Camera     Camera
}

// Frame is what the host needs to draw one frame.
type Frame struct {
	Uniforms   uniforms.UniformSet
	Scale      scale.Vector
	MVP        mgl32.Mat4
	Visible    bool
	Fullscreen bool
}

// Scene owns every CPU-side component of the reveal pipeline.
type Scene struct {
	Title      string
	Engine     *anim.Engine
	Controller *reveal.Controller
	Loader     *texture.Loader
	Mesh       *mesh.Mesh
	Driver     *uniforms.Driver
	Camera     Camera

	images     []string
	index      int
	watcher    *texture.Watcher
	mvp        mgl32.Mat4
	onError    func(error)
	loaderOpts []texture.LoaderOption
}

// Option configures a Scene.
type Option func(*Scene)

// WithWatcher reloads the current image whenever w reports it changed.
func WithWatcher(w *texture.Watcher) Option {
	return func(s *Scene) { s.watcher = w }
}

// WithLoaderOptions passes options through to the texture loader.
func WithLoaderOptions(opts ...texture.LoaderOption) Option {
	return func(s *Scene) {
		s.loaderOpts = append(s.loaderOpts, opts...)
	}
}

// WithErrorHandler is called with every texture load failure.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scene) { s.onError = fn }
}

// New builds the scene and requests the first image. up uploads decoded
// images on the render thread; sink receives uniforms every frame.
func New(cfg Config, up texture.Uploader, sink uniforms.Sink, opts ...Option) (*Scene, error) {
	if len(cfg.Images) == 0 {
		return nil, fmt.Errorf("scene %q has no images", cfg.Title)
	}
	s := &Scene{
		Title:  cfg.Title,
		Engine: anim.NewEngine(),
		Camera: cfg.Camera,
		images: append([]string(nil), cfg.Images...),
		mvp:    mgl32.Ident4(),
	}
	var ropts []reveal.Option
	if cfg.Duration > 0 {
		ropts = append(ropts, reveal.WithDuration(cfg.Duration))
	}
	if cfg.Easing != nil {
		ropts = append(ropts, reveal.WithEasing(cfg.Easing))
	}
	s.Controller = reveal.New(s.Engine, cfg.Revealed, ropts...)
	for _, opt := range opts {
		opt(s)
	}
	s.Loader = texture.NewLoader(up, s.loaderOpts...)
	s.Driver = uniforms.NewDriver(sink, s.Controller)
	s.Mesh = mesh.New(s.Loader, s.Driver,
		mesh.WithBaseUnit(cfg.BaseUnit),
		mesh.WithFullscreen(cfg.Fullscreen),
		mesh.WithMaterial(shader.RevealMaterial(cfg.Edge)),
	)
	if s.watcher != nil {
		for _, img := range s.images {
			if err := s.watcher.Watch(img); err != nil {
				logging.Logger().Warn("Cannot watch image", "path", img, "error", err)
			}
		}
	}
	s.Mesh.SetImage(s.images[0])
	logging.Logger().Info("Successfully loaded scene", "title", s.Title, "images", len(s.images))
	return s, nil
}

// Frame advances the scene by dt and prepares the frame at elapsed seconds
// for a framebuffer of fbWidth x fbHeight pixels.
func (s *Scene) Frame(elapsed float64, dt time.Duration, fbWidth, fbHeight int) Frame {
	s.Engine.Tick(dt)
	s.drainWatcher()
	for _, r := range s.Loader.Poll() {
		s.Mesh.HandleResult(r)
		if r.Err != nil && r.Err == s.Mesh.LastError() && s.onError != nil {
			s.onError(r.Err)
		}
	}

	vw, vh := s.Camera.Viewport(fbWidth, fbHeight)
	sc := s.Mesh.Scale(vw, vh)
	proj, ok := s.Camera.Projection(fbWidth, fbHeight)
	if ok {
		s.mvp = proj.Mul4(s.Mesh.Model())
	}

	s.Driver.Update(elapsed, !math.IsNaN(elapsed) && elapsed >= 0)
	return Frame{
		Uniforms:   s.Driver.Current(),
		Scale:      sc,
		MVP:        s.mvp,
		Visible:    ok && s.Mesh.Ready(),
		Fullscreen: s.Mesh.Fullscreen(),
	}
}

func (s *Scene) drainWatcher() {
	if s.watcher == nil {
		return
	}
	for {
		select {
		case path := <-s.watcher.Changes():
			if path == s.Mesh.Path() {
				logging.Logger().Info("Image changed on disk, reloading", "path", path)
				s.Mesh.Reload()
			}
		default:
			return
		}
	}
}

// Preload blocks until the requested image has resolved. Offscreen modes
// call it before their first frame.
func (s *Scene) Preload() error {
	s.Loader.Wait()
	for _, r := range s.Loader.Poll() {
		s.Mesh.HandleResult(r)
	}
	if err := s.Mesh.LastError(); err != nil {
		return err
	}
	if !s.Mesh.Ready() {
		return fmt.Errorf("image %q did not load", s.Mesh.Path())
	}
	return nil
}

// Toggle flips the reveal.
func (s *Scene) Toggle() {
	s.Controller.Toggle()
}

// ToggleFullscreen flips between aspect-correct and viewport-filling scale.
func (s *Scene) ToggleFullscreen() {
	s.Mesh.SetFullscreen(!s.Mesh.Fullscreen())
}

// SetImage switches to an arbitrary image path.
func (s *Scene) SetImage(path string) {
	s.Mesh.SetImage(path)
}

// NextImage cycles through the configured images.
func (s *Scene) NextImage() string {
	s.index = (s.index + 1) % len(s.images)
	s.Mesh.SetImage(s.images[s.index])
	return s.images[s.index]
}

// Images returns the configured image list.
func (s *Scene) Images() []string {
	return s.images
}

// Destroy releases the texture and stops the loader.
func (s *Scene) Destroy() {
	if s == nil {
		return
	}
	logging.Logger().Info("Destroying scene", "title", s.Title)
	s.Mesh.Close()
	s.Loader.Close()
}
