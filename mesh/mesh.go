// Package mesh composes the reveal quad: plane geometry, the reveal
// material, the texture it owns and the scale chosen for the current frame.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goreveal/logging"
	"github.com/richinsley/goreveal/scale"
	"github.com/richinsley/goreveal/shader"
	"github.com/richinsley/goreveal/texture"
)

// DefaultBaseUnit is the length of the longer image side in world units.
const DefaultBaseUnit float32 = 0.3

// Requester starts and abandons texture loads. *texture.Loader satisfies it.
type Requester interface {
	Request(path string) texture.RequestID
	Cancel(id texture.RequestID)
}

// Binder receives the texture the mesh wants drawn. *uniforms.Driver
// satisfies it.
type Binder interface {
	BindTexture(*texture.Resource)
}

// Mesh owns its texture: it releases the previous resource when a new one
// is bound and the current one on Close.
type Mesh struct {
	geometry Geometry
	material shader.Material

	loader Requester
	binder Binder

	baseUnit   float32
	fullscreen bool

	path        string
	pending     texture.RequestID
	current     *texture.Resource
	placeholder *texture.Resource
	lastErr     error

	scale scale.Vector
}

// Option configures a Mesh.
type Option func(*Mesh)

// WithBaseUnit sets the aspect-correct size of the longer side.
func WithBaseUnit(u float32) Option {
	return func(m *Mesh) {
		if u > 0 {
			m.baseUnit = u
		}
	}
}

// WithFullscreen sets the initial fullscreen flag.
func WithFullscreen(on bool) Option {
	return func(m *Mesh) { m.fullscreen = on }
}

// WithMaterial replaces the reveal material.
func WithMaterial(mat shader.Material) Option {
	return func(m *Mesh) { m.material = mat }
}

// WithGeometry replaces the default plane.
func WithGeometry(g Geometry) Option {
	return func(m *Mesh) { m.geometry = g }
}

// New returns a mesh with no image. The binder starts out holding a 1x1
// placeholder.
func New(loader Requester, binder Binder, opts ...Option) *Mesh {
	m := &Mesh{
		geometry:    DefaultPlane(),
		material:    shader.RevealMaterial(shader.DefaultEdge),
		loader:      loader,
		binder:      binder,
		baseUnit:    DefaultBaseUnit,
		placeholder: texture.Placeholder(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.scale = scale.For(1, 1, m.baseUnit)
	if m.binder != nil {
		m.binder.BindTexture(m.placeholder)
	}
	return m
}

// SetImage switches to path. The current texture keeps rendering until the
// new one resolves. Setting the path already shown or loading is a no-op.
func (m *Mesh) SetImage(path string) {
	if path == m.path && (m.pending != 0 || (m.current != nil && m.current.Path == path)) {
		return
	}
	m.request(path)
}

// Reload requests the current path again, e.g. after the file changed.
func (m *Mesh) Reload() {
	if m.path == "" {
		return
	}
	m.request(m.path)
}

func (m *Mesh) request(path string) {
	if m.pending != 0 {
		m.loader.Cancel(m.pending)
	}
	m.path = path
	m.pending = m.loader.Request(path)
}

// HandleResult applies a resolved load. Results for any request other than
// the latest are released and ignored. It reports whether a new texture was
// bound.
func (m *Mesh) HandleResult(r texture.Result) bool {
	if r.ID != m.pending || m.pending == 0 {
		if r.Resource != nil {
			r.Resource.Release()
		}
		logging.Logger().Debug("Discarding stale texture load", "id", r.ID, "path", r.Path)
		return false
	}
	m.pending = 0
	if r.Err != nil {
		m.lastErr = r.Err
		logging.Logger().Warn("Texture load failed, keeping previous texture", "path", r.Path, "error", r.Err)
		return false
	}
	old := m.current
	m.current = r.Resource
	m.lastErr = nil
	if m.binder != nil {
		m.binder.BindTexture(m.current)
	}
	old.Release()
	logging.Logger().Info("Successfully loaded texture", "path", r.Path, "width", r.Resource.Width, "height", r.Resource.Height)
	return true
}

// Path returns the path last asked for.
func (m *Mesh) Path() string { return m.path }

// Loading reports whether a request is outstanding.
func (m *Mesh) Loading() bool { return m.pending != 0 }

// LastError returns the most recent load failure, cleared by a success.
func (m *Mesh) LastError() error { return m.lastErr }

// Ready reports whether a real texture is bound. Until then the quad is not
// drawn.
func (m *Mesh) Ready() bool { return m.current != nil }

// Texture returns the bound texture, or the placeholder before the first
// load.
func (m *Mesh) Texture() *texture.Resource {
	if m.current == nil {
		return m.placeholder
	}
	return m.current
}

// SetFullscreen selects the viewport-filling scale.
func (m *Mesh) SetFullscreen(on bool) { m.fullscreen = on }

// Fullscreen reports the scale mode.
func (m *Mesh) Fullscreen() bool { return m.fullscreen }

// BaseUnit returns the aspect-correct size of the longer side.
func (m *Mesh) BaseUnit() float32 { return m.baseUnit }

// Geometry returns the plane.
func (m *Mesh) Geometry() Geometry { return m.geometry }

// Material returns the shader material.
func (m *Mesh) Material() shader.Material { return m.material }

// Scale computes this frame's scale from the viewport in world units. An
// empty viewport keeps the previous scale.
func (m *Mesh) Scale(viewportWidth, viewportHeight float32) scale.Vector {
	if !(viewportWidth > 0) || !(viewportHeight > 0) {
		return m.scale
	}
	if m.fullscreen {
		if v, ok := scale.Fullscreen(viewportWidth, viewportHeight); ok {
			m.scale = v
		}
		return m.scale
	}
	tex := m.Texture()
	m.scale = scale.For(tex.Width, tex.Height, m.baseUnit)
	return m.scale
}

// Model returns the model matrix for the last computed scale.
func (m *Mesh) Model() mgl32.Mat4 {
	return mgl32.Scale3D(m.scale.X, m.scale.Y, m.scale.Z)
}

// Close abandons any pending load and releases the owned texture.
func (m *Mesh) Close() {
	if m.pending != 0 {
		m.loader.Cancel(m.pending)
		m.pending = 0
	}
	m.current.Release()
	m.current = nil
	if m.binder != nil {
		m.binder.BindTexture(m.placeholder)
	}
}
