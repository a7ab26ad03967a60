// Package raster is a CPU rasterizer for the reveal quad. It runs the same
// vertex and fragment stages as the GPU program and is used where no GL
// context is available: snapshots, software recording and tests.
package raster

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goreveal/mesh"
	"github.com/richinsley/goreveal/scene"
	"github.com/richinsley/goreveal/shader"
	"github.com/richinsley/goreveal/texture"
	"github.com/richinsley/goreveal/uniforms"
	"golang.org/x/image/draw"
)

// Texture is the CPU-side texture handle.
type Texture struct {
	Image *image.NRGBA
}

func (t *Texture) Release() { t.Image = nil }

// Uploader keeps decoded pixels in memory.
type Uploader struct{}

func (Uploader) Upload(path string, img *image.NRGBA) (texture.Handle, error) {
	return &Texture{Image: img}, nil
}

// Renderer draws frames into an NRGBA target of fixed size.
type Renderer struct {
	width, height int
	background    color.NRGBA
	program       *shader.Program
	geometry      mesh.Geometry
	uniforms      uniforms.UniformSet
	target        *image.NRGBA
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithProgram replaces the reveal program, e.g. to use another threshold.
func WithProgram(p *shader.Program) Option {
	return func(r *Renderer) { r.program = p }
}

// WithGeometry replaces the default plane.
func WithGeometry(g mesh.Geometry) Option {
	return func(r *Renderer) { r.geometry = g }
}

// WithBackground sets the clear color.
func WithBackground(c color.Color) Option {
	return func(r *Renderer) { r.SetBackground(c) }
}

// New returns a renderer with a width x height target.
func New(width, height int, opts ...Option) *Renderer {
	r := &Renderer{
		width:      width,
		height:     height,
		background: color.NRGBA{A: 255},
		program:    shader.NewProgram(shader.DefaultEdge),
		geometry:   mesh.DefaultPlane(),
		target:     image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Size returns the target size in pixels.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// SetBackground changes the clear color.
func (r *Renderer) SetBackground(c color.Color) {
	r.background = color.NRGBAModel.Convert(c).(color.NRGBA)
}

// ApplyUniforms stores the uniforms for the next Draw.
func (r *Renderer) ApplyUniforms(u uniforms.UniformSet) {
	r.uniforms = u
}

// Draw renders f into the target and returns it. The returned image is
// reused by the next Draw.
func (r *Renderer) Draw(f scene.Frame) *image.NRGBA {
	draw.Draw(r.target, r.target.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
	if !f.Visible {
		return r.target
	}
	img := r.textureImage()
	if img == nil {
		return r.target
	}

	g := r.geometry
	verts := make([]vertex, g.VertexCount())
	for i := range verts {
		pos := mgl32.Vec3{g.Positions[3*i], g.Positions[3*i+1], g.Positions[3*i+2]}
		clip, uv := shader.Vertex(f.MVP, pos, mgl32.Vec2{g.UVs[2*i], g.UVs[2*i+1]})
		verts[i] = r.toScreen(clip, uv)
	}
	for i := 0; i+2 < len(g.Indices); i += 3 {
		r.triangle(img, verts[g.Indices[i]], verts[g.Indices[i+1]], verts[g.Indices[i+2]])
	}
	return r.target
}

func (r *Renderer) textureImage() *image.NRGBA {
	res := r.uniforms.Texture
	if res == nil || res.IsPlaceholder() {
		return nil
	}
	t, ok := res.Handle.(*Texture)
	if !ok {
		return nil
	}
	return t.Image
}

type vertex struct {
	x, y float32
	uv   mgl32.Vec2
}

// toScreen maps clip space to pixel coordinates with y pointing down.
func (r *Renderer) toScreen(clip mgl32.Vec4, uv mgl32.Vec2) vertex {
	w := clip[3]
	if w == 0 {
		w = 1
	}
	nx, ny := clip[0]/w, clip[1]/w
	return vertex{
		x:  (nx + 1) / 2 * float32(r.width),
		y:  (1 - ny) / 2 * float32(r.height),
		uv: uv,
	}
}

// edge is twice the signed area of (a, b, p). Endpoints are ordered
// canonically so that edge(a, b) is exactly -edge(b, a) and both triangles
// sharing an edge agree on which side a pixel center lies.
func edge(a, b vertex, px, py float32) float32 {
	if a.y > b.y || (a.y == b.y && a.x > b.x) {
		return -orient(b, a, px, py)
	}
	return orient(a, b, px, py)
}

func orient(a, b vertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether the directed edge a->b of a positively wound
// triangle is a top or left edge in y-down screen space.
func topLeft(a, b vertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return dy < 0 || (dy == 0 && dx > 0)
}

// inside applies the top-left fill rule: centers on an edge belong to the
// triangle only when that edge is top or left, so a shared edge is shaded once.
func inside(e float32, a, b vertex) bool {
	return e > 0 || (e == 0 && topLeft(a, b))
}

// triangle fills pixels whose centers lie inside abc under the top-left rule.
func (r *Renderer) triangle(img *image.NRGBA, a, b, c vertex) {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}
	minX := max(int(math32.Floor(min(a.x, b.x, c.x))), 0)
	maxX := min(int(math32.Ceil(max(a.x, b.x, c.x))), r.width-1)
	minY := max(int(math32.Floor(min(a.y, b.y, c.y))), 0)
	maxY := min(int(math32.Ceil(max(a.y, b.y, c.y))), r.height-1)

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			e0 := edge(b, c, px, py)
			e1 := edge(c, a, px, py)
			e2 := edge(a, b, px, py)
			if !inside(e0, b, c) || !inside(e1, c, a) || !inside(e2, a, b) {
				continue
			}
			w0, w1, w2 := e0/area, e1/area, e2/area
			uv := a.uv.Mul(w0).Add(b.uv.Mul(w1)).Add(c.uv.Mul(w2))
			src := r.program.Fragment(shader.Sample(img, uv), uv, r.uniforms.ElapsedTime, r.uniforms.Progress)
			if src.A == 0 {
				continue
			}
			r.target.SetNRGBA(x, y, over(src, r.target.NRGBAAt(x, y)))
		}
	}
}

// over composites straight-alpha src onto dst.
func over(src, dst color.NRGBA) color.NRGBA {
	if src.A == 255 {
		return src
	}
	sa := float32(src.A) / 255
	da := float32(dst.A) / 255
	oa := sa + da*(1-sa)
	if oa == 0 {
		return color.NRGBA{}
	}
	ch := func(s, d uint8) uint8 {
		v := (float32(s)*sa + float32(d)*da*(1-sa)) / oa
		return uint8(math32.Round(min(max(v, 0), 255)))
	}
	return color.NRGBA{
		R: ch(src.R, dst.R),
		G: ch(src.G, dst.G),
		B: ch(src.B, dst.B),
		A: uint8(math32.Round(oa * 255)),
	}
}
