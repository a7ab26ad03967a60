package shader

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ThresholdFunc returns the progress at which the pixel at uv starts to
// appear. Results are clamped to [0,1].
type ThresholdFunc func(uv mgl32.Vec2, time float32) float32

// DefaultThreshold mixes a vertical gradient with drifting fbm noise. The top
// of the image appears first and the boundary is ragged rather than straight.
func DefaultThreshold(uv mgl32.Vec2, time float32) float32 {
	drift := mgl32.Vec2{time * 0.08, time * -0.05}
	n := FBM(uv.Mul(3).Add(drift))
	return clampf(mix(1-uv[1], n, 0.6), 0, 1)
}

// Program is the CPU reference of the reveal fragment stage.
type Program struct {
	Threshold ThresholdFunc
	Edge      float32
}

// NewProgram returns the program matching FragmentSource(edge).
func NewProgram(edge float32) *Program {
	if !(edge > 0) {
		edge = DefaultEdge
	}
	return &Program{Threshold: DefaultThreshold, Edge: edge}
}

// ClampProgress confines a caller-supplied progress to [0,1]. NaN maps to 0.
func ClampProgress(p float32) float32 {
	if math32.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Mask returns the visibility of the pixel at uv in [0,1].
func (p *Program) Mask(uv mgl32.Vec2, time, progress float32) float32 {
	threshold := p.Threshold
	if threshold == nil {
		threshold = DefaultThreshold
	}
	edge := p.Edge
	if !(edge > 0) {
		edge = DefaultEdge
	}
	t := clampf(threshold(uv, time), 0, 1)
	if math32.IsNaN(t) {
		t = 1
	}
	x := ClampProgress(progress) * (1 + edge)
	return smoothstep(t, t+edge, x)
}

// Fragment shades one pixel: the sample's alpha scaled by the mask. A mask
// of exactly 1 returns the sample unchanged.
func (p *Program) Fragment(sample color.NRGBA, uv mgl32.Vec2, time, progress float32) color.NRGBA {
	m := p.Mask(uv, time, progress)
	if m <= 0 {
		return color.NRGBA{}
	}
	if m >= 1 {
		return sample
	}
	sample.A = uint8(math32.Round(float32(sample.A) * m))
	return sample
}

// Vertex transforms a plane vertex. UVs pass through untouched so they stay
// in [0,1]x[0,1].
func Vertex(mvp mgl32.Mat4, position mgl32.Vec3, uv mgl32.Vec2) (mgl32.Vec4, mgl32.Vec2) {
	return mvp.Mul4x1(position.Vec4(1)), uv
}

// Sample reads img at uv with nearest filtering and clamp-to-edge wrapping.
// uv (0,0) is the bottom-left corner of the image, as on the GPU after the
// upload flip.
func Sample(img *image.NRGBA, uv mgl32.Vec2) color.NRGBA {
	if img == nil {
		return color.NRGBA{}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return color.NRGBA{}
	}
	x := int(math32.Floor(clampf(uv[0], 0, 1) * float32(w)))
	y := int(math32.Floor((1 - clampf(uv[1], 0, 1)) * float32(h)))
	x = min(max(x, 0), w-1)
	y = min(max(y, 0), h-1)
	return img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
}
