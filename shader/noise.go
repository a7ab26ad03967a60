package shader

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func fract(x float32) float32 {
	return x - math32.Floor(x)
}

func mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clampf(x, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, x))
}

func smoothstep(e0, e1, x float32) float32 {
	t := clampf((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

func hash(p mgl32.Vec2) float32 {
	x := fract(p[0] * 123.34)
	y := fract(p[1] * 456.21)
	d := x*(x+45.32) + y*(y+45.32)
	x += d
	y += d
	return fract(x * y)
}

// ValueNoise is smooth 2D value noise in [0,1).
func ValueNoise(p mgl32.Vec2) float32 {
	ix, iy := math32.Floor(p[0]), math32.Floor(p[1])
	fx, fy := p[0]-ix, p[1]-iy
	ux := fx * fx * (3 - 2*fx)
	uy := fy * fy * (3 - 2*fy)
	a := hash(mgl32.Vec2{ix, iy})
	b := hash(mgl32.Vec2{ix + 1, iy})
	c := hash(mgl32.Vec2{ix, iy + 1})
	d := hash(mgl32.Vec2{ix + 1, iy + 1})
	return mix(mix(a, b, ux), mix(c, d, ux), uy)
}

// FBM sums four octaves of ValueNoise, normalized to [0,1].
func FBM(p mgl32.Vec2) float32 {
	var v float32
	amp := float32(0.5)
	for i := 0; i < 4; i++ {
		v += amp * ValueNoise(p)
		p = p.Mul(2)
		amp *= 0.5
	}
	return v / 0.9375
}
