package anim

import "math"

// Easing maps normalized time in [0,1] to normalized progress. Every curve
// here returns exactly 0 at 0 and exactly 1 at 1.
type Easing func(t float64) float64

// Linear is the identity curve.
func Linear(t float64) float64 { return clamp01(t) }

var (
	// EaseIn is cubic-bezier(0.42, 0, 1, 1).
	EaseIn = CubicBezier(0.42, 0, 1, 1)
	// EaseOut is cubic-bezier(0, 0, 0.58, 1).
	EaseOut = CubicBezier(0, 0, 0.58, 1)
	// EaseInOut is cubic-bezier(0.42, 0, 0.58, 1).
	EaseInOut = CubicBezier(0.42, 0, 0.58, 1)
)

// CubicBezier returns the CSS-style timing curve with control points
// (x1,y1) and (x2,y2). x1 and x2 are clamped to [0,1] so the curve stays a
// function of time.
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	x1 = clamp01(x1)
	x2 = clamp01(x2)
	bez := func(t, p1, p2 float64) float64 {
		u := 1 - t
		return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
	}
	slope := func(t, p1, p2 float64) float64 {
		u := 1 - t
		return 3*u*u*p1 + 6*u*t*(p2-p1) + 3*t*t*(1-p2)
	}
	return func(x float64) float64 {
		if x <= 0 {
			return 0
		}
		if x >= 1 {
			return 1
		}
		// Newton first, bisection when the slope flattens out.
		t := x
		for i := 0; i < 8; i++ {
			dx := bez(t, x1, x2) - x
			if math.Abs(dx) < 1e-7 {
				return bez(t, y1, y2)
			}
			d := slope(t, x1, x2)
			if math.Abs(d) < 1e-6 {
				break
			}
			t -= dx / d
		}
		lo, hi := 0.0, 1.0
		t = x
		for i := 0; i < 64; i++ {
			cur := bez(t, x1, x2)
			if math.Abs(cur-x) < 1e-7 {
				break
			}
			if cur < x {
				lo = t
			} else {
				hi = t
			}
			t = (lo + hi) / 2
		}
		return bez(t, y1, y2)
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
