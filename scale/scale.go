// Package scale computes the quad scale for an image, either preserving the
// image aspect ratio or filling the viewport.
package scale

// Vector is a per-axis scale. Z is always 1 for the planar quad.
type Vector struct {
	X, Y, Z float32
}

// Identity is the unit scale.
var Identity = Vector{X: 1, Y: 1, Z: 1}

// For returns an aspect-correct scale whose longer side equals baseUnit.
// Non-positive dimensions degrade to a square of baseUnit.
func For(width, height int, baseUnit float32) Vector {
	if width <= 0 || height <= 0 {
		return Vector{X: baseUnit, Y: baseUnit, Z: 1}
	}
	w, h := float32(width), float32(height)
	if width >= height {
		return Vector{X: baseUnit, Y: baseUnit * h / w, Z: 1}
	}
	return Vector{X: baseUnit * w / h, Y: baseUnit, Z: 1}
}

// Fullscreen returns a scale that stretches the quad over the whole
// viewport, ignoring the image aspect. It reports false for an empty
// viewport (hidden window, minimized tab); callers keep their previous scale.
func Fullscreen(viewportWidth, viewportHeight float32) (Vector, bool) {
	if !(viewportWidth > 0) || !(viewportHeight > 0) {
		return Vector{}, false
	}
	return Vector{X: viewportWidth, Y: viewportHeight, Z: 1}, true
}
