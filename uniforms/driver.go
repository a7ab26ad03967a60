// Package uniforms carries CPU-side state into the reveal program. A Driver
// is the only writer of the uniform set; it rebuilds the set once per frame
// and hands the immutable value to a Sink.
package uniforms

import (
	"github.com/richinsley/goreveal/shader"
	"github.com/richinsley/goreveal/texture"
)

// UniformSet is everything the reveal program reads. Values are replaced
// wholesale each frame, never patched.
type UniformSet struct {
	Texture     *texture.Resource
	ElapsedTime float32 // seconds since scene start
	Progress    float32 // in [0,1]
}

// Sink receives the uniforms for the frame about to be drawn.
type Sink interface {
	ApplyUniforms(UniformSet)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(UniformSet)

func (f SinkFunc) ApplyUniforms(u UniformSet) { f(u) }

// ProgressSource yields the current reveal progress. ok is false when no
// value is available this frame.
type ProgressSource interface {
	Progress() (float32, bool)
}

// Driver writes uniforms once per render tick.
type Driver struct {
	sink     Sink
	progress ProgressSource
	texture  *texture.Resource
	current  UniformSet
	frames   uint64
	skipped  uint64
}

// NewDriver returns a driver writing to sink. The texture slot starts empty.
func NewDriver(sink Sink, progress ProgressSource) *Driver {
	return &Driver{sink: sink, progress: progress}
}

// BindTexture sets the texture written from the next frame on. Binding the
// resource that is already bound does nothing.
func (d *Driver) BindTexture(res *texture.Resource) {
	if res == d.texture {
		return
	}
	d.texture = res
}

// Texture returns the bound texture.
func (d *Driver) Texture() *texture.Resource {
	return d.texture
}

// Update writes the uniforms for one frame. When the clock (clockOK false)
// or the progress is unavailable the frame is skipped and the sink keeps
// the previous set. Update never blocks.
func (d *Driver) Update(elapsed float64, clockOK bool) bool {
	if !clockOK || d.progress == nil {
		d.skipped++
		return false
	}
	p, ok := d.progress.Progress()
	if !ok {
		d.skipped++
		return false
	}
	d.current = UniformSet{
		Texture:     d.texture,
		ElapsedTime: float32(elapsed),
		Progress:    shader.ClampProgress(p),
	}
	d.frames++
	if d.sink != nil {
		d.sink.ApplyUniforms(d.current)
	}
	return true
}

// Current returns the last set written.
func (d *Driver) Current() UniformSet {
	return d.current
}

// Stats returns how many frames were written and skipped.
func (d *Driver) Stats() (written, skipped uint64) {
	return d.frames, d.skipped
}
