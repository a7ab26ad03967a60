package uniforms

import (
	"testing"

	"github.com/richinsley/goreveal/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedProgress struct {
	v  float32
	ok bool
}

func (f *fixedProgress) Progress() (float32, bool) { return f.v, f.ok }

type recordingSink struct {
	sets []UniformSet
}

func (s *recordingSink) ApplyUniforms(u UniformSet) { s.sets = append(s.sets, u) }

func TestUpdateWritesFrame(t *testing.T) {
	sink := &recordingSink{}
	prog := &fixedProgress{v: 0.4, ok: true}
	d := NewDriver(sink, prog)
	tex := texture.NewResource("a.png", 4, 4, nil)
	d.BindTexture(tex)

	require.True(t, d.Update(1.25, true))
	require.Len(t, sink.sets, 1)
	assert.Equal(t, UniformSet{Texture: tex, ElapsedTime: 1.25, Progress: 0.4}, sink.sets[0])
	assert.Equal(t, sink.sets[0], d.Current())
}

func TestUpdateClampsProgress(t *testing.T) {
	sink := &recordingSink{}
	prog := &fixedProgress{v: 1.7, ok: true}
	d := NewDriver(sink, prog)
	d.Update(0, true)
	prog.v = -3
	d.Update(0, true)
	require.Len(t, sink.sets, 2)
	assert.Equal(t, float32(1), sink.sets[0].Progress)
	assert.Equal(t, float32(0), sink.sets[1].Progress)
}

func TestUpdateSkipsWhenUnavailable(t *testing.T) {
	sink := &recordingSink{}
	prog := &fixedProgress{v: 0.5, ok: true}
	d := NewDriver(sink, prog)
	d.Update(1, true)

	prog.ok = false
	assert.False(t, d.Update(2, true))
	prog.ok = true
	assert.False(t, d.Update(3, false))

	assert.Len(t, sink.sets, 1)
	assert.Equal(t, float32(1), d.Current().ElapsedTime)
	written, skipped := d.Stats()
	assert.Equal(t, uint64(1), written)
	assert.Equal(t, uint64(2), skipped)

	assert.False(t, NewDriver(sink, nil).Update(1, true))
}

func TestBindTextureSwapsWholesale(t *testing.T) {
	sink := &recordingSink{}
	d := NewDriver(sink, &fixedProgress{v: 1, ok: true})
	a := texture.NewResource("a.png", 1, 1, nil)
	b := texture.NewResource("b.png", 2, 2, nil)

	d.BindTexture(a)
	d.Update(0, true)
	d.BindTexture(a)
	d.Update(0, true)
	d.BindTexture(b)
	d.Update(0, true)

	require.Len(t, sink.sets, 3)
	assert.Same(t, a, sink.sets[0].Texture)
	assert.Same(t, a, sink.sets[1].Texture)
	assert.Same(t, b, sink.sets[2].Texture)
	assert.Same(t, b, d.Texture())
}

func TestSinkFunc(t *testing.T) {
	var got UniformSet
	d := NewDriver(SinkFunc(func(u UniformSet) { got = u }), &fixedProgress{v: 0.3, ok: true})
	d.Update(9, true)
	assert.Equal(t, float32(9), got.ElapsedTime)
}
