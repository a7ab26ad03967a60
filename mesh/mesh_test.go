package mesh

import (
	"errors"
	"testing"

	"github.com/richinsley/goreveal/scale"
	"github.com/richinsley/goreveal/texture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRequester struct {
	next     texture.RequestID
	paths    map[texture.RequestID]string
	canceled []texture.RequestID
}

func newFakeRequester() *fakeRequester {
	return &fakeRequester{paths: make(map[texture.RequestID]string)}
}

func (f *fakeRequester) Request(path string) texture.RequestID {
	f.next++
	f.paths[f.next] = path
	return f.next
}

func (f *fakeRequester) Cancel(id texture.RequestID) {
	f.canceled = append(f.canceled, id)
}

type fakeBinder struct {
	bound []*texture.Resource
}

func (b *fakeBinder) BindTexture(r *texture.Resource) { b.bound = append(b.bound, r) }

func (b *fakeBinder) last() *texture.Resource { return b.bound[len(b.bound)-1] }

type handle struct{ released bool }

func (h *handle) Release() { h.released = true }

func resolve(f *fakeRequester, id texture.RequestID, w, h int) (texture.Result, *handle) {
	hd := &handle{}
	path := f.paths[id]
	return texture.Result{ID: id, Path: path, Resource: texture.NewResource(path, w, h, hd)}, hd
}

func TestNewBindsPlaceholder(t *testing.T) {
	b := &fakeBinder{}
	m := New(newFakeRequester(), b)
	require.Len(t, b.bound, 1)
	assert.True(t, b.last().IsPlaceholder())
	assert.False(t, m.Ready())
	assert.True(t, m.Texture().IsPlaceholder())
}

func TestLoadAndAspectScale(t *testing.T) {
	req := newFakeRequester()
	b := &fakeBinder{}
	m := New(req, b, WithBaseUnit(0.3))
	m.SetImage("./img/texture.webp")
	require.True(t, m.Loading())

	r, _ := resolve(req, 1, 800, 600)
	require.True(t, m.HandleResult(r))
	assert.True(t, m.Ready())
	assert.Same(t, r.Resource, b.last())

	s := m.Scale(16, 9)
	assert.InDelta(t, 0.3, s.X, 1e-6)
	assert.InDelta(t, 0.225, s.Y, 1e-6)
	assert.Equal(t, float32(1), s.Z)
}

func TestFullscreenScaleIgnoresAspect(t *testing.T) {
	req := newFakeRequester()
	m := New(req, &fakeBinder{})
	m.SetImage("a.png")
	r, _ := resolve(req, 1, 800, 600)
	m.HandleResult(r)

	before := m.Scale(1920, 1080)
	assert.InDelta(t, DefaultBaseUnit, before.X, 1e-6)

	m.SetFullscreen(true)
	assert.True(t, m.Fullscreen())
	assert.Equal(t, scale.Vector{X: 1920, Y: 1080, Z: 1}, m.Scale(1920, 1080))
	// Live resize is picked up on the next frame.
	assert.Equal(t, scale.Vector{X: 1280, Y: 720, Z: 1}, m.Scale(1280, 720))
}

func TestZeroViewportRetainsScale(t *testing.T) {
	m := New(newFakeRequester(), &fakeBinder{}, WithFullscreen(true))
	prev := m.Scale(800, 600)
	assert.Equal(t, prev, m.Scale(0, 0))
	assert.Equal(t, prev, m.Scale(0, 600))
	m.SetFullscreen(false)
	assert.Equal(t, prev, m.Scale(800, 0))
}

func TestStaleResultReleased(t *testing.T) {
	req := newFakeRequester()
	b := &fakeBinder{}
	m := New(req, b)
	m.SetImage("first.png")
	m.SetImage("second.png")
	assert.Equal(t, []texture.RequestID{1}, req.canceled)

	second, _ := resolve(req, 2, 10, 10)
	first, firstHandle := resolve(req, 1, 20, 10)

	require.True(t, m.HandleResult(second))
	assert.False(t, m.HandleResult(first))
	assert.True(t, firstHandle.released)
	assert.Equal(t, "second.png", m.Texture().Path)
	assert.Same(t, second.Resource, b.last())
}

func TestReplacementReleasesPrevious(t *testing.T) {
	req := newFakeRequester()
	m := New(req, &fakeBinder{})
	m.SetImage("a.png")
	a, aHandle := resolve(req, 1, 1, 1)
	m.HandleResult(a)

	m.SetImage("b.png")
	// Until b resolves, a keeps rendering.
	assert.Equal(t, "a.png", m.Texture().Path)
	assert.False(t, aHandle.released)

	b, bHandle := resolve(req, 2, 1, 1)
	m.HandleResult(b)
	assert.True(t, aHandle.released)
	assert.False(t, bHandle.released)

	m.Close()
	assert.True(t, bHandle.released)
	assert.False(t, m.Ready())
}

func TestFailureKeepsPreviousTexture(t *testing.T) {
	req := newFakeRequester()
	b := &fakeBinder{}
	m := New(req, b)
	m.SetImage("good.png")
	good, goodHandle := resolve(req, 1, 4, 3)
	m.HandleResult(good)

	m.SetImage("./img/missing.webp")
	loadErr := &texture.AssetLoadError{Path: "./img/missing.webp", Err: errors.New("no such file")}
	assert.False(t, m.HandleResult(texture.Result{ID: 2, Path: "./img/missing.webp", Err: loadErr}))

	assert.False(t, m.Loading())
	assert.Same(t, good.Resource, m.Texture())
	assert.Same(t, good.Resource, b.last())
	assert.False(t, goodHandle.released)
	var ale *texture.AssetLoadError
	require.ErrorAs(t, m.LastError(), &ale)
	assert.Contains(t, m.LastError().Error(), "./img/missing.webp")

	// Asking again retries explicitly.
	m.SetImage("./img/missing.webp")
	assert.True(t, m.Loading())
}

func TestSetImageSamePathIsNoop(t *testing.T) {
	req := newFakeRequester()
	m := New(req, &fakeBinder{})
	m.SetImage("a.png")
	m.SetImage("a.png")
	assert.Equal(t, texture.RequestID(1), req.next)

	r, _ := resolve(req, 1, 1, 1)
	m.HandleResult(r)
	m.SetImage("a.png")
	assert.Equal(t, texture.RequestID(1), req.next)

	m.Reload()
	assert.Equal(t, texture.RequestID(2), req.next)
}

func TestModelMatrix(t *testing.T) {
	m := New(newFakeRequester(), &fakeBinder{}, WithFullscreen(true))
	m.Scale(4, 2)
	model := m.Model()
	assert.Equal(t, float32(4), model.At(0, 0))
	assert.Equal(t, float32(2), model.At(1, 1))
	assert.Equal(t, float32(1), model.At(2, 2))
}
