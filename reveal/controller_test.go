package reveal

import (
	"testing"
	"time"

	"github.com/richinsley/goreveal/anim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = time.Second / 60

func tick(e *anim.Engine, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += frame {
		e.Tick(frame)
	}
}

func TestNewAtRest(t *testing.T) {
	e := anim.NewEngine()
	assert.Equal(t, State{IsRevealed: true, Progress: 1}, New(e, true).State())
	assert.Equal(t, State{IsRevealed: false, Progress: 0}, New(e, false).State())
	assert.Equal(t, 0, e.Len())
}

func TestToggleRevealsOverDuration(t *testing.T) {
	e := anim.NewEngine()
	c := New(e, false)
	c.Toggle()
	require.True(t, c.Animating())
	assert.True(t, c.State().IsRevealed)

	tick(e, 750*time.Millisecond)
	p, ok := c.Progress()
	require.True(t, ok)
	assert.Greater(t, p, float32(0))
	assert.Less(t, p, float32(1))

	tick(e, 800*time.Millisecond)
	assert.Equal(t, State{IsRevealed: true, Progress: 1}, c.State())
	assert.False(t, c.Animating())
}

func TestRapidDoubleToggleRetargets(t *testing.T) {
	e := anim.NewEngine()
	c := New(e, false)
	c.Toggle()
	tick(e, 300*time.Millisecond)
	c.Toggle()
	assert.Equal(t, 1, e.Len())
	assert.False(t, c.State().IsRevealed)

	tick(e, 2*time.Second)
	assert.Equal(t, State{IsRevealed: false, Progress: 0}, c.State())
	assert.Equal(t, 0, e.Len())
}

func TestToggleNeverLeavesUnitRange(t *testing.T) {
	e := anim.NewEngine()
	c := New(e, true, WithDuration(200*time.Millisecond))
	for i := 0; i < 40; i++ {
		if i%3 == 0 {
			c.Toggle()
		}
		e.Tick(frame)
		p, _ := c.Progress()
		assert.GreaterOrEqual(t, p, float32(0))
		assert.LessOrEqual(t, p, float32(1))
	}
}

func TestSetIsIdempotent(t *testing.T) {
	e := anim.NewEngine()
	c := New(e, true)
	c.Set(true)
	assert.Equal(t, 0, e.Len())
	c.Set(false)
	assert.Equal(t, 1, e.Len())
}

func TestOptions(t *testing.T) {
	e := anim.NewEngine()
	c := New(e, false, WithDuration(100*time.Millisecond), WithEasing(anim.Linear))
	c.Toggle()
	e.Tick(50 * time.Millisecond)
	p, _ := c.Progress()
	assert.InDelta(t, 0.5, p, 1e-6)
}

func TestSeek(t *testing.T) {
	e := anim.NewEngine()
	c := New(e, false)
	c.Toggle()
	require.True(t, c.Animating())

	c.Seek(0.25)
	assert.False(t, c.Animating())
	assert.Equal(t, State{IsRevealed: true, Progress: 0.25}, c.State())

	c.Seek(7)
	p, _ := c.Progress()
	assert.Equal(t, float32(1), p)

	c.Toggle()
	assert.False(t, c.State().IsRevealed)
	assert.True(t, c.Animating())
}
