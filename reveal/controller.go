// Package reveal owns the revealed/hidden state of the image and asks the
// animation engine to move the reveal progress toward it.
package reveal

import (
	"time"

	"github.com/richinsley/goreveal/anim"
	"github.com/richinsley/goreveal/logging"
	"github.com/richinsley/goreveal/shader"
)

// DefaultDuration is the length of one reveal or hide tween.
const DefaultDuration = 1500 * time.Millisecond

// State is the controller's view of the reveal. IsRevealed is the last
// commanded target; Progress is the animated value in [0,1].
type State struct {
	IsRevealed bool
	Progress   float32
}

// Controller toggles the reveal. Only the controller commands tweens on its
// progress scalar.
type Controller struct {
	engine   *anim.Engine
	progress *anim.Scalar
	revealed bool
	tr       anim.Transition
}

// Option configures a Controller.
type Option func(*Controller)

// WithDuration sets the tween duration.
func WithDuration(d time.Duration) Option {
	return func(c *Controller) { c.tr.Duration = d }
}

// WithEasing sets the tween curve.
func WithEasing(e anim.Easing) Option {
	return func(c *Controller) {
		if e != nil {
			c.tr.Ease = e
		}
	}
}

// New returns a controller at rest: progress is 1 when revealed, 0 otherwise.
func New(engine *anim.Engine, revealed bool, opts ...Option) *Controller {
	c := &Controller{
		engine:   engine,
		revealed: revealed,
		tr:       anim.Transition{Duration: DefaultDuration, Ease: anim.EaseInOut},
	}
	c.progress = anim.NewScalar(target(revealed))
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Toggle flips the target and retargets the progress tween from wherever it
// currently is.
func (c *Controller) Toggle() {
	c.Set(!c.revealed)
}

// Set commands the given target. Setting the current target again is a no-op.
func (c *Controller) Set(revealed bool) {
	if revealed == c.revealed {
		return
	}
	c.revealed = revealed
	logging.Logger().Debug("Reveal toggled", "revealed", revealed, "from", c.progress.Value())
	c.engine.Animate(c.progress, target(revealed), c.tr)
}

// Seek jumps the progress to p without animating, cancelling any tween.
// The target is left alone, so the next Toggle still flips it.
func (c *Controller) Seek(p float32) {
	c.engine.Animate(c.progress, shader.ClampProgress(p), anim.Transition{})
}

// State returns the current state.
func (c *Controller) State() State {
	return State{IsRevealed: c.revealed, Progress: c.progress.Value()}
}

// Progress returns the animated progress. It is always available once the
// controller exists.
func (c *Controller) Progress() (float32, bool) {
	if c == nil || c.progress == nil {
		return 0, false
	}
	return c.progress.Value(), true
}

// Animating reports whether a tween is in flight.
func (c *Controller) Animating() bool {
	return c.engine.Active(c.progress)
}

func target(revealed bool) float32 {
	if revealed {
		return 1
	}
	return 0
}
