// Package anim interpolates scalars over time. One engine tick per displayed
// frame advances every live tween; a scalar has at most one tween at a time.
package anim

import "time"

// Scalar is a value animated by an Engine. The zero value is 0.
type Scalar struct {
	value float32
}

// NewScalar returns a scalar starting at v.
func NewScalar(v float32) *Scalar {
	return &Scalar{value: v}
}

// Value returns the current value.
func (s *Scalar) Value() float32 {
	return s.value
}

// Transition configures one tween.
type Transition struct {
	Duration time.Duration
	Ease     Easing
}

type tween struct {
	from, to float32
	elapsed  time.Duration
	tr       Transition
}

// Engine owns all live tweens. It is not safe for concurrent use; the
// render thread drives it.
type Engine struct {
	tweens map[*Scalar]*tween
}

// NewEngine returns an engine with no live tweens.
func NewEngine() *Engine {
	return &Engine{tweens: make(map[*Scalar]*tween)}
}

// Animate tweens s from its current value to target. A live tween on s is
// replaced, so the scalar never receives writes from two tweens.
func (e *Engine) Animate(s *Scalar, target float32, tr Transition) {
	if tr.Ease == nil {
		tr.Ease = Linear
	}
	if tr.Duration <= 0 {
		delete(e.tweens, s)
		s.value = target
		return
	}
	e.tweens[s] = &tween{from: s.value, to: target, tr: tr}
}

// Stop cancels the tween on s, leaving it at its current value.
func (e *Engine) Stop(s *Scalar) {
	delete(e.tweens, s)
}

// Tick advances every live tween by dt. Finished tweens land exactly on
// their target and are removed.
func (e *Engine) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	for s, tw := range e.tweens {
		tw.elapsed += dt
		if tw.elapsed >= tw.tr.Duration {
			s.value = tw.to
			delete(e.tweens, s)
			continue
		}
		k := tw.tr.Ease(float64(tw.elapsed) / float64(tw.tr.Duration))
		s.value = tw.from + (tw.to-tw.from)*float32(k)
	}
}

// Active reports whether s has a live tween.
func (e *Engine) Active(s *Scalar) bool {
	_, ok := e.tweens[s]
	return ok
}

// Target returns the destination of the live tween on s.
func (e *Engine) Target(s *Scalar) (float32, bool) {
	tw, ok := e.tweens[s]
	if !ok {
		return 0, false
	}
	return tw.to, true
}

// Len returns the number of live tweens.
func (e *Engine) Len() int {
	return len(e.tweens)
}
