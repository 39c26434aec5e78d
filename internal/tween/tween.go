// Package tween runs eased transitions of small float vectors on an
// explicit clock. Nothing advances until Tick is called, so all updates
// happen on the caller's goroutine.
package tween

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Eases used by the scene.
var (
	// EaseOut is the default ease-out for rotation and fov changes.
	EaseOut ease.TweenFunc = ease.OutQuad
	// EaseOutCubic dims the lights.
	EaseOutCubic ease.TweenFunc = ease.OutCubic
	// EaseOutCirc brightens the lights.
	EaseOutCirc ease.TweenFunc = ease.OutCirc
	Linear      ease.TweenFunc = ease.Linear
)

// Tween interpolates from From to To over Duration. OnUpdate receives a
// fresh slice on every step, including the final one where the values
// equal To exactly.
type Tween struct {
	From     []float64
	To       []float64
	Duration time.Duration
	Ease     ease.TweenFunc
	OnUpdate func(values []float64)

	progress *gween.Tween
	done     bool
}

// New returns a tween ready to be started on an Animator.
func New(from, to []float64, d time.Duration, e ease.TweenFunc, onUpdate func([]float64)) *Tween {
	if e == nil {
		e = EaseOut
	}
	return &Tween{
		From:     append([]float64(nil), from...),
		To:       append([]float64(nil), to...),
		Duration: d,
		Ease:     e,
		OnUpdate: onUpdate,
	}
}

// Done reports whether the tween reached its end values.
func (t *Tween) Done() bool {
	return t.done
}

func (t *Tween) start() {
	// gween drives a 0..1 progress value; the interpolation itself stays in
	// float64 so end values are reached exactly.
	t.progress = gween.New(0, 1, float32(t.Duration.Seconds()), t.Ease)
	if t.Duration <= 0 {
		t.finish()
	}
}

func (t *Tween) step(dt time.Duration) {
	if t.done {
		return
	}
	p, finished := t.progress.Update(float32(dt.Seconds()))
	if finished {
		t.finish()
		return
	}
	values := make([]float64, len(t.From))
	for i := range values {
		values[i] = t.From[i] + (t.To[i]-t.From[i])*float64(p)
	}
	t.emit(values)
}

func (t *Tween) finish() {
	t.done = true
	t.emit(append([]float64(nil), t.To...))
}

func (t *Tween) emit(values []float64) {
	if t.OnUpdate != nil {
		t.OnUpdate(values)
	}
}

// Animator owns the running tweens, one per key. Starting a tween under a
// key that is already animating replaces the old one: the latest target wins.
type Animator struct {
	tweens map[string]*Tween
	order  []string
}

// NewAnimator returns an empty Animator.
func NewAnimator() *Animator {
	return &Animator{tweens: make(map[string]*Tween)}
}

// Start begins t under key. A zero duration applies the end values before
// Start returns.
func (a *Animator) Start(key string, t *Tween) {
	if _, running := a.tweens[key]; !running {
		a.order = append(a.order, key)
	}
	a.tweens[key] = t
	t.start()
	if t.done && a.tweens[key] == t {
		a.remove(key)
	}
}

// Stop drops the tween under key without applying its end values.
func (a *Animator) Stop(key string) {
	a.remove(key)
}

// Active reports whether a tween is running under key.
func (a *Animator) Active(key string) bool {
	_, ok := a.tweens[key]
	return ok
}

// Len returns the number of running tweens.
func (a *Animator) Len() int {
	return len(a.tweens)
}

// Tick advances every running tween by dt, in start order.
func (a *Animator) Tick(dt time.Duration) {
	keys := append([]string(nil), a.order...)
	for _, key := range keys {
		t, ok := a.tweens[key]
		if !ok {
			continue
		}
		t.step(dt)
		// OnUpdate may have replaced the tween under this key.
		if t.done && a.tweens[key] == t {
			a.remove(key)
		}
	}
}

func (a *Animator) remove(key string) {
	if _, ok := a.tweens[key]; !ok {
		return
	}
	delete(a.tweens, key)
	for i, k := range a.order {
		if k == key {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}
