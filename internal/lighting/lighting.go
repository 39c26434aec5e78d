package lighting

import (
	"math"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/relabs-tech/leap_spacecraft/internal/tween"
)

// State is the lighting mode the controller is heading to.
type State int

const (
	Dim State = iota
	Bright
)

func (s State) String() string {
	if s == Bright {
		return "bright"
	}
	return "dim"
}

// Bright intensities.
const (
	HemisphereBright  = 0.6
	DirectionalBright = 1.0
)

// Transition durations.
const (
	HemisphereBrighten  = 500 * time.Millisecond
	DirectionalBrighten = time.Second
	DimDuration         = 500 * time.Millisecond
)

const (
	keyHemisphere  = "light/hemisphere"
	keyDirectional = "light/directional"
)

// Intensities is a snapshot of both light levels.
type Intensities struct {
	Hemisphere  float64 `json:"hemisphere"`
	Directional float64 `json:"directional"`
}

// Controller animates the hemisphere and directional lights between DIM
// and BRIGHT. Targets are absolute, so repeating an event restarts the
// same transition instead of stacking.
type Controller struct {
	animator *tween.Animator
	state    State
	levels   Intensities
	onChange func(Intensities)
}

// NewController starts dimmed. onChange, if non-nil, is called on every
// animation step with the new levels.
func NewController(a *tween.Animator, onChange func(Intensities)) *Controller {
	return &Controller{animator: a, state: Dim, onChange: onChange}
}

// State returns the mode of the last event.
func (c *Controller) State() State {
	return c.state
}

// Levels returns the current intensities.
func (c *Controller) Levels() Intensities {
	return c.levels
}

// Animating reports whether a transition is still in progress.
func (c *Controller) Animating() bool {
	return c.animator.Active(keyHemisphere) || c.animator.Active(keyDirectional)
}

// HandFound brightens both lights.
func (c *Controller) HandFound() {
	c.state = Bright
	c.animate(keyHemisphere, c.levels.Hemisphere, HemisphereBright, HemisphereBrighten, tween.EaseOutCirc)
	c.animate(keyDirectional, c.levels.Directional, DirectionalBright, DirectionalBrighten, tween.EaseOutCirc)
}

// HandLost dims both lights.
func (c *Controller) HandLost() {
	c.state = Dim
	c.animate(keyHemisphere, c.levels.Hemisphere, 0, DimDuration, tween.EaseOutCubic)
	c.animate(keyDirectional, c.levels.Directional, 0, DimDuration, tween.EaseOutCubic)
}

func (c *Controller) animate(key string, from, to float64, d time.Duration, e ease.TweenFunc) {
	ceil := HemisphereBright
	set := func(v float64) { c.levels.Hemisphere = v }
	if key == keyDirectional {
		ceil = DirectionalBright
		set = func(v float64) { c.levels.Directional = v }
	}

	c.animator.Start(key, tween.New([]float64{from}, []float64{to}, d, e, func(v []float64) {
		set(math.Min(ceil, math.Max(0, v[0])))
		if c.onChange != nil {
			c.onChange(c.levels)
		}
	}))
}
