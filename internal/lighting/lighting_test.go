package lighting

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/leap_spacecraft/internal/tween"
)

const frame = time.Second / 60

func settle(a *tween.Animator) {
	for i := 0; i < 600 && a.Len() > 0; i++ {
		a.Tick(frame)
	}
}

func TestBrightenAndDim(t *testing.T) {
	a := tween.NewAnimator()
	var updates int
	c := NewController(a, func(Intensities) { updates++ })

	assert.Equal(t, Dim, c.State())
	assert.Equal(t, Intensities{}, c.Levels())

	c.HandFound()
	assert.Equal(t, Bright, c.State())
	assert.True(t, c.Animating())

	// hemisphere finishes first
	for i := 0; i < 35; i++ {
		a.Tick(frame)
	}
	assert.Equal(t, HemisphereBright, c.Levels().Hemisphere)
	assert.Less(t, c.Levels().Directional, DirectionalBright)

	settle(a)
	assert.Equal(t, Intensities{Hemisphere: 0.6, Directional: 1.0}, c.Levels())
	assert.False(t, c.Animating())
	assert.Positive(t, updates)

	c.HandLost()
	settle(a)
	assert.Equal(t, Dim, c.State())
	assert.Equal(t, Intensities{}, c.Levels())
}

func TestRepeatedFoundIsNotCumulative(t *testing.T) {
	a := tween.NewAnimator()
	c := NewController(a, nil)
	for i := 0; i < 5; i++ {
		c.HandFound()
		a.Tick(frame)
	}
	settle(a)
	assert.Equal(t, Intensities{Hemisphere: HemisphereBright, Directional: DirectionalBright}, c.Levels())
}

func TestLostThenFoundBeforeDimCompletes(t *testing.T) {
	a := tween.NewAnimator()
	c := NewController(a, nil)
	c.HandFound()
	settle(a)

	c.HandLost()
	for i := 0; i < 10; i++ {
		a.Tick(frame)
	}
	mid := c.Levels()
	require.Less(t, mid.Hemisphere, HemisphereBright)
	require.Positive(t, mid.Hemisphere)

	c.HandFound()
	settle(a)
	assert.Equal(t, Bright, c.State())
	assert.Equal(t, Intensities{Hemisphere: HemisphereBright, Directional: DirectionalBright}, c.Levels())
}

func TestIntensityStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := tween.NewAnimator()
	c := NewController(a, func(l Intensities) {
		assert.GreaterOrEqual(t, l.Hemisphere, 0.0)
		assert.LessOrEqual(t, l.Hemisphere, HemisphereBright)
		assert.GreaterOrEqual(t, l.Directional, 0.0)
		assert.LessOrEqual(t, l.Directional, DirectionalBright)
	})

	for i := 0; i < 500; i++ {
		switch rng.Intn(3) {
		case 0:
			c.HandFound()
		case 1:
			c.HandLost()
		}
		a.Tick(time.Duration(rng.Intn(100)) * time.Millisecond)
	}
}
