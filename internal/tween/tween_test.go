package tween

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = time.Second / 60

func TestTweenReachesEndExactly(t *testing.T) {
	var last []float64
	a := NewAnimator()
	a.Start("v", New([]float64{0, 10}, []float64{1.5707963267948966, -3}, 250*time.Millisecond, EaseOut, func(v []float64) {
		last = v
	}))

	for i := 0; i < 30; i++ {
		a.Tick(frame)
	}
	require.Len(t, last, 2)
	assert.Equal(t, 1.5707963267948966, last[0])
	assert.Equal(t, -3.0, last[1])
	assert.False(t, a.Active("v"))
	assert.Zero(t, a.Len())
}

func TestTweenIsMonotonicWithEaseOut(t *testing.T) {
	var seen []float64
	a := NewAnimator()
	a.Start("v", New([]float64{0}, []float64{1}, time.Second, EaseOutCirc, func(v []float64) {
		seen = append(seen, v[0])
	}))
	for a.Active("v") {
		a.Tick(frame)
	}
	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		assert.GreaterOrEqual(t, seen[i], seen[i-1])
		assert.LessOrEqual(t, seen[i], 1.0)
	}
	// ease-out covers more than half the distance in the first half
	assert.Greater(t, seen[len(seen)/2-1], 0.5)
}

func TestZeroDurationAppliesImmediately(t *testing.T) {
	var got []float64
	a := NewAnimator()
	a.Start("v", New([]float64{5}, []float64{2}, 0, nil, func(v []float64) { got = v }))
	assert.Equal(t, []float64{2}, got)
	assert.False(t, a.Active("v"))
}

func TestLatestTargetWins(t *testing.T) {
	var got []float64
	a := NewAnimator()
	a.Start("v", New([]float64{0}, []float64{100}, time.Second, Linear, func(v []float64) { got = v }))
	a.Tick(500 * time.Millisecond)
	require.InDelta(t, 50, got[0], 1e-3)

	a.Start("v", New(got, []float64{-10}, time.Second, Linear, func(v []float64) { got = v }))
	assert.Equal(t, 1, a.Len())
	for i := 0; i < 3; i++ {
		a.Tick(500 * time.Millisecond)
	}
	assert.Equal(t, []float64{-10}, got)
}

func TestStopLeavesValues(t *testing.T) {
	calls := 0
	a := NewAnimator()
	a.Start("v", New([]float64{0}, []float64{1}, time.Second, Linear, func([]float64) { calls++ }))
	a.Tick(frame)
	a.Stop("v")
	a.Tick(frame)
	assert.Equal(t, 1, calls)
}

func TestIndependentKeys(t *testing.T) {
	var a1, b1 float64
	a := NewAnimator()
	a.Start("a", New([]float64{0}, []float64{1}, 500*time.Millisecond, Linear, func(v []float64) { a1 = v[0] }))
	a.Start("b", New([]float64{0}, []float64{1}, time.Second, Linear, func(v []float64) { b1 = v[0] }))
	a.Tick(600 * time.Millisecond)
	assert.Equal(t, 1.0, a1)
	assert.InDelta(t, 0.6, b1, 1e-3)
	assert.True(t, a.Active("b"))
	assert.False(t, a.Active("a"))
}
