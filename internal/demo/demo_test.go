package demo

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/leap_spacecraft/internal/hand"
	"github.com/relabs-tech/leap_spacecraft/internal/lighting"
	"github.com/relabs-tech/leap_spacecraft/internal/loop"
	"github.com/relabs-tech/leap_spacecraft/internal/orientation"
	"github.com/relabs-tech/leap_spacecraft/internal/scene"
)

const frame = time.Second / 60

var approx = cmpopts.EquateApprox(0, 1e-9)

type fakeRenderer struct {
	renders       int
	width, height int
	objects       int
}

func (r *fakeRenderer) Render(s *scene.Scene) error {
	r.renders++
	r.objects = len(s.Objects)
	return nil
}

func (r *fakeRenderer) SetSize(w, h int) { r.width, r.height = w, h }

type debugText struct{ last string }

func (d *debugText) SetText(s string) { d.last = s }

func newApp(t *testing.T, extended bool) (*App, *fakeRenderer) {
	t.Helper()
	r := &fakeRenderer{}
	s := Settings{Width: 640, Height: 480}
	if extended {
		s.Extended = true
		s.Calibration = orientation.ExtendedCalibration
	}
	a := New(s, r, nil)
	a.Init()
	a.OnModelLoaded(&scene.Mesh{Name: "manta"}, nil)
	return a, r
}

func settle(t *testing.T, a *App) {
	t.Helper()
	for i := 0; i < 600 && a.Animating(); i++ {
		require.NoError(t, a.OnTick(frame))
	}
}

func handFrame(seq int64, hands ...hand.Hand) hand.Frame {
	return hand.Frame{Seq: seq, Hands: hands}
}

func TestNeutralHandBaseVariant(t *testing.T) {
	a, _ := newApp(t, false)
	a.OnFrame(handFrame(1, hand.Hand{ID: "1"}))
	settle(t, a)

	if diff := cmp.Diff(orientation.Target{X: 0, Y: math.Pi / 2, Z: 0}, a.Current(), approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestNeutralHandExtendedVariant(t *testing.T) {
	a, _ := newApp(t, true)
	a.OnFrame(handFrame(1, hand.Hand{ID: "1"}))

	want := orientation.Target{
		X: (15 - 0.3189*35) * math.Pi / 180,
		Y: (90 - 0.1786*25) * math.Pi / 180,
		Z: 0.2362 * 35 * math.Pi / 180,
	}
	if diff := cmp.Diff(want, a.Goal(), approx); diff != "" {
		t.Errorf("goal (-want +got):\n%s", diff)
	}

	// one second transition: still moving after half of it
	for i := 0; i < 30; i++ {
		require.NoError(t, a.OnTick(frame))
	}
	assert.NotEqual(t, want, a.Current())

	settle(t, a)
	if diff := cmp.Diff(want, a.Current(), approx); diff != "" {
		t.Errorf("current (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(orientation.Compose(want), a.Orientation(), approx); diff != "" {
		t.Errorf("orientation (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 75+0.3189*30, a.Scene().Camera.FOV, 1e-9)
	assert.InDelta(t, 0.0189, a.Acceleration(), 1e-12)
}

func TestLastHandWins(t *testing.T) {
	a, _ := newApp(t, false)
	first := hand.Hand{ID: "1", Reading: hand.Reading{Roll: 0.4, Pitch: 0.2}}
	second := hand.Hand{ID: "2", Reading: hand.Reading{Roll: -0.6, Pitch: -0.1}}

	a.OnFrame(handFrame(1, first, second))

	want, err := orientation.BaseMapper().Map(second.ID, second.Reading)
	require.NoError(t, err)
	assert.Equal(t, want.Target, a.Goal())

	settle(t, a)
	if diff := cmp.Diff(want.Target, a.Current(), approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestHandLostReturnsToRest(t *testing.T) {
	for _, extended := range []bool{false, true} {
		a, _ := newApp(t, extended)
		a.OnFrame(handFrame(1, hand.Hand{ID: "1", Reading: hand.Reading{Roll: 1, Pitch: -1, Yaw: 0.5}}))
		settle(t, a)
		require.NotEqual(t, orientation.Resting(), a.Current())
		assert.Equal(t, lighting.Bright, a.Lights().State())

		a.OnFrame(handFrame(2))
		assert.Equal(t, lighting.Dim, a.Lights().State())

		// 1.5s transition: not there yet at 1s
		for i := 0; i < 60; i++ {
			require.NoError(t, a.OnTick(frame))
		}
		assert.NotEqual(t, orientation.Resting(), a.Current())

		settle(t, a)
		assert.Equal(t, orientation.Resting(), a.Current())
		assert.Equal(t, lighting.Intensities{}, a.Lights().Levels())
		if extended {
			assert.Equal(t, ExtendedFOV, a.Scene().Camera.FOV)
		}
	}
}

func TestLightsFollowPresence(t *testing.T) {
	a, _ := newApp(t, false)
	a.OnFrame(handFrame(1, hand.Hand{ID: "1"}))
	settle(t, a)
	assert.Equal(t, lighting.HemisphereBright, a.Scene().Hemisphere.Intensity)
	assert.Equal(t, lighting.DirectionalBright, a.Scene().Directional.Intensity)

	// lost, then found again before the dim finishes
	a.OnFrame(handFrame(2))
	for i := 0; i < 5; i++ {
		require.NoError(t, a.OnTick(frame))
	}
	a.OnFrame(handFrame(3, hand.Hand{ID: "2"}))
	settle(t, a)
	assert.Equal(t, lighting.HemisphereBright, a.Scene().Hemisphere.Intensity)
	assert.Equal(t, lighting.DirectionalBright, a.Scene().Directional.Intensity)
}

func TestInvalidReadingKeepsGoal(t *testing.T) {
	a, _ := newApp(t, true)
	good := hand.Hand{ID: "1", Reading: hand.Reading{Roll: 0.1}}
	a.OnFrame(handFrame(1, good))
	settle(t, a)
	before := a.Goal()

	a.OnFrame(handFrame(2, hand.Hand{ID: "1", Reading: hand.Reading{Pitch: math.NaN()}}))
	settle(t, a)

	assert.Equal(t, before, a.Goal())
	assert.True(t, a.Current().Finite())
	assert.Equal(t, int64(1), a.Snapshot().Rejected)
}

func TestOverflowingReadingKeepsGoal(t *testing.T) {
	for _, extended := range []bool{false, true} {
		a, _ := newApp(t, extended)
		a.OnFrame(handFrame(1, hand.Hand{ID: "1", Reading: hand.Reading{Pitch: 0.1}}))
		settle(t, a)
		before := a.Goal()
		accel := a.Acceleration()

		huge := math.MaxFloat64 / 2
		a.OnFrame(handFrame(2, hand.Hand{ID: "1", Reading: hand.Reading{Roll: huge, Pitch: huge}}))
		settle(t, a)

		assert.Equal(t, before, a.Goal(), "extended=%v", extended)
		assert.Equal(t, accel, a.Acceleration())
		assert.True(t, a.Current().Finite())
		assert.False(t, math.IsInf(a.PlanetRotationX(), 0))
		assert.Equal(t, int64(1), a.Snapshot().Rejected)

		_, err := json.Marshal(a.Snapshot())
		require.NoError(t, err)
	}
}

func TestModelLoadSnapsToRest(t *testing.T) {
	a := New(Settings{Width: 10, Height: 10}, nil, nil)
	a.Init()
	a.OnFrame(handFrame(1, hand.Hand{ID: "1", Reading: hand.Reading{Roll: 1}}))
	require.NoError(t, a.OnTick(frame))

	a.OnModelLoaded(&scene.Mesh{Name: "manta"}, nil)
	assert.Equal(t, orientation.Resting(), a.Current())
	assert.Equal(t, orientation.Resting(), a.Goal())

	obj := a.Scene().Find(scene.SpacecraftName)
	require.NotNil(t, obj)
	if diff := cmp.Diff(orientation.Compose(orientation.Resting()), obj.Orientation, approx); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestModelLoadedBeforeInit(t *testing.T) {
	a := New(Settings{Width: 10, Height: 10}, nil, nil)
	mesh := &scene.Mesh{Name: "manta"}
	a.OnModelLoaded(mesh, nil)
	assert.Nil(t, a.Scene())
	assert.False(t, a.Snapshot().ModelLoaded)

	a.Init()
	obj := a.Scene().Find(scene.SpacecraftName)
	require.NotNil(t, obj)
	assert.Same(t, mesh, obj.Mesh)
	assert.True(t, a.Snapshot().ModelLoaded)
	assert.Equal(t, orientation.Resting(), a.Current())
}

func TestModelLoadFailureKeepsRendering(t *testing.T) {
	r := &fakeRenderer{}
	a := New(Settings{Extended: true, Width: 10, Height: 10}, r, nil)
	a.Init()

	err := &scene.LoadError{Path: "models/missing.stl", Err: errors.New("no such file")}
	a.Handle(loop.Event{Producer: loop.ProducerLoader, Kind: loop.KindModel, Err: err})

	assert.ErrorIs(t, a.LoadErr(), err)
	assert.Nil(t, a.Scene().Find(scene.SpacecraftName))

	a.Handle(loop.Event{Producer: loop.ProducerRender, Kind: loop.KindTick, Dt: frame})
	assert.Equal(t, 1, r.renders)
	assert.Equal(t, 1, r.objects, "planet still drawn")

	// hands still drive the (invisible) rotation without panicking
	a.OnFrame(handFrame(1, hand.Hand{ID: "1"}))
	settle(t, a)
	assert.False(t, a.Snapshot().ModelLoaded)
	assert.NotEmpty(t, a.Snapshot().ModelError)
}

func TestResizeBeforeInit(t *testing.T) {
	r := &fakeRenderer{}
	a := New(Settings{Width: 640, Height: 480}, r, nil)
	assert.NotPanics(t, func() {
		a.Handle(loop.Event{Producer: loop.ProducerHost, Kind: loop.KindResize, Width: 1000, Height: 500})
		require.NoError(t, a.OnTick(frame))
	})
	assert.Nil(t, a.Scene())
	assert.Zero(t, r.renders)

	a.Init()
	assert.Equal(t, 2.0, a.Scene().Camera.Aspect)
	assert.Equal(t, 1000, r.width)

	a.OnResize(300, 300)
	assert.Equal(t, 1.0, a.Scene().Camera.Aspect)
	assert.Equal(t, 300, r.height)
}

func TestPlanetSpin(t *testing.T) {
	a, _ := newApp(t, true)
	require.NoError(t, a.OnTick(frame))
	assert.InDelta(t, -0.01, a.PlanetRotationX(), 1e-12)

	a.OnFrame(handFrame(1, hand.Hand{ID: "1", Reading: hand.Reading{Pitch: -0.5}}))
	accel := a.Acceleration()
	assert.InDelta(t, (-0.5-0.3189+0.3)*-1, accel, 1e-12)

	before := a.PlanetRotationX()
	require.NoError(t, a.OnTick(frame))
	assert.InDelta(t, before-0.01-math.Pi/180*accel, a.PlanetRotationX(), 1e-12)

	base, _ := newApp(t, false)
	require.NoError(t, base.OnTick(frame))
	assert.Zero(t, base.PlanetRotationX(), "base variant has no planet")
}

func TestDebugText(t *testing.T) {
	d := &debugText{}
	a := New(Settings{Width: 1, Height: 1}, nil, d)
	a.Init()

	a.OnFrame(handFrame(1, hand.Hand{ID: "1", Reading: hand.Reading{Roll: 0.5, Pitch: 0.25, Yaw: -1}}))
	assert.Equal(t, "Roll: 0.5\nPitch: 0.25\nYaw: -1", d.last)
	assert.Equal(t, d.last, a.Snapshot().Debug)

	a.OnFrame(handFrame(2))
	assert.Empty(t, d.last)
}

func TestSnapshot(t *testing.T) {
	a, _ := newApp(t, true)
	a.OnFrame(handFrame(1, hand.Hand{ID: "1"}))
	s := a.Snapshot()
	assert.Equal(t, "extended", s.Variant)
	assert.Equal(t, 1, s.Tracking)
	assert.Equal(t, "bright", s.LightState)
	assert.True(t, s.ModelLoaded)
	assert.Equal(t, int64(1), s.Frames)
	assert.InDelta(t, 1, math.Sqrt(s.Orientation[0]*s.Orientation[0]+s.Orientation[1]*s.Orientation[1]+
		s.Orientation[2]*s.Orientation[2]+s.Orientation[3]*s.Orientation[3]), 1e-9)
}
