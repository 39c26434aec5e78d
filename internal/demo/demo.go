// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package demo is the hand-driven spacecraft application. App owns every
// piece of mutable state and is driven exclusively through Handle, which
// the event loop calls from a single goroutine.
package demo

import (
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/leap_spacecraft/internal/hand"
	"github.com/relabs-tech/leap_spacecraft/internal/lighting"
	"github.com/relabs-tech/leap_spacecraft/internal/loop"
	"github.com/relabs-tech/leap_spacecraft/internal/orientation"
	"github.com/relabs-tech/leap_spacecraft/internal/scene"
	"github.com/relabs-tech/leap_spacecraft/internal/tween"
)

// Transition timings.
const (
	BaseInputDuration     = 250 * time.Millisecond
	ExtendedInputDuration = time.Second
	ResetDuration         = 1500 * time.Millisecond
)

// Camera fields of view, degrees.
const (
	BaseFOV     = 70.0
	ExtendedFOV = 75.0
)

const (
	keyRotation = "spacecraft/rotation"
	keyFOV      = "camera/fov"
)

// Settings select the variant and initial viewport.
type Settings struct {
	Extended    bool
	Calibration orientation.Calibration
	Width       int
	Height      int

	// PlanetMesh is drawn for the extended variant's planet; may be nil.
	PlanetMesh *scene.Mesh
}

// DebugSink receives the human-readable roll/pitch/yaw text of every
// frame. It is a diagnostic side channel only.
type DebugSink interface {
	SetText(text string)
}

// App is the spacecraft demo.
type App struct {
	settings Settings
	mapper   orientation.Mapper
	animator *tween.Animator
	lights   *lighting.Controller
	entry    hand.EntryTracker
	renderer scene.Renderer
	debug    DebugSink

	scene      *scene.Scene
	spacecraft *scene.Object
	planet     *scene.Object
	pending    *scene.Mesh // loaded before Init
	loadErr    error

	current     orientation.Target
	goal        orientation.Target
	orientation quat.Number

	acceleration    float64
	planetRotationX float64
	fov             float64

	frames   int64
	rejected int64
	text     string
}

// New creates the application. The scene does not exist until Init.
// renderer and debug may be nil.
func New(s Settings, renderer scene.Renderer, debug DebugSink) *App {
	a := &App{
		settings: s,
		mapper:   orientation.BaseMapper(),
		animator: tween.NewAnimator(),
		renderer: renderer,
		debug:    debug,
		current:  orientation.Resting(),
		goal:     orientation.Resting(),
		fov:      BaseFOV,
	}
	if s.Extended {
		a.mapper = orientation.ExtendedMapper(s.Calibration)
		a.fov = ExtendedFOV
	}
	a.orientation = orientation.Compose(a.current)
	a.lights = lighting.NewController(a.animator, a.applyLights)
	return a
}

// Init builds the camera, lights and, for the extended variant, the planet.
func (a *App) Init() {
	a.scene = scene.New(scene.Options{
		Width:      a.settings.Width,
		Height:     a.settings.Height,
		FOV:        a.fov,
		WithPlanet: a.settings.Extended,
		PlanetMesh: a.settings.PlanetMesh,
	})
	a.planet = a.scene.Find(scene.PlanetName)
	if a.renderer != nil {
		a.renderer.SetSize(a.settings.Width, a.settings.Height)
	}
	a.applyLights(a.lights.Levels())

	if m := a.pending; m != nil {
		a.pending = nil
		a.attach(m)
	}
}

// Handle dispatches one event from the loop.
func (a *App) Handle(ev loop.Event) {
	switch ev.Kind {
	case loop.KindFrame:
		a.OnFrame(ev.Frame)
	case loop.KindTick:
		if err := a.OnTick(ev.Dt); err != nil {
			log.Printf("demo: render error: %v", err)
		}
	case loop.KindResize:
		a.OnResize(ev.Width, ev.Height)
	case loop.KindModel:
		a.OnModelLoaded(ev.Mesh, ev.Err)
	default:
		log.Printf("demo: ignoring %s event from %s", ev.Kind, ev.Producer)
	}
}

// OnFrame processes one input frame: presence changes first, then every
// hand in enumeration order. Each hand overwrites the rotation goal, so
// with several hands the last one wins.
func (a *App) OnFrame(f hand.Frame) {
	a.frames++

	for _, ev := range a.entry.Update(f) {
		switch ev.Kind {
		case hand.Found:
			a.OnHandFound(ev.HandID)
		case hand.Lost:
			a.OnHandLost(ev.HandID)
		}
	}

	var text strings.Builder
	for i, h := range f.Hands {
		if i > 0 {
			text.WriteString("\n")
		}
		text.WriteString(h.Reading.String())

		m, err := a.mapper.Map(h.ID, h.Reading)
		if err != nil {
			var invalid *hand.InvalidReadingError
			if errors.As(err, &invalid) {
				a.rejected++
			}
			log.Printf("demo: %v", err)
			continue
		}
		a.track(m)
	}
	a.setText(text.String())
}

func (a *App) track(m orientation.Mapping) {
	d := BaseInputDuration
	if a.settings.Extended {
		d = ExtendedInputDuration
		a.acceleration = m.Acceleration
		a.animateFOV(m.FOV, d)
	}
	a.rotateTo(m.Target, d)
}

// OnHandFound brightens the lights.
func (a *App) OnHandFound(id string) {
	log.Printf("demo: hand %s found", id)
	a.lights.HandFound()
}

// OnHandLost dims the lights and eases the spacecraft back to rest.
func (a *App) OnHandLost(id string) {
	log.Printf("demo: hand %s lost", id)
	a.lights.HandLost()
	a.ResetRotation(true)
}

// ResetRotation returns the spacecraft to its resting orientation, over
// ResetDuration when animated and immediately otherwise.
func (a *App) ResetRotation(animated bool) {
	d := time.Duration(0)
	if animated {
		d = ResetDuration
	}
	a.rotateTo(orientation.Resting(), d)
	if a.settings.Extended {
		a.animateFOV(ExtendedFOV, d)
	}
}

func (a *App) rotateTo(t orientation.Target, d time.Duration) {
	a.goal = t
	a.animator.Start(keyRotation, tween.New(a.current.Values(), t.Values(), d, tween.EaseOut, func(v []float64) {
		a.applyRotation(orientation.TargetFromValues(v))
	}))
}

func (a *App) applyRotation(t orientation.Target) {
	if !t.Finite() {
		return
	}
	a.current = t
	a.orientation = orientation.Compose(t)
	if a.spacecraft != nil {
		a.spacecraft.SetRotationFromQuaternion(a.orientation)
	}
}

func (a *App) animateFOV(fov float64, d time.Duration) {
	a.animator.Start(keyFOV, tween.New([]float64{a.fov}, []float64{fov}, d, tween.EaseOut, func(v []float64) {
		a.fov = v[0]
		if a.scene != nil {
			a.scene.Camera.FOV = a.fov
		}
	}))
}

func (a *App) applyLights(l lighting.Intensities) {
	if a.scene == nil {
		return
	}
	a.scene.Hemisphere.Intensity = l.Hemisphere
	a.scene.Directional.Intensity = l.Directional
}

// OnTick advances animations by dt, spins the planet and renders.
func (a *App) OnTick(dt time.Duration) error {
	a.animator.Tick(dt)

	if a.planet != nil {
		a.planetRotationX -= 0.01 + (math.Pi / 180 * a.acceleration)
		a.planet.SetRotationFromQuaternion(orientation.AxisAngle(orientation.AxisX, a.planetRotationX))
	}

	if a.scene == nil || a.renderer == nil {
		return nil
	}
	return a.renderer.Render(a.scene)
}

// OnResize updates the camera aspect and renderer size. Before Init it
// only records the size for Init to use.
func (a *App) OnResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.settings.Width, a.settings.Height = width, height
	if a.scene == nil {
		return
	}
	a.scene.Resize(width, height)
	if a.renderer != nil {
		a.renderer.SetSize(width, height)
	}
}

// OnModelLoaded attaches the spacecraft mesh, or records why it failed.
// On failure the scene keeps rendering without the spacecraft. A mesh
// that arrives before Init is held and attached by Init.
func (a *App) OnModelLoaded(m *scene.Mesh, err error) {
	if err != nil {
		a.loadErr = err
		log.Printf("demo: %v", err)
		return
	}
	if m == nil {
		return
	}
	a.loadErr = nil
	if a.scene == nil {
		log.Printf("demo: spacecraft mesh %q loaded before init, attaching on init", m.Name)
		a.pending = m
		return
	}
	a.attach(m)
}

func (a *App) attach(m *scene.Mesh) {
	if a.spacecraft != nil {
		a.scene.Remove(a.spacecraft)
	}
	a.spacecraft = scene.NewSpacecraft(m)
	a.scene.Add(a.spacecraft)
	log.Printf("demo: spacecraft mesh %q attached (%d triangles)", m.Name, len(m.Triangles))
	a.ResetRotation(false)
}

func (a *App) setText(s string) {
	a.text = s
	if a.debug != nil {
		a.debug.SetText(s)
	}
}

// Scene returns the scene, nil before Init.
func (a *App) Scene() *scene.Scene { return a.scene }

// Current returns the rotation currently shown.
func (a *App) Current() orientation.Target { return a.current }

// Goal returns the rotation being animated towards.
func (a *App) Goal() orientation.Target { return a.goal }

// Orientation returns the composed orientation of Current.
func (a *App) Orientation() quat.Number { return a.orientation }

// Lights returns the lighting controller.
func (a *App) Lights() *lighting.Controller { return a.lights }

// Acceleration returns the planet spin acceleration (extended only).
func (a *App) Acceleration() float64 { return a.acceleration }

// PlanetRotationX returns the planet's accumulated spin.
func (a *App) PlanetRotationX() float64 { return a.planetRotationX }

// LoadErr returns the last model load failure, if any.
func (a *App) LoadErr() error { return a.loadErr }

// Animating reports whether any transition is still running.
func (a *App) Animating() bool { return a.animator.Len() > 0 }
