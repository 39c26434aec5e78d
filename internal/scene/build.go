package scene

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Object names.
const (
	SpacecraftName = "spacecraft"
	PlanetName     = "planet"
)

// Options configure New.
type Options struct {
	Width, Height int
	FOV           float64
	WithPlanet    bool

	// PlanetMesh is a unit sphere for the planet. The planet object exists
	// whenever WithPlanet is set; with a nil mesh it spins but draws nothing.
	PlanetMesh *Mesh
}

// New builds the camera, both lights (at zero intensity) and, when asked,
// the planet. The spacecraft is added later, once its model is loaded.
func New(opts Options) *Scene {
	s := &Scene{
		Camera: &Camera{
			FOV:      opts.FOV,
			Aspect:   1,
			Near:     1,
			Far:      5000,
			Position: r3.Vec{X: 0, Y: 250, Z: 300},
			TiltX:    -10 * math.Pi / 180,
		},
		Hemisphere: &Light{
			Kind:        Hemisphere,
			Color:       HSL(0.6, 1, 0.6),
			GroundColor: HSL(0.095, 1, 0.75),
			Position:    r3.Vec{Y: 500},
		},
		Directional: &Light{
			Kind:     Directional,
			Color:    HSL(0.1, 0.75, 0.7),
			Position: r3.Vec{X: 190, Y: 190, Z: 150},
		},
	}
	s.Resize(opts.Width, opts.Height)

	if opts.WithPlanet {
		s.Add(&Object{
			Name:        PlanetName,
			Mesh:        opts.PlanetMesh,
			Position:    r3.Vec{X: -420, Y: -60, Z: -700},
			Scale:       220,
			Orientation: quat.Number{Real: 1},
			Color:       HSL(0.58, 0.45, 0.45),
			Shininess:   10,
		})
	}
	return s
}

// NewSpacecraft wraps a loaded mesh as the controlled object.
func NewSpacecraft(m *Mesh) *Object {
	return &Object{
		Name:        SpacecraftName,
		Mesh:        m,
		Scale:       1,
		Orientation: quat.Number{Real: 1},
		Color:       Color{R: 1, G: 1, B: 1},
		Shininess:   50,
	}
}

// HSL converts hue, saturation and lightness in [0, 1] to RGB.
func HSL(h, sat, l float64) Color {
	if sat == 0 {
		return Color{R: l, G: l, B: l}
	}
	var q float64
	if l <= 0.5 {
		q = l * (1 + sat)
	} else {
		q = l + sat - l*sat
	}
	p := 2*l - q
	return Color{
		R: hueToRGB(p, q, h+1.0/3),
		G: hueToRGB(p, q, h),
		B: hueToRGB(p, q, h-1.0/3),
	}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*6*(2.0/3-t)
	}
	return p
}
