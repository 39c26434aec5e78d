package demo

import (
	"github.com/relabs-tech/leap_spacecraft/internal/lighting"
	"github.com/relabs-tech/leap_spacecraft/internal/orientation"
)

// State is a read-only snapshot of the app, published to MQTT and the
// web clients.
type State struct {
	Variant     string               `json:"variant"`
	Tracking    int                  `json:"tracking"`
	Rotation    orientation.Target   `json:"rotation"`
	Goal        orientation.Target   `json:"goal"`
	Orientation [4]float64           `json:"orientation"` // w, x, y, z
	Lights      lighting.Intensities `json:"lights"`
	LightState  string               `json:"light_state"`
	FOV         float64              `json:"fov"`
	Accel       float64              `json:"acceleration,omitempty"`
	PlanetX     float64              `json:"planet_rotation_x,omitempty"`
	ModelLoaded bool                 `json:"model_loaded"`
	ModelError  string               `json:"model_error,omitempty"`
	Debug       string               `json:"debug"`
	Frames      int64                `json:"frames"`
	Rejected    int64                `json:"rejected"`
}

// Snapshot copies the current state.
func (a *App) Snapshot() State {
	variant := "base"
	if a.settings.Extended {
		variant = "extended"
	}
	q := a.orientation
	s := State{
		Variant:     variant,
		Tracking:    a.entry.Tracked(),
		Rotation:    a.current,
		Goal:        a.goal,
		Orientation: [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag},
		Lights:      a.lights.Levels(),
		LightState:  a.lights.State().String(),
		FOV:         a.fov,
		Accel:       a.acceleration,
		PlanetX:     a.planetRotationX,
		ModelLoaded: a.spacecraft != nil,
		Debug:       a.text,
		Frames:      a.frames,
		Rejected:    a.rejected,
	}
	if a.loadErr != nil {
		s.ModelError = a.loadErr.Error()
	}
	return s
}
