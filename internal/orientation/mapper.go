package orientation

import (
	"math"

	"github.com/relabs-tech/leap_spacecraft/internal/hand"
)

const deg = math.Pi / 180

// Calibration holds per-axis correction angles in radians, added to the raw
// readings to compensate for the resting-hand bias of the tracker.
type Calibration struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

// ExtendedCalibration is the offset measured for the extended scene.
var ExtendedCalibration = Calibration{Roll: 0.2362, Pitch: -0.3189, Yaw: 0.1786}

// Apply returns the corrected angles.
func (c Calibration) Apply(r hand.Reading) hand.Reading {
	return hand.Reading{
		Roll:  r.Roll + c.Roll,
		Pitch: r.Pitch + c.Pitch,
		Yaw:   r.Yaw + c.Yaw,
	}
}

// Mapper converts hand readings into rotation targets. It is stateless;
// the zero value is the base mapper.
type Mapper struct {
	Offset   Calibration
	Extended bool
}

// BaseMapper maps pitch and roll only, without calibration.
func BaseMapper() Mapper {
	return Mapper{}
}

// ExtendedMapper maps all three axes and derives the fov and
// acceleration channels from pitch.
func ExtendedMapper(offset Calibration) Mapper {
	return Mapper{Offset: offset, Extended: true}
}

// Mapping is everything a single reading drives.
type Mapping struct {
	Corrected hand.Reading
	Target    Target

	// Extended only; zero for the base mapper.
	Acceleration float64
	FOV          float64
}

// Map validates r and computes its Mapping. A non-finite reading, or one
// large enough to overflow the mapping, yields a *hand.InvalidReadingError
// and the zero Mapping.
func (m Mapper) Map(handID string, r hand.Reading) (Mapping, error) {
	if err := r.Validate(handID); err != nil {
		return Mapping{}, err
	}

	c := m.Offset.Apply(r)
	out := Mapping{Corrected: c}

	if !m.Extended {
		out.Target = Target{
			X: c.Pitch * 25 * deg,
			Y: Resting().Y,
			Z: c.Roll * 25 * deg,
		}
		return checked(handID, r, out)
	}

	out.Target = Target{
		X: (15 + c.Pitch*35) * deg,
		Y: (90 + c.Yaw*-25) * deg,
		Z: c.Roll * 35 * deg,
	}
	out.Acceleration = (c.Pitch + 0.3) * -1
	out.FOV = 75 + math.Max(0, c.Pitch*-30)
	return checked(handID, r, out)
}

// checked rejects a mapping that overflowed, naming the input axis that
// drives the first non-finite output.
func checked(handID string, r hand.Reading, out Mapping) (Mapping, error) {
	for _, f := range []struct {
		name  string
		input float64
		v     float64
	}{
		{"pitch", r.Pitch, out.Target.X},
		{"yaw", r.Yaw, out.Target.Y},
		{"roll", r.Roll, out.Target.Z},
		{"pitch", r.Pitch, out.Acceleration},
		{"pitch", r.Pitch, out.FOV},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return Mapping{}, &hand.InvalidReadingError{HandID: handID, Field: f.name, Value: f.input}
		}
	}
	return out, nil
}
