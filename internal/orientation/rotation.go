// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Target is a per-axis rotation in radians. Values are immutable; every
// change produces a new Target.
type Target struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Resting is the orientation shown while no hand is tracked.
func Resting() Target {
	return Target{X: 0, Y: math.Pi / 2, Z: 0}
}

// Finite reports whether all components are finite numbers.
func (t Target) Finite() bool {
	for _, v := range [...]float64{t.X, t.Y, t.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Values returns the components as a slice, in X, Y, Z order.
func (t Target) Values() []float64 {
	return []float64{t.X, t.Y, t.Z}
}

// TargetFromValues is the inverse of Values.
func TargetFromValues(v []float64) Target {
	return Target{X: v[0], Y: v[1], Z: v[2]}
}

var (
	AxisX = r3.Vec{X: 1}
	AxisY = r3.Vec{Y: 1}
	AxisZ = r3.Vec{Z: 1}
)

// AxisAngle returns the unit quaternion rotating by angle radians about
// the unit vector axis.
func AxisAngle(axis r3.Vec, angle float64) quat.Number {
	s := math.Sin(angle / 2)
	return quat.Number{
		Real: math.Cos(angle / 2),
		Imag: axis.X * s,
		Jmag: axis.Y * s,
		Kmag: axis.Z * s,
	}
}

// Compose builds the object orientation for t as (Z·X)·Y: the Z rotation
// is leftmost and Y is applied innermost. The order decides which axis
// dominates near gimbal lock and must not be changed to XYZ.
func Compose(t Target) quat.Number {
	qx := AxisAngle(AxisX, t.X)
	qy := AxisAngle(AxisY, t.Y)
	qz := AxisAngle(AxisZ, t.Z)
	return quat.Mul(quat.Mul(qz, qx), qy)
}

// ToAxisAngle converts a unit quaternion back to an axis and angle. The
// identity rotation reports the X axis with a zero angle.
func ToAxisAngle(q quat.Number) (r3.Vec, float64) {
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	s := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if s < 1e-12 {
		return AxisX, 0
	}
	angle := 2 * math.Atan2(s, q.Real)
	return r3.Vec{X: q.Imag / s, Y: q.Jmag / s, Z: q.Kmag / s}, angle
}

// Rotate applies the unit quaternion q to p.
func Rotate(q quat.Number, p r3.Vec) r3.Vec {
	pq := quat.Number{Imag: p.X, Jmag: p.Y, Kmag: p.Z}
	out := quat.Mul(quat.Mul(q, pq), quat.Conj(q))
	return r3.Vec{X: out.Imag, Y: out.Jmag, Z: out.Kmag}
}
