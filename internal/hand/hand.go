// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hand

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Reading is one frame's palm angles for one tracked hand, in radians.
type Reading struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Hand is a tracked hand as reported by the device.
type Hand struct {
	ID      string  `json:"id"`
	Reading Reading `json:"reading"`
}

// Frame is one input tick. Hands are in device enumeration order.
type Frame struct {
	Seq   int64     `json:"seq"`
	Time  time.Time `json:"time"`
	Hands []Hand    `json:"hands"`
}

// Source is anything that can deliver hand frames over time.
// Next blocks until a frame is available or ctx is done.
type Source interface {
	Next(ctx context.Context) (Frame, error)
}

// InvalidReadingError reports a non-finite angle in a Reading.
type InvalidReadingError struct {
	HandID string
	Field  string
	Value  float64
}

func (e *InvalidReadingError) Error() string {
	return fmt.Sprintf("hand %q: invalid %s reading %v", e.HandID, e.Field, e.Value)
}

// Validate returns an *InvalidReadingError if any angle is NaN or infinite.
func (r Reading) Validate(handID string) error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"roll", r.Roll},
		{"pitch", r.Pitch},
		{"yaw", r.Yaw},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &InvalidReadingError{HandID: handID, Field: f.name, Value: f.v}
		}
	}
	return nil
}

// String renders the reading the way the on-screen debug output shows it.
func (r Reading) String() string {
	return fmt.Sprintf("Roll: %v\nPitch: %v\nYaw: %v", r.Roll, r.Pitch, r.Yaw)
}
