// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package hand

import (
	"context"
	"math"
	"time"
)

// Presence cycle of the mock hand: visible for mockPresent, then gone for mockAbsent.
const (
	mockPresent = 8 * time.Second
	mockAbsent  = 3 * time.Second
)

type mockSource struct {
	start  time.Time
	now    func() time.Time
	ticker *time.Ticker
	seq    int64
}

// NewMockSource creates a mock hand source that generates smooth changing
// angles for a single hand, which periodically leaves and re-enters
// tracking so the lighting transitions get exercised.
func NewMockSource(interval time.Duration) Source {
	return &mockSource{
		start:  time.Now(),
		now:    time.Now,
		ticker: time.NewTicker(interval),
	}
}

func (m *mockSource) Next(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		m.ticker.Stop()
		return Frame{}, ctx.Err()
	case <-m.ticker.C:
	}
	return m.frameAt(m.now()), nil
}

func (m *mockSource) frameAt(t time.Time) Frame {
	m.seq++
	f := Frame{Seq: m.seq, Time: t}

	elapsed := t.Sub(m.start)
	if elapsed%(mockPresent+mockAbsent) >= mockPresent {
		return f
	}

	s := elapsed.Seconds()
	f.Hands = []Hand{{
		ID: "mock-1",
		Reading: Reading{
			Roll:  0.6 * math.Sin(s),
			Pitch: 0.4 * math.Cos(s*0.7),
			Yaw:   0.3 * math.Sin(s*0.3),
		},
	}}
	return f
}
