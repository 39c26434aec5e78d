// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/relabs-tech/leap_spacecraft/internal/hand"
	"github.com/relabs-tech/leap_spacecraft/internal/orientation"
)

// RunMockConsole prints the mapping of mock hand frames for both variants,
// without a broker or renderer.
func RunMockConsole(ctx context.Context) error {
	src := hand.NewMockSource(100 * time.Millisecond)
	base := orientation.BaseMapper()
	extended := orientation.ExtendedMapper(orientation.ExtendedCalibration)

	for {
		f, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if len(f.Hands) == 0 {
			fmt.Println("no hand")
			continue
		}

		for _, h := range f.Hands {
			b, err := base.Map(h.ID, h.Reading)
			if err != nil {
				fmt.Printf("%v\n", err)
				continue
			}
			e, err := extended.Map(h.ID, h.Reading)
			if err != nil {
				fmt.Printf("%v\n", err)
				continue
			}
			fmt.Printf(
				"ROLL=%6.2f PITCH=%6.2f YAW=%6.2f | base X=%6.3f Z=%6.3f | ext X=%6.3f Y=%6.3f Z=%6.3f fov=%5.1f\n",
				h.Reading.Roll, h.Reading.Pitch, h.Reading.Yaw,
				b.Target.X, b.Target.Z,
				e.Target.X, e.Target.Y, e.Target.Z, e.FOV,
			)
		}
	}
}
