// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package orientation

import (
	"math"
	"time"
)

type mockSource struct {
	start time.Time
}

// NewMockSource creates a mock orientation source that sweeps the
// wrist smoothly through pitch, roll and heading. Useful for running
// the signal pipeline without hardware.
func NewMockSource() Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) Next() (Sample, error) {
	elapsed := time.Since(m.start).Seconds()

	return Sample{
		PitchDeg:   25 * math.Cos(elapsed*0.7),
		RollDeg:    40 * math.Sin(elapsed*0.5),
		AzimuthDeg: NormalizeAzimuth(elapsed * 30),
	}, nil
}
