// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package motion

import (
	"math"
)

// Sample carries the linear-acceleration magnitude of one
// accelerometer reading, gravity removed. Non-negative.
type Sample struct {
	AccelMagnitude float64 `json:"accel_magnitude"`
}

// DefaultGravityAlpha is the IIR coefficient of the gravity low-pass
// filter. Higher values track gravity more slowly.
const DefaultGravityAlpha = 0.8

// Tracker turns raw accelerometer readings into linear-acceleration
// magnitudes. It owns the running gravity estimate exclusively; feed
// it every reading from a single goroutine.
type Tracker struct {
	alpha       float64
	gx, gy, gz  float64
	initialized bool
}

// NewTracker creates a tracker with the given gravity filter
// coefficient. Alpha outside (0, 1) falls back to DefaultGravityAlpha.
func NewTracker(alpha float64) *Tracker {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultGravityAlpha
	}
	return &Tracker{alpha: alpha}
}

// Track updates the gravity estimate with one raw reading (any unit,
// typically m/s²) and returns the magnitude of the reading net of
// gravity. The first reading seeds the gravity estimate directly so
// the device does not report a spurious burst at startup.
func (t *Tracker) Track(ax, ay, az float64) Sample {
	if !t.initialized {
		t.gx, t.gy, t.gz = ax, ay, az
		t.initialized = true
		return Sample{}
	}

	t.gx = t.alpha*t.gx + (1-t.alpha)*ax
	t.gy = t.alpha*t.gy + (1-t.alpha)*ay
	t.gz = t.alpha*t.gz + (1-t.alpha)*az

	dx := ax - t.gx
	dy := ay - t.gy
	dz := az - t.gz

	return Sample{AccelMagnitude: math.Sqrt(dx*dx + dy*dy + dz*dz)}
}

// Reset clears the gravity estimate. The next reading re-seeds it.
func (t *Tracker) Reset() {
	t.gx, t.gy, t.gz = 0, 0, 0
	t.initialized = false
}

// IsFinite reports whether the magnitude is a real number.
func (s Sample) IsFinite() bool {
	return !math.IsNaN(s.AccelMagnitude) && !math.IsInf(s.AccelMagnitude, 0)
}
