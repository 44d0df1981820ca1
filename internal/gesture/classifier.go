// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package gesture

import (
	"math"
	"time"

	"github.com/relabs-tech/cycle_signal/internal/motion"
	"github.com/relabs-tech/cycle_signal/internal/orientation"
)

// Thresholds is the single canonical set of tuning constants for the
// classifier and the hysteresis controller. Loaded from config so the
// producer and display processes cannot drift apart.
type Thresholds struct {
	// ActiveAccel is the linear-acceleration magnitude above which the
	// arm counts as actively gesturing.
	ActiveAccel float64
	// NeutralAccel is the magnitude below which the arm counts as at
	// rest, both for the neutral fallback and for timeout reversion.
	NeutralAccel float64
	// HoldDuration is how long a gesture stays on screen after the
	// last accepted detection before reverting to neutral.
	HoldDuration time.Duration
	// BehindMinDeg/BehindMaxDeg bound the azimuth band in which the
	// wrist points behind the rider.
	BehindMinDeg float64
	BehindMaxDeg float64
}

// DefaultThresholds returns the reference tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ActiveAccel:  1.5,
		NeutralAccel: 0.8,
		HoldDuration: time.Second,
		BehindMinDeg: 135,
		BehindMaxDeg: 225,
	}
}

// Classify maps one orientation/motion pair to a candidate display
// state. The bool is true only when the candidate came from a genuine
// gesture rule; the neutral fallback and the hold-current fallback
// report false. Pure: safe to call from tests without a Controller.
//
// Rules are checked in order, first match wins. The right-wrist table
// deliberately has only the mirrored straight-out-to-side gesture; the
// elbow-up and hand-down rows have no right-wrist equivalents.
func Classify(o orientation.Sample, m motion.Sample, side WristSide, current DisplayState, th Thresholds) (DisplayState, bool) {
	isActive := m.AccelMagnitude > th.ActiveAccel
	isBehind := o.AzimuthDeg >= th.BehindMinDeg && o.AzimuthDeg <= th.BehindMaxDeg

	if side == LeftWrist {
		// Arm straight out to the left, palm rolled up.
		if isActive && isBehind && o.RollDeg > 60 && math.Abs(o.PitchDeg) < 30 {
			return ArrowLeft, true
		}
		// Elbow up, forearm across: signals a right turn from the left arm.
		if isActive && isBehind && o.PitchDeg > -70 && o.PitchDeg < -30 && math.Abs(o.RollDeg) < 30 {
			return ArrowRight, true
		}
		// Hand held down and still: stop/hazard.
		if !isActive && isBehind && o.PitchDeg > 50 && o.PitchDeg < 80 && math.Abs(o.RollDeg) < 30 {
			return RedFace, true
		}
	} else {
		// Arm straight out to the right, mirrored roll.
		if isActive && isBehind && o.RollDeg < -60 && math.Abs(o.PitchDeg) < 30 {
			return ArrowRight, true
		}
	}

	// Arm at rest and level: neutral info screen.
	if m.AccelMagnitude < th.NeutralAccel && math.Abs(o.PitchDeg) < 20 && math.Abs(o.RollDeg) < 20 {
		return Neutral, false
	}

	// No rule matched; propose no change.
	return current, false
}
