// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package gesture

import (
	"encoding/json"
	"fmt"
)

// DisplayState is the single source of truth for what the band shows.
// Exactly one value is current at any instant.
type DisplayState int

const (
	// Neutral shows the info screen: clock, speed, heading.
	Neutral DisplayState = iota
	// ArrowLeft signals a left turn.
	ArrowLeft
	// ArrowRight signals a right turn.
	ArrowRight
	// RedFace signals stop/hazard to riders behind.
	RedFace
)

func (s DisplayState) String() string {
	switch s {
	case Neutral:
		return "neutral"
	case ArrowLeft:
		return "arrow_left"
	case ArrowRight:
		return "arrow_right"
	case RedFace:
		return "red_face"
	default:
		return fmt.Sprintf("DisplayState(%d)", int(s))
	}
}

// MarshalJSON writes the state in its string form so MQTT payloads
// stay readable on the console.
func (s DisplayState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *DisplayState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseDisplayState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseDisplayState parses the string form produced by String.
func ParseDisplayState(name string) (DisplayState, error) {
	switch name {
	case "neutral":
		return Neutral, nil
	case "arrow_left":
		return ArrowLeft, nil
	case "arrow_right":
		return ArrowRight, nil
	case "red_face":
		return RedFace, nil
	default:
		return Neutral, fmt.Errorf("unknown display state %q", name)
	}
}

// WristSide says which wrist wears the band. It mirrors the roll-based
// gesture rules and only changes on an explicit settings update.
type WristSide int

const (
	LeftWrist WristSide = iota
	RightWrist
)

func (w WristSide) String() string {
	if w == RightWrist {
		return "right"
	}
	return "left"
}

// ParseWristSide parses the config file value.
func ParseWristSide(name string) (WristSide, error) {
	switch name {
	case "left":
		return LeftWrist, nil
	case "right":
		return RightWrist, nil
	default:
		return LeftWrist, fmt.Errorf("invalid wrist side %q (must be left or right)", name)
	}
}
