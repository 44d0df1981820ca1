package speed

import (
	"fmt"
	"math"
)

// Unit selects the speed readout unit on the neutral info screen.
type Unit int

const (
	KMH Unit = iota
	MPH
)

// Conversion factors from meters per second.
const (
	msToKMH = 3.6
	msToMPH = 2.23694
)

func (u Unit) String() string {
	if u == MPH {
		return "mph"
	}
	return "km/h"
}

// ParseUnit parses the config file value.
func ParseUnit(name string) (Unit, error) {
	switch name {
	case "kmh", "km/h":
		return KMH, nil
	case "mph":
		return MPH, nil
	default:
		return KMH, fmt.Errorf("invalid speed unit %q (must be kmh or mph)", name)
	}
}

// Status is the upstream GPS condition as reported by the producer.
type Status string

const (
	StatusOK       Status = "ok"
	StatusOff      Status = "off"
	StatusDisabled Status = "disabled"
	StatusError    Status = "error"
)

// Display renders the speed line of the neutral screen: a rounded
// integer plus unit, or the literal fallback string for the given GPS
// failure.
func Display(speedMS float64, u Unit, st Status) string {
	switch st {
	case StatusOff:
		return "GPS Off"
	case StatusDisabled:
		return "GPS Disabled"
	case StatusError:
		return "GPS Error"
	}

	factor := msToKMH
	if u == MPH {
		factor = msToMPH
	}
	return fmt.Sprintf("%d %s", int(math.Round(speedMS*factor)), u)
}
