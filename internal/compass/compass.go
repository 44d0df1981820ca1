package compass

// Package compass maps a heading in degrees onto the eight cardinal
// and intercardinal labels shown on the neutral info screen.

var labels = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// FromAzimuth maps an azimuth in degrees to one of N, NE, E, SE, S,
// SW, W, NW. Sectors are 45° wide and centered on each heading, so
// boundaries sit at 22.5° + k·45°; a boundary value maps to the higher
// sector (22.5 → NE, 337.5 → N). The N sector wraps around zero.
// Input outside [0, 360) is folded in first.
func FromAzimuth(deg float64) string {
	for deg < 0 {
		deg += 360
	}
	for deg >= 360 {
		deg -= 360
	}

	idx := int((deg+22.5)/45) % 8
	return labels[idx]
}
