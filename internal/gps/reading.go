package gps

// Reading is a single GPS speed reading suitable for JSON and MQTT.
// Status is one of "ok", "off", "disabled", "error" and matches the
// speed display fallbacks.
type Reading struct {
	SpeedMS   float64 `json:"speed_ms"`   // speed over ground, m/s
	CourseDeg float64 `json:"course_deg"` // course over ground
	Status    string  `json:"status"`
}
