package speed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		speedMS float64
		unit    Unit
		want    string
	}{
		{"zero kmh", 0, KMH, "0 km/h"},
		{"city pace kmh", 5.2, KMH, "19 km/h"},
		{"rounding up kmh", 6.95, KMH, "25 km/h"},
		{"zero mph", 0, MPH, "0 mph"},
		{"city pace mph", 5.2, MPH, "12 mph"},
		{"ten ms mph", 10, MPH, "22 mph"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Display(tt.speedMS, tt.unit, StatusOK))
		})
	}
}

func TestDisplayFallbacks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "GPS Off", Display(12, KMH, StatusOff))
	assert.Equal(t, "GPS Disabled", Display(12, KMH, StatusDisabled))
	assert.Equal(t, "GPS Error", Display(12, MPH, StatusError))
}

func TestParseUnit(t *testing.T) {
	t.Parallel()

	u, err := ParseUnit("kmh")
	require.NoError(t, err)
	assert.Equal(t, KMH, u)

	u, err = ParseUnit("mph")
	require.NoError(t, err)
	assert.Equal(t, MPH, u)

	_, err = ParseUnit("furlongs")
	assert.Error(t, err)
}
