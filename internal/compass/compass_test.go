package compass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromAzimuth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		deg  float64
		want string
	}{
		{0, "N"},
		{10, "N"},
		{45, "NE"},
		{90, "E"},
		{135, "SE"},
		{180, "S"},
		{225, "SW"},
		{270, "W"},
		{315, "NW"},
		{350, "N"},
		{359.9, "N"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FromAzimuth(tt.deg))
		})
	}
}

func TestFromAzimuthBoundaries(t *testing.T) {
	t.Parallel()

	// A sector boundary maps to the sector on the higher side.
	tests := []struct {
		deg  float64
		want string
	}{
		{22.5, "NE"},
		{67.5, "E"},
		{112.5, "SE"},
		{157.5, "S"},
		{202.5, "SW"},
		{247.5, "W"},
		{292.5, "NW"},
		{337.5, "N"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromAzimuth(tt.deg), "boundary %.1f", tt.deg)
	}
}

func TestFromAzimuthFoldsOutOfRangeInput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "E", FromAzimuth(450))
	assert.Equal(t, "W", FromAzimuth(-90))
	assert.Equal(t, "N", FromAzimuth(720))
}
