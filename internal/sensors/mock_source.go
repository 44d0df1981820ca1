package sensors

import (
	"math"
	"time"

	"github.com/relabs-tech/cycle_signal/internal/imu"
)

type mockIMUSource struct {
	start time.Time
}

// NewMockIMUSource returns a raw source that simulates a wrist at rest
// with a periodic sideways flick, so the whole signal pipeline can run
// without hardware. Counts assume the ±2g accel range.
func NewMockIMUSource() imu.RawSource {
	return &mockIMUSource{start: time.Now()}
}

func (m *mockIMUSource) NextRaw() (imu.Raw, error) {
	elapsed := time.Since(m.start).Seconds()

	// Gravity on z, plus a flick on y every few seconds.
	flick := 0.0
	if math.Mod(elapsed, 5) < 0.5 {
		flick = 0.4 * math.Sin(elapsed*40)
	}

	return imu.Raw{
		Ax: int16(0.05 * math.Sin(elapsed) * 16384),
		Ay: int16(flick * 16384),
		Az: 16384,
		Gx: int16(10 * math.Sin(elapsed*0.5) * gyroLSBPerDPS),
		Gy: int16(8 * math.Cos(elapsed*0.7) * gyroLSBPerDPS),
		Gz: int16(15 * math.Sin(elapsed*0.3) * gyroLSBPerDPS),
	}, nil
}
