package orientation

import (
	"math"
)

// Sample is the canonical orientation reading for the signal band.
// Azimuth is the compass heading of the wrist in [0, 360), pitch and
// roll are signed degrees.
type Sample struct {
	PitchDeg   float64 `json:"pitch_deg"`
	RollDeg    float64 `json:"roll_deg"`
	AzimuthDeg float64 `json:"azimuth_deg"`
}

// Source is anything that can provide orientation samples over time:
// the real IMU, a mock source, a replay source from file, etc.
type Source interface {
	Next() (Sample, error)
}

// NormalizeAzimuth shifts an angle in degrees into [0, 360).
// Adding 360 before the second modulo keeps negative inputs from
// producing negative results.
func NormalizeAzimuth(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

// FromRotationMatrix decomposes a row-major 3x3 rotation matrix into
// pitch/roll/azimuth degrees:
//
//	azimuth = atan2(m[1], m[4])
//	pitch   = asin(-m[7])
//	roll    = atan2(-m[6], m[8])
//
// A degenerate all-zero matrix yields (0, 0, 0).
func FromRotationMatrix(m [9]float64) Sample {
	azimuthRad := math.Atan2(m[1], m[4])
	pitchRad := math.Asin(clamp(-m[7], -1, 1))
	rollRad := math.Atan2(-m[6], m[8])

	return Sample{
		PitchDeg:   pitchRad * 180.0 / math.Pi,
		RollDeg:    rollRad * 180.0 / math.Pi,
		AzimuthDeg: NormalizeAzimuth(azimuthRad * 180.0 / math.Pi),
	}
}

// FromQuaternion builds the rotation matrix for a unit quaternion
// (w, x, y, z) and decomposes it. The quaternion does not need to be
// normalized exactly; it is scaled to unit length first.
func FromQuaternion(w, x, y, z float64) Sample {
	n := math.Sqrt(w*w + x*x + y*y + z*z)
	if n == 0 {
		return Sample{}
	}
	w, x, y, z = w/n, x/n, y/n, z/n

	m := [9]float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	}
	return FromRotationMatrix(m)
}

// fusionAlpha weights the gyro prediction against the accelerometer
// tilt in FromIMURaw. Close to 1 trusts the gyro short-term.
const fusionAlpha = 0.95

// FromIMURaw estimates orientation from one raw IMU reading, for
// sensors without a rotation-vector output (MPU9250 path). Pitch and
// roll blend the gyro-integrated previous estimate with the
// accelerometer tilt:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// Azimuth integrates the z gyro rate on top of the previous heading
// until magnetometer fusion lands. Units: accel in m/s² (any scale
// works for the tilt ratios), gyro in °/s, dt in seconds.
func FromIMURaw(ax, ay, az, gx, gy, gz float64, prev Sample, dt float64) Sample {
	rollAcc := math.Atan2(ay, az) * 180.0 / math.Pi
	pitchAcc := math.Atan2(-ax, math.Sqrt(ay*ay+az*az)) * 180.0 / math.Pi

	if dt <= 0 || dt > 0.2 {
		// First sample or a stalled stream: trust the accelerometer.
		return Sample{
			PitchDeg:   pitchAcc,
			RollDeg:    rollAcc,
			AzimuthDeg: NormalizeAzimuth(prev.AzimuthDeg),
		}
	}

	rollGyro := prev.RollDeg + gx*dt
	pitchGyro := prev.PitchDeg + gy*dt

	return Sample{
		PitchDeg:   fusionAlpha*pitchGyro + (1-fusionAlpha)*pitchAcc,
		RollDeg:    fusionAlpha*rollGyro + (1-fusionAlpha)*rollAcc,
		AzimuthDeg: NormalizeAzimuth(prev.AzimuthDeg + gz*dt),
	}
}

// IsFinite reports whether every field of the sample is a real number.
// Sensor glitches can surface as NaN or Inf; those samples are dropped
// by the consumer instead of reaching the classifier.
func (s Sample) IsFinite() bool {
	return isFinite(s.PitchDeg) && isFinite(s.RollDeg) && isFinite(s.AzimuthDeg)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
