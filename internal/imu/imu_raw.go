package imu

// Raw represents a single raw accelerometer+gyro sample from the
// wrist unit.
type Raw struct {
	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}

type RawSource interface {
	NextRaw() (Raw, error)
}
