// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/cycle_signal/internal/config"
	"github.com/relabs-tech/cycle_signal/internal/imu"
)

// Gravity in m/s², used to convert raw accelerometer counts.
const gravityMS2 = 9.80665

// accelLSBPerG maps the configured accel range (0=±2g .. 3=±16g) to
// LSB per g.
var accelLSBPerG = [4]float64{16384, 8192, 4096, 2048}

// Gyro sensitivity at the default ±250°/s range.
const gyroLSBPerDPS = 131.0

type imuSource struct {
	imu        *mpu9250.MPU9250
	accelRange byte
}

// NewIMUSource initializes the wrist MPU9250 over SPI and returns a
// raw reader for it.
func NewIMUSource() (imu.RawSource, error) {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("wrist IMU: periph host init: %w", err)
	}

	cs := gpioreg.ByName(cfg.IMUCSPin)
	if cs == nil {
		return nil, fmt.Errorf("wrist IMU: CS pin %q not found", cfg.IMUCSPin)
	}

	tr, err := mpu9250.NewSpiTransport(cfg.IMUSPIDevice, cs)
	if err != nil {
		return nil, fmt.Errorf("wrist IMU: SPI transport (%s): %w", cfg.IMUSPIDevice, err)
	}

	dev, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("wrist IMU: device creation: %w", err)
	}

	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("wrist IMU: initialization: %w", err)
	}

	if _, err := dev.SelfTest(); err != nil {
		log.Printf("wrist IMU: WARNING: self-test failed: %v", err)
	}
	if err := dev.Calibrate(); err != nil {
		log.Printf("wrist IMU: WARNING: calibration failed: %v", err)
	}

	if err := dev.SetAccelRange(cfg.IMUAccelRange); err != nil {
		return nil, fmt.Errorf("wrist IMU: set accel range: %w", err)
	}
	log.Printf("wrist IMU: accelerometer range set to %d (±%dg)", cfg.IMUAccelRange, []int{2, 4, 8, 16}[cfg.IMUAccelRange])

	return &imuSource{imu: dev, accelRange: cfg.IMUAccelRange}, nil
}

// NextRaw reads accelerometer and gyro counts from the IMU.
func (s *imuSource) NextRaw() (imu.Raw, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("wrist IMU accel X: %w", err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("wrist IMU accel Y: %w", err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("wrist IMU accel Z: %w", err)
	}

	gx, err := s.imu.GetRotationX()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("wrist IMU gyro X: %w", err)
	}
	gy, err := s.imu.GetRotationY()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("wrist IMU gyro Y: %w", err)
	}
	gz, err := s.imu.GetRotationZ()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("wrist IMU gyro Z: %w", err)
	}

	return imu.Raw{Ax: ax, Ay: ay, Az: az, Gx: gx, Gy: gy, Gz: gz}, nil
}

// AccelMS2 converts one raw accelerometer axis to m/s² for the
// configured range.
func AccelMS2(count int16, accelRange byte) float64 {
	if accelRange > 3 {
		accelRange = 0
	}
	return float64(count) / accelLSBPerG[accelRange] * gravityMS2
}

// GyroDPS converts one raw gyro axis to °/s at the default range.
func GyroDPS(count int16) float64 {
	return float64(count) / gyroLSBPerDPS
}
