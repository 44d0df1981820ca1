// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/relabs-tech/cycle_signal/internal/gesture"
	"github.com/relabs-tech/cycle_signal/internal/speed"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDSensor  string
	MQTTClientIDGPS     string
	MQTTClientIDDisplay string
	MQTTClientIDWeb     string
	MQTTClientIDConsole string

	// Topics
	TopicOrientation string
	TopicMotion      string
	TopicGPS         string
	TopicState       string

	// Gesture tuning. One canonical set; every process reads the same
	// file so the classifier cannot drift between binaries.
	WristSide          gesture.WristSide
	ActiveAccel        float64
	NeutralAccel       float64
	GestureHoldMs      int
	BehindMinDeg       float64
	BehindMaxDeg       float64
	GravityFilterAlpha float64

	// IMU Hardware
	IMUSPIDevice string
	IMUCSPin     string
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte

	// Timing (milliseconds)
	OrientationSampleInterval int
	MotionSampleInterval      int

	// GPS
	GPSSerialPort string
	GPSBaudRate   int

	// Display
	DisplayUpdateInterval int // milliseconds
	SpeedUnit             speed.Unit

	// Web Server
	WebServerPort int
}

// Thresholds assembles the classifier tuning from the loaded values.
func (c *Config) Thresholds() gesture.Thresholds {
	return gesture.Thresholds{
		ActiveAccel:  c.ActiveAccel,
		NeutralAccel: c.NeutralAccel,
		HoldDuration: time.Duration(c.GestureHoldMs) * time.Millisecond,
		BehindMinDeg: c.BehindMinDeg,
		BehindMaxDeg: c.BehindMaxDeg,
	}
}

// Package-level unexported variables for the singleton:
//   - globalConfig is unexported so other packages cannot modify it
//     without going through InitGlobal/Get.
//   - configOnce ensures InitGlobal only runs once.
//   - configMu allows concurrent readers via Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaults returns a Config pre-filled with the reference gesture
// tuning. Hardware and broker settings have no sensible defaults and
// stay required.
func defaults() *Config {
	th := gesture.DefaultThresholds()
	return &Config{
		ActiveAccel:               th.ActiveAccel,
		NeutralAccel:              th.NeutralAccel,
		GestureHoldMs:             int(th.HoldDuration.Milliseconds()),
		BehindMinDeg:              th.BehindMinDeg,
		BehindMaxDeg:              th.BehindMaxDeg,
		GravityFilterAlpha:        0.8,
		OrientationSampleInterval: 20,
		MotionSampleInterval:      80,
		DisplayUpdateInterval:     100,
		WebServerPort:             8080,
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_SENSOR":
		c.MQTTClientIDSensor = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_ORIENTATION":
		c.TopicOrientation = value
	case "TOPIC_MOTION":
		c.TopicMotion = value
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_STATE":
		c.TopicState = value

	// Gesture tuning
	case "WRIST_SIDE":
		side, err := gesture.ParseWristSide(value)
		if err != nil {
			return err
		}
		c.WristSide = side
	case "ACTIVE_ACCEL_THRESHOLD":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ACTIVE_ACCEL_THRESHOLD %q: %w", value, err)
		}
		if v <= 0 {
			return fmt.Errorf("ACTIVE_ACCEL_THRESHOLD must be positive, got %g", v)
		}
		c.ActiveAccel = v
	case "NEUTRAL_ACCEL_THRESHOLD":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid NEUTRAL_ACCEL_THRESHOLD %q: %w", value, err)
		}
		if v <= 0 {
			return fmt.Errorf("NEUTRAL_ACCEL_THRESHOLD must be positive, got %g", v)
		}
		c.NeutralAccel = v
	case "GESTURE_HOLD_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GESTURE_HOLD_MS %q: %w", value, err)
		}
		if ms <= 0 {
			return fmt.Errorf("GESTURE_HOLD_MS must be positive, got %d", ms)
		}
		c.GestureHoldMs = ms
	case "BEHIND_MIN_DEG":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid BEHIND_MIN_DEG %q: %w", value, err)
		}
		c.BehindMinDeg = v
	case "BEHIND_MAX_DEG":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid BEHIND_MAX_DEG %q: %w", value, err)
		}
		c.BehindMaxDeg = v
	case "GRAVITY_FILTER_ALPHA":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid GRAVITY_FILTER_ALPHA %q: %w", value, err)
		}
		if v <= 0 || v >= 1 {
			return fmt.Errorf("GRAVITY_FILTER_ALPHA must be in (0, 1), got %g", v)
		}
		c.GravityFilterAlpha = v

	// IMU Hardware
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 3 {
			return fmt.Errorf("IMU_ACCEL_RANGE must be 0-3 (0=±2g, 1=±4g, 2=±8g, 3=±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)

	// Timing
	case "ORIENTATION_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ORIENTATION_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.OrientationSampleInterval = interval
	case "MOTION_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MOTION_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.MotionSampleInterval = interval

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval
	case "SPEED_UNIT":
		unit, err := speed.ParseUnit(value)
		if err != nil {
			return err
		}
		c.SpeedUnit = unit

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicOrientation == "" {
		return fmt.Errorf("TOPIC_ORIENTATION is required")
	}
	if c.TopicMotion == "" {
		return fmt.Errorf("TOPIC_MOTION is required")
	}
	if c.TopicState == "" {
		return fmt.Errorf("TOPIC_STATE is required")
	}
	if c.BehindMinDeg >= c.BehindMaxDeg {
		return fmt.Errorf("BEHIND_MIN_DEG (%g) must be below BEHIND_MAX_DEG (%g)", c.BehindMinDeg, c.BehindMaxDeg)
	}
	if c.OrientationSampleInterval <= 0 {
		return fmt.Errorf("ORIENTATION_SAMPLE_INTERVAL must be positive")
	}
	if c.MotionSampleInterval <= 0 {
		return fmt.Errorf("MOTION_SAMPLE_INTERVAL must be positive")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once so repeated calls are harmless.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
