// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/cycle_signal/internal/config"
	"github.com/relabs-tech/cycle_signal/internal/motion"
	"github.com/relabs-tech/cycle_signal/internal/orientation"
	"github.com/relabs-tech/cycle_signal/internal/sensors"
)

// RunSensorProducer reads the wrist IMU and publishes two independent
// sample streams over MQTT: orientation on a fast tick and motion
// energy on a slower one, matching the display's consumption model.
// If the IMU cannot be initialized the producer falls back to the
// mock source so the rest of the pipeline stays testable.
func RunSensorProducer() error {
	log.Println("sensor: starting wrist producer (IMU → MQTT)")

	cfg := config.Get()

	src, err := sensors.NewIMUSource()
	if err != nil {
		log.Printf("sensor: WARNING: IMU not available (%v), using mock source", err)
		src = sensors.NewMockIMUSource()
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDSensor)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Printf("sensor: connected to MQTT broker at %s", cfg.MQTTBroker)

	tracker := motion.NewTracker(cfg.GravityFilterAlpha)

	var pose orientation.Sample
	var lastOrientationTick time.Time

	orientationTicker := time.NewTicker(time.Duration(cfg.OrientationSampleInterval) * time.Millisecond)
	defer orientationTicker.Stop()
	motionTicker := time.NewTicker(time.Duration(cfg.MotionSampleInterval) * time.Millisecond)
	defer motionTicker.Stop()

	for {
		select {
		case t := <-orientationTicker.C:
			raw, err := src.NextRaw()
			if err != nil {
				log.Printf("sensor: IMU read error: %v", err)
				continue
			}

			var dt float64
			if !lastOrientationTick.IsZero() {
				dt = t.Sub(lastOrientationTick).Seconds()
			}
			lastOrientationTick = t

			pose = orientation.FromIMURaw(
				sensors.AccelMS2(raw.Ax, cfg.IMUAccelRange),
				sensors.AccelMS2(raw.Ay, cfg.IMUAccelRange),
				sensors.AccelMS2(raw.Az, cfg.IMUAccelRange),
				sensors.GyroDPS(raw.Gx),
				sensors.GyroDPS(raw.Gy),
				sensors.GyroDPS(raw.Gz),
				pose,
				dt,
			)

			publishJSON(client, cfg.TopicOrientation, pose, "orientation")

		case <-motionTicker.C:
			raw, err := src.NextRaw()
			if err != nil {
				log.Printf("sensor: IMU read error: %v", err)
				continue
			}

			sample := tracker.Track(
				sensors.AccelMS2(raw.Ax, cfg.IMUAccelRange),
				sensors.AccelMS2(raw.Ay, cfg.IMUAccelRange),
				sensors.AccelMS2(raw.Az, cfg.IMUAccelRange),
			)

			publishJSON(client, cfg.TopicMotion, sample, "motion")
		}
	}
}

func publishJSON(client mqtt.Client, topic string, v interface{}, what string) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("sensor: %s marshal error: %v", what, err)
		return
	}
	if token := client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("sensor: MQTT publish error (%s): %v", what, token.Error())
	}
}
