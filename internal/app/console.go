// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/cycle_signal/internal/compass"
	"github.com/relabs-tech/cycle_signal/internal/config"
	"github.com/relabs-tech/cycle_signal/internal/gesture"
	"github.com/relabs-tech/cycle_signal/internal/gps"
	"github.com/relabs-tech/cycle_signal/internal/motion"
	"github.com/relabs-tech/cycle_signal/internal/orientation"
)

// RunConsole subscribes to every signal topic and prints the traffic.
// Debug tool; run it next to the producers to watch gestures land.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	poseToken := client.Subscribe(cfg.TopicOrientation, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s orientation.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: orientation unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[ORIENT] PITCH=%7.2f  ROLL=%7.2f  AZ=%6.2f (%s)\n",
			s.PitchDeg, s.RollDeg, s.AzimuthDeg, compass.FromAzimuth(s.AzimuthDeg),
		)
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicOrientation)

	motionToken := client.Subscribe(cfg.TopicMotion, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s motion.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: motion unmarshal error: %v", err)
			return
		}

		fmt.Printf("[MOTION] |a|=%6.3f\n", s.AccelMagnitude)
	})
	motionToken.Wait()
	if motionToken.Error() != nil {
		return motionToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicMotion)

	stateToken := client.Subscribe(cfg.TopicState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st gesture.DisplayState
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("console: state unmarshal error: %v", err)
			return
		}

		fmt.Printf("[STATE ] %s\n", st)
	})
	stateToken.Wait()
	if stateToken.Error() != nil {
		return stateToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicState)

	gpsToken := client.Subscribe(cfg.TopicGPS, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r gps.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: gps unmarshal error: %v", err)
			return
		}

		fmt.Printf("[GPS   ] speed=%5.2fm/s course=%6.1f° status=%s\n", r.SpeedMS, r.CourseDeg, r.Status)
	})
	gpsToken.Wait()
	if gpsToken.Error() != nil {
		return gpsToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicGPS)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
