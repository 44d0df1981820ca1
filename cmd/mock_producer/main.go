package main

import (
	"encoding/json"
	"log"
	"math"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/cycle_signal/internal/motion"
	"github.com/relabs-tech/cycle_signal/internal/orientation"
)

func main() {
	log.Println("starting cycle-signal MQTT producer (mock)")

	// 1) Connect to MQTT broker on the Pi
	opts := mqtt.NewClientOptions().
		AddBroker("tcp://localhost:1883").
		SetClientID("cycle-signal-producer-mock")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("MQTT connect error: %v", token.Error())
	}
	defer client.Disconnect(250)

	src := orientation.NewMockSource()
	start := time.Now()

	orientationTicker := time.NewTicker(20 * time.Millisecond)
	defer orientationTicker.Stop()
	motionTicker := time.NewTicker(80 * time.Millisecond)
	defer motionTicker.Stop()

	for {
		select {
		case <-orientationTicker.C:
			pose, err := src.Next()
			if err != nil {
				log.Printf("error from mock source: %v", err)
				continue
			}

			payload, err := json.Marshal(pose)
			if err != nil {
				log.Printf("json marshal error: %v", err)
				continue
			}
			client.Publish("signal/orientation", 0, true, payload).Wait()

		case t := <-motionTicker.C:
			// A burst of arm movement every five seconds.
			elapsed := t.Sub(start).Seconds()
			mag := 0.1
			if math.Mod(elapsed, 5) < 0.5 {
				mag = 2.0
			}

			payload, err := json.Marshal(motion.Sample{AccelMagnitude: mag})
			if err != nil {
				log.Printf("json marshal error: %v", err)
				continue
			}
			client.Publish("signal/motion", 0, true, payload).Wait()

			log.Printf("%s published motion |a|=%.2f", t.Format(time.RFC3339), mag)
		}
	}
}
