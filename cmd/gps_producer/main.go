package main

import (
	"log"

	"github.com/relabs-tech/cycle_signal/internal/app"
	"github.com/relabs-tech/cycle_signal/internal/config"
)

func main() {
	log.Println("starting cycle-signal GPS producer (NMEA → MQTT)")

	if err := config.InitGlobal("signal_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunGPSProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
