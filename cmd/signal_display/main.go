// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/cycle_signal/internal/app"
	"github.com/relabs-tech/cycle_signal/internal/config"
)

func main() {
	configPath := flag.String("config", "./signal_config.txt", "path to configuration file")
	flag.Parse()

	log.Println("starting cycle-signal display (MQTT → gesture state → SSD1306)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunSignalDisplay(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
