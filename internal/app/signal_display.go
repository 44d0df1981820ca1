// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"math"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/cycle_signal/internal/config"
	"github.com/relabs-tech/cycle_signal/internal/gesture"
	"github.com/relabs-tech/cycle_signal/internal/gps"
	"github.com/relabs-tech/cycle_signal/internal/motion"
	"github.com/relabs-tech/cycle_signal/internal/orientation"
	"github.com/relabs-tech/cycle_signal/internal/speed"
)

// gpsData holds the latest GPS reading for the neutral screen.
type gpsData struct {
	mu      sync.RWMutex
	reading gps.Reading
	have    bool
}

func (d *gpsData) set(r gps.Reading) {
	d.mu.Lock()
	d.reading = r
	d.have = true
	d.mu.Unlock()
}

func (d *gpsData) get() (gps.Reading, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.reading, d.have
}

// RunSignalDisplay subscribes to the sample topics, runs the gesture
// state machine, and draws the result on the SSD1306. Every state
// transition is also published (retained) on the state topic for the
// web and console subscribers.
func RunSignalDisplay() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: SSD1306 initialized")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Transitions are published from their own goroutine because the
	// observer runs under the controller mutex.
	transitions := make(chan gesture.DisplayState, 8)
	go func() {
		for st := range transitions {
			payload, err := json.Marshal(st)
			if err != nil {
				log.Printf("display: state marshal error: %v", err)
				continue
			}
			if token := client.Publish(cfg.TopicState, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("display: MQTT publish error (state): %v", token.Error())
			}
			log.Printf("display: state → %s", st)
		}
	}()

	controller := gesture.NewController(cfg.WristSide, cfg.Thresholds(), nil, func(st gesture.DisplayState) {
		select {
		case transitions <- st:
		default:
			log.Println("display: transition channel full, dropping")
		}
	})

	gpsLatest := &gpsData{}

	if err := subscribeSamples(client, cfg, controller, gpsLatest); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		if err := updateDisplay(dev, cfg, controller, gpsLatest); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func subscribeSamples(client mqtt.Client, cfg *config.Config, controller *gesture.Controller, gpsLatest *gpsData) error {
	token := client.Subscribe(cfg.TopicOrientation, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s orientation.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("display: orientation unmarshal error: %v", err)
			return
		}
		controller.OnOrientation(s)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicOrientation)

	token = client.Subscribe(cfg.TopicMotion, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s motion.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("display: motion unmarshal error: %v", err)
			return
		}
		controller.OnMotion(s)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicMotion)

	token = client.Subscribe(cfg.TopicGPS, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r gps.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("display: gps unmarshal error: %v", err)
			return
		}
		gpsLatest.set(r)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.TopicGPS)

	return nil
}

func updateDisplay(dev *ssd1306.Dev, cfg *config.Config, controller *gesture.Controller, gpsLatest *gpsData) error {
	img := blankImage()

	switch controller.State() {
	case gesture.ArrowLeft:
		drawArrow(img, true)
	case gesture.ArrowRight:
		drawArrow(img, false)
	case gesture.RedFace:
		drawFace(img)
	default:
		reading, have := gpsLatest.get()
		st := speed.StatusOff
		if have {
			st = speed.Status(reading.Status)
		}
		drawNeutral(img, time.Now().Format("15:04"), speed.Display(reading.SpeedMS, cfg.SpeedUnit, st), controller.Heading())
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func blankImage() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}
	return img
}

func drawNeutral(img *image1bit.VerticalLSB, clock, speedLine, heading string) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte(clock))

	drawer.Dot = fixed.P(0, 32)
	drawer.DrawBytes([]byte(speedLine))

	drawer.Dot = fixed.P(0, 51)
	drawer.DrawBytes([]byte(heading))
}

// drawArrow fills a turn arrow: a triangle head with a rectangular
// shaft, pointing left or right.
func drawArrow(img *image1bit.VerticalLSB, left bool) {
	const midY = 32

	// Triangle head: tip at the panel edge, widening over 28 columns.
	for dx := 0; dx <= 28; dx++ {
		half := 24 * dx / 28
		x := 14 + dx
		if !left {
			x = 114 - dx
		}
		for y := midY - half; y <= midY+half; y++ {
			img.SetBit(x, y, image1bit.On)
		}
	}

	// Shaft.
	for x := 42; x <= 114; x++ {
		sx := x
		if !left {
			sx = 128 - x
		}
		for y := midY - 8; y <= midY+8; y++ {
			img.SetBit(sx, y, image1bit.On)
		}
	}
}

// drawFace draws the stop/hazard face: round head, two eyes, flat
// unhappy mouth.
func drawFace(img *image1bit.VerticalLSB) {
	const cx, cy, r = 64, 32, 28

	// Head outline, 2px thick.
	for deg := 0.0; deg < 360.0; deg += 0.5 {
		rad := deg * math.Pi / 180
		for _, rr := range []float64{r, r - 1} {
			x := cx + int(rr*math.Cos(rad))
			y := cy + int(rr*math.Sin(rad))
			img.SetBit(x, y, image1bit.On)
		}
	}

	// Eyes.
	for dy := -3; dy <= 3; dy++ {
		for dx := -3; dx <= 3; dx++ {
			if dx*dx+dy*dy <= 9 {
				img.SetBit(cx-10+dx, cy-8+dy, image1bit.On)
				img.SetBit(cx+10+dx, cy-8+dy, image1bit.On)
			}
		}
	}

	// Mouth.
	for x := cx - 12; x <= cx+12; x++ {
		img.SetBit(x, cy+12, image1bit.On)
		img.SetBit(x, cy+13, image1bit.On)
	}
}

func showSplash(dev *ssd1306.Dev) error {
	img := blankImage()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(15, 26)
	drawer.DrawBytes([]byte("Cycle Signal"))

	drawer.Dot = fixed.P(25, 43)
	drawer.DrawBytes([]byte("Ride safe"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
