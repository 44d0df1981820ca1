package app

import (
	"bufio"
	"encoding/json"
	"log"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/cycle_signal/internal/config"
	"github.com/relabs-tech/cycle_signal/internal/gps"
	"github.com/relabs-tech/cycle_signal/internal/speed"
)

const knotsToMS = 0.514444

// RunGPSProducer opens the GPS serial port, parses NMEA sentences, and
// publishes speed readings as JSON to the GPS topic. The display only
// needs speed over ground, so RMC is the one sentence type consumed.
func RunGPSProducer() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDGPS)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("gps: connected to MQTT broker at %s", cfg.MQTTBroker)

	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		// No receiver attached: tell the display so it can render the
		// "GPS Off" fallback instead of a stale number.
		publishReading(client, cfg.TopicGPS, gps.Reading{Status: string(speed.StatusOff)})
		return err
	}
	defer port.Close()
	log.Printf("gps: serial port opened on %s at %d baud", cfg.GPSSerialPort, cfg.GPSBaudRate)

	reader := bufio.NewReader(port)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("gps: read error: %v", err)
			publishReading(client, cfg.TopicGPS, gps.Reading{Status: string(speed.StatusError)})
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			// noisy GPS or partial sentences
			continue
		}

		if sentence.DataType() != nmea.TypeRMC {
			continue
		}
		m := sentence.(nmea.RMC)

		reading := gps.Reading{
			SpeedMS:   m.Speed * knotsToMS,
			CourseDeg: m.Course,
			Status:    string(speed.StatusOK),
		}
		if m.Validity != nmea.ValidRMC {
			// Receiver on but no fix yet.
			reading = gps.Reading{Status: string(speed.StatusError)}
		}

		publishReading(client, cfg.TopicGPS, reading)
	}
}

func publishReading(client mqtt.Client, topic string, r gps.Reading) {
	payload, err := json.Marshal(r)
	if err != nil {
		log.Printf("gps: JSON marshal error: %v", err)
		return
	}
	token := client.Publish(topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		log.Printf("gps: publish error: %v", token.Error())
	}
}
