package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/cycle_signal/internal/compass"
	"github.com/relabs-tech/cycle_signal/internal/config"
	"github.com/relabs-tech/cycle_signal/internal/gesture"
	"github.com/relabs-tech/cycle_signal/internal/gps"
	"github.com/relabs-tech/cycle_signal/internal/orientation"
	"github.com/relabs-tech/cycle_signal/internal/speed"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// stateSnapshot is what the web UI sees: the displayed state plus the
// neutral-screen readouts.
type stateSnapshot struct {
	State   string `json:"state"`
	Heading string `json:"heading"`
	Speed   string `json:"speed"`
}

// webData caches the latest of everything the UI shows and fans state
// changes out to connected websockets.
type webData struct {
	mu sync.RWMutex

	state      gesture.DisplayState
	haveState  bool
	azimuthDeg float64
	gpsReading gps.Reading
	haveGPS    bool

	unit speed.Unit

	clients map[*websocket.Conn]chan stateSnapshot
}

func (d *webData) snapshot() stateSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	st := speed.StatusOff
	if d.haveGPS {
		st = speed.Status(d.gpsReading.Status)
	}
	return stateSnapshot{
		State:   d.state.String(),
		Heading: compass.FromAzimuth(d.azimuthDeg),
		Speed:   speed.Display(d.gpsReading.SpeedMS, d.unit, st),
	}
}

func (d *webData) broadcast() {
	snap := d.snapshot()
	d.mu.RLock()
	for _, ch := range d.clients {
		select {
		case ch <- snap:
		default:
			// Slow client; it will catch up on the next change.
		}
	}
	d.mu.RUnlock()
}

// RunWeb mirrors the live signal state over HTTP: a JSON snapshot at
// /api/state, a websocket push at /ws, and static files from ./web.
func RunWeb() error {
	cfg := config.Get()

	data := &webData{
		unit:    cfg.SpeedUnit,
		clients: make(map[*websocket.Conn]chan stateSnapshot),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var st gesture.DisplayState
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("web: state unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.state = st
		data.haveState = true
		data.mu.Unlock()
		data.broadcast()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicState)

	token = client.Subscribe(cfg.TopicOrientation, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s orientation.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("web: orientation unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.azimuthDeg = s.AzimuthDeg
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}

	token = client.Subscribe(cfg.TopicGPS, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r gps.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("web: gps unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.gpsReading = r
		data.haveGPS = true
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}

	http.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		data.mu.RLock()
		have := data.haveState
		data.mu.RUnlock()
		if !have {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(data.snapshot()); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		handleStateWS(w, r, data)
	})

	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}

// handleStateWS pushes a snapshot on connect and then one per state
// change until the client goes away.
func handleStateWS(w http.ResponseWriter, r *http.Request, data *webData) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ch := make(chan stateSnapshot, 4)
	data.mu.Lock()
	data.clients[conn] = ch
	data.mu.Unlock()

	defer func() {
		data.mu.Lock()
		delete(data.clients, conn)
		data.mu.Unlock()
	}()

	// Reader goroutine: only there to notice the peer closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(data.snapshot()); err != nil {
		log.Printf("web: websocket write error: %v", err)
		return
	}

	for {
		select {
		case snap := <-ch:
			if err := conn.WriteJSON(snap); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
