package main

import (
	"fmt"
	"html/template"
	"log"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kgustafsson/semimarkov/demoprocess"
	"github.com/kgustafsson/semimarkov/propagator"
)

var indexTemplate *template.Template

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development.
		return true
	},
}

// ClientMessage is a command sent from the browser.
type ClientMessage struct {
	Type   string `json:"type"`
	Sampler string `json:"sampler,omitempty"`
}

// ServerMessage is a status or trajectory update pushed to the browser.
type ServerMessage struct {
	Type       string  `json:"type"`
	Running    *bool   `json:"running,omitempty"`
	Sampler    string  `json:"sampler,omitempty"`
	Time       float64 `json:"time,omitempty"`
	Kind       string  `json:"kind,omitempty"`
	Population int     `json:"population,omitempty"`
}

// trajectoryState owns the live demoprocess.MaintenanceQueue and the pacing
// flags the UI loop reads.
type trajectoryState struct {
	queue       *demoprocess.MaintenanceQueue
	samplerName string
	running     bool
	mu          sync.Mutex
	stopCh      chan struct{}
}

func newTrajectoryState(samplerName string, seed int64) (*trajectoryState, error) {
	sampler, err := newSampler(samplerName)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	cfg := demoprocess.MaintenanceQueueConfig{
		ArrivalRate:         1.0,
		ServiceShape:        2.0,
		ServiceBaseScale:    0.8,
		CongestionFactor:    0.3,
		MaintenancePeriod:   5.0,
		MaintenanceDuration: 0.5,
	}
	queue := demoprocess.NewMaintenanceQueue(cfg, sampler, rng)

	return &trajectoryState{
		queue:       queue,
		samplerName: samplerName,
		stopCh:      make(chan struct{}),
	}, nil
}

func newSampler(name string) (propagator.Sampler, error) {
	switch name {
	case "firstreaction":
		return propagator.NewFirstReactionMethod(), nil
	case "nextreaction", "":
		return propagator.NewNextReactionMethod(), nil
	case "naive":
		return propagator.NewNaiveSampler(), nil
	default:
		return nil, fmt.Errorf("unsupported sampler for a live maintenance queue: %q", name)
	}
}

func (s *trajectoryState) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
}

func (s *trajectoryState) pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

func (s *trajectoryState) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// step advances the trajectory by one firing, returning the resulting
// event kind and ok=false if the sampler has nothing left to fire.
func (s *trajectoryState) step() (kind string, now float64, population int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return "", 0, 0, false
	}
	k, advanced := s.queue.Step()
	if !advanced {
		return "", 0, 0, false
	}
	return k, s.queue.Time(), s.queue.Population(), true
}

func (s *trajectoryState) stop() {
	close(s.stopCh)
}

// safeConn wraps a WebSocket connection with a mutex to prevent concurrent
// writes from the UI loop and the read loop.
type safeConn struct {
	*websocket.Conn
	writeMu sync.Mutex
}

func (sc *safeConn) WriteJSON(v interface{}) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	return sc.Conn.WriteJSON(v)
}

// uiUpdateLoop advances the trajectory at a fixed pace and streams every
// firing to the client, updating Prometheus gauges alongside.
func uiUpdateLoop(conn *safeConn, state *trajectoryState) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-state.stopCh:
			log.Println("UI update loop stopping")
			return

		case <-ticker.C:
			kind, now, population, ok := state.step()
			if !ok {
				continue
			}
			updatePrometheusMetrics(kind, now, population)

			msg := ServerMessage{
				Type:       "event",
				Time:       now,
				Kind:       kind,
				Population: population,
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("Error sending event: %v", err)
				return
			}
		}
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}
	defer conn.Close()

	safe := &safeConn{Conn: conn}
	log.Println("Client connected")

	state, err := newTrajectoryState("nextreaction", time.Now().UnixNano())
	if err != nil {
		log.Printf("Error creating trajectory: %v", err)
		return
	}

	running := false
	if err := safe.WriteJSON(ServerMessage{Type: "status", Running: &running, Sampler: state.samplerName}); err != nil {
		log.Printf("Error sending status: %v", err)
		return
	}

	go uiUpdateLoop(safe, state)

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading message: %v", err)
			}
			break
		}

		log.Printf("Received command: %s", msg.Type)
		switch msg.Type {
		case "start":
			state.start()
			running := true
			safe.WriteJSON(ServerMessage{Type: "status", Running: &running, Sampler: state.samplerName})
		case "pause":
			state.pause()
			running := false
			safe.WriteJSON(ServerMessage{Type: "status", Running: &running, Sampler: state.samplerName})
		case "reset":
			state.pause()
			newState, err := newTrajectoryState(state.samplerName, time.Now().UnixNano())
			if err != nil {
				log.Printf("Error resetting trajectory: %v", err)
				continue
			}
			state.stop()
			state = newState
			go uiUpdateLoop(safe, state)
			running := false
			safe.WriteJSON(ServerMessage{Type: "status", Running: &running, Sampler: state.samplerName})
		}
	}

	state.stop()
	log.Println("Client disconnected")
}

func serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		log.Printf("Error executing template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func quitHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("shutdown requested via /quitquitquit")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Server shutting down...")

	go func() {
		time.Sleep(100 * time.Millisecond)
		os.Exit(0)
	}()
}

func main() {
	initPrometheusMetrics()

	templatePath := filepath.Join("templates", "index.html")
	var err error
	indexTemplate, err = template.ParseFiles(templatePath)
	if err != nil {
		log.Fatalf("Error loading template: %v", err)
	}
	log.Printf("Loaded template: %s", templatePath)

	http.HandleFunc("/", serveHome)
	http.HandleFunc("/ws", handleWebSocket)
	http.HandleFunc("/quitquitquit", quitHandler)
	http.Handle("/metrics", promHandler())

	addr := ":8080"
	log.Printf("Server starting on http://localhost%s", addr)
	log.Printf("WebSocket endpoint: ws://localhost%s/ws", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
