package app

import (
	"encoding/json"
	"image"
	"image/png"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/leap_spacecraft/internal/demo"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Per-client send buffer; a client that falls further behind misses states.
const wsSendBuffer = 8

// sceneHub keeps the latest published state and fans it out to websocket
// clients. publish is called from the event loop; everything else runs on
// HTTP goroutines.
type sceneHub struct {
	mu      sync.RWMutex
	latest  []byte
	have    bool
	clients map[uuid.UUID]chan []byte
}

func newSceneHub() *sceneHub {
	return &sceneHub{clients: make(map[uuid.UUID]chan []byte)}
}

func (h *sceneHub) publish(st demo.State) ([]byte, error) {
	payload, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = payload
	h.have = true
	for _, ch := range h.clients {
		select {
		case ch <- payload:
		default:
		}
	}
	return payload, nil
}

func (h *sceneHub) subscribe() (uuid.UUID, <-chan []byte) {
	id := uuid.New()
	ch := make(chan []byte, wsSendBuffer)

	h.mu.Lock()
	h.clients[id] = ch
	if h.have {
		ch <- h.latest
	}
	h.mu.Unlock()
	return id, ch
}

func (h *sceneHub) unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
}

// handleScene serves the latest state as JSON.
func (h *sceneHub) handleScene(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	payload, have := h.latest, h.have
	h.mu.RUnlock()

	if !have {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(payload); err != nil {
		log.Printf("web: scene write error: %v", err)
	}
}

// handleWS streams every published state to the client until it disconnects.
func (h *sceneHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id, states := h.subscribe()
	defer h.unsubscribe(id)
	log.Printf("web: session %s connected from %s", id, r.RemoteAddr)

	// Reader goroutine only watches for the close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("web: session %s read error: %v", id, err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			log.Printf("web: session %s disconnected", id)
			return
		case payload := <-states:
			conn.SetWriteDeadline(time.Now().Add(time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("web: session %s write error: %v", id, err)
				return
			}
		}
	}
}

// frameSource is satisfied by render.Software.
type frameSource interface {
	Frame() (image.Image, int64)
}

// handleFrame serves the latest rendered frame as PNG.
func handleFrame(src frameSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img, _ := src.Frame()
		if img == nil {
			http.Error(w, "no frame yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		if err := png.Encode(w, img); err != nil {
			log.Printf("web: png encode error: %v", err)
		}
	}
}

func newWebMux(hub *sceneHub, frames frameSource) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/scene", hub.handleScene)
	mux.HandleFunc("/ws/scene", hub.handleWS)
	mux.Handle("/api/frame.png", handleFrame(frames))
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}
