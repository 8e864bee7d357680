package stub

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// updateFrame mirrors poll.UpdateFrame on the server side.
type updateFrame struct {
	Resource string `json:"resource"`
	RideID   string `json:"ride_id,omitempty"`
}

type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *session) send(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub broadcasts update frames to every connected console so clients can
// refresh ahead of their next poll tick.
type Hub struct {
	mu       sync.RWMutex
	sessions map[*session]struct{}
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{sessions: make(map[*session]struct{}), logger: logger}
}

func (h *Hub) Add(conn *websocket.Conn) {
	s := &session{conn: conn}
	h.mu.Lock()
	h.sessions[s] = struct{}{}
	h.mu.Unlock()

	// reads are discarded; the stream is one-way. The read loop exists to
	// notice disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(s)
				_ = conn.Close()
				return
			}
		}
	}()
}

func (h *Hub) remove(s *session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
}

func (h *Hub) broadcast(resource, rideID string) {
	b, _ := json.Marshal(updateFrame{Resource: resource, RideID: rideID})

	h.mu.RLock()
	sessions := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		if err := s.send(b); err != nil {
			if h.logger != nil {
				h.logger.Warn("ws send failed", "error", err)
			}
			h.remove(s)
			_ = s.conn.Close()
		}
	}
}
