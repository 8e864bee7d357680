package poll

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// UpdateFrame is the push message the stub broadcasts after every mutation.
type UpdateFrame struct {
	Resource string `json:"resource"` // "ride" or "offer"
	RideID   string `json:"ride_id,omitempty"`
}

// WSURL derives the websocket update endpoint from an HTTP API base URL.
func WSURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimRight(base, "/") + "/ws"
}

// Listener subscribes to the backend's websocket update stream and invokes
// OnUpdate for every frame. It is an additive refresh trigger on top of
// polling, not a replacement: polling remains the source of truth.
type Listener struct {
	URL      string
	OnUpdate func(UpdateFrame)
	Logger   *slog.Logger
}

// Run blocks until ctx is done, reconnecting with exponential backoff.
func (l *Listener) Run(ctx context.Context) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return
		}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.URL, nil)
		if err != nil {
			if l.Logger != nil {
				l.Logger.Warn("ws dial failed", "url", l.URL, "error", err, "backoff", backoff.String())
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second

		l.read(ctx, conn)
		_ = conn.Close()
	}
}

func (l *Listener) read(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if l.Logger != nil && ctx.Err() == nil {
				l.Logger.Warn("ws read failed", "error", err)
			}
			return
		}
		var frame UpdateFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			continue
		}
		if l.OnUpdate != nil {
			l.OnUpdate(frame)
		}
	}
}
