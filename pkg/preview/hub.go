// Package preview implements the live-preview loop's producer/consumer
// boundary from spec.md §5/§9 DESIGN NOTES: a single task owns the
// StabilizerState and reads frames, a websocket hub fans its ticks out
// to UI subscribers. The core decode path in pkg/scan never imports
// this package — it is purely the camera-mode UI surface spec.md
// scopes out of the core ("UI shells" is an explicit Non-goal).
package preview

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/bubblesheet/omr-core/pkg/logging"
	"github.com/bubblesheet/omr-core/pkg/marker"
)

// DiagnosticLogger builds a JSON slog.Logger backed by a rotating file
// at path, for WithLogger — a live-preview process runs indefinitely,
// so its diagnostic log needs logging.RotatingFile's size/age bounds
// rather than an ever-growing plain file.
func DiagnosticLogger(path string) *slog.Logger {
	w := logging.RotatingFile(path, 50, 5, 28)
	return logging.Logger(w, true, slog.LevelDebug)
}

// Tick is one stabilizer snapshot broadcast to every connected client.
type Tick struct {
	Quad         marker.Quad `json:"quad"`
	Found        bool        `json:"found"`
	Locked       bool        `json:"locked"`
	StableFrames int         `json:"stableFrames"`
	TimestampMS  int64       `json:"timestampMs"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan Tick
}

// Hub fans out Ticks published by Loop to every subscribed websocket
// connection. It owns no detection state itself, only client fan-out.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan Tick
	clients    map[*client]bool
	log        *slog.Logger
}

// Option configures a Hub during construction.
type Option func(*Hub)

// WithLogger directs the hub's diagnostic log at logger instead of the
// default no-op sink. Pair with logging.RotatingFile to give a
// long-running preview process a size-bounded log file rather than an
// unbounded stdout stream.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) { h.log = logger }
}

// NewHub constructs an idle Hub; call Run to start its event loop.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Tick, 16),
		clients:    make(map[*client]bool),
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run drives the hub's event loop until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.log.Debug("preview hub: shutting down", "clients", len(h.clients))
			for c := range h.clients {
				close(c.send)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.log.Debug("preview hub: client registered", "clients", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Debug("preview hub: client unregistered", "clients", len(h.clients))
			}
		case tick := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- tick:
				default:
					// Slow client: drop the client (closing its send
					// channel) rather than block the whole hub on one
					// laggy subscriber.
					delete(h.clients, c)
					close(c.send)
					h.log.Debug("preview hub: dropped slow client", "clients", len(h.clients))
				}
			}
		}
	}
}

// Publish enqueues a tick for broadcast. Non-blocking: a full queue
// (the hub's Run loop stalled or under heavy load) drops the tick
// rather than stalling the caller's 500ms detection cadence.
func (h *Hub) Publish(t Tick) {
	select {
	case h.broadcast <- t:
	default:
		h.log.Debug("preview hub: broadcast queue full, dropping tick", "timestampMs", t.TimestampMS)
	}
}

// ServeWS upgrades r to a websocket connection and registers it as a
// tick subscriber until the connection closes or ctx is cancelled.
func (h *Hub) ServeWS(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("preview hub: websocket upgrade failed", "error", err)
		return err
	}
	c := &client{conn: conn, send: make(chan Tick, 8)}
	h.register <- c
	h.log.Debug("preview hub: subscriber connected", "remote", r.RemoteAddr)

	go func() {
		defer func() {
			h.unregister <- c
			conn.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case tick, ok := <-c.send:
				if !ok {
					return
				}
				if err := conn.WriteJSON(tick); err != nil {
					return
				}
			}
		}
	}()

	go func() {
		defer func() { h.unregister <- c }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}
