package session

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Hub accepts websocket connections and tracks the live sessions so they
// can be stopped together on shutdown.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]context.CancelFunc // sessionID -> cancel
	opts     Options
	origins  []string
}

// NewHub returns a hub whose sessions start from opts. allowedOrigins are
// full origins ("http://localhost:5173"); only their hosts are matched.
func NewHub(opts Options, allowedOrigins []string) *Hub {
	var patterns []string
	for _, o := range allowedOrigins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return &Hub{
		sessions: make(map[string]context.CancelFunc),
		opts:     opts,
		origins:  patterns,
	}
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(conn, uuid.New().String())
	s := New(client, h.opts)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	h.add(s.ID, cancel)
	defer h.remove(s.ID)

	slog.Info("session started", "session", s.ID, "client", client.ClientID)

	go client.WritePump(ctx)
	go client.ReadPump(ctx)
	s.Run(ctx)
}

func (h *Hub) add(id string, cancel context.CancelFunc) {
	h.mu.Lock()
	h.sessions[id] = cancel
	h.mu.Unlock()
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

// Stop ends every live session.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, cancel := range h.sessions {
		cancel()
		slog.Debug("session stopped", "session", id)
	}
}
