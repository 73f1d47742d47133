package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"docforge/internal/bootstrap/logging"
	"docforge/internal/usecase/pipeline"
)

// Hub fans committed job transitions out to websocket subscribers.
type Hub struct {
	upgrader websocket.Upgrader

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the peer
// goes away. Inbound frames are drained and discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(ctx, "websocket upgrade failed", slog.Any("err", err))
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = true
	total := len(h.clients)
	h.clientsMu.Unlock()
	logging.Info(ctx, "websocket client connected", slog.Int("clients", total))

	go h.drain(ctx, conn)
}

func (h *Hub) drain(ctx context.Context, conn *websocket.Conn) {
	defer func() {
		h.clientsMu.Lock()
		delete(h.clients, conn)
		remaining := len(h.clients)
		h.clientsMu.Unlock()
		_ = conn.Close()
		logging.Info(ctx, "websocket client disconnected", slog.Int("clients", remaining))
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast writes a transition to every connected client. Write failures
// only drop the failing client on its next read, the broadcast itself never
// blocks job processing.
func (h *Hub) Broadcast(t pipeline.JobTransition) {
	event := map[string]string{
		"jobRef":   t.JobRef,
		"tenantId": t.TenantID,
		"status":   t.Status,
		"at":       t.At,
	}

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(event); err != nil {
			logging.Warn(context.Background(), "websocket broadcast failed", slog.Any("err", err))
		}
	}
}

// ClientCount reports the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}
