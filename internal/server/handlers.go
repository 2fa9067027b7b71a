// Package server exposes HTTP handlers: WebSocket upgrades into rooms and
// the health check endpoint.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// roomIDFromPath extracts the room identifier from a request path: the first
// path segment, i.e. the substring between the first and second slash.
// Reports false when the segment is empty or absent.
func roomIDFromPath(path string) (string, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	segment, _, _ := strings.Cut(trimmed, "/")
	if segment == "" {
		return "", false
	}
	return segment, true
}

// NewWebSocketHandler returns a handler that accepts connections into the
// room named by the request path, registering each accepted client with h.
// A request without a room identifier is rejected before the upgrade; no
// state is created for it. After the upgrade the client is handed to the
// hub, which registers it and launches the pump goroutines.
func NewWebSocketHandler(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		roomID, ok := roomIDFromPath(r.URL.Path)
		if !ok {
			slog.Warn("rejected connection without room identifier", "addr", r.RemoteAddr)
			http.Error(w, "A room identifier is required, e.g. /my-room.", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "addr", r.RemoteAddr, "err", err)
			return
		}

		client := NewClient(conn, h, r.RemoteAddr)

		select {
		case h.register <- registration{client: client, roomID: roomID}:
		case <-h.ctx.Done():
			_ = conn.Close()
		}
	}
}

// WebSocketHandler serves room connections on the process-wide hub.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	NewWebSocketHandler(hub)(w, r)
}

// HealthHandler provides a simple health check endpoint that returns server
// status as plain text.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Signaling relay is running!")
}
