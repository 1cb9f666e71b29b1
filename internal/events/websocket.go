package events

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// WSHandler streams pipeline events to operator dashboards over a WebSocket.
type WSHandler struct {
	hub *Hub
}

// NewWSHandler creates a WebSocket handler backed by the given hub.
func NewWSHandler(hub *Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// ServeHTTP upgrades the connection and writes events as JSON until the
// client disconnects.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "stream ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	// The stream is write-only; CloseRead drains incoming frames so a
	// client close cancels ctx instead of lingering until the next write.
	ctx := ws.CloseRead(r.Context())

	slog.Info("Event stream client connected", "ip", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := wsjson.Write(ctx, ws, ev); err != nil {
				slog.Debug("Event stream write failed", "error", err)
				return
			}
		}
	}
}
