// internal/app/features/dashboard/stream.go
package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/strataenergy/internal/app/system/auth"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 512
)

// ServeStream handles GET /dashboard/stream. The socket receives the
// current snapshot on connect and another after every state change,
// including animation ticks. Messages from the client are ignored.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	viewerID := auth.ViewerID(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := c.Subscribe()
	defer cancel()

	h.logger.Debug("stream opened", zap.String("viewer", viewerID))
	defer h.logger.Debug("stream closed", zap.String("viewer", viewerID))

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxMessage)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			h.reg.Touch(viewerID)
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := h.send(conn, c.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "dashboard closed"))
				return
			}
			h.reg.Touch(viewerID)
			if err := h.send(conn, snap); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("failed to encode snapshot", zap.Error(err))
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.Debug("stream write failed", zap.Error(err))
		return err
	}
	return nil
}
