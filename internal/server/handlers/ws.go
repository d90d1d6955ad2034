package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/andymarkow/paydash/internal/server/models"
	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// StreamDashboard pushes the current dashboard state and every later change over a WebSocket.
func (h *Handlers) StreamDashboard(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("upgrader.Upgrade()", slog.Any("error", err))

		return
	}
	defer conn.Close()

	updates, unsubscribe := h.dashboard.Subscribe()
	defer unsubscribe()

	// The client never sends data; reading only detects the disconnect.
	disconnected := make(chan struct{})

	go func() {
		defer close(disconnected)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeSnapshot(conn, models.NewDashboardResponse(h.dashboard.Snapshot())); err != nil {
		h.log.Error("writeSnapshot()", slog.Any("error", err))

		return
	}

	for {
		select {
		case <-disconnected:
			h.log.Debug("WebSocket client disconnected")

			return

		case <-r.Context().Done():
			return

		case snap, ok := <-updates:
			if !ok {
				conn.WriteControl( //nolint:errcheck
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "dashboard closed"),
					time.Now().Add(wsWriteTimeout),
				)

				return
			}

			if err := writeSnapshot(conn, models.NewDashboardResponse(snap)); err != nil {
				h.log.Error("writeSnapshot()", slog.Any("error", err))

				return
			}
		}
	}
}

func writeSnapshot(conn *websocket.Conn, resp models.DashboardResponse) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err //nolint:wrapcheck
	}

	return conn.WriteJSON(resp) //nolint:wrapcheck
}
