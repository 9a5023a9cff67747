package websocket

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	wsClient "github.com/princekumarofficial/videos-service/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The feed is public and read-only
		return true
	},
}

// WebSocketHandler streams video change events
// @Summary Subscribe to video changes
// @Description Upgrades to a websocket that receives video.created, video.updated and video.deleted events
// @Tags events
// @Success 101 {string} string "Switching protocols"
// @Router /ws [get]
func WebSocketHandler(hub *wsClient.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Upgrade writes its own 400 on failure
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("Failed to upgrade WebSocket connection", slog.String("error", err.Error()))
			return
		}

		clientID := uuid.NewString()
		client := wsClient.NewClient(conn, clientID, hub)
		if !hub.RegisterClient(client) {
			conn.Close()
			return
		}

		// Start client goroutines
		client.Start()

		slog.Info("WebSocket connection established", slog.String("client_id", clientID))
	}
}
