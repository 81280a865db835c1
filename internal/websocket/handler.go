package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/rfountain/steward/internal/auth"
)

// Handler upgrades authenticated requests and runs them as hub
// clients. It expects the session middleware to have resolved the
// tenant already.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == 0 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, userID)
		client.Run(r.Context())
	}
}
