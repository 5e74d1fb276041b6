package server

import (
	"context"
	"net/http"

	"github.com/manjeet0006/fullstack-chat/internal/auth"
	"github.com/manjeet0006/fullstack-chat/internal/utils/log"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// HandleWS upgrades an authenticated request to a websocket connection
// and keeps it registered on the hub until the peer goes away.
func (s *HttpServer) HandleWS() http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			http.Error(w, "Failed to upgrade", http.StatusInternalServerError)
			return
		}

		ctx := r.Context()
		connID := s.hub.Register(ctx, userID, ws)
		log.Debug("ws connected", zap.String("userId", userID), zap.String("connId", connID))

		go s.readUntilClosed(userID, connID, ws)
	}
}

// readUntilClosed drains inbound frames until the connection drops. The
// client sends nothing meaningful over the socket; messages go through
// the REST API.
func (s *HttpServer) readUntilClosed(userID, connID string, ws *websocket.Conn) {
	defer func() {
		ws.Close()
		s.hub.Unregister(context.TODO(), userID, connID)
		log.Debug("ws disconnected", zap.String("userId", userID), zap.String("connId", connID))
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
