package server

import (
	"context"
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler returns a websocket handler that registers connections with
// the Hub. Authentication is handled by route middleware and userID is read
// from connection locals.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			_ = conn.Close()
			return
		}
		uid, ok := userIDVal.(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		// Register connection with scaling guardrails
		client, err := s.hub.Register(uid, conn)
		if err != nil {
			log.Printf("WebSocket: Failed to register user %d: %v", uid, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		defer s.hub.UnregisterClient(client)
		defer s.consumeWSTicket(ctx, conn.Locals("wsTicket"))

		// Checking in over the socket keeps last-active fresh for ranking
		// tie-breaks without extra HTTP traffic.
		if err := s.userRepo.TouchLastActive(ctx, uid); err != nil {
			log.Printf("WebSocket: failed to touch last active for user %d: %v", uid, err)
		}

		s.sendConnectedEvent(conn, uid)

		go client.WritePump()
		client.ReadPump()
	})
}

func (s *Server) sendConnectedEvent(conn *websocket.Conn, userID uint) {
	msg, err := json.Marshal(map[string]interface{}{
		"type": "connected",
		"payload": map[string]interface{}{
			"user_id": userID,
		},
	})
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Printf("failed to write connected event: %v", err)
	}
}
