package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024 * 16,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleWebSocket upgrades to WebSocket and pushes a fresh view after every change.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	views := s.hub.Subscribe()
	defer s.hub.Unsubscribe(views)

	// Read pump — detect client disconnect.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	// Current state first, then every update.
	if err := conn.WriteJSON(s.View()); err != nil {
		log.Printf("websocket: write failed: %v", err)
		return
	}
	for v := range views {
		if err := conn.WriteJSON(v); err != nil {
			log.Printf("websocket: write failed: %v", err)
			return
		}
	}
}
