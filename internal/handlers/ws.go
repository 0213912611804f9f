package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pingmaster-dev/pingmaster/internal/types"
	"github.com/pingmaster-dev/pingmaster/internal/utils"
	"github.com/pingmaster-dev/pingmaster/internal/ws"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// WebSocket upgrades the connection and registers it with the hub so the
// client receives a refresh event whenever one of the user's services has
// fresh monitoring data.
func WebSocket(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := utils.GetCurrentUserID(c)

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				for _, allowed := range types.AllowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		conn.SetReadLimit(maxMessageSize)
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set initial read deadline: %v", err)
			conn.Close()
			return
		}
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		hub.Register(userID, conn)

		defer func() {
			hub.Unregister(userID, conn)
			conn.Close()
		}()

		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}

		err = conn.WriteJSON(map[string]string{
			"type":    "connected",
			"message": "WebSocket connection established",
		})

		if err != nil {
			log.Printf("Failed to send welcome message: %v", err)
			return
		}

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		go func() {
			for range ticker.C {
				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}()

		for {
			if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
				break
			}

			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket error for user %s: %v", userID, err)
				}
				break
			}
		}
	}
}
