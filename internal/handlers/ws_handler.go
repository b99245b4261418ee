package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"project-tracker-api/internal/database"
	"project-tracker-api/internal/models"
	"project-tracker-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

// wsClient implements realtime.Client over a gorilla websocket conn.
type wsClient struct {
	conn *websocket.Conn
}

func (c *wsClient) Send(message []byte) bool {
	if c == nil || c.conn == nil {
		return false
	}
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, message) == nil
}

func (c *wsClient) Close() {
	if c != nil && c.conn != nil {
		_ = c.conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at the Gin level
		return true
	},
}

// WebSocketHandler upgrades the connection and registers it with the
// hub so the caller receives notification and comment events live.
// The first frame is a sync event carrying the unread notification
// count, so a reconnecting client can refresh its badge without an
// extra request.
func WebSocketHandler(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("websocket upgrade error:", err)
		return
	}

	client := &wsClient{conn: conn}
	hub := realtime.GetHub()
	hub.Register(userID, client)
	defer func() {
		hub.Unregister(userID, client)
		client.Close()
	}()

	sendUnreadSync(client, userID)

	// Keepalive: ping on a ticker, extend the read deadline on pong
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				deadline := time.Now().Add(wsWriteTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		return nil
	})

	// Drain incoming frames; the stream is server-to-client only
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// sendUnreadSync pushes the caller's unread notification count as the
// opening frame. Failures are logged and ignored, same as any other
// push.
func sendUnreadSync(client *wsClient, userID string) {
	var unread int64
	if err := database.GetDB().Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", userID, false).
		Count(&unread).Error; err != nil {
		log.Println("websocket unread sync failed:", err)
		return
	}
	payload, err := json.Marshal(map[string]any{
		"type":        "sync",
		"unreadCount": unread,
	})
	if err != nil {
		return
	}
	client.Send(payload)
}
