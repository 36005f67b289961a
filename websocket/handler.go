package websocket

import (
	"log"
	"net/http"
	"strings"

	"learnhub/models"
	"learnhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	// In production, adjust the CheckOrigin function to allow only trusted origins.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveEventsHandler upgrades an admin dashboard connection and subscribes it
// to the live purchase/enrollment feed. The token comes from the
// Authorization header or, for browser WebSocket clients, the token query
// parameter.
func LiveEventsHandler(c *gin.Context) {
	var tokenString string
	if authz := c.GetHeader("Authorization"); authz != "" {
		parts := strings.Split(authz, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
		return
	}

	claims, err := utils.ParseJWTToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	if claims.Role != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Live events feed is restricted to admins"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &LiveClient{
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan []byte, sendBufferSize),
	}

	hub := LiveHub()
	hub.register(client)

	welcome := map[string]interface{}{
		"type":    "connected",
		"message": "Connected to live purchase events",
		"userId":  claims.UserID,
	}
	conn.WriteJSON(welcome)

	go client.writePump()
	client.readPump(hub)
}
