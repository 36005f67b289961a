package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 256
)

// LiveClient is one connected dashboard observer
type LiveClient struct {
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// LiveEventsHub fans purchase and enrollment events out to every connected
// observer. Publish never blocks the caller: each client has a buffered send
// channel and a client that cannot keep up is dropped.
type LiveEventsHub struct {
	mu      sync.RWMutex
	clients map[*LiveClient]bool
}

var liveHub = NewLiveEventsHub()

// NewLiveEventsHub creates an empty hub
func NewLiveEventsHub() *LiveEventsHub {
	return &LiveEventsHub{clients: make(map[*LiveClient]bool)}
}

// LiveHub returns the process-wide hub the checkout flow publishes to
func LiveHub() *LiveEventsHub {
	return liveHub
}

func (h *LiveEventsHub) register(client *LiveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	log.Printf("Live events client registered. Total clients: %d", len(h.clients))
}

func (h *LiveEventsHub) unregister(client *LiveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	log.Printf("Live events client unregistered. Total clients: %d", len(h.clients))
}

// Publish sends an event to all currently connected observers. Publishing to
// zero observers is a successful no-op; there is no history replay for
// observers that connect later.
func (h *LiveEventsHub) Publish(event interface{}) {
	message, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal live event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// slow consumer; closing the connection makes its pumps exit
			// and the client falls back to polling until it reconnects
			log.Printf("Live events client %s too slow, dropping", client.userID)
			client.conn.Close()
		}
	}
}

// ClientCount returns the number of connected observers
func (h *LiveEventsHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with pings
func (c *LiveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages; the feed is one-way. It exists to notice
// closed connections and unregister the client.
func (c *LiveClient) readPump(h *LiveEventsHub) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("Live events read error: %v", err)
			}
			return
		}
	}
}
