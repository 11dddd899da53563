package websocket

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/OldStager01/monitor-platform/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu       sync.RWMutex
	subjects map[string]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, subjects ...string) *Client {
	c := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, hub.settings.ClientBuffer),
		subjects: make(map[string]bool),
	}
	for _, s := range subjects {
		if s != "" {
			c.subjects[s] = true
		}
	}
	return c
}

// Subscribed reports whether messages about subject go to this client.
// Subject-less messages go to every client.
func (c *Client) Subscribed(subject string) bool {
	if subject == "" {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subjects[AllSubjects] || c.subjects[subject]
}

func (c *Client) Subjects() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.subjects))
	for s := range c.subjects {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	settings := c.hub.settings
	c.conn.SetReadLimit(settings.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(settings.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(settings.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.handleMessage(&msg)
		}
	}
}

func (c *Client) WritePump() {
	settings := c.hub.settings
	ticker := time.NewTicker(settings.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(settings.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// newline-delimited batch of whatever is already queued
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(settings.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		if msg.Subject == "" {
			return
		}
		c.mu.Lock()
		c.subjects[msg.Subject] = true
		c.mu.Unlock()
		c.confirm("subscribed")
	case "unsubscribe":
		c.mu.Lock()
		if msg.Subject == "" {
			c.subjects = make(map[string]bool)
		} else {
			delete(c.subjects, msg.Subject)
		}
		c.mu.Unlock()
		c.confirm("unsubscribed")
	}
}

func (c *Client) confirm(action string) {
	data, err := subscriptionUpdate(action, c.Subjects()).JSON()
	if err != nil {
		logger.Errorf("Failed to marshal confirmation: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		logger.Warn("Client send channel full, dropping confirmation")
	}
}

// ServeWebSocket upgrades the request. The optional ?subject= query takes a
// comma-separated list such as "service:3,process:4" or "*".
func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  hub.settings.ReadBufferSize,
		WriteBufferSize: hub.settings.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(c *gin.Context) {
		if hub.Full() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many websocket connections"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed: %v", err)
			return
		}

		var subjects []string
		if q := c.Query("subject"); q != "" {
			for _, s := range strings.Split(q, ",") {
				subjects = append(subjects, strings.TrimSpace(s))
			}
		}

		client := NewClient(hub, conn, subjects...)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
