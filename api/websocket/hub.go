package websocket

import (
	"sync"
	"time"

	"github.com/OldStager01/monitor-platform/internal/logger"
	"github.com/OldStager01/monitor-platform/internal/metrics"
	"github.com/OldStager01/monitor-platform/pkg/config"
)

// Settings are the per-connection limits of the hub.
type Settings struct {
	MaxConnections  int
	WriteWait       time.Duration
	PongWait        time.Duration
	PingPeriod      time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	BroadcastBuffer int
	ClientBuffer    int
}

func DefaultSettings() Settings {
	return Settings{
		MaxConnections:  1000,
		WriteWait:       10 * time.Second,
		PongWait:        60 * time.Second,
		PingPeriod:      54 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		BroadcastBuffer: 256,
		ClientBuffer:    256,
	}
}

// SettingsFromConfig overlays non-zero config values on DefaultSettings.
// The ping period is kept below the pong wait.
func SettingsFromConfig(cfg config.WebSocketConfig) Settings {
	s := DefaultSettings()
	if cfg.MaxConnections > 0 {
		s.MaxConnections = cfg.MaxConnections
	}
	if cfg.WriteTimeout > 0 {
		s.WriteWait = cfg.WriteTimeout
	}
	if cfg.PongTimeout > 0 {
		s.PongWait = cfg.PongTimeout
	}
	if cfg.PingInterval > 0 {
		s.PingPeriod = cfg.PingInterval
	}
	if s.PingPeriod >= s.PongWait {
		s.PingPeriod = (s.PongWait * 9) / 10
	}
	if cfg.MaxMessageSize > 0 {
		s.MaxMessageSize = cfg.MaxMessageSize
	}
	if cfg.ReadBufferSize > 0 {
		s.ReadBufferSize = cfg.ReadBufferSize
	}
	if cfg.WriteBufferSize > 0 {
		s.WriteBufferSize = cfg.WriteBufferSize
	}
	if cfg.BroadcastBuffer > 0 {
		s.BroadcastBuffer = cfg.BroadcastBuffer
	}
	if cfg.ClientBuffer > 0 {
		s.ClientBuffer = cfg.ClientBuffer
	}
	return s
}

// outbound is a message for every client subscribed to subject.
type outbound struct {
	subject string
	data    []byte
}

// Hub tracks connected clients and routes messages by subject. Client
// registration and removal happen only on the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	settings   Settings
}

func NewHub(settings Settings) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, settings.BroadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		settings:   settings,
	}
}

func (h *Hub) Settings() Settings {
	return h.settings
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			metrics.WebSocketConnectionsActive.Set(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketConnectionsActive.Set(float64(count))
			logger.Debugf("WebSocket client connected (total: %d)", count)

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Stop closes every client and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketConnectionsActive.Set(float64(count))
	logger.Debugf("WebSocket client disconnected (total: %d)", count)
}

func (h *Hub) deliver(msg outbound) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.clients {
		if !client.Subscribed(msg.subject) {
			continue
		}
		select {
		case client.send <- msg.data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		logger.Warn("WebSocket client too slow, disconnecting")
		h.remove(client)
	}
}

// Publish queues data for clients subscribed to subject. It never blocks.
func (h *Hub) Publish(subject string, data []byte) {
	select {
	case h.broadcast <- outbound{subject: subject, data: data}:
	default:
		logger.Warn("Broadcast channel full, dropping message")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Full reports whether the connection cap is reached.
func (h *Hub) Full() bool {
	return h.settings.MaxConnections > 0 && h.ClientCount() >= h.settings.MaxConnections
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
