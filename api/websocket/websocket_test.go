package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/monitor-platform/internal/events"
	"github.com/OldStager01/monitor-platform/pkg/config"
	"github.com/OldStager01/monitor-platform/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func startHub(t *testing.T, settings Settings) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(settings)
	go hub.Run()

	r := gin.New()
	r.GET("/ws", ServeWebSocket(hub))
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) OutgoingMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg OutgoingMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_RoutesBySubject(t *testing.T) {
	hub, srv := startHub(t, DefaultSettings())
	svc := dial(t, srv, "?subject=service:3")
	all := dial(t, srv, "?subject=*")
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Publish("process:4", []byte(`{"type":"hotspot_analysis","subject":"process:4"}`))
	assert.Equal(t, "hotspot_analysis", readMessage(t, all).Type)

	hub.Publish("service:3", []byte(`{"type":"anomaly","subject":"service:3"}`))
	assert.Equal(t, "anomaly", readMessage(t, svc).Type)
	assert.Equal(t, "anomaly", readMessage(t, all).Type)
}

func TestClient_SubscribeMessage(t *testing.T) {
	hub, srv := startHub(t, DefaultSettings())
	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(IncomingMessage{Type: "subscribe", Subject: "process:9"}))
	update := readMessage(t, conn)
	assert.Equal(t, MessageTypeSubscriptionUpdate, update.Type)
	assert.Equal(t, "subscribed", update.Message)

	hub.Publish("process:9", []byte(`{"type":"hotspot_analysis"}`))
	assert.Equal(t, "hotspot_analysis", readMessage(t, conn).Type)
}

func TestHub_ConnectionCap(t *testing.T) {
	settings := DefaultSettings()
	settings.MaxConnections = 1
	hub, srv := startHub(t, settings)
	dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 503, resp.StatusCode)
}

func TestEventBridge_ForwardsBusEvents(t *testing.T) {
	hub, srv := startHub(t, DefaultSettings())
	conn := dial(t, srv, "?subject=service:7")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	bus := events.NewEventBus(8)
	defer bus.Close()
	bridge := NewEventBridge(hub, bus.SubscribeAll())
	bridge.Start()
	defer bridge.Stop()

	events.NewPublisher(bus).AnomalyDetected(&models.AnomalyEvent{
		ServiceID:  7,
		MetricName: "responseTime",
		Severity:   models.AnomalySeverityHigh,
		Score:      4.2,
	})

	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeAnomaly, msg.Type)
	assert.Equal(t, "service:7", msg.Subject)
	assert.Equal(t, string(models.SeverityCritical), msg.Severity)
}

func TestFromEvent(t *testing.T) {
	tests := []struct {
		eventType models.EventType
		expected  string
		ok        bool
	}{
		{eventType: models.EventTypeAnomalyDetected, expected: MessageTypeAnomaly, ok: true},
		{eventType: models.EventTypeHotspotAnalyzed, expected: MessageTypeHotspotAnalysis, ok: true},
		{eventType: models.EventTypeSweepCompleted, expected: MessageTypeSweep, ok: true},
		{eventType: models.EventTypeError, expected: MessageTypeError, ok: true},
		{eventType: models.EventType("internal"), ok: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			msg, ok := FromEvent(models.NewEvent(tt.eventType, "service:1", "m"))

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, msg.Type)
			}
		})
	}
}

func TestSettingsFromConfig(t *testing.T) {
	s := SettingsFromConfig(config.WebSocketConfig{
		MaxConnections: 5,
		PingInterval:   2 * time.Minute,
		PongTimeout:    time.Minute,
	})

	assert.Equal(t, 5, s.MaxConnections)
	assert.Equal(t, time.Minute, s.PongWait)
	assert.Less(t, s.PingPeriod, s.PongWait)
	assert.Equal(t, DefaultSettings().ClientBuffer, s.ClientBuffer)
}
