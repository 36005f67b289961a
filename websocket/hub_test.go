package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"learnhub/models"
	"learnhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func newLiveEventsServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	router := gin.New()
	router.GET("/ws/live-events", LiveEventsHandler)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dialLiveEvents(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/live-events?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// first frame is always the welcome
	var welcome map[string]interface{}
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Equal(t, "connected", welcome["type"])
	return conn
}

func adminToken(t *testing.T, userID string) string {
	t.Helper()
	utils.SetJWTSecret("test-secret")
	token, err := utils.GenerateJWTToken(userID, userID+"@learnhub.test", models.RoleAdmin)
	require.NoError(t, err)
	return token
}

func waitForClients(t *testing.T, hub *LiveEventsHub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", want, hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPublishReachesAllObservers(t *testing.T) {
	server := newLiveEventsServer(t)
	hub := LiveHub()

	first := dialLiveEvents(t, server, adminToken(t, "admin-1"))
	second := dialLiveEvents(t, server, adminToken(t, "admin-2"))
	waitForClients(t, hub, 2)

	event := NewPaymentCaptured("pay_1", "order_1", 49900, "INR")
	hub.Publish(event)

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)

		var got PaymentCapturedEvent
		require.NoError(t, json.Unmarshal(payload, &got))
		require.Equal(t, EventPaymentCaptured, got.Type)
		require.Equal(t, "pay_1", got.PaymentID)
		require.Equal(t, "order_1", got.OrderID)
		require.Equal(t, int64(49900), got.Amount)
	}
}

func TestLateObserverGetsNoReplay(t *testing.T) {
	server := newLiveEventsServer(t)
	hub := LiveHub()

	early := dialLiveEvents(t, server, adminToken(t, "admin-1"))
	waitForClients(t, hub, 1)

	hub.Publish(NewEnrollmentCreated("user-1", "course-1", "order-1", 49900, "Go from Scratch"))

	early.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := early.ReadMessage()
	require.NoError(t, err)

	// an observer connecting after the publish sees nothing but its welcome
	late := dialLiveEvents(t, server, adminToken(t, "admin-2"))
	late.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err = late.ReadMessage()
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "timeout") || websocket.IsUnexpectedCloseError(err))
}

func TestPublishWithZeroObservers(t *testing.T) {
	hub := NewLiveEventsHub()
	require.Equal(t, 0, hub.ClientCount())

	// must not block or panic
	hub.Publish(NewPaymentCaptured("pay_1", "order_1", 100, "INR"))
}

func TestHandlerRejectsMissingToken(t *testing.T) {
	server := newLiveEventsServer(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/live-events"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandlerRejectsNonAdmin(t *testing.T) {
	server := newLiveEventsServer(t)
	utils.SetJWTSecret("test-secret")

	token, err := utils.GenerateJWTToken("student-1", "student@learnhub.test", models.RoleStudent)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/live-events?token=" + token
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUnregisterOnDisconnect(t *testing.T) {
	server := newLiveEventsServer(t)
	hub := LiveHub()

	conn := dialLiveEvents(t, server, adminToken(t, "admin-1"))
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}
