package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/notify"
	"github.com/ignatzorin/foodrescue-backend/internal/ws"
)

func startHub(t *testing.T, registry *notify.Registry) *ws.Hub {
	t.Helper()
	hub := ws.NewHub(registry)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func serve(t *testing.T, hub *ws.Hub, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		sub := &notify.Subscriber{
			UserID:      userID,
			Role:        valueobject.RoleAgent,
			Active:      true,
			Preferences: *entity.DefaultNotificationPreference(userID),
		}
		client := ws.NewClient(conn, hub, userID, sub)
		hub.Register(client)
		client.Run(r.Context())
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubDeliversAlertsToConnectedUser(t *testing.T) {
	registry := notify.NewRegistry()
	hub := startHub(t, registry)
	userID := uuid.New()
	conn := serve(t, hub, userID)

	require.Eventually(t, func() bool {
		_, ok := registry.Get(userID)
		return ok
	}, time.Second, 10*time.Millisecond)

	alert := notify.Alert{Kind: notify.KindNewTask, ReportID: uuid.New(), FoodName: "Суп", Quantity: 3}
	require.NoError(t, hub.Deliver(context.Background(), notify.Delivery{UserID: userID, Alert: alert}))

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string       `json:"type"`
		Data notify.Alert `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "task.new", msg.Type)
	assert.Equal(t, alert.ReportID, msg.Data.ReportID)
}

func TestHubReleasesSubscriberOnDisconnect(t *testing.T) {
	registry := notify.NewRegistry()
	hub := startHub(t, registry)
	userID := uuid.New()
	conn := serve(t, hub, userID)

	require.Eventually(t, func() bool {
		_, ok := registry.Get(userID)
		return ok
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		_, ok := registry.Get(userID)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcastAfterStopFails(t *testing.T) {
	hub := ws.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	err := hub.BroadcastToUser(context.Background(), uuid.New(), "task.new", nil)
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	raw, err := ws.Encode("task.removed", map[string]int{"n": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"task.removed","data":{"n":1}}`, string(raw))
}
