package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnihive/backend/internal/application/appctx"
	"github.com/omnihive/backend/internal/application/services"
	"github.com/omnihive/backend/internal/domain/events"
	"github.com/omnihive/backend/internal/domain/models"
	"github.com/omnihive/backend/pkg/constants"
)

type staticBackend struct{}

func (staticBackend) Status() events.StatusPayload {
	return events.StatusPayload{ServerStatus: "online"}
}

func (staticBackend) URLs() []models.RegisteredURL { return nil }

func (staticBackend) Refresh(ctx context.Context) error { return nil }

type response struct {
	Event           string         `json:"event"`
	Data            map[string]any `json:"data"`
	RequestComplete bool           `json:"requestComplete"`
	RequestError    string         `json:"requestError"`
}

func newHub(t *testing.T, opts Options) (*Hub, string) {
	t.Helper()
	opts.Admin = services.NewAdmin(services.AdminOptions{
		Backend:  staticBackend{},
		Source:   appctx.New(nil),
		Password: "secret",
	})
	hub := NewHub(opts)
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, hub *Hub, url string) *websocket.Conn {
	t.Helper()
	before := hub.Clients()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Eventually(t, func() bool { return hub.Clients() == before+1 }, time.Second, 5*time.Millisecond)
	return conn
}

func exchange(t *testing.T, conn *websocket.Conn, msg any) response {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	return receive(t, conn)
}

func receive(t *testing.T, conn *websocket.Conn) response {
	t.Helper()
	var resp response
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestHub_Requests(t *testing.T) {
	hub, url := newHub(t, Options{})
	conn := dial(t, hub, url)

	tests := []struct {
		name    string
		msg     any
		event   string
		wantErr string
	}{
		{name: "heartbeat", msg: map[string]any{"event": constants.AdminEventHeartbeatRequest}, event: constants.AdminEventHeartbeatResponse},
		{name: "status", msg: map[string]any{"event": constants.AdminEventStatusRequest, "adminPassword": "secret"}, event: constants.AdminEventStatusResponse},
		{name: "bad password", msg: map[string]any{"event": constants.AdminEventStatusRequest, "adminPassword": "nope"}, event: constants.AdminEventStatusResponse, wantErr: services.AdminErrInvalidPassword},
		{name: "no event", msg: map[string]any{"data": 1}, event: constants.AdminEventUnknownResponse, wantErr: ErrInvalidMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := exchange(t, conn, tt.msg)
			assert.Equal(t, tt.event, resp.Event)
			assert.Equal(t, tt.wantErr, resp.RequestError)
			assert.Equal(t, tt.wantErr == "", resp.RequestComplete)
		})
	}
}

func TestHub_RateLimit(t *testing.T) {
	hub, url := newHub(t, Options{RateLimit: 0.001, Burst: 1})
	conn := dial(t, hub, url)

	first := exchange(t, conn, map[string]any{"event": constants.AdminEventHeartbeatRequest})
	assert.True(t, first.RequestComplete)

	second := exchange(t, conn, map[string]any{"event": constants.AdminEventHeartbeatRequest})
	assert.Equal(t, constants.AdminEventHeartbeatResponse, second.Event)
	assert.Equal(t, ErrRateLimitExceeded, second.RequestError)
}

func TestHub_StatusBroadcast(t *testing.T) {
	hub, url := newHub(t, Options{})
	a := dial(t, hub, url)
	b := dial(t, hub, url)

	bus := services.NewEventBus(nil)
	detach := hub.Attach(bus)
	defer detach()

	require.NoError(t, bus.Publish(context.Background(), events.ServerStatusChanged, events.StatusPayload{ServerStatus: "rebuilding"}))

	for _, conn := range []*websocket.Conn{a, b} {
		resp := receive(t, conn)
		assert.Equal(t, constants.AdminEventStatusResponse, resp.Event)
		assert.Equal(t, "rebuilding", resp.Data["serverStatus"])
	}
}

func TestHub_SweepDropsSilentClients(t *testing.T) {
	hub, url := newHub(t, Options{})
	silent := dial(t, hub, url)
	chatty := dial(t, hub, url)

	for round := 0; round < 3; round++ {
		hub.Sweep()
		assert.Equal(t, constants.AdminEventHeartbeatRequest, receive(t, chatty).Event)
		require.NoError(t, chatty.WriteJSON(map[string]any{"event": constants.AdminEventHeartbeatResponse}))
		time.Sleep(50 * time.Millisecond)
	}

	assert.Equal(t, 1, hub.Clients())

	require.NoError(t, silent.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := silent.ReadMessage(); err != nil {
			break
		}
	}
}
