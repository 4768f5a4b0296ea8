// Package ws serves the admin channel over websockets. Every client gets
// status pushes on each lifecycle transition and a heartbeat sweep; a client
// that misses two consecutive sweeps is dropped.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/omnihive/backend/internal/application/services"
	"github.com/omnihive/backend/internal/domain/events"
	"github.com/omnihive/backend/internal/domain/ports"
	"github.com/omnihive/backend/internal/infrastructure/metrics"
	"github.com/omnihive/backend/pkg/constants"
)

// Failure messages sent by the hub itself
const (
	ErrInvalidMessage    = "Invalid Message"
	ErrRateLimitExceeded = "Rate Limit Exceeded"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
	missedLimit    = 2
)

// Options configures a hub
type Options struct {
	Admin    *services.Admin
	Logger   logrus.FieldLogger
	Metrics  *metrics.Metrics
	Interval time.Duration
	// RateLimit is messages per second per client; Burst is the bucket size
	RateLimit rate.Limit
	Burst     int
}

type client struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
	alive   atomic.Bool
	missed  int
	limiter *rate.Limiter
}

func (c *client) send(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Hub tracks connected admin clients
type Hub struct {
	opts     Options
	logger   logrus.FieldLogger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
}

// NewHub creates a hub; call Run to start the heartbeat sweep
func NewHub(opts Options) *Hub {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Interval <= 0 {
		opts.Interval = constants.AdminHeartbeatIntervalSec * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.Burst <= 0 {
		opts.Burst = 40
	}
	return &Hub{
		opts:   opts,
		logger: opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and serves the client until it disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("⚠️ Admin websocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := &client{
		id:      uuid.NewString(),
		conn:    conn,
		limiter: rate.NewLimiter(h.opts.RateLimit, h.opts.Burst),
	}
	c.alive.Store(true)
	h.add(c)
	defer h.remove(c)

	h.read(r.Context(), c)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.opts.Metrics.AdminClientConnected(1)
	h.logger.WithField("client", c.id).Info("🔌 Admin client connected")
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	_ = c.conn.Close()
	if ok {
		h.opts.Metrics.AdminClientConnected(-1)
		h.logger.WithField("client", c.id).Info("🔌 Admin client disconnected")
	}
}

func (h *Hub) read(ctx context.Context, c *client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.alive.Store(true)

		var req services.AdminRequest
		if err := json.Unmarshal(data, &req); err != nil || req.Event == "" {
			_ = c.send(services.AdminFailed(constants.AdminEventUnknownResponse, ErrInvalidMessage))
			continue
		}
		if !c.limiter.Allow() {
			_ = c.send(services.AdminFailed(responseEvent(req.Event), ErrRateLimitExceeded))
			continue
		}

		resp := h.opts.Admin.Handle(ctx, req)
		if resp == nil {
			continue
		}
		if err := c.send(resp); err != nil {
			h.logger.WithField("client", c.id).WithError(err).Warn("⚠️ Admin response not delivered")
			return
		}
	}
}

func responseEvent(request string) string {
	if strings.HasSuffix(request, "-request") {
		return strings.TrimSuffix(request, "-request") + "-response"
	}
	return constants.AdminEventUnknownResponse
}

// Broadcast sends v to every connected client
func (h *Hub) Broadcast(v any) {
	for _, c := range h.snapshot() {
		if err := c.send(v); err != nil {
			h.logger.WithField("client", c.id).WithError(err).Debug("broadcast not delivered")
		}
	}
}

func (h *Hub) snapshot() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Attach pushes every server status change to all clients as a
// status-response. The returned func detaches the hub.
func (h *Hub) Attach(bus ports.EventPublisher) func() {
	return bus.Subscribe(events.ServerStatusChanged, func(ctx context.Context, payload interface{}) error {
		h.Broadcast(services.AdminOK(constants.AdminEventStatusResponse, payload))
		return nil
	})
}

// Sweep runs one heartbeat round: clients silent since the previous round
// accumulate a miss, clients at the miss limit are dropped, the rest are sent
// a heartbeat-request
func (h *Hub) Sweep() {
	for _, c := range h.snapshot() {
		if c.alive.Swap(false) {
			c.missed = 0
		} else {
			c.missed++
		}
		if c.missed >= missedLimit {
			h.logger.WithField("client", c.id).Warn("⚠️ Admin client missed heartbeats, dropping")
			h.remove(c)
			continue
		}
		if err := c.send(services.AdminOK(constants.AdminEventHeartbeatRequest, nil)); err != nil {
			h.remove(c)
		}
	}
}

// Run sweeps on the configured interval until ctx is done
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Sweep()
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	for _, c := range h.snapshot() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closing"), time.Now().Add(writeWait))
		c.writeMu.Unlock()
		h.remove(c)
	}
}
