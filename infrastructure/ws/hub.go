// Package ws is the websocket transport of the relay.
package ws

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
	"chat-relay/services"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var _ contract.SinkDirectory = (*Hub)(nil)

type Config struct {
	MaxMessageSize          int64
	SendBufferSize          int
	RateLimitBurst          int
	RateLimitRefillInterval time.Duration
	PingInterval            time.Duration
	PongWait                time.Duration
	WriteWait               time.Duration
}

// DefaultConfig keeps the ping interval below the pong wait.
func DefaultConfig() Config {
	return Config{
		MaxMessageSize:          512 * 1024,
		SendBufferSize:          256,
		RateLimitBurst:          5,
		RateLimitRefillInterval: time.Second,
		PingInterval:            54 * time.Second,
		PongWait:                60 * time.Second,
		WriteWait:               10 * time.Second,
	}
}

// Hub owns the live websocket clients and resolves them as delivery sinks.
type Hub struct {
	log        *slog.Logger
	cfg        Config
	monitoring *observability.MonitoringManager
	upgrader   websocket.Upgrader

	mu       sync.RWMutex
	clients  map[domain.ConnectionID]*Client
	shutdown bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(log *slog.Logger, monitoring *observability.MonitoringManager, origins *OriginPolicy, cfg Config) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		log:        log,
		cfg:        cfg,
		monitoring: monitoring,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     origins.Check,
		},
		clients: make(map[domain.ConnectionID]*Client),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Lookup implements contract.SinkDirectory.
func (h *Hub) Lookup(id domain.ConnectionID) (contract.DeliverySink, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[id]
	if !ok {
		return nil, false
	}
	return client, true
}

// Len returns the number of open websocket connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Handler upgrades requests and feeds the resulting connection into chat.
func (h *Hub) Handler(chat services.IChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error
			h.log.Debug("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		client := newClient(domain.ConnectionID(uuid.NewString()), conn, h, chat)
		if !h.register(client) {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(h.cfg.WriteWait))
			_ = conn.Close()
			return
		}

		// Connect is queued before any frame of this client
		if err := chat.Connect(h.ctx, client.id); err != nil {
			// The relay never saw this connection, there is nothing to disconnect.
			h.log.Warn("Connection refused by relay", "connection_id", client.id, "error", err)
			h.remove(client)
			_ = conn.Close()
			return
		}

		h.monitoring.IncrConnectionsOpened()
		h.log.Info("Client connected", "connection_id", client.id, "remote", r.RemoteAddr)

		h.wg.Add(2)
		go func() {
			defer h.wg.Done()
			client.writePump()
		}()
		go func() {
			defer h.wg.Done()
			client.readPump(h.ctx)
		}()
	}
}

func (h *Hub) register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.shutdown {
		return false
	}
	h.clients[client.id] = client
	return true
}

// unregister removes the client and tells the relay it is gone.
// The disconnect is dispatched even during shutdown and waits for the engine
// to take it, unless the engine is stopped.
func (h *Hub) unregister(client *Client) {
	if !h.remove(client) {
		return
	}

	if err := client.chat.Disconnect(context.WithoutCancel(h.ctx), client.id); err != nil {
		h.log.Warn("Disconnect not dispatched", "connection_id", client.id, "error", err)
	}
	h.monitoring.IncrConnectionsClosed()
	h.log.Info("Client disconnected", "connection_id", client.id)
}

// remove forgets the client and closes its send buffer. It reports whether
// the client was still known.
func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	_, ok := h.clients[client.id]
	delete(h.clients, client.id)
	h.mu.Unlock()
	if ok {
		client.closeSend()
	}
	return ok
}

// Shutdown closes every connection and waits for the pumps to exit or ctx to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.shutdown = true
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	h.cancel()
	deadline := time.Now().Add(h.cfg.WriteWait)
	for _, client := range clients {
		_ = client.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		_ = client.conn.Close()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("All websocket clients closed", "count", len(clients))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
