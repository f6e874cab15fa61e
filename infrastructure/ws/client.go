package ws

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/services"
	"context"
	stdErrors "errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

var _ contract.DeliverySink = (*Client)(nil)

// Client is one websocket connection.
// The read pump turns frames into relay commands; the write pump drains the
// send buffer and keeps the connection alive with pings.
type Client struct {
	id      domain.ConnectionID
	conn    *websocket.Conn
	hub     *Hub
	chat    services.IChatService
	log     *slog.Logger
	limiter *rate.Limiter

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(id domain.ConnectionID, conn *websocket.Conn, hub *Hub, chat services.IChatService) *Client {
	conn.SetReadLimit(hub.cfg.MaxMessageSize)
	return &Client{
		id:      id,
		conn:    conn,
		hub:     hub,
		chat:    chat,
		log:     hub.log.With("connection_id", id),
		limiter: newLimiter(hub.cfg.RateLimitBurst, hub.cfg.RateLimitRefillInterval),
		send:    make(chan []byte, hub.cfg.SendBufferSize),
	}
}

// newLimiter allows burst frames per refill interval. A non-positive burst disables limiting.
func newLimiter(burst int, refill time.Duration) *rate.Limiter {
	if burst <= 0 || refill <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(refill/time.Duration(burst)), burst)
}

// Deliver queues the event without blocking. A full buffer drops the event.
func (c *Client) Deliver(_ context.Context, evt domain.OutboundEvent) error {
	data, err := encodeEvent(evt)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.ErrSinkClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.ErrSinkFull
	}
}

// closeSend stops the write pump once the buffer is drained.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	pongWait := c.hub.cfg.PongWait
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}

		if c.limiter != nil && !c.limiter.Allow() {
			c.log.Warn("Rate limit exceeded, discarding frame")
			c.hub.monitoring.IncrFramesRejected()
			continue
		}

		frame, err := decodeFrame(raw)
		if err != nil {
			c.log.Warn("Discarding frame", "error", err)
			c.hub.monitoring.IncrFramesRejected()
			continue
		}

		if err := c.handleFrame(ctx, frame); err != nil {
			if stdErrors.Is(err, errors.ErrEngineStopped) || ctx.Err() != nil {
				return
			}
			c.log.Warn("Frame not dispatched", "type", frame.Type, "error", err)
		}
	}
}

func (c *Client) handleFrame(ctx context.Context, frame inboundFrame) error {
	switch frame.Type {
	case joinRoomType:
		return c.chat.JoinRoom(ctx, c.id, domain.RoomName(frame.Room), domain.Identity(frame.Username))
	case leaveRoomType:
		return c.chat.LeaveRoom(ctx, c.id, domain.RoomName(frame.Room))
	case sendMessageType:
		return c.chat.SendRoomMessage(ctx, c.id, domain.RoomName(frame.Room), frame.Payload)
	case privateMessageType:
		return c.chat.SendPrivateMessage(ctx, c.id, domain.Identity(frame.Sender), domain.Identity(frame.Recipient), frame.Payload)
	default:
		// unreachable, rejected by decodeFrame
		return errors.ErrInvalidFrame
	}
}

func (c *Client) logReadError(err error) {
	switch {
	case stdErrors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("Frame exceeded maximum size", "max_bytes", c.hub.cfg.MaxMessageSize)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		c.log.Debug("Client disconnected", "error", err)
	case stdErrors.Is(err, io.EOF), stdErrors.Is(err, io.ErrUnexpectedEOF):
		c.log.Debug("Connection closed", "error", err)
	default:
		c.log.Info("Websocket read error", "error", err)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Debug("Write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug("Ping failed", "error", err)
				return
			}
		}
	}
}
