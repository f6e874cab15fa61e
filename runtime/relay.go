package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	_ contract.IRelay         = (*Relay)(nil)
	_ contract.RelayInspector = (*Relay)(nil)
)

type RelayConfig struct {
	MaxRooms            int
	MaxMembersPerRoom   int
	NotifyUndeliverable bool
	// Filter rewrites message text, nil disables moderation.
	Filter contract.ContentFilter
}

// Relay is the single owner of the connection registry and the membership
// index. Apply is called by exactly one dispatch worker; the mutex exists so
// that debug snapshots taken from HTTP handlers never see a half-applied command.
type Relay struct {
	mu                  sync.Mutex
	log                 *slog.Logger
	registry            *ConnectionRegistry
	membership          *MembershipIndex
	router              *Router
	presence            *PresenceNotifier
	notifyUndeliverable bool
}

func NewRelay(log *slog.Logger, cfg RelayConfig) *Relay {
	registry := NewConnectionRegistry()
	membership := NewMembershipIndex(cfg.MaxRooms, cfg.MaxMembersPerRoom)
	return &Relay{
		log:                 log,
		registry:            registry,
		membership:          membership,
		router:              NewRouter(log, registry, membership, cfg.Filter),
		presence:            NewPresenceNotifier(registry),
		notifyUndeliverable: cfg.NotifyUndeliverable,
	}
}

// Apply validates the command, mutates the relay state and returns the
// deliveries to hand over to the transport. Invalid or unroutable commands are
// logged and yield no delivery.
func (r *Relay) Apply(cmd domain.Command) []domain.Delivery {
	if err := domain.Validate(cmd); err != nil {
		r.log.Warn("Dropping invalid command", "error", err)
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch c := cmd.(type) {
	case domain.Connect:
		return r.connect(c)
	case domain.JoinRoom:
		return r.joinRoom(c)
	case domain.LeaveRoom:
		return r.leaveRoom(c)
	case domain.RoomMessage:
		return r.roomMessage(c)
	case domain.PrivateMessage:
		return r.privateMessage(c)
	case domain.Disconnect:
		return r.disconnect(c)
	default:
		r.log.Warn("Dropping unsupported command", "type", fmt.Sprintf("%T", cmd))
		return nil
	}
}

func (r *Relay) connect(c domain.Connect) []domain.Delivery {
	if !r.registry.Register(c.Connection) {
		r.log.Warn("Connection already registered", "connection_id", c.Connection)
		return nil
	}
	r.log.Debug("Connection registered", "connection_id", c.Connection)
	return nil
}

func (r *Relay) joinRoom(c domain.JoinRoom) []domain.Delivery {
	if !r.registry.IsRegistered(c.Connection) {
		r.log.Warn("Join from unknown connection", "connection_id", c.Connection, "error", errors.ErrUnknownConnection)
		return nil
	}
	if _, err := r.membership.Join(c.Room, c.Connection); err != nil {
		r.log.Warn("Join refused", "connection_id", c.Connection, "room", c.Room, "error", err)
		return nil
	}
	if err := r.registry.SetIdentity(c.Connection, c.DisplayName); err != nil {
		r.log.Error("Unable to set identity", "connection_id", c.Connection, "error", err)
		return nil
	}
	r.log.Debug("Connection joined room", "connection_id", c.Connection, "room", c.Room, "identity", c.DisplayName)
	return r.presence.OnRegistryChange()
}

func (r *Relay) leaveRoom(c domain.LeaveRoom) []domain.Delivery {
	if !r.registry.IsRegistered(c.Connection) {
		r.log.Warn("Leave from unknown connection", "connection_id", c.Connection, "error", errors.ErrUnknownConnection)
		return nil
	}
	if !r.membership.Leave(c.Room, c.Connection) {
		r.log.Debug("Connection was not a member", "connection_id", c.Connection, "room", c.Room)
	}
	return nil
}

func (r *Relay) roomMessage(c domain.RoomMessage) []domain.Delivery {
	deliveries, err := r.router.SendRoomMessage(c.Room, c.Connection, c.Payload)
	if err != nil {
		r.log.Warn("Dropping room message", "connection_id", c.Connection, "room", c.Room, "error", err)
		return nil
	}
	return deliveries
}

func (r *Relay) privateMessage(c domain.PrivateMessage) []domain.Delivery {
	// The identity held for the connection wins over the claimed sender. The
	// claimed name is only used by connections that never joined a room.
	sender, ok := r.registry.IdentityOf(c.From)
	switch {
	case ok && c.Sender.IsSet() && c.Sender != sender:
		r.log.Info("Ignoring claimed sender of private message",
			"connection_id", c.From, "claimed", c.Sender, "identity", sender)
	case !ok && c.Sender.IsSet():
		sender = c.Sender
	case !ok:
		r.log.Warn("Dropping private message from anonymous connection",
			"connection_id", c.From, "error", errors.ErrUnknownConnection)
		return nil
	}

	deliveries, err := r.router.SendPrivateMessage(sender, c.Recipient, c.Payload)
	if err == nil {
		return deliveries
	}

	r.log.Info("Dropping private message", "sender", sender, "recipient", c.Recipient, "error", err)
	if r.notifyUndeliverable && r.registry.IsRegistered(c.From) {
		return []domain.Delivery{{
			Recipient: c.From,
			Event:     domain.PrivateMessageUndelivered{Recipient: c.Recipient},
		}}
	}
	return nil
}

// disconnect is the terminal transition: unregister, leave every room and
// notify presence, all under the same lock.
func (r *Relay) disconnect(c domain.Disconnect) []domain.Delivery {
	rooms := r.membership.LeaveAll(c.Connection)
	if !r.registry.Unregister(c.Connection) {
		r.log.Debug("Disconnect of unknown connection", "connection_id", c.Connection)
		return nil
	}
	r.log.Debug("Connection unregistered", "connection_id", c.Connection, "rooms_left", len(rooms))
	return r.presence.OnRegistryChange()
}

// Presence returns the current presence list.
func (r *Relay) Presence() []domain.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.SnapshotIdentities()
}

// MembersOf returns the members of a room in join order.
func (r *Relay) MembersOf(room domain.RoomName) []domain.ConnectionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.membership.MembersOf(room)
}

func (r *Relay) Stats() domain.RelayStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := r.membership.RoomSizes()
	stats := domain.RelayStats{
		Connections: r.registry.Len(),
		Identified:  len(r.registry.SnapshotIdentities()),
		Rooms:       len(rooms),
	}
	for _, size := range rooms {
		stats.Memberships += size
	}
	return stats
}
