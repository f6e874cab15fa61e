package runtime

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"github.com/samber/lo"
)

// Set is a membership set keyed by any comparable identifier.
type Set[T comparable] map[T]struct{}

// ConnectionRegistry maps live connections to their display identity.
// It remembers registration order so that presence snapshots and identity
// lookups are deterministic.
//
// ConnectionRegistry is not safe for concurrent use: it is owned by a Relay,
// which serializes every access.
type ConnectionRegistry struct {
	identities map[domain.ConnectionID]domain.Identity
	order      []domain.ConnectionID
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		identities: make(map[domain.ConnectionID]domain.Identity),
	}
}

// Register adds a connection without identity.
// It returns false when the connection was already registered, which points
// to a duplicated connect signal from the transport.
func (r *ConnectionRegistry) Register(id domain.ConnectionID) bool {
	if _, ok := r.identities[id]; ok {
		return false
	}
	r.identities[id] = ""
	r.order = append(r.order, id)
	return true
}

// SetIdentity attaches or overwrites the display name of a registered connection.
func (r *ConnectionRegistry) SetIdentity(id domain.ConnectionID, name domain.Identity) error {
	if _, ok := r.identities[id]; !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConnection, id)
	}
	r.identities[id] = name
	return nil
}

// Unregister removes the connection and its identity.
// It returns false when the connection was not registered.
func (r *ConnectionRegistry) Unregister(id domain.ConnectionID) bool {
	if _, ok := r.identities[id]; !ok {
		return false
	}
	delete(r.identities, id)
	r.order = lo.Without(r.order, id)
	return true
}

// IsRegistered reports whether the connection is live.
func (r *ConnectionRegistry) IsRegistered(id domain.ConnectionID) bool {
	_, ok := r.identities[id]
	return ok
}

// IdentityOf returns the identity of the connection.
// ok is false when the connection is unknown or has not joined yet.
func (r *ConnectionRegistry) IdentityOf(id domain.ConnectionID) (identity domain.Identity, ok bool) {
	identity = r.identities[id]
	return identity, identity.IsSet()
}

// SnapshotIdentities returns the presence list: one entry per identified
// connection, in registration order.
func (r *ConnectionRegistry) SnapshotIdentities() []domain.Identity {
	return lo.FilterMap(r.order, func(id domain.ConnectionID, _ int) (domain.Identity, bool) {
		identity := r.identities[id]
		return identity, identity.IsSet()
	})
}

// Connections returns every registered connection in registration order.
func (r *ConnectionRegistry) Connections() []domain.ConnectionID {
	return append([]domain.ConnectionID(nil), r.order...)
}

// ConnectionsOf scans the registry for connections holding the identity.
// The scan is linear in the number of connections; results follow registration order.
func (r *ConnectionRegistry) ConnectionsOf(identity domain.Identity) []domain.ConnectionID {
	if !identity.IsSet() {
		return nil
	}
	return lo.Filter(r.order, func(id domain.ConnectionID, _ int) bool {
		return r.identities[id] == identity
	})
}

func (r *ConnectionRegistry) Len() int {
	return len(r.order)
}
