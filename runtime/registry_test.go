package runtime

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestConnectionRegistry_Register_Without_Identity(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry()
	id := domain.ConnectionID(uuid.NewString())

	// When a connection registers
	added := registry.Register(id)

	// Then it is live but not part of the presence list yet
	req.True(added)
	req.True(registry.IsRegistered(id))
	_, ok := registry.IdentityOf(id)
	req.False(ok)
	req.Empty(registry.SnapshotIdentities())
	req.Equal(1, registry.Len())
}

func TestConnectionRegistry_Register_Twice_Is_NoOp(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry()
	id := domain.ConnectionID(uuid.NewString())

	// Given a registered and identified connection
	req.True(registry.Register(id))
	req.NoError(registry.SetIdentity(id, "alice"))

	// When the same connection registers again
	added := registry.Register(id)

	// Then nothing changes
	req.False(added)
	req.Equal(1, registry.Len())
	identity, ok := registry.IdentityOf(id)
	req.True(ok)
	req.Equal(domain.Identity("alice"), identity)
}

func TestConnectionRegistry_SetIdentity_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry()

	// When an unknown connection gets an identity
	err := registry.SetIdentity("ghost", "alice")

	// Then it is refused
	req.ErrorIs(err, errors.ErrUnknownConnection)
	req.Zero(registry.Len())
}

func TestConnectionRegistry_SetIdentity_Overwrites(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry()
	registry.Register("c1")

	// When the identity is set twice
	req.NoError(registry.SetIdentity("c1", "alice"))
	req.NoError(registry.SetIdentity("c1", "alicia"))

	// Then the last one wins
	req.Equal([]domain.Identity{"alicia"}, registry.SnapshotIdentities())
}

func TestConnectionRegistry_Snapshot_Follows_Registration_Order(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry()

	// Given three connections registered in order, identified in reverse order
	registry.Register("c1")
	registry.Register("c2")
	registry.Register("c3")
	req.NoError(registry.SetIdentity("c3", "carol"))
	req.NoError(registry.SetIdentity("c2", "bob"))
	req.NoError(registry.SetIdentity("c1", "alice"))

	// Then the snapshot is in registration order
	req.Equal([]domain.Identity{"alice", "bob", "carol"}, registry.SnapshotIdentities())
}

func TestConnectionRegistry_Unregister(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry()
	registry.Register("c1")
	registry.Register("c2")
	req.NoError(registry.SetIdentity("c1", "alice"))
	req.NoError(registry.SetIdentity("c2", "bob"))

	// When a connection unregisters twice
	req.True(registry.Unregister("c1"))
	req.False(registry.Unregister("c1"))

	// Then it is gone along with its identity
	req.False(registry.IsRegistered("c1"))
	req.Equal([]domain.Identity{"bob"}, registry.SnapshotIdentities())
	req.Equal([]domain.ConnectionID{"c2"}, registry.Connections())
}

func TestConnectionRegistry_ConnectionsOf_Shared_Identity(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry()

	// Given two connections sharing the same identity
	registry.Register("c1")
	registry.Register("c2")
	registry.Register("c3")
	req.NoError(registry.SetIdentity("c2", "alice"))
	req.NoError(registry.SetIdentity("c3", "bob"))
	req.NoError(registry.SetIdentity("c1", "alice"))

	// Then both are returned in registration order
	req.Equal([]domain.ConnectionID{"c1", "c2"}, registry.ConnectionsOf("alice"))
	req.Empty(registry.ConnectionsOf("nobody"))
	req.Empty(registry.ConnectionsOf(""))
}
