// Package domain contains core concepts of the relay.
// This file defines Connection entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

// ConnectionID is the opaque identifier assigned by the transport at connect time.
// It is stable for the lifetime of the connection.
type ConnectionID string

// Identity is the display name attached to a connection when it joins a room.
// The empty Identity means the connection has not joined yet.
type Identity string

func (i Identity) IsSet() bool {
	return i != ""
}

// Connection represents one live client session as seen by the registry.
type Connection struct {
	ID       ConnectionID
	Identity Identity
}
