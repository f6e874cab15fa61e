// Package domain contains core concepts of the relay.
// This file defines the message payload relayed between clients.
// Payloads are opaque to routing: the relay never inspects them except for moderation.
package domain

// Payload is the client supplied body of a room or private message.
type Payload struct {
	Text string `json:"text" validate:"max=4096"`
}
