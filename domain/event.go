package domain

// EventKind names an outbound event on the wire.
type EventKind string

const (
	PresenceListKind              EventKind = "userList"
	RoomMessageDeliveredKind      EventKind = "receiveMessage"
	PrivateMessageDeliveredKind   EventKind = "receivePrivateMessage"
	PrivateMessageUndeliveredKind EventKind = "privateMessageUndelivered"
)

// OutboundEvent is produced by the relay core and delivered by the transport.
type OutboundEvent interface {
	Kind() EventKind
}

type PresenceList struct {
	Identities []Identity
}

func (PresenceList) Kind() EventKind { return PresenceListKind }

type RoomMessageDelivered struct {
	Room    RoomName
	Sender  Identity
	Payload Payload
}

func (RoomMessageDelivered) Kind() EventKind { return RoomMessageDeliveredKind }

type PrivateMessageDelivered struct {
	Sender  Identity
	Payload Payload
}

func (PrivateMessageDelivered) Kind() EventKind { return PrivateMessageDeliveredKind }

type PrivateMessageUndelivered struct {
	Recipient Identity
}

func (PrivateMessageUndelivered) Kind() EventKind { return PrivateMessageUndeliveredKind }

// Delivery pairs an outbound event with the connection that must receive it.
type Delivery struct {
	Recipient ConnectionID
	Event     OutboundEvent
}
