package domain

// Command is an inbound event delivered by the transport to the relay core.
// Origin returns the connection the event was read from, empty when unknown.
type Command interface {
	Origin() ConnectionID
}

type Connect struct {
	Connection ConnectionID `validate:"required"`
}

func (c Connect) Origin() ConnectionID { return c.Connection }

type JoinRoom struct {
	Connection  ConnectionID `validate:"required"`
	Room        RoomName     `validate:"required,max=64"`
	DisplayName Identity     `validate:"required,max=32"`
}

func (c JoinRoom) Origin() ConnectionID { return c.Connection }

type LeaveRoom struct {
	Connection ConnectionID `validate:"required"`
	Room       RoomName     `validate:"required,max=64"`
}

func (c LeaveRoom) Origin() ConnectionID { return c.Connection }

type RoomMessage struct {
	Connection ConnectionID `validate:"required"`
	Room       RoomName     `validate:"required,max=64"`
	Payload    Payload
}

func (c RoomMessage) Origin() ConnectionID { return c.Connection }

// PrivateMessage addresses a single identity. From is optional: when it holds
// an identity, that identity is the sender and Sender is ignored. From also
// receives the undeliverable acknowledgment.
type PrivateMessage struct {
	From      ConnectionID
	Sender    Identity `validate:"required_without=From,max=32"`
	Recipient Identity `validate:"required,max=32"`
	Payload   Payload
}

func (c PrivateMessage) Origin() ConnectionID { return c.From }

type Disconnect struct {
	Connection ConnectionID `validate:"required"`
}

func (c Disconnect) Origin() ConnectionID { return c.Connection }
