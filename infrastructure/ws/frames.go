package ws

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Inbound frame types.
const (
	joinRoomType       = "joinRoom"
	leaveRoomType      = "leaveRoom"
	sendMessageType    = "sendMessage"
	privateMessageType = "privateMessage"
)

var validate = validator.New()

// inboundFrame is the JSON envelope sent by clients. Which fields are required
// depends on Type; the relay validates the resulting command.
type inboundFrame struct {
	Type      string         `json:"type" validate:"required,oneof=joinRoom leaveRoom sendMessage privateMessage"`
	Room      string         `json:"room"`
	Username  string         `json:"username"`
	Sender    string         `json:"sender"`
	Recipient string         `json:"recipient"`
	Payload   domain.Payload `json:"payload"`
}

func decodeFrame(raw []byte) (inboundFrame, error) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return inboundFrame{}, fmt.Errorf("%w: %v", errors.ErrInvalidFrame, err)
	}
	if err := validate.Struct(frame); err != nil {
		return inboundFrame{}, fmt.Errorf("%w: %v", errors.ErrInvalidFrame, err)
	}
	return frame, nil
}

type presenceFrame struct {
	Type  domain.EventKind  `json:"type"`
	Users []domain.Identity `json:"users"`
}

type roomMessageFrame struct {
	Type    domain.EventKind `json:"type"`
	Room    domain.RoomName  `json:"room"`
	Sender  domain.Identity  `json:"sender"`
	Payload domain.Payload   `json:"payload"`
}

type privateMessageFrame struct {
	Type    domain.EventKind `json:"type"`
	Sender  domain.Identity  `json:"sender"`
	Payload domain.Payload   `json:"payload"`
}

type undeliveredFrame struct {
	Type      domain.EventKind `json:"type"`
	Recipient domain.Identity  `json:"recipient"`
}

// encodeEvent renders an outbound event as the JSON frame sent to clients.
func encodeEvent(evt domain.OutboundEvent) ([]byte, error) {
	switch e := evt.(type) {
	case domain.PresenceList:
		users := e.Identities
		if users == nil {
			users = []domain.Identity{}
		}
		return json.Marshal(presenceFrame{Type: e.Kind(), Users: users})
	case domain.RoomMessageDelivered:
		return json.Marshal(roomMessageFrame{Type: e.Kind(), Room: e.Room, Sender: e.Sender, Payload: e.Payload})
	case domain.PrivateMessageDelivered:
		return json.Marshal(privateMessageFrame{Type: e.Kind(), Sender: e.Sender, Payload: e.Payload})
	case domain.PrivateMessageUndelivered:
		return json.Marshal(undeliveredFrame{Type: e.Kind(), Recipient: e.Recipient})
	default:
		return nil, fmt.Errorf("unsupported outbound event %T", evt)
	}
}
