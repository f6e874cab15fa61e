package domain

import (
	"chat-relay/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"Valid join", JoinRoom{Connection: "c1", Room: "r1", DisplayName: "alice"}, false},
		{"Join without room", JoinRoom{Connection: "c1", DisplayName: "alice"}, true},
		{"Join without name", JoinRoom{Connection: "c1", Room: "r1"}, true},
		{"Name too long", JoinRoom{Connection: "c1", Room: "r1", DisplayName: Identity(strings.Repeat("a", 33))}, true},
		{"Room message without connection", RoomMessage{Room: "r1", Payload: Payload{Text: "hi"}}, true},
		{"Payload too large", RoomMessage{Connection: "c1", Room: "r1", Payload: Payload{Text: strings.Repeat("x", 4097)}}, true},
		{"Private message with sender only", PrivateMessage{Sender: "alice", Recipient: "bob"}, false},
		{"Private message with connection only", PrivateMessage{From: "c1", Recipient: "bob"}, false},
		{"Private message without any sender", PrivateMessage{Recipient: "bob"}, true},
		{"Private message without recipient", PrivateMessage{Sender: "alice"}, true},
		{"Disconnect without connection", Disconnect{}, true},
		{"Nil command", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cmd)
			if tt.wantErr {
				require.ErrorIs(t, err, errors.ErrInvalidCommand)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
