package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
)

// IChatService is the transport-facing API of the relay.
// Every call is turned into a command and queued; none waits for delivery.
type IChatService interface {
	Connect(ctx context.Context, id domain.ConnectionID) error
	JoinRoom(ctx context.Context, id domain.ConnectionID, room domain.RoomName, name domain.Identity) error
	LeaveRoom(ctx context.Context, id domain.ConnectionID, room domain.RoomName) error
	SendRoomMessage(ctx context.Context, id domain.ConnectionID, room domain.RoomName, payload domain.Payload) error
	SendPrivateMessage(ctx context.Context, from domain.ConnectionID, sender, recipient domain.Identity, payload domain.Payload) error
	Disconnect(ctx context.Context, id domain.ConnectionID) error
}

type ChatService struct {
	orchestrator contract.IOrchestrator
}

func NewChatService(o contract.IOrchestrator) *ChatService {
	return &ChatService{orchestrator: o}
}

func (s *ChatService) Connect(ctx context.Context, id domain.ConnectionID) error {
	return s.orchestrator.Dispatch(ctx, domain.Connect{Connection: id})
}

func (s *ChatService) JoinRoom(ctx context.Context, id domain.ConnectionID, room domain.RoomName, name domain.Identity) error {
	return s.orchestrator.Dispatch(ctx, domain.JoinRoom{Connection: id, Room: room, DisplayName: name})
}

func (s *ChatService) LeaveRoom(ctx context.Context, id domain.ConnectionID, room domain.RoomName) error {
	return s.orchestrator.Dispatch(ctx, domain.LeaveRoom{Connection: id, Room: room})
}

func (s *ChatService) SendRoomMessage(ctx context.Context, id domain.ConnectionID, room domain.RoomName, payload domain.Payload) error {
	return s.orchestrator.Dispatch(ctx, domain.RoomMessage{Connection: id, Room: room, Payload: payload})
}

// SendPrivateMessage may leave sender empty: the relay then uses the identity of from.
func (s *ChatService) SendPrivateMessage(ctx context.Context, from domain.ConnectionID, sender, recipient domain.Identity, payload domain.Payload) error {
	return s.orchestrator.Dispatch(ctx, domain.PrivateMessage{From: from, Sender: sender, Recipient: recipient, Payload: payload})
}

func (s *ChatService) Disconnect(ctx context.Context, id domain.ConnectionID) error {
	return s.orchestrator.Dispatch(ctx, domain.Disconnect{Connection: id})
}
