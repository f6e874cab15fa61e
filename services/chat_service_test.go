package services

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestChatService_Builds_Commands(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)
	svc := NewChatService(orchestrator)
	ctx := context.Background()
	payload := domain.Payload{Text: "hello"}

	// Then each call is dispatched as the matching command, in call order
	gomock.InOrder(
		orchestrator.EXPECT().Dispatch(ctx, domain.Connect{Connection: "c1"}),
		orchestrator.EXPECT().Dispatch(ctx, domain.JoinRoom{Connection: "c1", Room: "r1", DisplayName: "alice"}),
		orchestrator.EXPECT().Dispatch(ctx, domain.RoomMessage{Connection: "c1", Room: "r1", Payload: payload}),
		orchestrator.EXPECT().Dispatch(ctx, domain.PrivateMessage{From: "c1", Recipient: "bob", Payload: payload}),
		orchestrator.EXPECT().Dispatch(ctx, domain.LeaveRoom{Connection: "c1", Room: "r1"}),
		orchestrator.EXPECT().Dispatch(ctx, domain.Disconnect{Connection: "c1"}),
	)

	req.NoError(svc.Connect(ctx, "c1"))
	req.NoError(svc.JoinRoom(ctx, "c1", "r1", "alice"))
	req.NoError(svc.SendRoomMessage(ctx, "c1", "r1", payload))
	req.NoError(svc.SendPrivateMessage(ctx, "c1", "", "bob", payload))
	req.NoError(svc.LeaveRoom(ctx, "c1", "r1"))
	req.NoError(svc.Disconnect(ctx, "c1"))
}

func TestChatService_Propagates_Busy_Engine(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)
	svc := NewChatService(orchestrator)

	orchestrator.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(errors.ErrEngineBusy)

	err := svc.SendRoomMessage(context.Background(), "c1", "r1", domain.Payload{Text: "hello"})

	req.ErrorIs(err, errors.ErrEngineBusy)
}
