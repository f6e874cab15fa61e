package runtime

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/mocks"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"log/slog"
	"testing"
)

func newRouterFixture(t *testing.T) (*Router, *ConnectionRegistry, *MembershipIndex) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := NewConnectionRegistry()
	membership := NewMembershipIndex(0, 0)
	return NewRouter(log, registry, membership, nil), registry, membership
}

func identify(t *testing.T, registry *ConnectionRegistry, id domain.ConnectionID, name domain.Identity) {
	t.Helper()
	registry.Register(id)
	require.NoError(t, registry.SetIdentity(id, name))
}

func TestRouter_SendRoomMessage_Echoes_To_All_Members(t *testing.T) {
	req := require.New(t)
	router, registry, membership := newRouterFixture(t)
	payload := domain.Payload{Text: "hello"}

	// Given three members in r1
	ids := []domain.ConnectionID{"c1", "c2", "c3"}
	for i, name := range []domain.Identity{"alice", "bob", "carol"} {
		id := ids[i]
		identify(t, registry, id, name)
		_, err := membership.Join("r1", id)
		req.NoError(err)
	}

	// When c1 sends a room message
	deliveries, err := router.SendRoomMessage("r1", "c1", payload)

	// Then every member gets it, the sender included
	req.NoError(err)
	req.Len(deliveries, 3)
	req.Equal([]domain.ConnectionID{"c1", "c2", "c3"}, lo.Map(deliveries, func(d domain.Delivery, _ int) domain.ConnectionID {
		return d.Recipient
	}))
	for _, d := range deliveries {
		req.Equal(domain.RoomMessageDelivered{Room: "r1", Sender: "alice", Payload: payload}, d.Event)
	}
}

func TestRouter_SendRoomMessage_Empty_Room(t *testing.T) {
	req := require.New(t)
	router, registry, _ := newRouterFixture(t)
	identify(t, registry, "c1", "alice")

	deliveries, err := router.SendRoomMessage("empty", "c1", domain.Payload{Text: "anyone?"})

	req.NoError(err)
	req.Empty(deliveries)
}

func TestRouter_SendRoomMessage_Unknown_Sender(t *testing.T) {
	req := require.New(t)
	router, _, _ := newRouterFixture(t)

	_, err := router.SendRoomMessage("r1", "ghost", domain.Payload{Text: "boo"})

	req.ErrorIs(err, errors.ErrUnknownConnection)
}

func TestRouter_SendPrivateMessage(t *testing.T) {
	req := require.New(t)
	router, registry, _ := newRouterFixture(t)
	identify(t, registry, "cA", "alice")
	identify(t, registry, "cB", "bob")
	payload := domain.Payload{Text: "psst"}

	// When alice writes to bob
	deliveries, err := router.SendPrivateMessage("alice", "bob", payload)

	// Then only bob's connection receives it, no echo
	req.NoError(err)
	req.Equal([]domain.Delivery{{
		Recipient: "cB",
		Event:     domain.PrivateMessageDelivered{Sender: "alice", Payload: payload},
	}}, deliveries)
}

func TestRouter_SendPrivateMessage_Recipient_Not_Found(t *testing.T) {
	req := require.New(t)
	router, registry, _ := newRouterFixture(t)
	identify(t, registry, "cA", "alice")

	deliveries, err := router.SendPrivateMessage("alice", "bob", domain.Payload{Text: "psst"})

	req.ErrorIs(err, errors.ErrRecipientNotFound)
	req.Empty(deliveries)
}

func TestRouter_SendPrivateMessage_First_Registered_Wins(t *testing.T) {
	req := require.New(t)
	router, registry, _ := newRouterFixture(t)

	// Given two connections named bob, the older one identified last
	registry.Register("cB1")
	identify(t, registry, "cB2", "bob")
	req.NoError(registry.SetIdentity("cB1", "bob"))

	deliveries, err := router.SendPrivateMessage("alice", "bob", domain.Payload{Text: "psst"})

	req.NoError(err)
	req.Len(deliveries, 1)
	req.Equal(domain.ConnectionID("cB1"), deliveries[0].Recipient)
}

func TestRouter_Applies_Content_Filter(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	filter := mocks.NewMockContentFilter(ctrl)
	registry := NewConnectionRegistry()
	membership := NewMembershipIndex(0, 0)
	router := NewRouter(log, registry, membership, filter)

	identify(t, registry, "cA", "alice")
	identify(t, registry, "cB", "bob")
	_, err := membership.Join("r1", "cB")
	req.NoError(err)

	// Given a filter masking the text
	filter.EXPECT().Censor("darn").Return("****").Times(2)

	// Then both room and private messages are filtered
	deliveries, err := router.SendRoomMessage("r1", "cA", domain.Payload{Text: "darn"})
	req.NoError(err)
	req.Equal("****", deliveries[0].Event.(domain.RoomMessageDelivered).Payload.Text)

	deliveries, err = router.SendPrivateMessage("alice", "bob", domain.Payload{Text: "darn"})
	req.NoError(err)
	req.Equal("****", deliveries[0].Event.(domain.PrivateMessageDelivered).Payload.Text)
}
