package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"fmt"
	"github.com/samber/lo"
	"log/slog"
)

// Router turns messages into deliveries.
// Room messages echo back to the sender; private messages do not.
type Router struct {
	log        *slog.Logger
	registry   *ConnectionRegistry
	membership *MembershipIndex
	filter     contract.ContentFilter
}

// NewRouter builds a Router. filter may be nil when moderation is disabled.
func NewRouter(log *slog.Logger, registry *ConnectionRegistry, membership *MembershipIndex, filter contract.ContentFilter) *Router {
	return &Router{log: log, registry: registry, membership: membership, filter: filter}
}

// SendRoomMessage produces one delivery per member of the room, the sender
// included. The sender does not need to be a member.
func (r *Router) SendRoomMessage(room domain.RoomName, sender domain.ConnectionID, payload domain.Payload) ([]domain.Delivery, error) {
	if !r.registry.IsRegistered(sender) {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownConnection, sender)
	}
	identity, _ := r.registry.IdentityOf(sender)

	evt := domain.RoomMessageDelivered{
		Room:    room,
		Sender:  identity,
		Payload: r.moderate(payload),
	}
	return lo.Map(r.membership.MembersOf(room), func(member domain.ConnectionID, _ int) domain.Delivery {
		return domain.Delivery{Recipient: member, Event: evt}
	}), nil
}

// SendPrivateMessage resolves the recipient identity and produces exactly one
// delivery. When several connections share the identity, the first registered wins.
func (r *Router) SendPrivateMessage(sender, recipient domain.Identity, payload domain.Payload) ([]domain.Delivery, error) {
	candidates := r.registry.ConnectionsOf(recipient)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", errors.ErrRecipientNotFound, recipient)
	}
	if len(candidates) > 1 {
		r.log.Info("Private message recipient shared by several connections, routing to the first",
			"recipient", recipient, "connections", len(candidates), "error", errors.ErrAmbiguousIdentity)
	}

	return []domain.Delivery{{
		Recipient: candidates[0],
		Event: domain.PrivateMessageDelivered{
			Sender:  sender,
			Payload: r.moderate(payload),
		},
	}}, nil
}

func (r *Router) moderate(payload domain.Payload) domain.Payload {
	if r.filter == nil {
		return payload
	}
	return domain.Payload{Text: r.filter.Censor(payload.Text)}
}
