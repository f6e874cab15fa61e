package runtime

import (
	"chat-relay/domain"
	"github.com/samber/lo"
)

// PresenceNotifier broadcasts the full presence list to every registered
// connection, identified or not. Cost is O(n) per change.
type PresenceNotifier struct {
	registry *ConnectionRegistry
}

func NewPresenceNotifier(registry *ConnectionRegistry) *PresenceNotifier {
	return &PresenceNotifier{registry: registry}
}

// OnRegistryChange must be called after every effective SetIdentity or Unregister.
func (p *PresenceNotifier) OnRegistryChange() []domain.Delivery {
	evt := domain.PresenceList{Identities: p.registry.SnapshotIdentities()}
	return lo.Map(p.registry.Connections(), func(id domain.ConnectionID, _ int) domain.Delivery {
		return domain.Delivery{Recipient: id, Event: evt}
	})
}
