package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
	"log/slog"
)

// Ensure *DispatchWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*DispatchWorker)(nil)

// DispatchWorker is the single consumer of the relay command queue.
// Running exactly one of them is what serializes every state mutation.
type DispatchWorker struct {
	relay      contract.IRelay
	commands   <-chan domain.Command
	deliveries chan<- domain.Delivery
	log        *slog.Logger
}

func NewDispatchWorker(
	relay contract.IRelay,
	commands <-chan domain.Command,
	deliveries chan<- domain.Delivery,
	log *slog.Logger) *DispatchWorker {
	return &DispatchWorker{
		relay:      relay,
		commands:   commands,
		deliveries: deliveries,
		log:        log,
	}
}

func (w *DispatchWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping command dispatch")
			return nil
		case cmd := <-w.commands:
			for _, delivery := range w.relay.Apply(cmd) {
				select {
				case w.deliveries <- delivery:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}
