package workers

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
	"context"
	"log/slog"
	"time"
)

var _ contract.Worker = (*DeliveryFanout)(nil)

// DeliveryFanout hands deliveries over to the sink of their recipient.
//
// It provides best-effort at-most-once delivery: a recipient that disconnected
// or whose sink is full loses the event. There is no retry.
type DeliveryFanout struct {
	log         *slog.Logger
	directory   contract.SinkDirectory
	deliveries  <-chan domain.Delivery
	monitoring  *observability.MonitoringManager
	sinkTimeout time.Duration
}

func NewDeliveryFanout(
	log *slog.Logger,
	directory contract.SinkDirectory,
	deliveries <-chan domain.Delivery,
	monitoring *observability.MonitoringManager,
	sinkTimeout time.Duration,
) *DeliveryFanout {
	return &DeliveryFanout{
		log:         log,
		directory:   directory,
		deliveries:  deliveries,
		monitoring:  monitoring,
		sinkTimeout: sinkTimeout,
	}
}

func (w *DeliveryFanout) Run(ctx context.Context) error {
	for {
		select {
		case delivery := <-w.deliveries:
			w.Fanout(ctx, delivery)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping delivery fanout")
			return nil
		}
	}
}

// Fanout delivers a single event to its recipient.
func (w *DeliveryFanout) Fanout(ctx context.Context, delivery domain.Delivery) {
	sink, ok := w.directory.Lookup(delivery.Recipient)
	if !ok {
		w.log.Debug("Recipient gone, dropping delivery",
			"connection_id", delivery.Recipient, "kind", delivery.Event.Kind())
		w.monitoring.IncrDeliveriesDropped()
		return
	}

	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()

	if err := sink.Deliver(sinkCtx, delivery.Event); err != nil {
		w.log.Warn("Delivery dropped",
			"connection_id", delivery.Recipient, "kind", delivery.Event.Kind(), "error", err)
		w.monitoring.IncrDeliveriesDropped()
		return
	}
	w.monitoring.IncrDeliveriesSent()
}
