//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// DeliverySink is the outbound side of one connection.
// Deliver must not block: a full sink drops the event and reports it.
type DeliverySink interface {
	Deliver(ctx context.Context, evt domain.OutboundEvent) error
}

// SinkDirectory resolves the sink attached to a live connection.
type SinkDirectory interface {
	Lookup(id domain.ConnectionID) (DeliverySink, bool)
}

// ContentFilter rewrites message text before it is relayed.
type ContentFilter interface {
	Censor(text string) string
}

// IRelay applies one inbound command to the relay state and returns the deliveries it produces.
type IRelay interface {
	Apply(cmd domain.Command) []domain.Delivery
}

// RelayInspector exposes read-only snapshots of the relay state.
type RelayInspector interface {
	Presence() []domain.Identity
	Stats() domain.RelayStats
}

type IOrchestrator interface {
	Dispatch(ctx context.Context, cmd domain.Command) error
	Start(ctx context.Context) error
	Stop()
}
