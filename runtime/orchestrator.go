// Package runtime owns the relay state and the pipeline that feeds it:
// commands in, deliveries out, workers under supervision.
package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ contract.IOrchestrator = (*Orchestrator)(nil)

type OrchestratorConfig struct {
	BufferSize      int
	DispatchTimeout time.Duration
	SinkTimeout     time.Duration
	StatsInterval   time.Duration
}

// Orchestrator feeds inbound commands to the relay through a single bounded
// queue and hands the resulting deliveries to the transport.
type Orchestrator struct {
	mu              sync.Mutex
	log             *slog.Logger
	supervisor      contract.ISupervisor
	relay           contract.IRelay
	directory       contract.SinkDirectory
	monitoring      *observability.MonitoringManager
	commands        chan domain.Command
	deliveries      chan domain.Delivery
	dispatchTimeout time.Duration
	sinkTimeout     time.Duration
	statsInterval   time.Duration
	started         bool
	done            chan struct{}
	stopOnce        sync.Once
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, relay contract.IRelay,
	directory contract.SinkDirectory, monitoring *observability.MonitoringManager, cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		log:             log,
		supervisor:      supervisor,
		relay:           relay,
		directory:       directory,
		monitoring:      monitoring,
		commands:        make(chan domain.Command, cfg.BufferSize),
		deliveries:      make(chan domain.Delivery, cfg.BufferSize),
		dispatchTimeout: cfg.DispatchTimeout,
		sinkTimeout:     cfg.SinkTimeout,
		statsInterval:   cfg.StatsInterval,
		done:            make(chan struct{}),
	}
}

// Dispatch enqueues a command for the relay.
// It waits at most the dispatch timeout for room in the queue, then gives up
// with ErrEngineBusy. Commands from one caller are applied in call order.
// Disconnect is never dropped: it waits for room until the engine stops.
func (o *Orchestrator) Dispatch(ctx context.Context, cmd domain.Command) error {
	select {
	case <-o.done:
		return errors.ErrEngineStopped
	default:
	}

	if _, ok := cmd.(domain.Disconnect); ok {
		return o.dispatchDisconnect(cmd)
	}

	timer := time.NewTimer(o.dispatchTimeout)
	defer timer.Stop()

	select {
	case o.commands <- cmd:
		o.monitoring.IncrCommandsDispatched()
		return nil
	case <-o.done:
		return errors.ErrEngineStopped
	case <-ctx.Done():
		o.monitoring.IncrCommandsRejected()
		return ctx.Err()
	case <-timer.C:
		o.monitoring.IncrCommandsRejected()
		o.log.Warn("Command queue full, rejecting command",
			"connection_id", cmd.Origin(), "type", fmt.Sprintf("%T", cmd))
		return errors.ErrEngineBusy
	}
}

// dispatchDisconnect goes through the same queue as the other commands so a
// pending Connect of the same connection is applied first.
func (o *Orchestrator) dispatchDisconnect(cmd domain.Command) error {
	select {
	case o.commands <- cmd:
		o.monitoring.IncrCommandsDispatched()
		return nil
	default:
	}

	o.log.Warn("Command queue full, waiting to enqueue disconnect", "connection_id", cmd.Origin())
	select {
	case o.commands <- cmd:
		o.monitoring.IncrCommandsDispatched()
		return nil
	case <-o.done:
		return errors.ErrEngineStopped
	}
}

// Start registers the pipeline workers on the supervisor and runs it in the
// background. It returns once the workers are launched. Cancelling ctx stops
// the orchestrator.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.started {
		return fmt.Errorf("orchestrator already started")
	}
	o.started = true

	o.supervisor.Add(
		workers.NewDispatchWorker(o.relay, o.commands, o.deliveries, o.log),
		workers.NewDeliveryFanout(o.log, o.directory, o.deliveries, o.monitoring, o.sinkTimeout),
		workers.NewStatsWorker(o.log, o.monitoring, o.QueueLengths, o.statsInterval),
	)

	o.log.Info("Starting orchestrator and all supervised workers")
	go o.supervisor.Run(ctx)
	// Workers are gone once ctx ends, callers must not wait on the queue.
	go func() {
		select {
		case <-ctx.Done():
			o.Stop()
		case <-o.done:
		}
	}()
	return nil
}

// QueueLengths reports the number of pending commands and deliveries.
func (o *Orchestrator) QueueLengths() (commands, deliveries int) {
	return len(o.commands), len(o.deliveries)
}

// Stop rejects further commands and cancels the supervised workers.
// Pending commands are dropped.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		o.log.Info("Requesting orchestrator shutdown")
		close(o.done)
		o.supervisor.Stop()
	})
}
