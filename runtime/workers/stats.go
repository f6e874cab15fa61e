package workers

import (
	"chat-relay/contract"
	"chat-relay/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*StatsWorker)(nil)

const defaultStatsInterval = 5 * time.Second

// QueueProbe reports the current length of the relay queues.
type QueueProbe func() (commands, deliveries int)

// StatsWorker periodically samples the relay process and refreshes the
// monitoring snapshot.
type StatsWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	queues     QueueProbe
	interval   time.Duration
}

func NewStatsWorker(
	log *slog.Logger,
	monitoring *observability.MonitoringManager,
	queues QueueProbe,
	interval time.Duration,
) *StatsWorker {
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	return &StatsWorker{
		log:        log,
		monitoring: monitoring,
		queues:     queues,
		interval:   interval,
	}
}

// Run refreshes the stats once immediately, then every interval.
func (w *StatsWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(p)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.refresh(p)
		}
	}
}

func (w *StatsWorker) refresh(p *process.Process) {
	sample, err := sampleProcess(p)
	if err != nil {
		// Partial sample, counters are still worth publishing.
		w.log.Debug("Failed to collect self stats", "error", err)
	}
	commands, deliveries := w.queues()
	w.monitoring.Refresh(sample, commands, deliveries)
}

// sampleProcess retrieves memory, CPU and OS status for the given process.
func sampleProcess(p *process.Process) (observability.ProcessSample, error) {
	var sample observability.ProcessSample

	memInfo, err := p.MemoryInfo()
	if err != nil {
		return sample, err
	}
	sample.RSSBytes = memInfo.RSS

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return sample, err
	}
	sample.CPUPercent = cpuPercent

	status, err := p.Status()
	if err != nil {
		return sample, err
	}
	sample.Status = status
	return sample, nil
}
