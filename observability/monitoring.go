package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ProcessSample is one reading of the relay process taken by the stats worker.
type ProcessSample struct {
	RSSBytes   uint64
	CPUPercent float64
	Status     string
}

// MonitoringStats aggregates the relay telemetry served by /debug/stats.
type MonitoringStats struct {
	// --- RELAY COUNTERS ---
	CommandsDispatched uint64 `json:"commands_dispatched"`
	CommandsRejected   uint64 `json:"commands_rejected"`
	DeliveriesSent     uint64 `json:"deliveries_sent"`
	DeliveriesDropped  uint64 `json:"deliveries_dropped"`
	FramesRejected     uint64 `json:"frames_rejected"`
	ConnectionsOpened  uint64 `json:"connections_opened"`
	ConnectionsClosed  uint64 `json:"connections_closed"`

	// --- QUEUES ---
	CommandQueueSize  int `json:"command_queue_size"`
	DeliveryQueueSize int `json:"delivery_queue_size"`

	// --- SYSTEM METRICS ---
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Status     string  `json:"status"`
	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
	Goroutines int     `json:"goroutines"`
	UpdatedAt  string  `json:"updated_at"`
}

// MonitoringManager collects relay telemetry.
// Counters are updated lock-free from hot paths; the snapshot is refreshed
// periodically by the stats worker.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats MonitoringStats

	commandsDispatched atomic.Uint64
	commandsRejected   atomic.Uint64
	deliveriesSent     atomic.Uint64
	deliveriesDropped  atomic.Uint64
	framesRejected     atomic.Uint64
	connectionsOpened  atomic.Uint64
	connectionsClosed  atomic.Uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) IncrCommandsDispatched() { mm.commandsDispatched.Add(1) }
func (mm *MonitoringManager) IncrCommandsRejected()   { mm.commandsRejected.Add(1) }
func (mm *MonitoringManager) IncrDeliveriesSent()     { mm.deliveriesSent.Add(1) }
func (mm *MonitoringManager) IncrDeliveriesDropped()  { mm.deliveriesDropped.Add(1) }
func (mm *MonitoringManager) IncrFramesRejected()     { mm.framesRejected.Add(1) }
func (mm *MonitoringManager) IncrConnectionsOpened()  { mm.connectionsOpened.Add(1) }
func (mm *MonitoringManager) IncrConnectionsClosed()  { mm.connectionsClosed.Add(1) }

// Refresh rebuilds the snapshot from the counters, the Go runtime and the
// given process sample.
func (mm *MonitoringManager) Refresh(sample ProcessSample, commandQueue, deliveryQueue int) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.latestStats = mm.counters()
	mm.latestStats.CommandQueueSize = commandQueue
	mm.latestStats.DeliveryQueueSize = deliveryQueue
	mm.latestStats.RSSBytes = sample.RSSBytes
	mm.latestStats.CPUPercent = sample.CPUPercent
	mm.latestStats.Status = sample.Status
	mm.latestStats.AllocMemMb = m.Alloc / 1024 / 1024
	mm.latestStats.NumGC = m.NumGC
	mm.latestStats.Goroutines = runtime.NumGoroutine()
	mm.latestStats.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	mm.log.Debug("Stats refreshed",
		"commands", mm.latestStats.CommandsDispatched,
		"deliveries", mm.latestStats.DeliveriesSent,
		"rss_bytes", mm.latestStats.RSSBytes,
	)
}

// GetLatest returns the last refreshed snapshot with up-to-date counters.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	stats := mm.latestStats
	mm.mu.RUnlock()

	counters := mm.counters()
	stats.CommandsDispatched = counters.CommandsDispatched
	stats.CommandsRejected = counters.CommandsRejected
	stats.DeliveriesSent = counters.DeliveriesSent
	stats.DeliveriesDropped = counters.DeliveriesDropped
	stats.FramesRejected = counters.FramesRejected
	stats.ConnectionsOpened = counters.ConnectionsOpened
	stats.ConnectionsClosed = counters.ConnectionsClosed
	return stats
}

func (mm *MonitoringManager) counters() MonitoringStats {
	return MonitoringStats{
		CommandsDispatched: mm.commandsDispatched.Load(),
		CommandsRejected:   mm.commandsRejected.Load(),
		DeliveriesSent:     mm.deliveriesSent.Load(),
		DeliveriesDropped:  mm.deliveriesDropped.Load(),
		FramesRejected:     mm.framesRejected.Load(),
		ConnectionsOpened:  mm.connectionsOpened.Load(),
		ConnectionsClosed:  mm.connectionsClosed.Load(),
	}
}
