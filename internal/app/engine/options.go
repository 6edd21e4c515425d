package engine

import "time"

// Options represents configuration options for the Engine.
type Options struct {
	// SnapshotCheckInterval is how often the snapshot job checks whether a
	// new snapshot is due.
	SnapshotCheckInterval time.Duration
	// SnapshotRetention bounds how many snapshots the in-memory manager keeps.
	SnapshotRetention int
	// TelemetryFlushInterval is how often counters and percentiles are
	// flushed to QuestDB. Ignored when no recorder is wired.
	TelemetryFlushInterval time.Duration
	// LatencySampleCapacity bounds the latency tracker ring.
	LatencySampleCapacity int
}

// DefaultEngineOptions returns the default engine options.
func DefaultEngineOptions() *Options {
	return &Options{
		SnapshotCheckInterval:  5 * time.Second,
		SnapshotRetention:      16,
		TelemetryFlushInterval: 15 * time.Second,
		LatencySampleCapacity:  8192,
	}
}
