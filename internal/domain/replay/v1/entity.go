package replayv1

import "fmt"

// SyncState represents the per-symbol replay state machine.
type SyncState int32

const (
	// StateUninitialized means no sequenced event has been applied yet.
	StateUninitialized SyncState = iota
	// StateSynced means events are being applied in order.
	StateSynced
	// StateGapDetected means an unrecoverable gap was observed; the state
	// self-heals on the next authoritative snapshot.
	StateGapDetected
)

// String returns a human readable state name.
func (s SyncState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSynced:
		return "synced"
	case StateGapDetected:
		return "gap_detected"
	default:
		return "unknown"
	}
}

// Config holds the replay engine tunables.
type Config struct {
	// MaxSequenceGap is the largest jump ahead of the expected sequence that
	// is still considered recoverable by buffering.
	MaxSequenceGap uint32 `json:"maxSequenceGap"`
	// ValidateChecksums enables comparing snapshot checksums against the
	// rebuilt book.
	ValidateChecksums bool `json:"validateChecksums"`
	// ChecksumFatal makes a checksum mismatch fail ProcessEvent instead of
	// logging a warning.
	ChecksumFatal bool `json:"checksumFatal"`
	// BufferSize bounds the out-of-order buffer; the oldest entry is evicted
	// when full.
	BufferSize uint32 `json:"bufferSize"`
	// SnapshotInterval is the sequence distance after which a new snapshot
	// is due.
	SnapshotInterval uint32 `json:"snapshotInterval"`
	// TrackLatency enables exchange-to-local latency sampling.
	TrackLatency bool `json:"trackLatency"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxSequenceGap:    100,
		ValidateChecksums: true,
		ChecksumFatal:     false,
		BufferSize:        100_000,
		SnapshotInterval:  10_000,
		TrackLatency:      true,
	}
}

// Stats is a point-in-time copy of the engine's monotonic counters.
type Stats struct {
	OrdersProcessed    uint64 `json:"ordersProcessed"`
	TradesProcessed    uint64 `json:"tradesProcessed"`
	SnapshotsProcessed uint64 `json:"snapshotsProcessed"`
	DeltasProcessed    uint64 `json:"deltasProcessed"`
	MarketEvents       uint64 `json:"marketEvents"`

	DuplicatesDropped  uint64 `json:"duplicatesDropped"`
	GapsDetected       uint64 `json:"gapsDetected"`
	EventsBuffered     uint64 `json:"eventsBuffered"`
	EventsEvicted      uint64 `json:"eventsEvicted"`
	ChecksumMismatches uint64 `json:"checksumMismatches"`
}

// SequenceGapError is returned when a delta's prev_sequence does not match
// the last applied sequence. It is a hard failure for that single delta; the
// symbol recovers via the next snapshot.
type SequenceGapError struct {
	Symbol   string
	Expected uint64
	Got      uint64
}

// Error implements the error interface.
func (e *SequenceGapError) Error() string {
	return fmt.Sprintf("sequence gap on %s: delta chained to %d, book is at %d", e.Symbol, e.Got, e.Expected)
}

// ChecksumMismatchError is returned after a snapshot apply when the rebuilt
// book diverges from the venue checksum and the engine is configured fatal.
type ChecksumMismatchError struct {
	Symbol   string
	Sequence uint64
	Want     uint32
	Got      uint32
}

// Error implements the error interface.
func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch on %s at seq %d: want %08x, got %08x", e.Symbol, e.Sequence, e.Want, e.Got)
}
