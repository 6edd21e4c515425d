package replay

import (
	"sync/atomic"

	eventv1 "github.com/muhammadchandra19/book-builder/internal/domain/event/v1"
	replayv1 "github.com/muhammadchandra19/book-builder/internal/domain/replay/v1"
	"github.com/muhammadchandra19/book-builder/internal/usecase/latency"
	"github.com/muhammadchandra19/book-builder/pkg/logger"
)

// Engine enforces per-symbol monotonic sequencing over the event feed:
// duplicates are suppressed, near-term out-of-order events are buffered and
// replayed once their predecessor arrives, unrecoverable gaps flag the state
// for snapshot recovery.
//
// ProcessEvent must be called from a single goroutine per symbol. The
// statistics and last-applied accessors never block the processing path.
type Engine struct {
	symbol  string
	cfg     replayv1.Config
	handler replayv1.Handler
	book    replayv1.BookView
	tracker *latency.Tracker
	logger  *logger.Logger

	lastApplied atomic.Uint64
	initialized bool
	state       atomic.Int32

	// buffer holds ahead-of-expectation events keyed by sequence. Bounded by
	// cfg.BufferSize; the oldest sequence is evicted when full.
	buffer map[uint64]eventv1.Event

	orders     atomic.Uint64
	trades     atomic.Uint64
	snapshots  atomic.Uint64
	deltas     atomic.Uint64
	markets    atomic.Uint64
	duplicates atomic.Uint64
	gaps       atomic.Uint64
	buffered   atomic.Uint64
	evicted    atomic.Uint64
	mismatches atomic.Uint64
}

// NewEngine creates a replay engine for one symbol. The handler receives
// each validated event exactly once in sequence order and may be nil when
// only sequencing and statistics are wanted. The book view enables snapshot
// checksum validation and may also be nil. The tracker is used only when
// cfg.TrackLatency is set.
func NewEngine(
	symbol string,
	cfg replayv1.Config,
	handler replayv1.Handler,
	book replayv1.BookView,
	tracker *latency.Tracker,
	log *logger.Logger,
) *Engine {
	defaults := replayv1.DefaultConfig()
	if cfg.MaxSequenceGap == 0 {
		cfg.MaxSequenceGap = defaults.MaxSequenceGap
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = defaults.BufferSize
	}
	if cfg.SnapshotInterval == 0 {
		cfg.SnapshotInterval = defaults.SnapshotInterval
	}

	return &Engine{
		symbol:  symbol,
		cfg:     cfg,
		handler: handler,
		book:    book,
		tracker: tracker,
		logger:  log,
		buffer:  make(map[uint64]eventv1.Event),
	}
}

// Symbol returns the symbol this engine sequences.
func (e *Engine) Symbol() string {
	return e.symbol
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() replayv1.Config {
	return e.cfg
}

// State returns the current sync state without blocking the processing path.
func (e *Engine) State() replayv1.SyncState {
	return replayv1.SyncState(e.state.Load())
}

// LastAppliedSequence returns the sequence of the last applied event.
func (e *Engine) LastAppliedSequence() uint64 {
	return e.lastApplied.Load()
}

// Stats returns a point-in-time copy of the monotonic counters.
func (e *Engine) Stats() replayv1.Stats {
	return replayv1.Stats{
		OrdersProcessed:    e.orders.Load(),
		TradesProcessed:    e.trades.Load(),
		SnapshotsProcessed: e.snapshots.Load(),
		DeltasProcessed:    e.deltas.Load(),
		MarketEvents:       e.markets.Load(),
		DuplicatesDropped:  e.duplicates.Load(),
		GapsDetected:       e.gaps.Load(),
		EventsBuffered:     e.buffered.Load(),
		EventsEvicted:      e.evicted.Load(),
		ChecksumMismatches: e.mismatches.Load(),
	}
}

// BufferedEvents returns how many out-of-order events are currently parked.
// Only meaningful from the processing goroutine.
func (e *Engine) BufferedEvents() int {
	return len(e.buffer)
}

// ProcessEvent validates and sequences one event.
//
// The only hard failure is a delta whose prev_sequence does not match the
// last applied sequence; every other anomaly (duplicates, gaps, buffer
// pressure, non-fatal checksum mismatches) is absorbed into state and
// statistics. An error means "this event could not be applied", never that
// the symbol is dead: recovery is always possible via a fresh snapshot.
func (e *Engine) ProcessEvent(event eventv1.Event) error {
	if event == nil {
		return nil
	}

	// Venue status events bypass sequencing entirely.
	if market, ok := event.(*eventv1.MarketEvent); ok {
		e.markets.Add(1)
		e.recordLatency(event)
		if e.handler != nil {
			return e.handler.ApplyMarket(market)
		}
		return nil
	}

	seq := event.EventMeta().Sequence
	last := e.lastApplied.Load()

	// A snapshot is authoritative regardless of ordering: it replaces the
	// baseline even when its sequence is behind or far ahead.
	if snapshot, ok := event.(*eventv1.OrderBookSnapshot); ok {
		if err := e.applySnapshot(snapshot); err != nil {
			return err
		}
		e.drainBuffer()
		return nil
	}

	// Deltas are never buffered: without its exact predecessor state a delta
	// is meaningless.
	if delta, ok := event.(*eventv1.OrderBookDelta); ok {
		if e.initialized && seq <= last {
			e.duplicates.Add(1)
			return nil
		}
		return e.applyDelta(delta)
	}

	// Duplicate suppression for orders and trades.
	if e.initialized && seq <= last {
		e.duplicates.Add(1)
		return nil
	}

	// In order: the expected successor, or the first event ever seen.
	if !e.initialized || seq == last+1 {
		if err := e.applyInOrder(event); err != nil {
			return err
		}
		e.drainBuffer()
		return nil
	}

	// Ahead of expectation: park it and wait for the missing predecessors.
	e.bufferEvent(event, seq, last)
	return nil
}

func (e *Engine) applyInOrder(event eventv1.Event) error {
	switch ev := event.(type) {
	case *eventv1.OrderUpdate:
		if e.handler != nil {
			if err := e.handler.ApplyOrder(ev); err != nil {
				return err
			}
		}
		e.orders.Add(1)
	case *eventv1.TradeEvent:
		if e.handler != nil {
			if err := e.handler.ApplyTrade(ev); err != nil {
				return err
			}
		}
		e.trades.Add(1)
	case *eventv1.OrderBookSnapshot:
		return e.applySnapshot(ev)
	case *eventv1.OrderBookDelta:
		return e.applyDelta(ev)
	}

	e.markApplied(event.EventMeta().Sequence)
	e.recordLatency(event)
	return nil
}

// applySnapshot replaces the sequencing baseline. Any pending gap flag is
// cleared: everything the snapshot supersedes is no longer missing.
func (e *Engine) applySnapshot(snapshot *eventv1.OrderBookSnapshot) error {
	if e.handler != nil {
		if err := e.handler.ApplySnapshot(snapshot); err != nil {
			return err
		}
	}

	e.snapshots.Add(1)
	e.markApplied(snapshot.Sequence)
	e.state.Store(int32(replayv1.StateSynced))
	e.recordLatency(snapshot)
	e.dropSupersededBuffer(snapshot.Sequence)

	return e.validateChecksum(snapshot)
}

func (e *Engine) applyDelta(delta *eventv1.OrderBookDelta) error {
	last := e.lastApplied.Load()
	if delta.PrevSequence != last {
		return &replayv1.SequenceGapError{
			Symbol:   e.symbol,
			Expected: last,
			Got:      delta.PrevSequence,
		}
	}

	if e.handler != nil {
		if err := e.handler.ApplyDelta(delta); err != nil {
			return err
		}
	}

	e.deltas.Add(1)
	e.markApplied(delta.Sequence)
	e.recordLatency(delta)
	e.drainBuffer()
	return nil
}

func (e *Engine) markApplied(seq uint64) {
	e.lastApplied.Store(seq)
	e.initialized = true
	// A pending gap flag survives ordinary applies; only an authoritative
	// snapshot heals it.
	if e.State() == replayv1.StateUninitialized {
		e.state.Store(int32(replayv1.StateSynced))
	}
}

// drainBuffer repeatedly applies the buffered event at last+1 until no
// contiguous successor remains.
func (e *Engine) drainBuffer() {
	for {
		next, ok := e.buffer[e.lastApplied.Load()+1]
		if !ok {
			return
		}
		delete(e.buffer, next.EventMeta().Sequence)

		if err := e.applyInOrder(next); err != nil {
			// A buffered event that fails to apply is dropped; the next
			// snapshot supersedes it.
			e.logger.Warn("dropping buffered event",
				logger.Field{Key: "symbol", Value: e.symbol},
				logger.Field{Key: "sequence", Value: next.EventMeta().Sequence},
				logger.Field{Key: "error", Value: err.Error()},
			)
			return
		}
	}
}

func (e *Engine) bufferEvent(event eventv1.Event, seq, last uint64) {
	if seq-last > uint64(e.cfg.MaxSequenceGap) && e.State() != replayv1.StateGapDetected {
		// Beyond recoverable reordering. Flag for snapshot recovery instead
		// of failing the call; the next snapshot self-heals.
		e.gaps.Add(1)
		e.state.Store(int32(replayv1.StateGapDetected))
		e.logger.Warn("sequence gap exceeds recoverable window",
			logger.Field{Key: "symbol", Value: e.symbol},
			logger.Field{Key: "lastApplied", Value: last},
			logger.Field{Key: "got", Value: seq},
			logger.Field{Key: "maxSequenceGap", Value: e.cfg.MaxSequenceGap},
		)
	}

	if _, exists := e.buffer[seq]; exists {
		e.duplicates.Add(1)
		return
	}

	if uint32(len(e.buffer)) >= e.cfg.BufferSize {
		e.evictOldest()
	}

	e.buffer[seq] = event
	e.buffered.Add(1)
}

// evictOldest drops the lowest buffered sequence. That event is permanently
// lost pending snapshot recovery.
func (e *Engine) evictOldest() {
	var oldest uint64
	first := true
	for seq := range e.buffer {
		if first || seq < oldest {
			oldest = seq
			first = false
		}
	}
	if !first {
		delete(e.buffer, oldest)
		e.evicted.Add(1)
	}
}

// dropSupersededBuffer discards buffered events at or below the snapshot
// sequence: their effects are already contained in the snapshot and must not
// be retroactively applied.
func (e *Engine) dropSupersededBuffer(seq uint64) {
	for s := range e.buffer {
		if s <= seq {
			delete(e.buffer, s)
		}
	}
}

func (e *Engine) validateChecksum(snapshot *eventv1.OrderBookSnapshot) error {
	if !e.cfg.ValidateChecksums || e.book == nil || snapshot.Checksum == 0 {
		return nil
	}

	got := e.book.ComputeChecksum()
	if got == snapshot.Checksum {
		return nil
	}

	e.mismatches.Add(1)
	mismatch := &replayv1.ChecksumMismatchError{
		Symbol:   e.symbol,
		Sequence: snapshot.Sequence,
		Want:     snapshot.Checksum,
		Got:      got,
	}

	if e.cfg.ChecksumFatal {
		return mismatch
	}

	e.logger.Warn("snapshot checksum mismatch",
		logger.Field{Key: "symbol", Value: e.symbol},
		logger.Field{Key: "sequence", Value: snapshot.Sequence},
		logger.Field{Key: "want", Value: snapshot.Checksum},
		logger.Field{Key: "got", Value: got},
	)
	return nil
}

func (e *Engine) recordLatency(event eventv1.Event) {
	if !e.cfg.TrackLatency || e.tracker == nil {
		return
	}
	if d := event.EventMeta().FeedLatency(); d > 0 {
		e.tracker.Record(d)
	}
}
