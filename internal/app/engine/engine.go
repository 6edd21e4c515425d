package engine

import (
	"context"
	"sync"
	"time"

	eventv1 "github.com/muhammadchandra19/book-builder/internal/domain/event/v1"
	feedv1 "github.com/muhammadchandra19/book-builder/internal/domain/feed/v1"
	orderbookv1 "github.com/muhammadchandra19/book-builder/internal/domain/orderbook/v1"
	replayv1 "github.com/muhammadchandra19/book-builder/internal/domain/replay/v1"
	snapshotv1 "github.com/muhammadchandra19/book-builder/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/book-builder/internal/usecase/latency"
	"github.com/muhammadchandra19/book-builder/internal/usecase/orderbook"
	"github.com/muhammadchandra19/book-builder/internal/usecase/replay"
	"github.com/muhammadchandra19/book-builder/internal/usecase/snapshot"
	"github.com/muhammadchandra19/book-builder/internal/usecase/telemetry"
	"github.com/muhammadchandra19/book-builder/pkg/logger"
	"github.com/muhammadchandra19/book-builder/pkg/util"
)

// Engine hosts one symbol's book and replay engine: it consumes the feed,
// lets the replay engine validate and sequence, and applies the validated
// events to the live book. It also runs the periodic snapshot job and the
// telemetry flusher.
//
// Engine is the replayv1.Handler: the replay engine sequences, the host
// mutates.
type Engine struct {
	book      *orderbook.Book
	replay    *replay.Engine
	reader    feedv1.EventReader
	snapshots *snapshot.Manager
	persister snapshotv1.Persister
	tracker   *latency.Tracker
	recorder  *telemetry.Recorder
	logger    *logger.Logger

	mu              sync.RWMutex
	lastSnapshotSeq uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	options *Options
}

// NewEngine creates an engine with default options.
func NewEngine(
	book *orderbook.Book,
	cfg replayv1.Config,
	reader feedv1.EventReader,
	persister snapshotv1.Persister,
	log *logger.Logger,
) *Engine {
	return NewEngineWithOptions(book, cfg, reader, persister, log, DefaultEngineOptions())
}

// NewEngineWithOptions creates an engine with custom options. The persister
// may be nil when snapshot persistence is not wanted.
func NewEngineWithOptions(
	book *orderbook.Book,
	cfg replayv1.Config,
	reader feedv1.EventReader,
	persister snapshotv1.Persister,
	log *logger.Logger,
	options *Options,
) *Engine {
	e := &Engine{
		book:      book,
		reader:    reader,
		persister: persister,
		tracker:   latency.NewTracker(options.LatencySampleCapacity),
		logger:    log,
		options:   options,
	}
	e.replay = replay.NewEngine(book.Symbol(), cfg, e, book, e.tracker, log)
	// The replay engine fills in defaults for zero config values; the manager
	// must see the same effective interval or a zero config would disable the
	// snapshot job.
	e.snapshots = snapshot.NewManager(uint64(e.replay.Config().SnapshotInterval), options.SnapshotRetention)

	return e
}

// WithRecorder wires a telemetry recorder. Must be called before Start.
func (e *Engine) WithRecorder(recorder *telemetry.Recorder) *Engine {
	e.recorder = recorder
	return e
}

// Book returns the live book for read-only consumers.
func (e *Engine) Book() *orderbook.Book {
	return e.book
}

// Replay returns the replay engine for statistics consumers.
func (e *Engine) Replay() *replay.Engine {
	return e.replay
}

// Tracker returns the feed latency tracker.
func (e *Engine) Tracker() *latency.Tracker {
	return e.tracker
}

// Restore loads the persisted snapshot, if any, and replays it through the
// sequencing path so the book and the baseline agree before live events.
func (e *Engine) Restore(ctx context.Context) error {
	if e.persister == nil {
		return nil
	}

	snap, err := e.persister.Load(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	if err := e.replay.ProcessEvent(snap); err != nil {
		return err
	}

	e.setLastSnapshotSeq(snap.Sequence)
	e.logger.Info("book restored from persisted snapshot", logger.Field{
		Key:   "symbol",
		Value: e.book.Symbol(),
	}, logger.Field{
		Key:   "sequence",
		Value: snap.Sequence,
	})
	return nil
}

// Start launches the feed processor, the snapshot job and, when wired, the
// telemetry flusher.
func (e *Engine) Start(ctx context.Context) error {
	// Tag the run context so context-aware log lines carry the symbol.
	e.ctx, e.cancel = context.WithCancel(util.WithSymbol(ctx, e.book.Symbol()))

	e.wg.Add(2)
	go e.runFeedProcessor()
	go e.runSnapshotJob()

	if e.recorder != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.recorder.Run(e.ctx, e.options.TelemetryFlushInterval)
		}()
	}

	e.logger.Info("book-builder engine started", logger.Field{
		Key:   "symbol",
		Value: e.book.Symbol(),
	})

	return nil
}

// Stop gracefully shuts down the engine.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("book-builder engine stopped gracefully")
		return nil
	case <-ctx.Done():
		e.logger.Warn("engine stop timeout exceeded")
		return ctx.Err()
	}
}

// runFeedProcessor reads feed messages and pushes them through the replay
// engine until the context is cancelled.
func (e *Engine) runFeedProcessor() {
	defer e.wg.Done()

	e.logger.Info("starting feed processor", logger.Field{
		Key:   "symbol",
		Value: e.book.Symbol(),
	})

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("feed processor shutting down")
			e.reader.Close()
			return
		default:
			msg, event, err := e.reader.ReadEvent(e.ctx)
			if err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "read_feed_event",
				})
				time.Sleep(100 * time.Millisecond)
				continue
			}

			if err := e.reader.CommitMessages(e.ctx, msg); err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "commit_feed_event",
				})
			}

			if err := e.replay.ProcessEvent(event); err != nil {
				// A rejected event is not fatal for the symbol; a fresh
				// snapshot re-syncs the book.
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "process_event",
				}, logger.Field{
					Key:   "sequence",
					Value: event.EventMeta().Sequence,
				})
			}
		}
	}
}

// runSnapshotJob periodically publishes a snapshot of the live book once the
// sequence distance since the last one exceeds the configured interval.
func (e *Engine) runSnapshotJob() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.options.SnapshotCheckInterval)
	defer ticker.Stop()

	e.logger.Info("starting snapshot job")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("snapshot job shutting down")
			return
		case <-ticker.C:
			current := e.replay.LastAppliedSequence()
			if e.snapshots.NeedsSnapshot(current, e.getLastSnapshotSeq()) {
				e.publishSnapshot(current)
			}
		}
	}
}

// publishSnapshot captures the live book into a snapshot event, retains it
// in the manager and persists it when a persister is wired.
func (e *Engine) publishSnapshot(seq uint64) {
	bids, asks := e.book.SnapshotLevels()
	now := time.Now()

	snap := &eventv1.OrderBookSnapshot{
		Meta: eventv1.Meta{
			Symbol:       e.book.Symbol(),
			Sequence:     seq,
			ExchangeTime: now,
			LocalTime:    now,
		},
		Bids:     bids,
		Asks:     asks,
		Checksum: e.book.ComputeChecksum(),
	}

	e.snapshots.Store(snap)
	e.setLastSnapshotSeq(seq)

	if e.persister != nil {
		if err := e.persister.Persist(e.ctx, snap); err != nil {
			e.logger.ErrorContext(e.ctx, err, logger.Field{
				Key:   "action",
				Value: "persist_snapshot",
			})
			return
		}
	}

	e.logger.Info("snapshot published", logger.Field{
		Key:   "symbol",
		Value: e.book.Symbol(),
	}, logger.Field{
		Key:   "sequence",
		Value: seq,
	})
}

func (e *Engine) getLastSnapshotSeq() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastSnapshotSeq
}

func (e *Engine) setLastSnapshotSeq(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSnapshotSeq = seq
}

// ApplyOrder implements replayv1.Handler: place and cancel updates mutate
// the live book. Out-of-window and unknown-id results are not errors.
func (e *Engine) ApplyOrder(update *eventv1.OrderUpdate) error {
	switch update.Action {
	case eventv1.OrderActionCancel:
		if _, ok := e.book.CancelOrder(update.OrderID); !ok {
			e.logger.Debug("cancel for unknown order", logger.Field{
				Key:   "orderId",
				Value: update.OrderID,
			})
		}
	default:
		var order *orderbookv1.Order
		if update.IsIceberg {
			order = orderbookv1.NewIcebergOrder(update.OrderID, update.Side, update.Price, update.Quantity, update.VisibleQuantity)
		} else {
			order = orderbookv1.NewOrder(update.OrderID, update.Side, update.Price, update.Quantity)
		}
		if !e.book.AddOrder(order) {
			e.logger.Debug("order dropped at book boundary", logger.Field{
				Key:   "orderId",
				Value: update.OrderID,
			}, logger.Field{
				Key:   "price",
				Value: update.Price,
			})
		}
	}
	return nil
}

// ApplyTrade implements replayv1.Handler. The book tracks resting liquidity
// only; trades are sequenced for downstream analytics consumers.
func (e *Engine) ApplyTrade(trade *eventv1.TradeEvent) error {
	e.logger.Debug("trade", logger.Field{
		Key:   "price",
		Value: trade.Price,
	}, logger.Field{
		Key:   "quantity",
		Value: trade.Quantity,
	})
	return nil
}

// ApplySnapshot implements replayv1.Handler: the snapshot replaces the whole
// book and is retained for gap recovery.
func (e *Engine) ApplySnapshot(snap *eventv1.OrderBookSnapshot) error {
	e.book.LoadSnapshot(snap.Bids, snap.Asks)
	e.snapshots.Store(snap)
	e.setLastSnapshotSeq(snap.Sequence)
	return nil
}

// ApplyDelta implements replayv1.Handler.
func (e *Engine) ApplyDelta(delta *eventv1.OrderBookDelta) error {
	e.book.ApplyDelta(delta)
	return nil
}

// ApplyMarket implements replayv1.Handler. A halt clears nothing: resting
// state stays valid and the venue re-syncs with a snapshot on resume.
func (e *Engine) ApplyMarket(event *eventv1.MarketEvent) error {
	e.logger.Info("market status event", logger.Field{
		Key:   "symbol",
		Value: event.Symbol,
	}, logger.Field{
		Key:   "status",
		Value: event.Status,
	}, logger.Field{
		Key:   "bookWide",
		Value: event.IsBookWide(),
	})
	return nil
}
