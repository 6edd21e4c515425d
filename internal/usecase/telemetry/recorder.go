package telemetry

import (
	"context"
	"time"

	replayv1 "github.com/muhammadchandra19/book-builder/internal/domain/replay/v1"
	"github.com/muhammadchandra19/book-builder/internal/usecase/latency"
	"github.com/muhammadchandra19/book-builder/pkg/errors"
	"github.com/muhammadchandra19/book-builder/pkg/logger"
	"github.com/muhammadchandra19/book-builder/pkg/questdb"
)

// StatsSource exposes the replay engine counters the recorder polls.
type StatsSource interface {
	Stats() replayv1.Stats
	LastAppliedSequence() uint64
}

// LatencySource exposes the latency percentiles the recorder polls.
type LatencySource interface {
	Percentiles() latency.Summary
}

// Recorder periodically flushes replay counters and feed latency percentiles
// into QuestDB for dashboards and alerting. It only reads the non-blocking
// statistics surfaces and never touches the processing path.
type Recorder struct {
	symbol  string
	client  questdb.QuestDBClient
	stats   StatsSource
	latency LatencySource
	logger  *logger.Logger
}

// NewRecorder creates a telemetry recorder for one symbol.
func NewRecorder(
	symbol string,
	client questdb.QuestDBClient,
	stats StatsSource,
	latencySource LatencySource,
	log *logger.Logger,
) *Recorder {
	return &Recorder{
		symbol:  symbol,
		client:  client,
		stats:   stats,
		latency: latencySource,
		logger:  log,
	}
}

const insertSQL = `INSERT INTO book_builder_telemetry (
	symbol, last_applied_sequence,
	orders_processed, trades_processed, snapshots_processed, deltas_processed, market_events,
	duplicates_dropped, gaps_detected, events_buffered, events_evicted, checksum_mismatches,
	latency_min_ns, latency_max_ns, latency_mean_ns, latency_p50_ns, latency_p90_ns, latency_p99_ns,
	ts
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

// Flush writes one telemetry row with the current counters and percentiles.
func (r *Recorder) Flush(ctx context.Context) error {
	stats := r.stats.Stats()
	summary := r.latency.Percentiles()

	err := r.client.Exec(ctx, insertSQL,
		r.symbol,
		int64(r.stats.LastAppliedSequence()),
		int64(stats.OrdersProcessed),
		int64(stats.TradesProcessed),
		int64(stats.SnapshotsProcessed),
		int64(stats.DeltasProcessed),
		int64(stats.MarketEvents),
		int64(stats.DuplicatesDropped),
		int64(stats.GapsDetected),
		int64(stats.EventsBuffered),
		int64(stats.EventsEvicted),
		int64(stats.ChecksumMismatches),
		summary.Min.Nanoseconds(),
		summary.Max.Nanoseconds(),
		summary.Mean.Nanoseconds(),
		summary.P50.Nanoseconds(),
		summary.P90.Nanoseconds(),
		summary.P99.Nanoseconds(),
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, errors.NewTracer(string(errors.QuestDBExecError)).Wrap(err), logger.Field{
			Key:   "symbol",
			Value: r.symbol,
		})
		return err
	}

	return nil
}

// Run flushes on the given interval until the context is cancelled.
func (r *Recorder) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Flush errors are logged and the loop keeps going; telemetry
			// must never take down the feed path.
			_ = r.Flush(ctx)
		}
	}
}
