package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	replayv1 "github.com/muhammadchandra19/book-builder/internal/domain/replay/v1"
	"github.com/muhammadchandra19/book-builder/internal/usecase/latency"
	"github.com/muhammadchandra19/book-builder/pkg/logger"
	questdbmock "github.com/muhammadchandra19/book-builder/pkg/questdb/mock"
)

type stubStats struct {
	stats replayv1.Stats
	seq   uint64
}

func (s *stubStats) Stats() replayv1.Stats       { return s.stats }
func (s *stubStats) LastAppliedSequence() uint64 { return s.seq }

type stubLatency struct {
	summary latency.Summary
}

func (s *stubLatency) Percentiles() latency.Summary { return s.summary }

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = gomock.Any()
	}
	return args
}

type recorderFixture struct {
	ctrl     *gomock.Controller
	client   *questdbmock.MockQuestDBClient
	stats    *stubStats
	latency  *stubLatency
	recorder *Recorder
}

func newRecorderFixture(t *testing.T) *recorderFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := questdbmock.NewMockQuestDBClient(ctrl)

	log, err := logger.NewLogger()
	require.NoError(t, err)

	stats := &stubStats{
		stats: replayv1.Stats{
			OrdersProcessed:    120,
			TradesProcessed:    30,
			SnapshotsProcessed: 2,
			DeltasProcessed:    15,
			MarketEvents:       1,
			DuplicatesDropped:  4,
			GapsDetected:       1,
			EventsBuffered:     6,
			EventsEvicted:      0,
			ChecksumMismatches: 0,
		},
		seq: 1_500,
	}
	latencySource := &stubLatency{
		summary: latency.Summary{
			Count: 168,
			Min:   1 * time.Millisecond,
			Max:   40 * time.Millisecond,
			Mean:  8 * time.Millisecond,
			P50:   6 * time.Millisecond,
			P90:   20 * time.Millisecond,
			P99:   38 * time.Millisecond,
		},
	}

	return &recorderFixture{
		ctrl:     ctrl,
		client:   client,
		stats:    stats,
		latency:  latencySource,
		recorder: NewRecorder("BTC-USD", client, stats, latencySource, log),
	}
}

// Test 1: Flush writes one row with the current counters and percentiles
func TestRecorder_Flush(t *testing.T) {
	fixture := newRecorderFixture(t)
	ctx := context.Background()

	var captured []any
	fixture.client.EXPECT().
		Exec(ctx, insertSQL, anyArgs(19)...).
		Do(func(_ context.Context, _ string, args ...any) {
			captured = args
		}).
		Return(nil)

	err := fixture.recorder.Flush(ctx)
	require.NoError(t, err)

	require.Len(t, captured, 19)
	assert.Equal(t, "BTC-USD", captured[0])
	assert.Equal(t, int64(1_500), captured[1])
	assert.Equal(t, int64(120), captured[2], "orders processed")
	assert.Equal(t, int64(4), captured[7], "duplicates dropped")
	assert.Equal(t, int64(1), captured[8], "gaps detected")
	assert.Equal(t, (1 * time.Millisecond).Nanoseconds(), captured[12])
	assert.Equal(t, (38 * time.Millisecond).Nanoseconds(), captured[17])
	_, ok := captured[18].(time.Time)
	assert.True(t, ok, "last column is the row timestamp")
}

// Test 2: Exec failures are surfaced to the caller
func TestRecorder_FlushExecError(t *testing.T) {
	fixture := newRecorderFixture(t)
	ctx := context.Background()

	execErr := errors.New("connection refused")
	fixture.client.EXPECT().
		Exec(ctx, insertSQL, anyArgs(19)...).
		Return(execErr)

	err := fixture.recorder.Flush(ctx)
	assert.ErrorIs(t, err, execErr)
}

// Test 3: Run keeps flushing until the context is cancelled
func TestRecorder_Run(t *testing.T) {
	fixture := newRecorderFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	flushed := make(chan struct{}, 8)
	fixture.client.EXPECT().
		Exec(gomock.Any(), insertSQL, anyArgs(19)...).
		Do(func(_ context.Context, _ string, _ ...any) {
			select {
			case flushed <- struct{}{}:
			default:
			}
		}).
		Return(nil).
		MinTimes(2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		fixture.recorder.Run(ctx, 10*time.Millisecond)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-flushed:
		case <-time.After(2 * time.Second):
			t.Fatal("recorder did not flush in time")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("recorder did not stop on cancel")
	}
}
