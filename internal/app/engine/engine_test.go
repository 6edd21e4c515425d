package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	eventv1 "github.com/muhammadchandra19/book-builder/internal/domain/event/v1"
	feedv1mock "github.com/muhammadchandra19/book-builder/internal/domain/feed/v1/mock"
	orderbookv1 "github.com/muhammadchandra19/book-builder/internal/domain/orderbook/v1"
	replayv1 "github.com/muhammadchandra19/book-builder/internal/domain/replay/v1"
	snapshotv1mock "github.com/muhammadchandra19/book-builder/internal/domain/snapshot/v1/mock"
	"github.com/muhammadchandra19/book-builder/internal/usecase/orderbook"
	"github.com/muhammadchandra19/book-builder/pkg/logger"
)

type testFixture struct {
	ctrl          *gomock.Controller
	mockReader    *feedv1mock.MockEventReader
	mockPersister *snapshotv1mock.MockPersister
	book          *orderbook.Book
	logger        *logger.Logger
}

func setupTestFixture(t *testing.T) *testFixture {
	ctrl := gomock.NewController(t)

	log, err := logger.NewLogger()
	require.NoError(t, err)

	return &testFixture{
		ctrl:          ctrl,
		mockReader:    feedv1mock.NewMockEventReader(ctrl),
		mockPersister: snapshotv1mock.NewMockPersister(ctrl),
		book:          orderbook.NewBook("BTC-USD"),
		logger:        log,
	}
}

func (f *testFixture) teardown() {
	f.ctrl.Finish()
}

func createTestEngine(f *testFixture) *Engine {
	return NewEngine(
		f.book,
		replayv1.DefaultConfig(),
		f.mockReader,
		f.mockPersister,
		f.logger,
	)
}

// Test 1: Place and cancel updates mutate the book through the handler
func TestEngine_ApplyOrder(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	engine := createTestEngine(fixture)

	require.NoError(t, engine.ApplyOrder(&eventv1.OrderUpdate{
		Meta:     eventv1.Meta{Symbol: "BTC-USD", Sequence: 1},
		OrderID:  1,
		Side:     orderbookv1.SideBid,
		Price:    100_000,
		Quantity: 5,
		Action:   eventv1.OrderActionPlace,
	}))
	assert.Equal(t, int64(5), fixture.book.BidSizeAt(100_000))

	require.NoError(t, engine.ApplyOrder(&eventv1.OrderUpdate{
		Meta:    eventv1.Meta{Symbol: "BTC-USD", Sequence: 2},
		OrderID: 1,
		Action:  eventv1.OrderActionCancel,
	}))
	assert.Equal(t, int64(0), fixture.book.BidSizeAt(100_000))

	// Cancels for unknown ids are tolerated
	require.NoError(t, engine.ApplyOrder(&eventv1.OrderUpdate{
		Meta:    eventv1.Meta{Symbol: "BTC-USD", Sequence: 3},
		OrderID: 99,
		Action:  eventv1.OrderActionCancel,
	}))
}

// Test 2: Iceberg place updates carry their hidden portion into the book
func TestEngine_ApplyIcebergOrder(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	engine := createTestEngine(fixture)

	require.NoError(t, engine.ApplyOrder(&eventv1.OrderUpdate{
		Meta:            eventv1.Meta{Symbol: "BTC-USD", Sequence: 1},
		OrderID:         1,
		Side:            orderbookv1.SideAsk,
		Price:           101_000,
		Quantity:        100,
		Action:          eventv1.OrderActionPlace,
		IsIceberg:       true,
		VisibleQuantity: 10,
	}))

	assert.Equal(t, int64(100), fixture.book.AskSizeAt(101_000))
	assert.Equal(t, int64(90), fixture.book.HiddenQuantityAt(orderbookv1.SideAsk, 101_000))
}

// Test 3: ApplySnapshot replaces the book and records the snapshot sequence
func TestEngine_ApplySnapshot(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	engine := createTestEngine(fixture)
	fixture.book.AddOrder(orderbookv1.NewOrder(1, orderbookv1.SideBid, 50_000, 5))

	require.NoError(t, engine.ApplySnapshot(&eventv1.OrderBookSnapshot{
		Meta: eventv1.Meta{Symbol: "BTC-USD", Sequence: 100},
		Bids: []eventv1.PriceLevelUpdate{{Price: 100_000, Quantity: 7, OrderCount: 2}},
		Asks: []eventv1.PriceLevelUpdate{{Price: 101_000, Quantity: 3, OrderCount: 1}},
	}))

	assert.Equal(t, int64(0), fixture.book.BidSizeAt(50_000))
	assert.Equal(t, int64(7), fixture.book.BidSizeAt(100_000))
	assert.Equal(t, uint64(100), engine.getLastSnapshotSeq())
}

// Test 4: ApplyDelta mutates levels in place
func TestEngine_ApplyDelta(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	engine := createTestEngine(fixture)
	fixture.book.LoadSnapshot(
		[]eventv1.PriceLevelUpdate{{Price: 100_000, Quantity: 5, OrderCount: 1}},
		nil,
	)

	require.NoError(t, engine.ApplyDelta(&eventv1.OrderBookDelta{
		Meta:         eventv1.Meta{Symbol: "BTC-USD", Sequence: 2},
		PrevSequence: 1,
		BidUpdates:   []eventv1.PriceLevelUpdate{{Price: 100_000, Quantity: 9, OrderCount: 2}},
	}))

	assert.Equal(t, int64(9), fixture.book.BidSizeAt(100_000))
}

// Test 5: Restore rebuilds the book from the persisted snapshot
func TestEngine_Restore(t *testing.T) {
	testCases := []struct {
		name            string
		setupMocks      func(*testFixture)
		expectedError   bool
		expectedBidSize int64
		expectedSeq     uint64
	}{
		{
			name: "no persisted snapshot is a clean start",
			setupMocks: func(f *testFixture) {
				f.mockPersister.EXPECT().
					Load(gomock.Any()).
					Return(nil, nil).
					Times(1)
			},
		},
		{
			name: "persisted snapshot seeds the book and baseline",
			setupMocks: func(f *testFixture) {
				f.mockPersister.EXPECT().
					Load(gomock.Any()).
					Return(&eventv1.OrderBookSnapshot{
						Meta: eventv1.Meta{Symbol: "BTC-USD", Sequence: 500},
						Bids: []eventv1.PriceLevelUpdate{{Price: 100_000, Quantity: 5, OrderCount: 1}},
					}, nil).
					Times(1)
			},
			expectedBidSize: 5,
			expectedSeq:     500,
		},
		{
			name: "persister failure propagates",
			setupMocks: func(f *testFixture) {
				f.mockPersister.EXPECT().
					Load(gomock.Any()).
					Return(nil, errors.New("redis down")).
					Times(1)
			},
			expectedError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fixture := setupTestFixture(t)
			defer fixture.teardown()

			tc.setupMocks(fixture)
			engine := createTestEngine(fixture)

			err := engine.Restore(context.Background())
			if tc.expectedError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedBidSize, fixture.book.BidSizeAt(100_000))
			assert.Equal(t, tc.expectedSeq, engine.Replay().LastAppliedSequence())
		})
	}
}

// Test 6: Start consumes the feed and Stop shuts down gracefully
func TestEngine_StartStop(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	engine := createTestEngine(fixture)

	event := &eventv1.OrderUpdate{
		Meta:     eventv1.Meta{Symbol: "BTC-USD", Sequence: 1},
		OrderID:  1,
		Side:     orderbookv1.SideBid,
		Price:    100_000,
		Quantity: 5,
		Action:   eventv1.OrderActionPlace,
	}

	fixture.mockReader.EXPECT().
		ReadEvent(gomock.Any()).
		Return(kafka.Message{Offset: 1}, event, nil).
		Times(1)
	fixture.mockReader.EXPECT().
		ReadEvent(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (kafka.Message, eventv1.Event, error) {
			<-ctx.Done()
			return kafka.Message{}, nil, ctx.Err()
		}).
		AnyTimes()
	fixture.mockReader.EXPECT().
		CommitMessages(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	fixture.mockReader.EXPECT().
		Close().
		Return(nil).
		Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, engine.Start(ctx))

	assert.Eventually(t, func() bool {
		return engine.Replay().LastAppliedSequence() == 1
	}, 2*time.Second, 10*time.Millisecond, "the feed event must reach the book")
	assert.Equal(t, int64(5), fixture.book.BidSizeAt(100_000))

	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, engine.Stop(stopCtx))
}

// Test 7: A sequence-gapped delta from the feed does not kill the processor
func TestEngine_FeedProcessorSurvivesBadDelta(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	engine := createTestEngine(fixture)

	good := &eventv1.OrderUpdate{
		Meta:     eventv1.Meta{Symbol: "BTC-USD", Sequence: 1},
		OrderID:  1,
		Side:     orderbookv1.SideBid,
		Price:    100_000,
		Quantity: 5,
		Action:   eventv1.OrderActionPlace,
	}
	badDelta := &eventv1.OrderBookDelta{
		Meta:         eventv1.Meta{Symbol: "BTC-USD", Sequence: 10},
		PrevSequence: 9, // book is at 1
	}
	after := &eventv1.OrderUpdate{
		Meta:     eventv1.Meta{Symbol: "BTC-USD", Sequence: 2},
		OrderID:  2,
		Side:     orderbookv1.SideAsk,
		Price:    101_000,
		Quantity: 3,
		Action:   eventv1.OrderActionPlace,
	}

	gomock.InOrder(
		fixture.mockReader.EXPECT().
			ReadEvent(gomock.Any()).
			Return(kafka.Message{Offset: 1}, good, nil).
			Times(1),
		fixture.mockReader.EXPECT().
			ReadEvent(gomock.Any()).
			Return(kafka.Message{Offset: 2}, badDelta, nil).
			Times(1),
		fixture.mockReader.EXPECT().
			ReadEvent(gomock.Any()).
			Return(kafka.Message{Offset: 3}, after, nil).
			Times(1),
		fixture.mockReader.EXPECT().
			ReadEvent(gomock.Any()).
			DoAndReturn(func(ctx context.Context) (kafka.Message, eventv1.Event, error) {
				<-ctx.Done()
				return kafka.Message{}, nil, ctx.Err()
			}).
			AnyTimes(),
	)
	fixture.mockReader.EXPECT().
		CommitMessages(gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()
	fixture.mockReader.EXPECT().
		Close().
		Return(nil).
		Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, engine.Start(ctx))

	assert.Eventually(t, func() bool {
		return engine.Replay().LastAppliedSequence() == 2
	}, 2*time.Second, 10*time.Millisecond, "processing must continue past the rejected delta")
	assert.Equal(t, int64(3), fixture.book.AskSizeAt(101_000))

	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, engine.Stop(stopCtx))
}

// Test 8: Market events reach the handler without consuming a sequence
func TestEngine_ApplyMarket(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	engine := createTestEngine(fixture)

	require.NoError(t, engine.Replay().ProcessEvent(&eventv1.MarketEvent{
		Meta:   eventv1.Meta{Symbol: "BTC-USD"},
		Status: eventv1.MarketStatusHalt,
		Reason: "volatility",
	}))

	assert.Equal(t, uint64(0), engine.Replay().LastAppliedSequence())
	assert.Equal(t, uint64(1), engine.Replay().Stats().MarketEvents)
}

// Test 9: A zero-valued replay config still drives the snapshot job
func TestEngine_ZeroConfigSnapshotInterval(t *testing.T) {
	fixture := setupTestFixture(t)
	defer fixture.teardown()

	engine := NewEngine(
		fixture.book,
		replayv1.Config{},
		fixture.mockReader,
		fixture.mockPersister,
		fixture.logger,
	)

	interval := engine.Replay().Config().SnapshotInterval
	require.Equal(t, replayv1.DefaultConfig().SnapshotInterval, interval)

	// The manager sees the same effective interval as the replay engine.
	assert.False(t, engine.snapshots.NeedsSnapshot(uint64(interval)-1, 0))
	assert.True(t, engine.snapshots.NeedsSnapshot(uint64(interval), 0))
}
