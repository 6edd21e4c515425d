package eventv1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/muhammadchandra19/book-builder/internal/domain/orderbook/v1"
)

func fixedClock() func() time.Time {
	at := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

// Test 1: Sequences are contiguous starting at 1
func TestBuilder_SequenceNumbering(t *testing.T) {
	b := NewBuilder("BTC-USD")

	assert.Equal(t, uint64(1), b.NextSequence())

	first := b.Order(1, orderbookv1.SideBid, 10_000, 5)
	second := b.Trade(10_000, 5, orderbookv1.SideAsk)
	third := b.Cancel(1)

	assert.Equal(t, uint64(1), first.Sequence)
	assert.Equal(t, uint64(2), second.Sequence)
	assert.Equal(t, uint64(3), third.Sequence)
	assert.Equal(t, uint64(4), b.NextSequence())
}

// Test 2: SkipTo simulates a feed gap
func TestBuilder_SkipTo(t *testing.T) {
	b := NewBuilder("BTC-USD")

	b.Order(1, orderbookv1.SideBid, 10_000, 5)
	b.SkipTo(100)

	ev := b.Order(2, orderbookv1.SideBid, 10_001, 5)
	assert.Equal(t, uint64(100), ev.Sequence)
	assert.Equal(t, uint64(101), b.NextSequence())
}

// Test 3: Built events carry the symbol and both timestamps
func TestBuilder_Metadata(t *testing.T) {
	b := NewBuilder("ETH-USD").WithClock(fixedClock())

	ev := b.Order(1, orderbookv1.SideAsk, 2_000, 1)
	assert.Equal(t, "ETH-USD", ev.Symbol)
	assert.False(t, ev.ExchangeTime.IsZero())
	assert.Equal(t, ev.ExchangeTime, ev.LocalTime)
	assert.Equal(t, EventTypeOrder, ev.EventType())
}

// Test 4: Trade ids are unique ULIDs
func TestBuilder_TradeIDs(t *testing.T) {
	b := NewBuilder("BTC-USD")

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		trade := b.Trade(10_000, 1, orderbookv1.SideBid)
		require.NotEmpty(t, trade.TradeID)
		require.False(t, seen[trade.TradeID], "trade id %s repeated", trade.TradeID)
		seen[trade.TradeID] = true
	}
}

// Test 5: Iceberg orders keep the visible portion separate
func TestBuilder_IcebergOrder(t *testing.T) {
	b := NewBuilder("BTC-USD")

	ev := b.IcebergOrder(7, orderbookv1.SideBid, 10_000, 100, 10)
	assert.True(t, ev.IsIceberg)
	assert.Equal(t, int64(100), ev.Quantity)
	assert.Equal(t, int64(10), ev.VisibleQuantity)
	assert.Equal(t, OrderActionPlace, ev.Action)
}

// Test 6: Snapshot and delta carry the builder's sequence
func TestBuilder_SnapshotAndDelta(t *testing.T) {
	b := NewBuilder("BTC-USD")
	b.SkipTo(50)

	snap := b.Snapshot(
		[]PriceLevelUpdate{{Price: 10_000, Quantity: 5, OrderCount: 1}},
		[]PriceLevelUpdate{{Price: 10_001, Quantity: 3, OrderCount: 1}},
		0,
	)
	assert.Equal(t, uint64(50), snap.Sequence)
	assert.Equal(t, EventTypeSnapshot, snap.EventType())

	delta := b.Delta(50, nil, []PriceLevelUpdate{{Price: 10_001, Quantity: 7, OrderCount: 2}}, nil, nil)
	assert.Equal(t, uint64(51), delta.Sequence)
	assert.Equal(t, uint64(50), delta.PrevSequence)
	assert.Equal(t, EventTypeDelta, delta.EventType())
}

// Test 7: Market events are unsequenced; an empty symbol means book-wide
func TestBuilder_MarketEvent(t *testing.T) {
	b := NewBuilder("BTC-USD")

	halt := b.Market("BTC-USD", MarketStatusHalt, "volatility")
	assert.Equal(t, uint64(0), halt.Sequence)
	assert.False(t, halt.IsBookWide())
	assert.Equal(t, uint64(1), b.NextSequence(), "market events must not consume sequences")

	venueWide := b.Market("", MarketStatusCircuitBreaker, "")
	assert.True(t, venueWide.IsBookWide())
}

// Test 8: FeedLatency derives from the two timestamps
func TestMeta_FeedLatency(t *testing.T) {
	now := time.Now()
	m := Meta{ExchangeTime: now.Add(-3 * time.Millisecond), LocalTime: now}
	assert.Equal(t, 3*time.Millisecond, m.FeedLatency())

	assert.Equal(t, time.Duration(0), Meta{LocalTime: now}.FeedLatency())
	assert.Equal(t, time.Duration(0), Meta{ExchangeTime: now}.FeedLatency())
}
