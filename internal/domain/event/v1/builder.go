package eventv1

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	orderbookv1 "github.com/muhammadchandra19/book-builder/internal/domain/orderbook/v1"
)

// Builder produces well-formed sequenced events for tests and simulation.
// The events are shape-identical to feed-decoded ones; the replay engine
// cannot tell the sources apart.
type Builder struct {
	symbol  string
	nextSeq uint64
	entropy *rand.Rand
	now     func() time.Time
}

// NewBuilder creates a builder that numbers events starting at 1.
func NewBuilder(symbol string) *Builder {
	return &Builder{
		symbol:  symbol,
		nextSeq: 1,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
}

// WithClock overrides the builder's clock, for deterministic timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// NextSequence returns the sequence the next built event will carry.
func (b *Builder) NextSequence() uint64 {
	return b.nextSeq
}

// SkipTo advances the builder's sequence counter, simulating a feed gap.
func (b *Builder) SkipTo(seq uint64) *Builder {
	b.nextSeq = seq
	return b
}

func (b *Builder) meta() Meta {
	now := b.now()
	m := Meta{
		Symbol:       b.symbol,
		Sequence:     b.nextSeq,
		ExchangeTime: now,
		LocalTime:    now,
	}
	b.nextSeq++
	return m
}

// Order builds a sequenced place update for a fully visible order.
func (b *Builder) Order(orderID uint64, side orderbookv1.Side, price, quantity int64) *OrderUpdate {
	return &OrderUpdate{
		Meta:            b.meta(),
		OrderID:         orderID,
		Side:            side,
		Price:           price,
		Quantity:        quantity,
		Action:          OrderActionPlace,
		VisibleQuantity: quantity,
	}
}

// IcebergOrder builds a sequenced place update with a hidden portion.
func (b *Builder) IcebergOrder(orderID uint64, side orderbookv1.Side, price, quantity, visible int64) *OrderUpdate {
	return &OrderUpdate{
		Meta:            b.meta(),
		OrderID:         orderID,
		Side:            side,
		Price:           price,
		Quantity:        quantity,
		Action:          OrderActionPlace,
		IsIceberg:       true,
		VisibleQuantity: visible,
	}
}

// Cancel builds a sequenced cancel update.
func (b *Builder) Cancel(orderID uint64) *OrderUpdate {
	return &OrderUpdate{
		Meta:    b.meta(),
		OrderID: orderID,
		Action:  OrderActionCancel,
	}
}

// Trade builds a sequenced trade print with a generated ULID trade id.
func (b *Builder) Trade(price, quantity int64, aggressor orderbookv1.Side) *TradeEvent {
	m := b.meta()
	return &TradeEvent{
		Meta:          m,
		TradeID:       ulid.MustNew(ulid.Timestamp(m.LocalTime), b.entropy).String(),
		Price:         price,
		Quantity:      quantity,
		AggressorSide: aggressor,
	}
}

// Snapshot builds a full book snapshot at the builder's next sequence.
// Bids must be ordered best-first descending, asks best-first ascending.
func (b *Builder) Snapshot(bids, asks []PriceLevelUpdate, checksum uint32) *OrderBookSnapshot {
	return &OrderBookSnapshot{
		Meta:     b.meta(),
		Bids:     bids,
		Asks:     asks,
		Checksum: checksum,
	}
}

// Delta builds an incremental update chained to prevSeq.
func (b *Builder) Delta(prevSeq uint64, bidUpdates, askUpdates []PriceLevelUpdate, bidDeletions, askDeletions []int64) *OrderBookDelta {
	return &OrderBookDelta{
		Meta:         b.meta(),
		PrevSequence: prevSeq,
		BidUpdates:   bidUpdates,
		AskUpdates:   askUpdates,
		BidDeletions: bidDeletions,
		AskDeletions: askDeletions,
	}
}

// Market builds an unsequenced venue status event. Pass an empty symbol for
// a book-wide event.
func (b *Builder) Market(symbol string, status MarketStatus, reason string) *MarketEvent {
	now := b.now()
	return &MarketEvent{
		Meta: Meta{
			Symbol:       symbol,
			ExchangeTime: now,
			LocalTime:    now,
		},
		Status: status,
		Reason: reason,
	}
}
