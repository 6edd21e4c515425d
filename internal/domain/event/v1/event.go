package eventv1

import (
	"time"

	orderbookv1 "github.com/muhammadchandra19/book-builder/internal/domain/orderbook/v1"
)

// EventType tags the closed set of feed event variants.
type EventType string

const (
	// EventTypeOrder represents an order add/cancel update.
	EventTypeOrder EventType = "order"
	// EventTypeTrade represents an executed trade print.
	EventTypeTrade EventType = "trade"
	// EventTypeSnapshot represents a full book snapshot.
	EventTypeSnapshot EventType = "snapshot"
	// EventTypeDelta represents an incremental book update.
	EventTypeDelta EventType = "delta"
	// EventTypeMarket represents a venue status event (halt, resume, circuit breaker).
	EventTypeMarket EventType = "market"
)

// OrderAction represents what an OrderUpdate does to the book.
type OrderAction string

const (
	// OrderActionPlace adds a resting order.
	OrderActionPlace OrderAction = "place"
	// OrderActionCancel removes a resting order.
	OrderActionCancel OrderAction = "cancel"
)

// Meta carries the fields shared by every event. MarketEvent carries a zero
// Sequence since venue status events bypass sequencing.
type Meta struct {
	Symbol       string    `json:"symbol"`
	Sequence     uint64    `json:"sequence"`
	ExchangeTime time.Time `json:"exchangeTime"`
	LocalTime    time.Time `json:"localTime"`
}

// EventMeta returns the shared metadata; embedding Meta satisfies Event.
func (m Meta) EventMeta() Meta {
	return m
}

// FeedLatency returns the exchange-to-local delay for this event, or zero
// when either timestamp is missing.
func (m Meta) FeedLatency() time.Duration {
	if m.ExchangeTime.IsZero() || m.LocalTime.IsZero() {
		return 0
	}
	return m.LocalTime.Sub(m.ExchangeTime)
}

// Event is the tagged variant consumed by the replay engine. Simulation
// events built by Builder are shape-identical to feed-decoded ones and the
// engine treats both sources the same.
type Event interface {
	EventType() EventType
	EventMeta() Meta
}

// OrderUpdate adds or cancels a single resting order.
type OrderUpdate struct {
	Meta

	OrderID         uint64           `json:"orderId"`
	Side            orderbookv1.Side `json:"side"`
	Price           int64            `json:"price"`
	Quantity        int64            `json:"quantity"`
	Action          OrderAction      `json:"action"`
	IsIceberg       bool             `json:"isIceberg"`
	VisibleQuantity int64            `json:"visibleQuantity"`
}

// EventType implements Event.
func (e *OrderUpdate) EventType() EventType {
	return EventTypeOrder
}

// TradeEvent is an executed trade print.
type TradeEvent struct {
	Meta

	TradeID       string           `json:"tradeId"`
	Price         int64            `json:"price"`
	Quantity      int64            `json:"quantity"`
	AggressorSide orderbookv1.Side `json:"aggressorSide"`
}

// EventType implements Event.
func (e *TradeEvent) EventType() EventType {
	return EventTypeTrade
}

// PriceLevelUpdate is one aggregated (price, quantity, order count) row of a
// snapshot or delta.
type PriceLevelUpdate struct {
	Price      int64 `json:"price"`
	Quantity   int64 `json:"quantity"`
	OrderCount int64 `json:"orderCount"`
}

// OrderBookSnapshot replaces the entire book state at a given sequence.
// Bids are ordered best-first (descending), asks best-first (ascending).
type OrderBookSnapshot struct {
	Meta

	Bids     []PriceLevelUpdate `json:"bids"`
	Asks     []PriceLevelUpdate `json:"asks"`
	Checksum uint32             `json:"checksum"`
}

// EventType implements Event.
func (e *OrderBookSnapshot) EventType() EventType {
	return EventTypeSnapshot
}

// OrderBookDelta is an incremental change valid only against the exact
// predecessor state identified by PrevSequence.
type OrderBookDelta struct {
	Meta

	PrevSequence uint64             `json:"prevSequence"`
	BidUpdates   []PriceLevelUpdate `json:"bidUpdates"`
	AskUpdates   []PriceLevelUpdate `json:"askUpdates"`
	BidDeletions []int64            `json:"bidDeletions"`
	AskDeletions []int64            `json:"askDeletions"`
}

// EventType implements Event.
func (e *OrderBookDelta) EventType() EventType {
	return EventTypeDelta
}

// MarketStatus enumerates venue status transitions.
type MarketStatus string

const (
	// MarketStatusHalt indicates trading is halted.
	MarketStatusHalt MarketStatus = "halt"
	// MarketStatusResume indicates trading resumed.
	MarketStatusResume MarketStatus = "resume"
	// MarketStatusCircuitBreaker indicates a venue circuit breaker fired.
	MarketStatusCircuitBreaker MarketStatus = "circuit_breaker"
)

// MarketEvent is a venue status event. An empty Symbol means the event is
// book-wide (venue halt or circuit breaker across all symbols). Market
// events carry no sequence number.
type MarketEvent struct {
	Meta

	Status MarketStatus `json:"status"`
	Reason string       `json:"reason,omitempty"`
}

// EventType implements Event.
func (e *MarketEvent) EventType() EventType {
	return EventTypeMarket
}

// IsBookWide reports whether the event applies to every symbol.
func (e *MarketEvent) IsBookWide() bool {
	return e.Symbol == ""
}
