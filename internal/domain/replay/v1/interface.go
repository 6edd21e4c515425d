package replayv1

import (
	eventv1 "github.com/muhammadchandra19/book-builder/internal/domain/event/v1"
)

// Handler receives each validated event exactly once, in sequence order,
// including events drained from the out-of-order buffer. The engine only
// validates and sequences; whichever component owns both the engine and the
// live book implements Handler to perform the actual mutations.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=replayv1_mock
type Handler interface {
	ApplyOrder(update *eventv1.OrderUpdate) error
	ApplyTrade(trade *eventv1.TradeEvent) error
	ApplySnapshot(snapshot *eventv1.OrderBookSnapshot) error
	ApplyDelta(delta *eventv1.OrderBookDelta) error
	ApplyMarket(event *eventv1.MarketEvent) error
}

// BookView is the read-only book surface the engine needs for post-snapshot
// checksum validation.
type BookView interface {
	ComputeChecksum() uint32
}
