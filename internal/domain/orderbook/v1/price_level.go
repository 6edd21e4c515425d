package orderbookv1

import (
	"sync"
	"sync/atomic"
)

// aggregate bundles the per-level totals into a single allocation so that a
// reader loading the pointer can never observe a torn quantity/count pair.
type aggregate struct {
	totalQuantity  int64
	orderCount     int64
	hiddenQuantity int64
}

// PriceLevel aggregates all resting orders at one exact price.
//
// Reads (Quantity, OrderCount, HiddenQuantity) are wait-free: they load one
// atomic pointer to an immutable aggregate. Writers replace the aggregate
// wholesale under a short mutex scoped to the order index.
type PriceLevel struct {
	price int64

	agg atomic.Pointer[aggregate]

	mu     sync.Mutex
	orders map[uint64]*Order
}

// NewPriceLevel creates an empty level at the given price.
func NewPriceLevel(price int64) *PriceLevel {
	l := &PriceLevel{
		price:  price,
		orders: make(map[uint64]*Order),
	}
	l.agg.Store(&aggregate{})
	return l
}

// Price returns the level's price.
func (l *PriceLevel) Price() int64 {
	return l.price
}

// AddOrder adds the order's full quantity, including any hidden iceberg
// portion, to the level totals.
func (l *PriceLevel) AddOrder(order *Order) {
	if order == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.orders[order.ID] = order

	cur := l.agg.Load()
	l.agg.Store(&aggregate{
		totalQuantity:  cur.totalQuantity + order.Quantity,
		orderCount:     cur.orderCount + 1,
		hiddenQuantity: cur.hiddenQuantity + order.HiddenQuantity(),
	})
}

// RemoveOrder removes the order's contribution from the level totals and
// returns the removed order. It returns false if the id is not resting here.
func (l *PriceLevel) RemoveOrder(id uint64) (*Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	order, ok := l.orders[id]
	if !ok {
		return nil, false
	}
	delete(l.orders, id)

	cur := l.agg.Load()
	l.agg.Store(&aggregate{
		totalQuantity:  cur.totalQuantity - order.Quantity,
		orderCount:     cur.orderCount - 1,
		hiddenQuantity: cur.hiddenQuantity - order.HiddenQuantity(),
	})

	return order, true
}

// Replace overwrites the level totals with externally supplied values. Used
// when rebuilding the book from venue snapshots and deltas, where only the
// aggregated quantity and order count per price are known.
func (l *PriceLevel) Replace(totalQuantity, orderCount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.orders = make(map[uint64]*Order)
	l.agg.Store(&aggregate{
		totalQuantity: totalQuantity,
		orderCount:    orderCount,
	})
}

// Quantity returns the total resting quantity at this price.
func (l *PriceLevel) Quantity() int64 {
	return l.agg.Load().totalQuantity
}

// OrderCount returns the number of resting orders at this price.
func (l *PriceLevel) OrderCount() int64 {
	return l.agg.Load().orderCount
}

// HiddenQuantity returns the total non-displayed iceberg quantity here.
func (l *PriceLevel) HiddenQuantity() int64 {
	return l.agg.Load().hiddenQuantity
}

// IsEmpty reports whether no orders rest at this price. The book evicts
// empty levels, so callers should treat true as "level is gone".
func (l *PriceLevel) IsEmpty() bool {
	cur := l.agg.Load()
	return cur.orderCount == 0 && cur.totalQuantity == 0
}
