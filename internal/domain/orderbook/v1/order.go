package orderbookv1

// Prices and quantities are fixed-point integers scaled by the symbol's tick
// and lot size. The hot path never touches floats.

// Side represents which side of the book an order rests on.
type Side uint8

const (
	// SideBid represents a resting buy order.
	SideBid Side = iota
	// SideAsk represents a resting sell order.
	SideAsk
)

// String returns a human readable side name.
func (s Side) String() string {
	if s == SideBid {
		return "bid"
	}
	return "ask"
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBid {
		return SideAsk
	}
	return SideBid
}

// Order is the book-level view of a resting order.
type Order struct {
	ID               uint64 `json:"id"`
	Price            int64  `json:"price"`
	Quantity         int64  `json:"quantity"`
	OriginalQuantity int64  `json:"originalQuantity"`
	Side             Side   `json:"side"`
	IsIceberg        bool   `json:"isIceberg"`
	VisibleQuantity  int64  `json:"visibleQuantity"`
}

// NewOrder creates a fully visible order.
func NewOrder(id uint64, side Side, price, quantity int64) *Order {
	return &Order{
		ID:               id,
		Price:            price,
		Quantity:         quantity,
		OriginalQuantity: quantity,
		Side:             side,
		VisibleQuantity:  quantity,
	}
}

// NewIcebergOrder creates an order whose full quantity is only partially
// displayed. Level totals still include the hidden portion.
func NewIcebergOrder(id uint64, side Side, price, quantity, visible int64) *Order {
	if visible > quantity {
		visible = quantity
	}
	return &Order{
		ID:               id,
		Price:            price,
		Quantity:         quantity,
		OriginalQuantity: quantity,
		Side:             side,
		IsIceberg:        true,
		VisibleQuantity:  visible,
	}
}

// HiddenQuantity returns the non-displayed portion of the order.
func (o *Order) HiddenQuantity() int64 {
	if !o.IsIceberg {
		return 0
	}
	return o.Quantity - o.VisibleQuantity
}

// IsBid checks if the order is a bid (buy) order.
func (o *Order) IsBid() bool {
	return o.Side == SideBid
}

// IsAsk checks if the order is an ask (sell) order.
func (o *Order) IsAsk() bool {
	return o.Side == SideAsk
}
