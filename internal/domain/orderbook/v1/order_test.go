package orderbookv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test 1: Fully visible order
func TestNewOrder(t *testing.T) {
	order := NewOrder(1, SideBid, 10_000, 50)

	assert.Equal(t, uint64(1), order.ID)
	assert.Equal(t, int64(10_000), order.Price)
	assert.Equal(t, int64(50), order.Quantity)
	assert.Equal(t, int64(50), order.OriginalQuantity)
	assert.Equal(t, int64(50), order.VisibleQuantity)
	assert.False(t, order.IsIceberg)
	assert.Equal(t, int64(0), order.HiddenQuantity())
	assert.True(t, order.IsBid())
	assert.False(t, order.IsAsk())
}

// Test 2: Iceberg order clamps visible quantity and exposes the hidden part
func TestNewIcebergOrder(t *testing.T) {
	order := NewIcebergOrder(2, SideAsk, 10_000, 100, 10)

	assert.True(t, order.IsIceberg)
	assert.Equal(t, int64(10), order.VisibleQuantity)
	assert.Equal(t, int64(90), order.HiddenQuantity())

	clamped := NewIcebergOrder(3, SideAsk, 10_000, 100, 500)
	assert.Equal(t, int64(100), clamped.VisibleQuantity, "visible must never exceed total")
	assert.Equal(t, int64(0), clamped.HiddenQuantity())
}

// Test 3: Side helpers
func TestSide(t *testing.T) {
	assert.Equal(t, "bid", SideBid.String())
	assert.Equal(t, "ask", SideAsk.String())
	assert.Equal(t, SideAsk, SideBid.Opposite())
	assert.Equal(t, SideBid, SideAsk.Opposite())
}
