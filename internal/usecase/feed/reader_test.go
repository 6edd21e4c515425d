package feed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventv1 "github.com/muhammadchandra19/book-builder/internal/domain/event/v1"
	orderbookv1 "github.com/muhammadchandra19/book-builder/internal/domain/orderbook/v1"
)

func envelopePayload(t *testing.T, typ eventv1.EventType, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(map[string]any{
		"type": typ,
		"data": json.RawMessage(raw),
	})
	require.NoError(t, err)
	return payload
}

// Test 1: Order payloads decode into OrderUpdate
func TestDecodeEvent_Order(t *testing.T) {
	receivedAt := time.Now()
	payload := envelopePayload(t, eventv1.EventTypeOrder, &eventv1.OrderUpdate{
		Meta:     eventv1.Meta{Symbol: "BTC-USD", Sequence: 7},
		OrderID:  42,
		Side:     orderbookv1.SideBid,
		Price:    100_000,
		Quantity: 5,
		Action:   eventv1.OrderActionPlace,
	})

	event, err := DecodeEvent(payload, receivedAt)
	require.NoError(t, err)

	order, ok := event.(*eventv1.OrderUpdate)
	require.True(t, ok)
	assert.Equal(t, uint64(7), order.Sequence)
	assert.Equal(t, uint64(42), order.OrderID)
	assert.Equal(t, eventv1.OrderActionPlace, order.Action)
	assert.Equal(t, receivedAt.Unix(), order.LocalTime.Unix(), "receipt time is stamped on decode")
}

// Test 2: Every event type round-trips through the envelope
func TestDecodeEvent_AllTypes(t *testing.T) {
	testCases := []struct {
		name  string
		typ   eventv1.EventType
		event eventv1.Event
	}{
		{"order", eventv1.EventTypeOrder, &eventv1.OrderUpdate{Meta: eventv1.Meta{Sequence: 1}}},
		{"trade", eventv1.EventTypeTrade, &eventv1.TradeEvent{Meta: eventv1.Meta{Sequence: 2}, TradeID: "t1"}},
		{"snapshot", eventv1.EventTypeSnapshot, &eventv1.OrderBookSnapshot{Meta: eventv1.Meta{Sequence: 3}}},
		{"delta", eventv1.EventTypeDelta, &eventv1.OrderBookDelta{Meta: eventv1.Meta{Sequence: 4}, PrevSequence: 3}},
		{"market", eventv1.EventTypeMarket, &eventv1.MarketEvent{Status: eventv1.MarketStatusHalt}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			payload := envelopePayload(t, tc.typ, tc.event)

			decoded, err := DecodeEvent(payload, time.Now())
			require.NoError(t, err)
			assert.Equal(t, tc.typ, decoded.EventType())
		})
	}
}

// Test 3: A pre-stamped local time is preserved
func TestDecodeEvent_KeepsExistingLocalTime(t *testing.T) {
	stamped := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	payload := envelopePayload(t, eventv1.EventTypeTrade, &eventv1.TradeEvent{
		Meta: eventv1.Meta{Symbol: "BTC-USD", Sequence: 1, LocalTime: stamped},
	})

	decoded, err := DecodeEvent(payload, time.Now())
	require.NoError(t, err)
	assert.True(t, decoded.EventMeta().LocalTime.Equal(stamped))
}

// Test 4: Unknown type tags are rejected
func TestDecodeEvent_UnknownType(t *testing.T) {
	payload := []byte(`{"type":"heartbeat","data":{}}`)

	_, err := DecodeEvent(payload, time.Now())
	assert.Error(t, err)
}

// Test 5: Malformed payloads are rejected
func TestDecodeEvent_MalformedPayload(t *testing.T) {
	_, err := DecodeEvent([]byte("not json"), time.Now())
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"type":"order","data":"not an object"}`), time.Now())
	assert.Error(t, err)
}
