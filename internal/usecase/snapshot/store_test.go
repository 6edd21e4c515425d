package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	eventv1 "github.com/muhammadchandra19/book-builder/internal/domain/event/v1"
	"github.com/muhammadchandra19/book-builder/pkg/logger"
	redismock "github.com/muhammadchandra19/book-builder/pkg/redis/mock"
)

type storeFixture struct {
	ctrl  *gomock.Controller
	redis *redismock.MockClient
	store *Store
}

func setupStoreFixture(t *testing.T) *storeFixture {
	ctrl := gomock.NewController(t)

	log, err := logger.NewLogger()
	require.NoError(t, err)

	redis := redismock.NewMockClient(ctrl)
	return &storeFixture{
		ctrl:  ctrl,
		redis: redis,
		store: NewStore(redis, "BTC-USD", log),
	}
}

// Test 1: Persist serializes the snapshot under the symbol key
func TestStore_Persist(t *testing.T) {
	f := setupStoreFixture(t)
	defer f.ctrl.Finish()

	snap := &eventv1.OrderBookSnapshot{
		Meta: eventv1.Meta{Symbol: "BTC-USD", Sequence: 42},
		Bids: []eventv1.PriceLevelUpdate{{Price: 100_000, Quantity: 5, OrderCount: 1}},
	}

	f.redis.EXPECT().
		Set(gomock.Any(), "snapshot:BTC-USD", gomock.Any(), time.Duration(0)).
		Return(nil).
		Times(1)

	err := f.store.Persist(context.Background(), snap)
	assert.NoError(t, err)
}

// Test 2: Persist surfaces Redis failures
func TestStore_PersistRedisError(t *testing.T) {
	f := setupStoreFixture(t)
	defer f.ctrl.Finish()

	f.redis.EXPECT().
		Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused")).
		Times(1)

	err := f.store.Persist(context.Background(), &eventv1.OrderBookSnapshot{})
	assert.Error(t, err)
}

// Test 3: Load round-trips a persisted snapshot
func TestStore_Load(t *testing.T) {
	f := setupStoreFixture(t)
	defer f.ctrl.Finish()

	snap := &eventv1.OrderBookSnapshot{
		Meta:     eventv1.Meta{Symbol: "BTC-USD", Sequence: 42},
		Bids:     []eventv1.PriceLevelUpdate{{Price: 100_000, Quantity: 5, OrderCount: 1}},
		Asks:     []eventv1.PriceLevelUpdate{{Price: 101_000, Quantity: 3, OrderCount: 2}},
		Checksum: 7,
	}
	buf, err := json.Marshal(snap)
	require.NoError(t, err)

	f.redis.EXPECT().
		Get(gomock.Any(), "snapshot:BTC-USD").
		Return(string(buf), nil).
		Times(1)

	got, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(42), got.Sequence)
	assert.Equal(t, snap.Bids, got.Bids)
	assert.Equal(t, snap.Asks, got.Asks)
	assert.Equal(t, uint32(7), got.Checksum)
}

// Test 4: Load returns nil when nothing is persisted
func TestStore_LoadEmpty(t *testing.T) {
	f := setupStoreFixture(t)
	defer f.ctrl.Finish()

	f.redis.EXPECT().
		Get(gomock.Any(), "snapshot:BTC-USD").
		Return("", nil).
		Times(1)

	got, err := f.store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

// Test 5: Load surfaces malformed payloads
func TestStore_LoadCorruptPayload(t *testing.T) {
	f := setupStoreFixture(t)
	defer f.ctrl.Finish()

	f.redis.EXPECT().
		Get(gomock.Any(), "snapshot:BTC-USD").
		Return("{not json", nil).
		Times(1)

	_, err := f.store.Load(context.Background())
	assert.Error(t, err)
}
