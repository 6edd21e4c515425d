package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	eventv1 "github.com/muhammadchandra19/book-builder/internal/domain/event/v1"
	"github.com/muhammadchandra19/book-builder/pkg/errors"
	"github.com/muhammadchandra19/book-builder/pkg/logger"
	"github.com/muhammadchandra19/book-builder/pkg/redis"
)

// Store persists the latest snapshot per symbol in Redis so a restarted
// service can rebuild its book without waiting for a fresh venue snapshot.
// It is an independent consumer of the snapshot stream; the in-memory core
// never depends on it.
type Store struct {
	symbol      string
	logger      *logger.Logger
	redisclient redis.Client
}

// NewStore creates a snapshot store for one symbol.
func NewStore(redisclient redis.Client, symbol string, logger *logger.Logger) *Store {
	return &Store{
		symbol:      symbol,
		redisclient: redisclient,
		logger:      logger,
	}
}

func (s *Store) key() string {
	return fmt.Sprintf("snapshot:%s", s.symbol)
}

// Persist serializes the snapshot and stores it in Redis, replacing any
// previously persisted one.
func (s *Store) Persist(ctx context.Context, snapshot *eventv1.OrderBookSnapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "symbol",
			Value: s.symbol,
		}, logger.Field{
			Key:   "action",
			Value: "marshal snapshot",
		})
		return errors.NewTracer(string(errors.SnapshotMarshalError)).Wrap(err)
	}

	if err := s.redisclient.Set(ctx, s.key(), buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "symbol",
			Value: s.symbol,
		}, logger.Field{
			Key:   "action",
			Value: "store snapshot",
		})
		return errors.NewTracer(string(errors.SnapshotStoreError)).Wrap(err)
	}

	s.logger.DebugContext(ctx, "snapshot persisted", logger.Field{
		Key:   "symbol",
		Value: s.symbol,
	}, logger.Field{
		Key:   "sequence",
		Value: snapshot.Sequence,
	})
	return nil
}

// Load returns the persisted snapshot for the symbol, or nil when none has
// been stored yet.
func (s *Store) Load(ctx context.Context) (*eventv1.OrderBookSnapshot, error) {
	data, err := s.redisclient.Get(ctx, s.key())
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "symbol",
			Value: s.symbol,
		}, logger.Field{
			Key:   "action",
			Value: "load snapshot",
		})
		return nil, errors.NewTracer(string(errors.SnapshotLoadError)).Wrap(err)
	}

	if data == "" {
		s.logger.InfoContext(ctx, "no persisted snapshot", logger.Field{
			Key:   "symbol",
			Value: s.symbol,
		})
		return nil, nil
	}

	var snapshot eventv1.OrderBookSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "symbol",
			Value: s.symbol,
		}, logger.Field{
			Key:   "action",
			Value: "unmarshal snapshot",
		})
		return nil, errors.NewTracer(string(errors.SnapshotUnmarshalError)).Wrap(err)
	}

	return &snapshot, nil
}
