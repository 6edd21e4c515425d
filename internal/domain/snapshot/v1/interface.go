package snapshotv1

import (
	"context"

	eventv1 "github.com/muhammadchandra19/book-builder/internal/domain/event/v1"
)

// Persister defines the interface for persisting and restoring the latest
// book snapshot across restarts.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=snapshotv1_mock
type Persister interface {
	Persist(ctx context.Context, snapshot *eventv1.OrderBookSnapshot) error
	Load(ctx context.Context) (*eventv1.OrderBookSnapshot, error)
}
