package feedv1

import (
	"context"

	"github.com/segmentio/kafka-go"

	eventv1 "github.com/muhammadchandra19/book-builder/internal/domain/event/v1"
)

// EventReader defines the interface for consuming decoded market data events
// from a feed.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=feedv1_mock
type EventReader interface {
	// ReadEvent reads the next message and decodes it into a model event.
	ReadEvent(ctx context.Context) (kafka.Message, eventv1.Event, error)
	// SetOffset sets the offset for the reader.
	SetOffset(offset int64) error
	// CommitMessages commits the messages after processing.
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	// Close closes the reader.
	Close() error
}
