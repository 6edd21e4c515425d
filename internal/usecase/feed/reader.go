package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	eventv1 "github.com/muhammadchandra19/book-builder/internal/domain/event/v1"
	"github.com/muhammadchandra19/book-builder/pkg/config"
	"github.com/muhammadchandra19/book-builder/pkg/errors"
	"github.com/muhammadchandra19/book-builder/pkg/logger"
)

// envelope is the wire shape venue adapters publish: a type tag plus the
// JSON-encoded event payload.
type envelope struct {
	Type eventv1.EventType `json:"type"`
	Data json.RawMessage   `json:"data"`
}

// Reader consumes decoded market data events from a Kafka topic. It returns
// an implementation of the feedv1.EventReader interface.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      logger.Logger
}

// NewReader creates a Kafka reader for the normalized market data topic.
func NewReader(cfg config.KafkaConfig, log logger.Logger) Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		Partition:   0,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

// logError is a helper method to log errors consistently
func (r Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "operation", Value: operation},
	)
}

// SetOffset sets the offset for the Kafka reader.
func (r Reader) SetOffset(offset int64) error {
	if err := r.kafkaReader.SetOffset(offset); err != nil {
		r.logError(err, "SetOffset")
		return err
	}
	return nil
}

// ReadEvent reads the next message and decodes it into a model event. The
// local receipt time is stamped here so latency tracking measures the full
// exchange-to-book delay.
func (r Reader) ReadEvent(ctx context.Context) (kafka.Message, eventv1.Event, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		r.logError(err, "ReadMessage")
		return kafka.Message{}, nil, err
	}

	event, err := DecodeEvent(msg.Value, time.Now())
	if err != nil {
		r.logError(err, "DecodeEvent")
		return kafka.Message{}, nil, err
	}

	return msg, event, nil
}

// Close properly closes the Kafka reader.
func (r Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}

// CommitMessages commits the messages to Kafka after processing.
func (r Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if err := r.kafkaReader.CommitMessages(ctx, msgs...); err != nil {
		r.logError(err, "CommitMessages")
		return err
	}
	return nil
}

// DecodeEvent parses one enveloped payload into a model event, stamping the
// given receipt time when the payload carries none.
func DecodeEvent(payload []byte, receivedAt time.Time) (eventv1.Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, errors.NewTracer(string(errors.EventDecodeError)).Wrap(err)
	}

	var event eventv1.Event
	switch env.Type {
	case eventv1.EventTypeOrder:
		event = &eventv1.OrderUpdate{}
	case eventv1.EventTypeTrade:
		event = &eventv1.TradeEvent{}
	case eventv1.EventTypeSnapshot:
		event = &eventv1.OrderBookSnapshot{}
	case eventv1.EventTypeDelta:
		event = &eventv1.OrderBookDelta{}
	case eventv1.EventTypeMarket:
		event = &eventv1.MarketEvent{}
	default:
		return nil, errors.NewErrorDetails(
			"unrecognized event type tag",
			string(errors.UnknownEventTypeError),
			"type",
		)
	}

	if err := json.Unmarshal(env.Data, event); err != nil {
		return nil, errors.NewTracer(string(errors.EventDecodeError)).Wrap(err)
	}

	stampLocalTime(event, receivedAt)
	return event, nil
}

// stampLocalTime sets the receipt time on events whose adapter did not.
func stampLocalTime(event eventv1.Event, receivedAt time.Time) {
	switch ev := event.(type) {
	case *eventv1.OrderUpdate:
		if ev.LocalTime.IsZero() {
			ev.LocalTime = receivedAt
		}
	case *eventv1.TradeEvent:
		if ev.LocalTime.IsZero() {
			ev.LocalTime = receivedAt
		}
	case *eventv1.OrderBookSnapshot:
		if ev.LocalTime.IsZero() {
			ev.LocalTime = receivedAt
		}
	case *eventv1.OrderBookDelta:
		if ev.LocalTime.IsZero() {
			ev.LocalTime = receivedAt
		}
	case *eventv1.MarketEvent:
		if ev.LocalTime.IsZero() {
			ev.LocalTime = receivedAt
		}
	}
}
