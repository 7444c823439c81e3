package service

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessageIterator defines the contract for consuming messages from a Kafka topic.
// It is used by the service's Iterator to abstract away the details of the
// underlying Kafka consumer.
//
// Implementations are responsible for the lifecycle of the consumer connection.
type MessageIterator interface {
	// Messages returns a receive-only channel of Kafka messages. The channel
	// is closed by the implementation when the consumer is stopped or the
	// underlying source is exhausted.
	Messages() <-chan kafka.Message

	// CommitOffset acknowledges that a message has been handed on.
	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// DecodeFunc turns a raw message into a value of type T. A returned error
// marks the message as poison: it is logged, committed and skipped.
type DecodeFunc[T any] func(ctx context.Context, msg kafka.Message) (T, error)

// Delivery pairs a decoded value with the message it came from.
type Delivery[T any] struct {
	Data    T
	Message kafka.Message
}
