// Package service contains helpers used by application services.
// In particular, it provides an Iterator that consumes messages from a
// message source (e.g., Kafka via pkg/kafkaclient) and decodes them with a
// pluggable DecodeFunc.
package service

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"sauna/internal/logging"
)

// Iterator consumes messages from a MessageIterator, decodes each one and
// yields Delivery items on a channel. It is generic over the decoded type T.
//
// The Iterator does not manage the lifecycle of the underlying message source;
// callers should start/stop their consumer outside.
type Iterator[T any] struct {
	msgIterator MessageIterator
	decode      DecodeFunc[T]
	logger      *zap.Logger
}

func NewIterator[T any](iterator MessageIterator, decode DecodeFunc[T], logger *zap.Logger) *Iterator[T] {
	return &Iterator[T]{
		msgIterator: iterator,
		decode:      decode,
		logger:      logging.OrNop(logger),
	}
}

// Deliveries starts a goroutine that decodes every message, emits it on the
// returned channel and commits its offset once the receiver has taken it.
// Messages that fail to decode are committed and skipped so they are not
// redelivered. The channel is closed when the source is exhausted or ctx is
// done.
func (it *Iterator[T]) Deliveries(ctx context.Context) <-chan Delivery[T] {
	out := make(chan Delivery[T])
	go func() {
		defer close(out)

		for msg := range it.msgIterator.Messages() {
			data, err := it.decode(ctx, msg)
			if err != nil {
				it.logger.Warn("skipping undecodable message",
					zap.Int64("offset", msg.Offset),
					zap.Error(err),
				)
				it.commit(ctx, msg)
				continue
			}

			select {
			case out <- Delivery[T]{Data: data, Message: msg}:
			case <-ctx.Done():
				return
			}
			it.commit(ctx, msg)
		}
	}()
	return out
}

func (it *Iterator[T]) commit(ctx context.Context, msg kafka.Message) {
	if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
		it.logger.Warn("failed to commit offset", zap.Int64("offset", msg.Offset), zap.Error(err))
	}
}
