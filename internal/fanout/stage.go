// Package fanout runs independent steps against one item concurrently,
// stage by stage. A failing step is logged and does not stop its siblings
// or later stages.
package fanout

import (
	"context"
)

// Step is a single operation on an item. Steps in one stage run at the same
// time on the same item, so each must write only to state it owns (for
// example its own slot in a slice sized before the run).
type Step[T any] func(ctx context.Context, item *T) error

// Stage groups steps that may run in parallel. The pipeline waits for every
// step of a stage before starting the next one.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

// NewStage constructs a named Stage from the provided steps.
func NewStage[T any](name string, steps ...Step[T]) Stage[T] {
	return Stage[T]{name: name, steps: steps}
}
