package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"sauna/internal/logging"
)

// Pipeline applies its stages in order to an item.
type Pipeline[T any] struct {
	stages []Stage[T]
	logger *zap.Logger
}

func NewPipeline[T any](logger *zap.Logger, stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{stages: stages, logger: logging.OrNop(logger)}
}

// Run executes every stage against item and returns the joined errors of the
// steps that failed, or nil. Each failure is logged as it settles. A panicking
// step counts as a failed step.
func (p *Pipeline[T]) Run(ctx context.Context, item *T) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	for _, stage := range p.stages {
		var wg sync.WaitGroup
		for i, step := range stage.steps {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := runStep(ctx, step, item); err != nil {
					p.logger.Warn("step failed",
						zap.String("stage", stage.name),
						zap.Int("step", i),
						zap.Error(err),
					)
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}()
		}
		wg.Wait() // stage barrier
	}

	return errors.Join(errs...)
}

func runStep[T any](ctx context.Context, step Step[T], item *T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panicked: %v", r)
		}
	}()
	return step(ctx, item)
}
