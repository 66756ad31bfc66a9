package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Chord dispatches every task in the group concurrently and, only if all
// of them complete successfully, invokes join with their results in
// task order. If any task fails, join is not invoked and the first error
// is returned instead — callers route it to the error continuation, per
// §4.9's "If any group task fails fatally, the join is not invoked and
// the linked error continuation is dispatched with the failure."
//
// Grounded on the teacher's internal/worker.Pool (semaphore + WaitGroup +
// first-error aggregation), reshaped around errgroup.Group since every
// pack repo that joins parallel branches reaches for golang.org/x/sync.
func Chord[T any](ctx context.Context, tasks []func(ctx context.Context) (T, error), join func(ctx context.Context, results []T) error) error {
	results := make([]T, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			result, err := task(gctx)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return join(ctx, results)
}
