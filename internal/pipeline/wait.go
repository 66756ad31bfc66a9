package pipeline

import (
	"context"
	"errors"
)

// ErrWaitExhausted is returned by Wait when check never reported done
// within the policy's attempt budget.
var ErrWaitExhausted = errors.New("pipeline: wait exhausted retry budget")

// Wait implements the async_wait primitive (§4.9): rather than blocking
// synchronously on a downstream result, the original source retries the
// waiting task with a fixed delay. This engine runs one goroutine per
// locked sub-pipeline rather than re-enqueuing a celery task, so Wait's
// polling loop plays the same cooperative role — it never holds a thread
// busy-looping, only sleeping between checks — while giving call sites
// (undeploy's "wait until all deployer deletes settle") the same bounded,
// observable-by-attempt-count semantics as the original primitive.
func Wait(ctx context.Context, p Policy, check func(ctx context.Context) (bool, error)) error {
	result := Run(ctx, p, func(ctx context.Context) error {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if !done {
			return ErrWaitExhausted
		}
		return nil
	})
	if result.Success {
		return nil
	}
	return result.LastErr
}
