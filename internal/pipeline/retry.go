// Package pipeline implements the Pipeline Runtime (C9): retry policies,
// chord (fan-out/join), and the cooperative-wait primitive, grounded on
// the teacher's internal/worker.RetryWithBackoff but generalized per the
// Design Notes: "re-architect retry decorators as a generic retry policy
// descriptor {attempts, delay, backoff?, retry_on} attached to each task
// type."
package pipeline

import (
	"context"
	"time"
)

// Policy is a retry policy descriptor. Backoff of 0 (or 1.0) means a
// fixed delay, matching the lock/deploy/default/wait budgets in §5, none
// of which are exponential in the source.
type Policy struct {
	Attempts int
	Delay    time.Duration
	Backoff  float64
	// RetryOn reports whether err should trigger another attempt. A nil
	// RetryOn retries on any non-nil error.
	RetryOn func(err error) bool
}

// Named retry budgets from §5 Concurrency & Resource Model.
var (
	LockPolicy    = Policy{Attempts: 20, Delay: 5 * time.Second}
	DeployPolicy  = Policy{Attempts: 10, Delay: 20 * time.Second}
	DefaultPolicy = Policy{Attempts: 5, Delay: 10 * time.Second}
	WaitPolicy    = Policy{Attempts: 30, Delay: 10 * time.Second}
)

// Result describes the outcome of a retried operation.
type Result struct {
	Success  bool
	Attempts int
	LastErr  error
}

// Run retries operation per the policy. It retries on any error the
// RetryOn predicate accepts (or any error, if RetryOn is nil); anything
// else is returned immediately as a fatal (non-retried) failure.
func Run(ctx context.Context, p Policy, operation func(ctx context.Context) error) Result {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := p.Delay
	backoff := p.Backoff
	if backoff == 0 {
		backoff = 1.0
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := operation(ctx)
		if err == nil {
			return Result{Success: true, Attempts: attempt}
		}

		if p.RetryOn != nil && !p.RetryOn(err) {
			return Result{Success: false, Attempts: attempt, LastErr: err}
		}
		lastErr = err

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return Result{Success: false, Attempts: attempt, LastErr: ctx.Err()}
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * backoff)
		}
	}

	return Result{Success: false, Attempts: attempts, LastErr: lastErr}
}
