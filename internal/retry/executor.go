package retry

import (
	"context"
	"time"

	"github.com/vvka-141/lmsseed/pkg/lmsseed"
)

// RetryHook is invoked before each wait; attempt is zero-indexed.
type RetryHook func(attempt int, err error, delay time.Duration)

// Executor runs an operation until it succeeds, fails fatally, or the
// strategy runs out of attempts. It is immutable and safe for concurrent use.
type Executor struct {
	classifier lmsseed.ErrorClassifier
	strategy   lmsseed.BackoffStrategy
	hook       RetryHook
}

// NewExecutor panics if classifier or strategy is nil.
func NewExecutor(classifier lmsseed.ErrorClassifier, strategy lmsseed.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// WithOnRetry returns a copy of e that calls hook before every retry.
func (e *Executor) WithOnRetry(hook RetryHook) *Executor {
	clone := *e
	clone.hook = hook
	return &clone
}

// Do runs op once plus up to MaxAttempts retries (unbounded when negative).
// It returns nil on success, the first fatal error, ctx.Err() if the context
// ends while waiting, or the last transient error once attempts are exhausted.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	err := op(ctx)
	limit := e.strategy.MaxAttempts()

	for attempt := 0; err != nil && e.classifier.IsTransient(err); attempt++ {
		if limit >= 0 && attempt >= limit {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(attempt)
		if e.hook != nil {
			e.hook(attempt, err, delay)
		}
		if waitErr := sleep(ctx, delay); waitErr != nil {
			return waitErr
		}
		err = op(ctx)
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
