// Package retry retries operations that fail with transient errors,
// waiting with exponential backoff between attempts.
//
// lmsseed retries only connection establishment. Batch inserts are attempted
// exactly once per pass, so a constraint violation is never replayed.
//
//	exec := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := exec.Do(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
