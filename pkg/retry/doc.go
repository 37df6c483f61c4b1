// Package retry re-runs an operation a bounded number of times.
//
// Only transient failures (transport errors, 5xx, 429) are retried; anything
// else, including 404s and parse errors, is returned on the first attempt.
//
//	err := retry.Do(ctx, func() error {
//		return fetch()
//	}, retry.Config{MaxAttempts: 3, Backoff: &retry.ConstantBackoff{Delay: 2 * time.Second}})
package retry
