package crawl

import (
	"context"
	"errors"
	"time"
)

// Backoff selects how the delay between attempts grows.
type Backoff int

// Backoff modes.
const (
	// BackoffFixed waits the same delay between every attempt.
	BackoffFixed Backoff = iota

	// BackoffLinear waits delay multiplied by the attempt number.
	BackoffLinear
)

// Policy bounds a retried operation.
type Policy struct {
	// Attempts is the total number of invocations, including the first.
	Attempts int

	// Delay is the base wait between attempts.
	Delay time.Duration

	// Backoff selects fixed or linear growth of the wait.
	Backoff Backoff
}

// DefaultPolicy returns the retry policy used for field extraction:
// 3 attempts with a linear 1s, 2s backoff.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Delay: time.Second, Backoff: BackoffLinear}
}

// delay returns the wait before the next attempt. attempt is 1-based.
func (p Policy) delay(attempt int) time.Duration {
	if p.Backoff == BackoffLinear {
		return p.Delay * time.Duration(attempt)
	}
	return p.Delay
}

// Do invokes op, retrying on failure with the policy's backoff until the
// attempts are exhausted, then returns the last error. Context errors are
// never retried: cancellation propagates immediately so cleanup can run.
// The sleep between attempts is the single intentional throttle point
// protecting the remote site from repeated request pressure.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay(attempt)):
		}
	}

	return lastErr
}
