package crawl

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces out requests to the remote site. A token bucket enforces
// a hard ceiling on request rate, and a uniform random jitter on top keeps
// the inter-match cadence from looking mechanical. This is the crawl's only
// backpressure mechanism; it is deliberate, not adaptive.
type Throttle struct {
	limiter   *rate.Limiter
	minJitter time.Duration
	maxJitter time.Duration
}

// NewThrottle creates a Throttle allowing rps requests per second with a
// jitter drawn uniformly from [minJitter, maxJitter] after every request.
func NewThrottle(rps float64, minJitter, maxJitter time.Duration) *Throttle {
	return &Throttle{
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		minJitter: minJitter,
		maxJitter: maxJitter,
	}
}

// Wait blocks until the next request is allowed.
// Returns an error if the context is canceled before the wait completes.
func (t *Throttle) Wait(ctx context.Context) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return sleep(ctx, t.jitter())
}

// jitter returns a uniform random delay from [minJitter, maxJitter].
func (t *Throttle) jitter() time.Duration {
	if t.maxJitter <= t.minJitter {
		return t.minJitter
	}
	return t.minJitter + rand.N(t.maxJitter-t.minJitter)
}
