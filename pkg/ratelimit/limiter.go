package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Wait blocks until the rate limit allows another request or ctx is done
	Wait(ctx context.Context) error
}

// Delay spaces requests at least interval apart. A zero interval never blocks.
type Delay struct {
	limiter *rate.Limiter
}

// NewDelay creates a limiter allowing one request per interval
func NewDelay(interval time.Duration) *Delay {
	if interval <= 0 {
		return &Delay{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Delay{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request slot
func (d *Delay) Wait(ctx context.Context) error {
	return d.limiter.Wait(ctx)
}
