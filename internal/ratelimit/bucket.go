// Package ratelimit provides a token-bucket primitive bounding request
// rates against a single source.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Bucket is a token bucket with a fixed refill rate and burst capacity.
// Tokens refill lazily from elapsed wall-clock time at each call; there
// is no background timer. Concurrent callers are serialized by the
// underlying limiter; there is no fairness guarantee beyond call order.
type Bucket struct {
	limiter *rate.Limiter
}

// New creates a bucket refilling at ratePerSec tokens per second with
// the given burst capacity. A burst below 1 is raised to 1 so the
// bucket can ever grant a token.
func New(ratePerSec float64, burst int) *Bucket {
	if burst < 1 {
		burst = 1
	}
	return &Bucket{limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst)}
}

// Acquire blocks until n tokens are available, then debits them.
// Returns early with the context's error on cancellation.
func (b *Bucket) Acquire(ctx context.Context, n int) error {
	return b.limiter.WaitN(ctx, n)
}

// Rate returns the configured refill rate in tokens per second.
func (b *Bucket) Rate() float64 {
	return float64(b.limiter.Limit())
}

// Burst returns the maximum instantaneous allowance.
func (b *Bucket) Burst() int {
	return b.limiter.Burst()
}
