// ABOUTME: Retry policy for instance recreation after a failed property push
// ABOUTME: Exponential backoff from a base delay, bounded attempts

package lifecycle

import (
	"math"
	"time"
)

// Default recovery: a single attempt shortly after the failure.
const (
	DefaultMaxAttempts = 1
	DefaultRetryDelay  = 100 * time.Millisecond
	maxRetryDelay      = 5 * time.Second
)

// RetryPolicy controls recreation after teardown.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	// Backoff multiplies the delay after each failed attempt. Values below 1
	// are treated as 1.
	Backoff float64
}

// DefaultRetryPolicy returns the single-attempt policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultRetryDelay, Backoff: 1}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 0 {
		p.MaxAttempts = 0
	}
	if p.Delay <= 0 {
		p.Delay = DefaultRetryDelay
	}
	if p.Backoff < 1 {
		p.Backoff = 1
	}
	return p
}

// DelayFor returns the wait before attempt n (0-based).
func (p RetryPolicy) DelayFor(n int) time.Duration {
	p = p.normalized()
	d := float64(p.Delay) * math.Pow(p.Backoff, float64(n))
	if d > float64(maxRetryDelay) {
		d = float64(maxRetryDelay)
	}
	return time.Duration(d)
}
