package retry

import (
	"math/rand/v2"
	"time"
)

// ExponentialBackoff doubles the delay on every attempt, capped at a maximum,
// with optional symmetric jitter.
type ExponentialBackoff struct {
	initial     time.Duration
	max         time.Duration
	maxAttempts int
	jitter      float64        // fraction of the delay, 0 disables
	random      func() float64 // [0, 1)
}

// BackoffOption configures an ExponentialBackoff.
type BackoffOption func(*ExponentialBackoff)

func WithInitialDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.initial = d }
}

func WithMaxDelay(d time.Duration) BackoffOption {
	return func(b *ExponentialBackoff) { b.max = d }
}

// WithJitter sets the jitter fraction; 0.1 spreads delays by +/-10%.
func WithJitter(j float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.jitter = j }
}

// WithRandom replaces the jitter source, mainly for tests.
func WithRandom(f func() float64) BackoffOption {
	return func(b *ExponentialBackoff) { b.random = f }
}

// NewExponentialBackoff returns a strategy allowing maxAttempts retries
// (-1 for unlimited) starting at 100ms and capped at 30s.
func NewExponentialBackoff(maxAttempts int, opts ...BackoffOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initial:     100 * time.Millisecond,
		max:         30 * time.Second,
		maxAttempts: maxAttempts,
		jitter:      0.1,
		random:      rand.Float64,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := b.initial
	for i := 0; i < attempt && delay < b.max; i++ {
		delay *= 2
	}
	if delay > b.max {
		delay = b.max
	}
	if b.jitter > 0 {
		offset := (b.random()*2 - 1) * b.jitter
		delay = time.Duration(float64(delay) * (1 + offset))
	}
	return delay
}

func (b *ExponentialBackoff) MaxAttempts() int {
	return b.maxAttempts
}
