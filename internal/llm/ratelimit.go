package llm

import (
	"context"
	"sync"
	"time"
)

// tokenBucket refills lazily: each acquisition settles the tokens earned
// since the previous one, so no refill goroutine runs. The balance may go
// negative; the deficit is the queue of callers still waiting.
type tokenBucket struct {
	mu     sync.Mutex
	rate   float64
	burst  float64
	tokens float64
	last   time.Time

	closed    chan struct{}
	closeOnce sync.Once
}

// newTokenBucket returns nil when rps <= 0; a nil bucket never blocks.
func newTokenBucket(rps float64, burst int) *tokenBucket {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &tokenBucket{
		rate:   rps,
		burst:  float64(burst),
		tokens: float64(burst),
		last:   time.Now(),
		closed: make(chan struct{}),
	}
}

// reserve takes one token and reports how long the caller must wait for it.
func (b *tokenBucket) reserve(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = min(b.burst, b.tokens+elapsed*b.rate)
		b.last = now
	}
	b.tokens--
	if b.tokens >= 0 {
		return 0
	}
	return time.Duration(-b.tokens / b.rate * float64(time.Second))
}

// release hands back a reserved token whose caller gave up waiting.
func (b *tokenBucket) release() {
	b.mu.Lock()
	b.tokens = min(b.burst, b.tokens+1)
	b.mu.Unlock()
}

// Wait blocks until the caller's token is due, the context ends, or the
// bucket is closed. Every call is counted in LimiterAcquiresTotal.
func (b *tokenBucket) Wait(ctx context.Context) error {
	if b == nil {
		return nil
	}
	start := time.Now()
	delay := b.reserve(start)
	if delay <= 0 {
		LimiterAcquiresTotal.WithLabelValues(limiterImmediate).Inc()
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	var err error
	select {
	case <-timer.C:
	case <-ctx.Done():
		err = ctx.Err()
	case <-b.closed:
		err = context.Canceled
	}
	LimiterWaitSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		b.release()
		LimiterAcquiresTotal.WithLabelValues(limiterAborted).Inc()
		return err
	}
	LimiterAcquiresTotal.WithLabelValues(limiterWaited).Inc()
	return nil
}

// Close wakes pending waiters with context.Canceled. Safe to call more than
// once.
func (b *tokenBucket) Close() {
	if b == nil {
		return
	}
	b.closeOnce.Do(func() { close(b.closed) })
}
