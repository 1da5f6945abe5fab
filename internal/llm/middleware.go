package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Middleware decorates a Client to inject cross-cutting concerns.
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit throttles calls to rps with the given burst. rps <= 0 disables it.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Client) Client {
		return &rateLimited{next: next, rl: newTokenBucket(rps, burst)}
	}
}

type rateLimited struct {
	next Client
	rl   *tokenBucket
}

func (c *rateLimited) Name() string { return c.next.Name() }

func (c *rateLimited) Close() error {
	c.rl.Close()
	return c.next.Close()
}

func (c *rateLimited) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return "", NewGenerationError(Generic, "rate limiter wait aborted", err)
	}
	return c.next.GenerateText(ctx, prompt)
}

// -------- Retry with exponential backoff --------

// Retry retries GenerateText up to maxAttempts with exponential backoff
// starting at baseDelay. Permanent failures (credentials, quota, safety,
// cancellation) are returned immediately.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Client) Client {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Client
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) GenerateText(ctx context.Context, prompt string) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		text, err := r.next.GenerateText(ctx, prompt)
		if err == nil {
			return text, nil
		}
		last = err
		if ge := AsGenerationError(err); ge.Permanent() {
			return "", ge
		}
		if i == r.max-1 {
			break
		}
		timer := time.NewTimer(r.base * time.Duration(1<<i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", NewGenerationError(Generic, "request cancelled", ctx.Err())
		case <-timer.C:
		}
	}
	return "", AsGenerationError(last)
}

// -------- Logging --------

// WithLogging logs request size, latency and classified failures.
func WithLogging(logger zerolog.Logger) Middleware {
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  zerolog.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) GenerateText(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	l.log.Debug().Str("client", l.next.Name()).Int("prompt_bytes", len(prompt)).Msg("llm request")
	text, err := l.next.GenerateText(ctx, prompt)
	if err != nil {
		ev := l.log.Warn().Str("client", l.next.Name()).Dur("elapsed", time.Since(start)).Err(err)
		var ge *GenerationError
		if errors.As(err, &ge) {
			ev = ev.Str("kind", string(ge.Kind))
		}
		ev.Msg("llm error")
		return text, err
	}
	l.log.Info().Str("client", l.next.Name()).Dur("elapsed", time.Since(start)).Int("response_bytes", len(text)).Msg("llm response")
	return text, nil
}
