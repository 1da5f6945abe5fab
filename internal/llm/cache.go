package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// WithCache memoizes successful generations by prompt hash so repeated
// questions against the same dataset skip the network round trip. Failures
// are never cached. size <= 0 disables the cache.
func WithCache(size int, ttl time.Duration) Middleware {
	return func(next Client) Client {
		if size <= 0 {
			return next
		}
		if ttl <= 0 {
			ttl = 10 * time.Minute
		}
		return &cached{next: next, lru: expirable.NewLRU[string, string](size, nil, ttl)}
	}
}

type cached struct {
	next Client
	lru  *expirable.LRU[string, string]
}

func (c *cached) Name() string { return c.next.Name() }
func (c *cached) Close() error { return c.next.Close() }

func (c *cached) GenerateText(ctx context.Context, prompt string) (string, error) {
	key := promptKey(c.next.Name(), prompt)
	if text, ok := c.lru.Get(key); ok {
		return text, nil
	}
	text, err := c.next.GenerateText(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.lru.Add(key, text)
	return text, nil
}

func promptKey(model, prompt string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
