// Package session tracks per-session request budgets. Counters are owned by
// a Registry keyed by session id; nothing here is process-global.
package session

import (
	"errors"
	"sync"
	"time"
)

var ErrLimitReached = errors.New("session request limit reached")

const DefaultMaxRequests = 100

// Policy bounds how many requests a session may make. MaxRequests <= 0 means
// unlimited. Window 0 means the budget never resets; otherwise it resets
// once Window has elapsed since the first request of the current window.
type Policy struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

func DefaultPolicy() Policy {
	return Policy{MaxRequests: DefaultMaxRequests}
}

type Counter struct {
	mu          sync.Mutex
	policy      Policy
	used        int
	windowStart time.Time
	now         func() time.Time
}

func NewCounter(p Policy) *Counter {
	return &Counter{policy: p, now: time.Now}
}

// Take reserves one request. A nil counter never limits.
func (c *Counter) Take() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollLocked()
	if c.policy.MaxRequests > 0 && c.used >= c.policy.MaxRequests {
		return ErrLimitReached
	}
	if c.used == 0 {
		c.windowStart = c.now()
	}
	c.used++
	return nil
}

// Remaining returns the requests left in the current window, or -1 when the
// policy is unlimited.
func (c *Counter) Remaining() int {
	if c == nil || c.policy.MaxRequests <= 0 {
		return -1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollLocked()
	return c.policy.MaxRequests - c.used
}

// Used returns the requests taken in the current window.
func (c *Counter) Used() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rollLocked()
	return c.used
}

func (c *Counter) rollLocked() {
	if c.policy.Window <= 0 || c.used == 0 {
		return
	}
	if c.now().Sub(c.windowStart) >= c.policy.Window {
		c.used = 0
		c.windowStart = time.Time{}
	}
}
