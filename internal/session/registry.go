package session

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultMaxTracked = 10000

// Registry hands out one Counter per session id. The least recently seen
// sessions are evicted once maxTracked is exceeded.
type Registry struct {
	mu       sync.Mutex
	policy   Policy
	counters *lru.Cache[string, *Counter]
}

func NewRegistry(p Policy, maxTracked int) (*Registry, error) {
	if maxTracked <= 0 {
		maxTracked = DefaultMaxTracked
	}
	cache, err := lru.New[string, *Counter](maxTracked)
	if err != nil {
		return nil, err
	}
	return &Registry{policy: p, counters: cache}, nil
}

func (r *Registry) Policy() Policy { return r.policy }

// Counter returns the counter for id, creating it on first use.
func (r *Registry) Counter(id string) *Counter {
	id = strings.TrimSpace(id)
	if id == "" {
		id = "anonymous"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters.Get(id); ok {
		return c
	}
	c := NewCounter(r.policy)
	r.counters.Add(id, c)
	return c
}

func (r *Registry) Len() int { return r.counters.Len() }
