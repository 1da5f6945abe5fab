package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterEnforcesCap(t *testing.T) {
	c := NewCounter(Policy{MaxRequests: 3})
	for i := 0; i < 3; i++ {
		require.NoError(t, c.Take())
	}
	assert.ErrorIs(t, c.Take(), ErrLimitReached)
	assert.Equal(t, 0, c.Remaining())
	assert.Equal(t, 3, c.Used())
}

func TestCounterWindowResets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCounter(Policy{MaxRequests: 1, Window: time.Hour})
	c.now = func() time.Time { return now }

	require.NoError(t, c.Take())
	assert.ErrorIs(t, c.Take(), ErrLimitReached)

	now = now.Add(59 * time.Minute)
	assert.ErrorIs(t, c.Take(), ErrLimitReached)

	now = now.Add(time.Minute)
	assert.Equal(t, 1, c.Remaining())
	assert.NoError(t, c.Take())
}

func TestCounterUnlimitedAndNil(t *testing.T) {
	c := NewCounter(Policy{})
	for i := 0; i < 500; i++ {
		require.NoError(t, c.Take())
	}
	assert.Equal(t, -1, c.Remaining())

	var none *Counter
	assert.NoError(t, none.Take())
	assert.Equal(t, -1, none.Remaining())
}

func TestCounterConcurrentTakes(t *testing.T) {
	c := NewCounter(Policy{MaxRequests: DefaultMaxRequests})
	var wg sync.WaitGroup
	var mu sync.Mutex
	granted, denied := 0, 0
	for i := 0; i < 250; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Take()
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted++
			case errors.Is(err, ErrLimitReached):
				denied++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, DefaultMaxRequests, granted)
	assert.Equal(t, 150, denied)
}

func TestRegistryIsolatesSessions(t *testing.T) {
	r, err := NewRegistry(Policy{MaxRequests: 1}, 10)
	require.NoError(t, err)

	require.NoError(t, r.Counter("a").Take())
	assert.ErrorIs(t, r.Counter("a").Take(), ErrLimitReached)
	assert.NoError(t, r.Counter("b").Take())
	assert.Same(t, r.Counter(" a "), r.Counter("a"))
	assert.Same(t, r.Counter(""), r.Counter("anonymous"))
}

func TestRegistryEvictsOldest(t *testing.T) {
	r, err := NewRegistry(DefaultPolicy(), 2)
	require.NoError(t, err)
	first := r.Counter("one")
	r.Counter("two")
	r.Counter("three")
	assert.Equal(t, 2, r.Len())
	assert.NotSame(t, first, r.Counter("one"))
}

func TestRegistryConcurrentGetOrCreate(t *testing.T) {
	r, err := NewRegistry(Policy{MaxRequests: 50}, 100)
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Counter("shared").Take()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, r.Counter("shared").Used())
}
