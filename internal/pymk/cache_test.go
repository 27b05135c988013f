package pymk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRU_Evicts(t *testing.T) {
	c := newLRU(2, 0)
	evicted := 0
	c.onEvict = func() { evicted++ }

	a, b, d := cacheKey{user: 1}, cacheKey{user: 2}, cacheKey{user: 3}
	c.Set(a, []Suggestion{{UserID: 10}})
	c.Set(b, []Suggestion{{UserID: 20}})
	_, ok := c.Get(a) // a becomes most recent
	assert.True(t, ok)
	c.Set(d, nil)

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 2, c.Len())
	_, ok = c.Get(b)
	assert.False(t, ok, "least recently used entry is gone")
	got, ok := c.Get(a)
	assert.True(t, ok)
	assert.Equal(t, uint64(10), got[0].UserID)
}

func TestLRU_TTL(t *testing.T) {
	now := time.Unix(1000, 0)
	c := newLRU(4, time.Minute)
	c.now = func() time.Time { return now }
	misses := 0
	c.onMiss = func() { misses++ }

	k := cacheKey{user: 1, k: 5}
	c.Set(k, []Suggestion{})
	_, ok := c.Get(k)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(k)
	assert.False(t, ok)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 0, c.Len())
}

func TestLRU_Disabled(t *testing.T) {
	c := newLRU(0, time.Minute)
	c.Set(cacheKey{user: 1}, []Suggestion{})
	_, ok := c.Get(cacheKey{user: 1})
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
