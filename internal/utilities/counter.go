package utilities

import (
	"sync"

	"github.com/antonio-alexander/go-blog-crud/internal/data"
)

// Counter tallies cache hits and misses per key
type Counter interface {
	Read(key data.CounterKey) (hitCount, missCount int)
	ReadAll() *data.CacheCounters
	IncrementHit(key data.CounterKey) (hitCount int)
	IncrementMiss(key data.CounterKey) (missCount int)
	Reset()
}

type tally struct {
	hits   int
	misses int
}

type counter struct {
	sync.Mutex
	tallies map[data.CounterKey]*tally
}

func NewCounter() Counter {
	return &counter{tallies: make(map[data.CounterKey]*tally)}
}

func (c *counter) tally(key data.CounterKey) *tally {
	t, ok := c.tallies[key]
	if !ok {
		t = &tally{}
		c.tallies[key] = t
	}
	return t
}

// Read returns -1, -1 for a key that was never incremented
func (c *counter) Read(key data.CounterKey) (int, int) {
	c.Lock()
	defer c.Unlock()

	t, ok := c.tallies[key]
	if !ok {
		return -1, -1
	}
	return t.hits, t.misses
}

func (c *counter) ReadAll() *data.CacheCounters {
	c.Lock()
	defer c.Unlock()

	cacheCounters := &data.CacheCounters{
		CounterHits:   make(map[string]int, len(c.tallies)),
		CounterMisses: make(map[string]int, len(c.tallies)),
	}
	for key, t := range c.tallies {
		cacheCounters.CounterHits[string(key)] = t.hits
		cacheCounters.CounterMisses[string(key)] = t.misses
	}
	return cacheCounters
}

func (c *counter) Reset() {
	c.Lock()
	defer c.Unlock()

	clear(c.tallies)
}

func (c *counter) IncrementHit(key data.CounterKey) int {
	c.Lock()
	defer c.Unlock()

	t := c.tally(key)
	t.hits++
	return t.hits
}

func (c *counter) IncrementMiss(key data.CounterKey) int {
	c.Lock()
	defer c.Unlock()

	t := c.tally(key)
	t.misses++
	return t.misses
}
