// Package store provides the per-batch bounded session cache described in
// §5 and a thin optional SQLite persistence layer for PMC series and
// athlete-profile history.
package store

import (
	"container/list"
	"sync"

	"trainload/internal/workout"
)

// SessionCache is a mutex-guarded, bounded least-recently-used cache of
// parsed sessions, per §5: "a per-batch cache of parsed sessions (bounded,
// LRU) is guarded by a single mutex."
type SessionCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	index    map[string]*list.Element
}

type cacheEntry struct {
	key     string
	session *workout.Workout
}

// NewSessionCache returns a cache holding at most capacity sessions.
// capacity <= 0 is treated as 1.
func NewSessionCache(capacity int) *SessionCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &SessionCache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Get returns the cached session for key and marks it most-recently-used.
func (c *SessionCache) Get(key string) (*workout.Workout, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).session, true
}

// Put inserts or updates key's session, evicting the least-recently-used
// entry if the cache is at capacity.
func (c *SessionCache) Put(key string, session *workout.Workout) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value.(*cacheEntry).session = session
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&cacheEntry{key: key, session: session})
	c.index[key] = el

	for c.ll.Len() > c.capacity {
		back := c.ll.Back()
		if back == nil {
			break
		}
		c.ll.Remove(back)
		delete(c.index, back.Value.(*cacheEntry).key)
	}
}

// Len returns the number of cached sessions.
func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
