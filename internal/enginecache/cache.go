// Package enginecache provides a bounded least-recently-used cache of
// expensive engine instances.
//
// Every value created by the cache is released exactly once: when it is
// evicted, or when the cache is cleared. Values handed out through a Lease
// are pinned; if a pinned value is evicted its release is deferred until
// the last lease on it ends.
package enginecache

import (
	"container/list"
	"errors"
	"sync"
)

// ErrClosed is returned by Acquire after Close.
var ErrClosed = errors.New("engine cache closed")

// CreateFunc builds the value for a key on a cache miss.
type CreateFunc[K comparable, V any] func(key K) (V, error)

// ReleaseFunc frees a value that left the cache.
type ReleaseFunc[K comparable, V any] func(key K, value V)

type entry[K comparable, V any] struct {
	key      K
	value    V
	refs     int
	evicted  bool
	released bool
}

// Cache maps keys to lazily created values, holding at most capacity
// resident entries. All methods are safe for concurrent use.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	create   CreateFunc[K, V]
	release  ReleaseFunc[K, V]
	entries  map[K]*list.Element
	order    *list.List // front is most recently used
	closed   bool
	pending  int // evicted entries waiting for their leases to end
}

// New creates a cache. A capacity below 1 is treated as 1.
func New[K comparable, V any](capacity int, create CreateFunc[K, V], release ReleaseFunc[K, V]) *Cache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[K, V]{
		capacity: capacity,
		create:   create,
		release:  release,
		entries:  make(map[K]*list.Element, capacity+1),
		order:    list.New(),
	}
}

// Lease pins a cached value until Release is called.
type Lease[K comparable, V any] struct {
	cache *Cache[K, V]
	entry *entry[K, V]
	once  sync.Once
}

// Key returns the key the lease was acquired for.
func (l *Lease[K, V]) Key() K {
	return l.entry.key
}

// Value returns the pinned value.
func (l *Lease[K, V]) Value() V {
	return l.entry.value
}

// Release unpins the value. Extra calls are no-ops.
func (l *Lease[K, V]) Release() {
	l.once.Do(func() {
		l.cache.unpin(l.entry)
	})
}

// Acquire returns a lease on the value for key, creating it on a miss and
// marking it most recently used. Inserting past capacity evicts the least
// recently used entry other than the new one. A failed create leaves the
// cache unchanged.
func (c *Cache[K, V]) Acquire(key K) (*Lease[K, V], error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}

	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		e := el.Value.(*entry[K, V])
		e.refs++
		c.mu.Unlock()
		return &Lease[K, V]{cache: c, entry: e}, nil
	}

	// Creation happens under the lock so at most one value exists per key.
	value, err := c.create(key)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}

	e := &entry[K, V]{key: key, value: value, refs: 1}
	inserted := c.order.PushFront(e)
	c.entries[key] = inserted

	var drop []*entry[K, V]
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == inserted {
			break
		}
		if d := c.evictLocked(oldest); d != nil {
			drop = append(drop, d)
		}
	}
	c.mu.Unlock()

	c.releaseAll(drop)
	return &Lease[K, V]{cache: c, entry: e}, nil
}

// Get returns the value for key without pinning it. The value may be
// released by a later eviction; use Acquire when the value is used after
// other cache calls.
func (c *Cache[K, V]) Get(key K) (V, error) {
	lease, err := c.Acquire(key)
	if err != nil {
		var zero V
		return zero, err
	}
	defer lease.Release()
	return lease.Value(), nil
}

// Contains reports whether key is resident, without touching its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Pending returns the number of evicted entries whose release is deferred
// until their last lease ends.
func (c *Cache[K, V]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Keys returns resident keys from most to least recently used.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]K, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry[K, V]).key)
	}
	return keys
}

// Clear evicts every entry. Unpinned values are released immediately.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	drop := c.clearLocked()
	c.mu.Unlock()
	c.releaseAll(drop)
}

// Close clears the cache and makes further Acquire calls fail.
func (c *Cache[K, V]) Close() {
	c.mu.Lock()
	c.closed = true
	drop := c.clearLocked()
	c.mu.Unlock()
	c.releaseAll(drop)
}

func (c *Cache[K, V]) clearLocked() []*entry[K, V] {
	var drop []*entry[K, V]
	for el := c.order.Back(); el != nil; el = c.order.Back() {
		if d := c.evictLocked(el); d != nil {
			drop = append(drop, d)
		}
	}
	return drop
}

// evictLocked removes el and returns its entry if it can be released now.
func (c *Cache[K, V]) evictLocked(el *list.Element) *entry[K, V] {
	e := c.order.Remove(el).(*entry[K, V])
	delete(c.entries, e.key)
	e.evicted = true
	if e.refs > 0 {
		c.pending++
		return nil
	}
	e.released = true
	return e
}

func (c *Cache[K, V]) unpin(e *entry[K, V]) {
	c.mu.Lock()
	e.refs--
	var drop []*entry[K, V]
	if e.refs == 0 && e.evicted && !e.released {
		e.released = true
		c.pending--
		drop = append(drop, e)
	}
	c.mu.Unlock()
	c.releaseAll(drop)
}

func (c *Cache[K, V]) releaseAll(drop []*entry[K, V]) {
	if c.release == nil {
		return
	}
	for _, e := range drop {
		c.release(e.key, e.value)
	}
}
