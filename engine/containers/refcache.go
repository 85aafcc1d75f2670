package containers

import "sync"

type refEntry[V any] struct {
	value    V
	refCount uint32
}

// RefCache maps keys to reference counted values. An entry exists only
// while its count is above zero: the release that brings it to zero
// removes the entry and destroys the value inside the same critical
// section. Builders and the destroy callback run under the cache lock and
// must not call back into the same cache.
type RefCache[K comparable, V any] struct {
	name    string
	mutex   sync.Mutex
	entries map[K]*refEntry[V]
	destroy func(key K, value V)
}

// NewRefCache creates an empty cache. destroy may be nil.
func NewRefCache[K comparable, V any](name string, destroy func(key K, value V)) *RefCache[K, V] {
	return &RefCache[K, V]{
		name:    name,
		entries: make(map[K]*refEntry[V]),
		destroy: destroy,
	}
}

func (c *RefCache[K, V]) Name() string {
	return c.name
}

/**
 * @brief Returns the cached value for key, incrementing its reference count.
 * On a miss the value is built and inserted with a count of 1. A failed
 * build inserts nothing.
 */
func (c *RefCache[K, V]) Acquire(key K, build func() (V, error)) (V, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, ok := c.entries[key]; ok {
		e.refCount++
		return e.value, nil
	}
	v, err := build()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = &refEntry[V]{value: v, refCount: 1}
	return v, nil
}

/**
 * @brief Returns the cached value for key without touching its count. On a
 * miss the value is built and inserted with a count of 1, which stands for
 * the hold of whoever owns the key.
 * @returns the value, whether it was created by this call, and the build error.
 */
func (c *RefCache[K, V]) LoadOrCreate(key K, build func() (V, error)) (V, bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.value, false, nil
	}
	v, err := build()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.entries[key] = &refEntry[V]{value: v, refCount: 1}
	return v, true, nil
}

// AcquireExisting increments the count of a present key. Misses do nothing.
func (c *RefCache[K, V]) AcquireExisting(key K) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, ok := c.entries[key]; ok {
		e.refCount++
		return e.value, true
	}
	var zero V
	return zero, false
}

// Insert registers value under key with a count of 1. The first writer
// wins: if key is present nothing changes and false is returned.
func (c *RefCache[K, V]) Insert(key K, value V) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.entries[key]; ok {
		return false
	}
	c.entries[key] = &refEntry[V]{value: value, refCount: 1}
	return true
}

/**
 * @brief Decrements the reference count of key. At zero the entry is removed
 * and destroyed before the lock is released. Releasing an unknown key is a
 * no-op.
 * @returns true if an entry was found.
 */
func (c *RefCache[K, V]) Release(key K) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	e.refCount--
	if e.refCount == 0 {
		c.evict(key, e)
	}
	return true
}

// Remove evicts key regardless of its count.
func (c *RefCache[K, V]) Remove(key K) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.evict(key, e)
	return true
}

func (c *RefCache[K, V]) evict(key K, e *refEntry[V]) {
	delete(c.entries, key)
	if c.destroy != nil {
		c.destroy(key, e.value)
	}
}

func (c *RefCache[K, V]) Lookup(key K) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.value, true
	}
	var zero V
	return zero, false
}

// RefCount returns the count of key, 0 if absent.
func (c *RefCache[K, V]) RefCount(key K) uint32 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if e, ok := c.entries[key]; ok {
		return e.refCount
	}
	return 0
}

func (c *RefCache[K, V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}

// Keys returns a snapshot of the present keys in no particular order.
func (c *RefCache[K, V]) Keys() []K {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	keys := make([]K, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Each visits every entry under the lock. fn must not call into the cache.
func (c *RefCache[K, V]) Each(fn func(key K, value V, refCount uint32)) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for k, e := range c.entries {
		fn(k, e.value, e.refCount)
	}
}

// Purge destroys every entry. Used on shutdown.
func (c *RefCache[K, V]) Purge() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	n := len(c.entries)
	for k, e := range c.entries {
		c.evict(k, e)
	}
	return n
}
