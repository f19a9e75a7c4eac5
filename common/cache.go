package common

import "unsafe"

// Cache is an LRU memory overlay for key-value pairs.
type Cache[K comparable, V any] struct {
	cache    map[K]*entry[K, V]
	capacity int
	head     *entry[K, V]
	tail     *entry[K, V]
}

// entry is a cache item wrapping a key, a value and LRU list pointers.
type entry[K comparable, V any] struct {
	key        K
	val        V
	prev, next *entry[K, V]
}

// NewCache returns a new instance with the given fixed capacity.
func NewCache[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		cache:    make(map[K]*entry[K, V], capacity),
		capacity: capacity,
	}
}

// Get returns a value from the cache or false. A hit marks the entry used.
func (c *Cache[K, V]) Get(key K) (val V, exists bool) {
	item, exists := c.cache[key]
	if exists {
		val = item.val
		c.touch(item)
	}
	return
}

// Set associates a key to a value. If the key is already present, the value
// is updated and the entry marked as used. Adding a new entry beyond the
// capacity evicts the least recently used one.
func (c *Cache[K, V]) Set(key K, val V) {
	item, exists := c.cache[key]
	if !exists {
		if len(c.cache) >= c.capacity {
			c.dropLast()
		}

		item = &entry[K, V]{key: key}
		c.cache[key] = item

		item.next = c.head
		if c.head != nil {
			c.head.prev = item
		}
		c.head = item
		if c.tail == nil {
			c.tail = c.head
		}
	}

	item.val = val
	c.touch(item)
}

// Clear removes all cached entries.
func (c *Cache[K, V]) Clear() {
	c.cache = make(map[K]*entry[K, V], c.capacity)
	c.head = nil
	c.tail = nil
}

// touch moves the entry to the front of the LRU queue.
func (c *Cache[K, V]) touch(item *entry[K, V]) {
	if item == c.head {
		return
	}

	item.prev.next = item.next
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		c.tail = item.prev
	}

	item.prev = nil
	item.next = c.head
	c.head.prev = item
	c.head = item
}

// dropLast evicts the least recently used entry.
func (c *Cache[K, V]) dropLast() {
	if c.tail == nil {
		return
	}

	delete(c.cache, c.tail.key)
	c.tail = c.tail.prev
	if c.tail != nil {
		c.tail.next = nil
	} else {
		c.head = nil
	}
}

// GetMemoryFootprint provides the size of the cache in memory in bytes.
func (c *Cache[K, V]) GetMemoryFootprint(referencedValueSize uintptr) *MemoryFootprint {
	selfSize := unsafe.Sizeof(*c)
	entrySize := unsafe.Sizeof(entry[K, V]{})
	size := selfSize + uintptr(c.capacity)*(entrySize+referencedValueSize)
	return NewMemoryFootprint(size)
}
