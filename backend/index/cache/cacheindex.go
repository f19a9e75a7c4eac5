package cache

import (
	"unsafe"

	"github.com/ordex-io/ordex/go/backend/index"
	"github.com/ordex-io/ordex/go/common"
)

// Index wraps another index with LRU caches for both lookup directions.
type Index[K comparable, I common.Identifier] struct {
	wrapped  index.Index[K, I]
	ordinals *common.Cache[K, I]
	keys     *common.Cache[I, K]
}

// NewIndex constructs a new Index instance, which either delegates to the
// wrapped index or serves data from the caches if present.
func NewIndex[K comparable, I common.Identifier](wrapped index.Index[K, I], cacheCapacity int) *Index[K, I] {
	return &Index[K, I]{
		wrapped:  wrapped,
		ordinals: common.NewCache[K, I](cacheCapacity),
		keys:     common.NewCache[I, K](cacheCapacity),
	}
}

// GetOrAdd returns the ordinal mapped to the key, assigning the next free
// ordinal if the key is new.
func (m *Index[K, I]) GetOrAdd(key K) (idx I, err error) {
	idx, exists := m.ordinals.Get(key)
	if !exists {
		idx, err = m.wrapped.GetOrAdd(key)
		if err != nil {
			return
		}
		m.ordinals.Set(key, idx)
		m.keys.Set(idx, key)
	}
	return
}

// Get returns the ordinal mapped to the key, or index.ErrNotFound.
func (m *Index[K, I]) Get(key K) (idx I, err error) {
	idx, exists := m.ordinals.Get(key)
	if !exists {
		idx, err = m.wrapped.Get(key)
		if err == nil {
			m.ordinals.Set(key, idx)
			m.keys.Set(idx, key)
		}
	}
	return
}

// GetKey returns the key a given ordinal was assigned to, or
// index.ErrIndexOutOfRange.
func (m *Index[K, I]) GetKey(ordinal I) (key K, err error) {
	key, exists := m.keys.Get(ordinal)
	if !exists {
		key, err = m.wrapped.GetKey(ordinal)
		if err == nil {
			m.keys.Set(ordinal, key)
			m.ordinals.Set(key, ordinal)
		}
	}
	return
}

// Contains returns whether the key exists in the mapping or not.
func (m *Index[K, I]) Contains(key K) (exists bool) {
	_, exists = m.ordinals.Get(key)
	if !exists {
		if idx, err := m.wrapped.Get(key); err == nil {
			m.ordinals.Set(key, idx)
			m.keys.Set(idx, key)
			exists = true
		}
	}
	return
}

// Size returns the number of distinct keys added so far.
func (m *Index[K, I]) Size() I {
	return m.wrapped.Size()
}

// GetStateHash returns the index hash.
func (m *Index[K, I]) GetStateHash() (common.Hash, error) {
	return m.wrapped.GetStateHash()
}

// Flush pushes buffered write operations of the wrapped index to disk.
func (m *Index[K, I]) Flush() error {
	return m.wrapped.Flush()
}

// Close closes the wrapped index.
func (m *Index[K, I]) Close() error {
	return m.wrapped.Close()
}

// GetMemoryFootprint provides the size of the index in memory in bytes.
func (m *Index[K, I]) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*m))
	mf.AddChild("ordinalsCache", m.ordinals.GetMemoryFootprint(0))
	mf.AddChild("keysCache", m.keys.GetMemoryFootprint(0))
	mf.AddChild("sourceIndex", m.wrapped.GetMemoryFootprint())
	return mf
}
