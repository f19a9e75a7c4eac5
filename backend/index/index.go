package index

import (
	"github.com/ordex-io/ordex/go/common"
)

const (
	// ErrNotFound is returned by Get when the key has not been added yet.
	// It is an expected miss, not a failure of the index.
	ErrNotFound = common.ConstError("index key not found")

	// ErrIndexOutOfRange is returned by GetKey when the ordinal has not been
	// assigned yet. It indicates a violated caller precondition.
	ErrIndexOutOfRange = common.ConstError("ordinal out of range")
)

// Index is an append-only enumeration of keys, mapping each newly added key
// to a unique consecutive ordinal number and supporting lookups in both
// directions. Keys are never removed and ordinals are assigned gaplessly in
// insertion order: the n-th distinct key receives ordinal n-1.
//
// The type parameter K is the key type, I the type used for ordinals.
//
// Instances are not safe for concurrent use. A host sharing an index between
// goroutines must serialize all operations externally, including reads.
type Index[K comparable, I common.Identifier] interface {

	// GetOrAdd returns the ordinal mapped to the key, assigning the next
	// free ordinal if the key is new.
	GetOrAdd(key K) (I, error)

	// Get returns the ordinal mapped to the key, or ErrNotFound.
	Get(key K) (I, error)

	// GetKey returns the key a given ordinal was assigned to, or
	// ErrIndexOutOfRange if the ordinal is not below Size().
	GetKey(ordinal I) (K, error)

	// Contains returns whether the key exists in the mapping or not.
	Contains(key K) bool

	// Size returns the number of distinct keys added so far.
	Size() I

	// GetStateHash returns the hash of the index state, covering all keys
	// in their insertion order.
	GetStateHash() (common.Hash, error)

	common.FlushAndCloser

	common.MemoryFootprintProvider
}
