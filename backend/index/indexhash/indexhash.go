package indexhash

import (
	"crypto/sha256"
	"unsafe"

	"github.com/ordex-io/ordex/go/common"
)

// keysBufferCap is the initial capacity of the dirty keys list, preventing
// frequent re-allocations.
const keysBufferCap = 1000

// IndexHash accumulates keys added to an index and folds them into a
// recursive hash on demand. The hash starts as a 32 byte zero value; every
// commit extends it as H := sha256(H ++ key) for each accumulated key in
// insertion order, then clears the accumulation buffer. The resulting chain
// commits to the full insertion history of the index.
type IndexHash[K any] struct {
	hash       common.Hash
	keys       []K
	serializer common.Serializer[K]
}

// New initialises an IndexHash with the zero hash and no pending keys.
func New[K any](serializer common.Serializer[K]) *IndexHash[K] {
	return &IndexHash[K]{
		keys:       make([]K, 0, keysBufferCap),
		serializer: serializer,
	}
}

// Init creates a new instance continuing from the given hash.
func Init[K any](hash common.Hash, serializer common.Serializer[K]) *IndexHash[K] {
	hi := New[K](serializer)
	hi.hash = hash
	return hi
}

// AddKey accumulates a key to be hashed as part of the next commit.
func (hi *IndexHash[K]) AddKey(key K) {
	hi.keys = append(hi.keys, key)
}

// Commit folds the accumulated keys into the hash and returns it.
func (hi *IndexHash[K]) Commit() (common.Hash, error) {
	h := sha256.New()
	current := hi.hash[:]
	for _, key := range hi.keys {
		h.Reset()
		if _, err := h.Write(current); err != nil {
			return common.Hash{}, err
		}
		if _, err := h.Write(hi.serializer.ToBytes(key)); err != nil {
			return common.Hash{}, err
		}
		current = h.Sum(nil)
	}

	copy(hi.hash[:], current)
	hi.keys = hi.keys[0:0]

	return hi.hash, nil
}

// Clear resets the hash to its initial state, dropping any pending keys.
func (hi *IndexHash[K]) Clear() {
	hi.hash = common.Hash{}
	hi.keys = hi.keys[0:0]
}

func (hi *IndexHash[K]) GetMemoryFootprint() *common.MemoryFootprint {
	var k K
	selfSize := unsafe.Sizeof(*hi)
	keySize := unsafe.Sizeof(k)
	return common.NewMemoryFootprint(selfSize + uintptr(cap(hi.keys))*keySize)
}
