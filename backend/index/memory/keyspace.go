package memory

import (
	"math/bits"
	"unsafe"

	"github.com/ordex-io/ordex/go/common"
)

// keySpace is the ordinal → key side of the index: a growable sequence
// holding every added key in insertion order. Slots [0, size) hold keys,
// the remaining capacity is padded with the empty sentinel supplied at
// construction. The capacity never shrinks.
type keySpace[K any, I common.Identifier] struct {
	keys  []K // length equals the current capacity
	empty K
	size  I
}

func newKeySpace[K any, I common.Identifier](empty K) *keySpace[K, I] {
	return &keySpace[K, I]{
		keys:  []K{empty},
		empty: empty,
	}
}

// at returns a pointer to the key assigned to the given ordinal.
// The ordinal must be below size.
func (s *keySpace[K, I]) at(ordinal I) *K {
	return &s.keys[ordinal]
}

// get returns the key assigned to the given ordinal, or false if the
// ordinal has not been assigned yet.
func (s *keySpace[K, I]) get(ordinal I) (K, bool) {
	if ordinal >= s.size {
		return s.empty, false
	}
	return s.keys[ordinal], true
}

// getKeys returns the keys assigned to ordinals [from, to) in order.
// The range must be within [0, size).
func (s *keySpace[K, I]) getKeys(from, to int) []K {
	res := make([]K, to-from)
	copy(res, s.keys[from:to])
	return res
}

// append stores the key in the next free slot and returns its ordinal,
// growing the backing capacity if all slots are taken.
func (s *keySpace[K, I]) append(key K) I {
	if uint64(s.size) == uint64(len(s.keys)) {
		s.grow()
	}
	ordinal := s.size
	s.keys[ordinal] = key
	s.size++
	if s.size == 0 {
		panic("key space exhausted, ordinal type overflow")
	}
	return ordinal
}

// grow extends the backing capacity to the next boundary of the form
// ((n >> b) + 1) << b, where b is one position below n's highest set bit.
// Capacities follow 1, 2, 3, 4, 6, 8, 12, 16, 24, ... - every step adds
// between a quarter and a half of the current capacity, keeping appends
// amortized O(1) while bounding the unused reserve.
func (s *keySpace[K, I]) grow() {
	n := len(s.keys)
	shift := bits.Len(uint(n)) - 2
	if shift < 0 {
		shift = 0
	}
	m := ((n >> shift) + 1) << shift
	if m <= n {
		panic("key space exhausted, cannot grow capacity")
	}

	grown := make([]K, m)
	copy(grown, s.keys)
	for i := n; i < m; i++ {
		grown[i] = s.empty
	}
	s.keys = grown
}

func (s *keySpace[K, I]) GetMemoryFootprint() *common.MemoryFootprint {
	var k K
	selfSize := unsafe.Sizeof(*s)
	slotSize := unsafe.Sizeof(k)
	return common.NewMemoryFootprint(selfSize + uintptr(len(s.keys))*slotSize)
}
