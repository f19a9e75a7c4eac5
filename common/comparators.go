package common

import (
	"bytes"

	"golang.org/x/exp/constraints"
)

// KeyComparator orders Key values lexicographically.
type KeyComparator struct{}

func (c KeyComparator) Compare(a, b *Key) int {
	return bytes.Compare(a[:], b[:])
}

// OrderedComparator orders values of any naturally ordered type.
type OrderedComparator[T constraints.Ordered] struct{}

func (c OrderedComparator[T]) Compare(a, b *T) int {
	if *a < *b {
		return -1
	}
	if *a > *b {
		return 1
	}
	return 0
}

// Uint32Comparator orders uint32 values numerically.
type Uint32Comparator struct{}

func (c Uint32Comparator) Compare(a, b *uint32) int {
	if *a < *b {
		return -1
	}
	if *a > *b {
		return 1
	}
	return 0
}
