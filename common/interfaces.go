package common

import "io"

// Flusher is any type that can push its buffered state to its backing storage.
type Flusher interface {
	Flush() error
}

type FlushAndCloser interface {
	Flusher
	io.Closer
}

type MemoryFootprintProvider interface {
	GetMemoryFootprint() *MemoryFootprint
}

// Comparator defines a total order over the type T. Compare returns a value
// below, equal to, or above zero when a is less than, equal to, or greater
// than b, respectively.
type Comparator[T any] interface {
	Compare(a, b *T) int
}

// Serializer converts a value of type T to and from its binary form.
// The binary form is expected to have a fixed length.
type Serializer[T any] interface {
	// ToBytes converts the input value to its binary representation.
	ToBytes(T) []byte
	// FromBytes restores a value from its binary representation.
	FromBytes([]byte) T
	// Size returns the length of the binary representation in bytes.
	Size() int
}
