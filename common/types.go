package common

// Identifier is the type constraint for ordinal numbers assigned by indexes.
type Identifier interface {
	uint64 | uint32
}

// HashSize is the byte length of the Hash type.
const HashSize = 32

// Hash is a 32 byte hash value.
type Hash [HashSize]byte

func (h Hash) ToBytes() []byte {
	return h[:]
}

// Key is a fixed-size 32 byte index key.
type Key [32]byte

func (k Key) ToBytes() []byte {
	return k[:]
}
