package common

import "encoding/binary"

// KeySerializer is a Serializer of the Key type.
type KeySerializer struct{}

func (a KeySerializer) ToBytes(key Key) []byte {
	return key[:]
}
func (a KeySerializer) FromBytes(bytes []byte) Key {
	var key Key
	copy(key[:], bytes)
	return key
}
func (a KeySerializer) Size() int {
	return 32
}

// HashSerializer is a Serializer of the Hash type.
type HashSerializer struct{}

func (a HashSerializer) ToBytes(hash Hash) []byte {
	return hash[:]
}
func (a HashSerializer) FromBytes(bytes []byte) Hash {
	var hash Hash
	copy(hash[:], bytes)
	return hash
}
func (a HashSerializer) Size() int {
	return 32
}

// Identifier32Serializer is a Serializer of uint32 ordinals. Values are
// encoded big-endian so that encoded ordinals sort in numeric order.
type Identifier32Serializer struct{}

func (a Identifier32Serializer) ToBytes(value uint32) []byte {
	return binary.BigEndian.AppendUint32([]byte{}, value)
}
func (a Identifier32Serializer) FromBytes(bytes []byte) uint32 {
	return binary.BigEndian.Uint32(bytes)
}
func (a Identifier32Serializer) Size() int {
	return 4
}

// Identifier64Serializer is a Serializer of uint64 ordinals. Values are
// encoded big-endian so that encoded ordinals sort in numeric order.
type Identifier64Serializer struct{}

func (a Identifier64Serializer) ToBytes(value uint64) []byte {
	return binary.BigEndian.AppendUint64([]byte{}, value)
}
func (a Identifier64Serializer) FromBytes(bytes []byte) uint64 {
	return binary.BigEndian.Uint64(bytes)
}
func (a Identifier64Serializer) Size() int {
	return 8
}
