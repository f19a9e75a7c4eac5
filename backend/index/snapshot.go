package index

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/ordex-io/ordex/go/backend"
	"github.com/ordex-io/ordex/go/common"
)

// ---------------------------------- Proof -----------------------------------

// Proof is the proof type used by index snapshots. Each part of an index
// snapshot covers a range of keys in insertion order; its proof contains the
// state hash of the index before the first and after the last key of that
// range was added. The root proof of a full snapshot is the pair of the zero
// hash and the hash after the last added key.
type Proof struct {
	before, after common.Hash
}

func NewProof(before, after common.Hash) *Proof {
	return &Proof{before, after}
}

func createProofFromData(data []byte) (*Proof, error) {
	if len(data) != common.HashSize*2 {
		return nil, fmt.Errorf("invalid encoding of index proof, invalid number of bytes")
	}
	var before, after common.Hash
	copy(before[:], data[0:])
	copy(after[:], data[common.HashSize:])
	return &Proof{before, after}, nil
}

func (p *Proof) Equal(proof backend.Proof) bool {
	other, ok := proof.(*Proof)
	return ok && other.before == p.before && other.after == p.after
}

func (p *Proof) ToBytes() []byte {
	res := make([]byte, 0, common.HashSize*2)
	res = append(res, p.before.ToBytes()...)
	res = append(res, p.after.ToBytes()...)
	return res
}

func (p *Proof) GetBeforeHash() common.Hash {
	return p.before
}

func (p *Proof) GetAfterHash() common.Hash {
	return p.after
}

// ----------------------------------- Part -----------------------------------

// maxBytesPerPart is the approximate size aimed for per part.
const maxBytesPerPart = 4096

// GetKeysPerPart computes the number of keys to be stored per part.
func GetKeysPerPart[K any](serializer common.Serializer[K]) int {
	return maxBytesPerPart / serializer.Size()
}

// Part is a part of an index snapshot covering a consecutive range of keys
// in their insertion order. The keys stored in a part total up to
// approximately maxBytesPerPart.
type Part[K comparable] struct {
	serializer common.Serializer[K]
	keys       []K
}

func createPartFromData[K comparable](serializer common.Serializer[K], data []byte) (*Part[K], error) {
	if len(data)%serializer.Size() != 0 {
		return nil, fmt.Errorf("invalid encoding of index part, invalid encoding of keys")
	}

	keys := make([]K, 0, len(data)/serializer.Size())
	for len(data) > 0 {
		keys = append(keys, serializer.FromBytes(data[0:serializer.Size()]))
		data = data[serializer.Size():]
	}

	return &Part[K]{serializer, keys}, nil
}

func (p *Part[K]) ToBytes() []byte {
	res := make([]byte, 0, len(p.keys)*p.serializer.Size())
	for _, key := range p.keys {
		res = append(res, p.serializer.ToBytes(key)...)
	}
	return res
}

func (p *Part[K]) GetKeys() []K {
	return p.keys
}

// --------------------------------- Snapshot ---------------------------------

// SnapshotSource is the interface to be implemented by Index implementations
// to provide snapshot data. It is a reduced version of the full Snapshot
// interface, freeing implementations from common requirements.
type SnapshotSource[K comparable] interface {
	// GetHash returns the state hash of the index at the moment the given
	// number of keys had been added. Only part boundaries must be supported.
	GetHash(keyHeight int) (common.Hash, error)
	// GetKeys returns the keys assigned to ordinals [from, to) in order.
	GetKeys(from, to int) ([]K, error)
	// Release frees resources held for the snapshot.
	Release() error
}

// Snapshot is the snapshot format shared by all index implementations. Each
// part contains a fixed-length range of keys to bound the computation,
// memory, network and storage costs of processing a single part.
type Snapshot[K comparable] struct {
	serializer common.Serializer[K]
	proof      *Proof            // The root proof of the snapshot.
	numKeys    int               // The number of keys at snapshot creation.
	source     SnapshotSource[K] // Abstract access to the snapshotted index.
}

// CreateSnapshotFromIndex creates a new index snapshot backed by the provided
// source. It is intended to be used by Index implementations when creating a
// new snapshot.
func CreateSnapshotFromIndex[K comparable](serializer common.Serializer[K], hash common.Hash, numKeys int, source SnapshotSource[K]) *Snapshot[K] {
	return &Snapshot[K]{serializer, &Proof{common.Hash{}, hash}, numKeys, source}
}

// CreateSnapshotFromData creates a new index snapshot backed by the provided
// raw snapshot data. It is intended to be used by Index implementations to
// interpret snapshot data during restoration.
func CreateSnapshotFromData[K comparable](serializer common.Serializer[K], data backend.SnapshotData) (*Snapshot[K], error) {
	metadata, err := data.GetMetaData()
	if err != nil {
		return nil, err
	}

	// Metadata contains the after-hash of the root proof and 8 bytes for the
	// number of keys.
	if len(metadata) != common.HashSize+8 {
		return nil, fmt.Errorf("invalid index snapshot metadata encoding, invalid number of bytes")
	}

	var after common.Hash
	copy(after[:], metadata[0:common.HashSize])
	numKeys := int(binary.LittleEndian.Uint64(metadata[common.HashSize:]))

	return &Snapshot[K]{serializer, &Proof{common.Hash{}, after}, numKeys, &sourceFromData[K]{serializer, numKeys, after, data}}, nil
}

func (s *Snapshot[K]) GetRootProof() backend.Proof {
	return s.proof
}

func (s *Snapshot[K]) GetNumParts() int {
	keysPerPart := GetKeysPerPart(s.serializer)
	res := s.numKeys / keysPerPart
	if s.numKeys%keysPerPart > 0 {
		res += 1
	}
	return res
}

func (s *Snapshot[K]) GetProof(partNumber int) (backend.Proof, error) {
	keysPerPart := GetKeysPerPart(s.serializer)
	if partNumber*keysPerPart > s.numKeys {
		return nil, fmt.Errorf("no such part")
	}

	before, err := s.source.GetHash(partNumber * keysPerPart)
	if err != nil {
		return nil, err
	}
	end := (partNumber + 1) * keysPerPart
	if end > s.numKeys {
		end = s.numKeys
	}
	after, err := s.source.GetHash(end)
	if err != nil {
		return nil, err
	}

	return &Proof{before, after}, nil
}

func (s *Snapshot[K]) GetPart(partNumber int) (backend.Part, error) {
	keysPerPart := GetKeysPerPart(s.serializer)
	from := keysPerPart * partNumber
	to := keysPerPart * (partNumber + 1)
	if to > s.numKeys {
		to = s.numKeys
	}

	keys, err := s.source.GetKeys(from, to)
	if err != nil {
		return nil, err
	}

	return &Part[K]{s.serializer, keys}, nil
}

func (s *Snapshot[K]) GetData() backend.SnapshotData {
	return s
}

func (s *Snapshot[K]) Release() error {
	return s.source.Release()
}

func (s *Snapshot[K]) GetMetaData() ([]byte, error) {
	res := make([]byte, 0, common.HashSize+8)
	res = append(res, s.proof.after[:]...)
	res = binary.LittleEndian.AppendUint64(res, uint64(s.numKeys))
	return res, nil
}

func (s *Snapshot[K]) GetProofData(partNumber int) ([]byte, error) {
	proof, err := s.GetProof(partNumber)
	if err != nil {
		return nil, err
	}
	return proof.ToBytes(), nil
}

func (s *Snapshot[K]) GetPartData(partNumber int) ([]byte, error) {
	part, err := s.GetPart(partNumber)
	if err != nil {
		return nil, err
	}
	return part.ToBytes(), nil
}

// sourceFromData is an implementation of SnapshotSource adapting a
// SnapshotData to the interface required by the Snapshot implementation.
type sourceFromData[K comparable] struct {
	serializer common.Serializer[K]
	numKeys    int
	endHash    common.Hash
	source     backend.SnapshotData
}

func (s *sourceFromData[K]) GetHash(keyHeight int) (common.Hash, error) {
	if keyHeight == 0 {
		return common.Hash{}, nil
	}
	if keyHeight == s.numKeys {
		return s.endHash, nil
	}
	if keyHeight > s.numKeys {
		return common.Hash{}, fmt.Errorf("invalid key height %d, larger than source height %d", keyHeight, s.numKeys)
	}

	keysPerPart := GetKeysPerPart(s.serializer)
	if keyHeight%keysPerPart != 0 {
		return common.Hash{}, fmt.Errorf("invalid key height %d, can only reproduce hash at part boundary", keyHeight)
	}

	data, err := s.source.GetProofData(keyHeight / keysPerPart)
	if err != nil {
		return common.Hash{}, err
	}

	proof, err := createProofFromData(data)
	if err != nil {
		return common.Hash{}, err
	}
	return proof.before, nil
}

func (s *sourceFromData[K]) GetKeys(from, to int) ([]K, error) {
	keysPerPart := GetKeysPerPart(s.serializer)
	if from%keysPerPart != 0 {
		return nil, fmt.Errorf("invalid key range, can only start at part boundary")
	}
	if to < from {
		return nil, fmt.Errorf("invalid key range, to smaller than from")
	}
	if to-from > keysPerPart {
		return nil, fmt.Errorf("invalid key range, must fit in a single part")
	}

	data, err := s.source.GetPartData(from / keysPerPart)
	if err != nil {
		return nil, err
	}

	part, err := createPartFromData(s.serializer, data)
	if err != nil {
		return nil, err
	}
	if len(part.keys) < to-from {
		return nil, fmt.Errorf("invalid key range, not enough keys in part")
	}
	return part.keys[0 : to-from], nil
}

func (s *sourceFromData[K]) Release() error {
	return nil
}

// ----------------------------- SnapshotVerifier -----------------------------

type snapshotVerifier[K comparable] struct {
	serializer common.Serializer[K]
}

// CreateSnapshotVerifier produces a verifier checking the proof chain and
// part contents of index snapshot data.
func CreateSnapshotVerifier[K comparable](serializer common.Serializer[K]) backend.SnapshotVerifier {
	return &snapshotVerifier[K]{serializer}
}

func (v *snapshotVerifier[K]) VerifyRootProof(data backend.SnapshotData) (backend.Proof, error) {
	snapshot, err := CreateSnapshotFromData(v.serializer, data)
	if err != nil {
		return nil, err
	}

	// Check that the proofs of consecutive parts are properly chained.
	cur := common.Hash{}
	if cur != snapshot.proof.before {
		return nil, fmt.Errorf("broken proof chain start encountered, wanted %v, got %v", cur, snapshot.proof.before)
	}
	for i := 0; i < snapshot.GetNumParts(); i++ {
		proof, err := snapshot.GetProof(i)
		if err != nil {
			return nil, err
		}
		partProof := proof.(*Proof)
		if partProof.before != cur {
			return nil, fmt.Errorf("broken proof chain link encountered at step %d, wanted %v, got %v", i, cur, partProof.before)
		}
		cur = partProof.after
	}
	if cur != snapshot.proof.after {
		return nil, fmt.Errorf("broken proof chain end encountered, wanted %v, got %v", cur, snapshot.proof.after)
	}
	return snapshot.proof, nil
}

func (v *snapshotVerifier[K]) VerifyPart(_ int, proof, part []byte) error {
	partProof, err := createProofFromData(proof)
	if err != nil {
		return err
	}
	indexPart, err := createPartFromData(v.serializer, part)
	if err != nil {
		return err
	}

	h := sha256.New()
	cur := partProof.before
	for _, key := range indexPart.keys {
		h.Reset()
		h.Write(cur[:])
		h.Write(v.serializer.ToBytes(key))
		h.Sum(cur[0:0])
	}
	if cur != partProof.after {
		return fmt.Errorf("proof does not certify part content")
	}
	return nil
}
