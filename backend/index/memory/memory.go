package memory

import (
	"fmt"
	"unsafe"

	"github.com/ordex-io/ordex/go/backend"
	"github.com/ordex-io/ordex/go/backend/index"
	"github.com/ordex-io/ordex/go/backend/index/indexhash"
	"github.com/ordex-io/ordex/go/common"
)

// Index is the in-memory implementation of index.Index. The ordinal → key
// direction is a growable sequence of keys in insertion order; the key →
// ordinal direction is a red-black tree whose nodes store ordinals only and
// resolve comparisons through the sequence, so every key is held in memory
// exactly once. Both directions therefore operate on shared key storage and
// stay consistent under the insert-only mutation model.
type Index[K comparable, I common.Identifier] struct {
	keys          *keySpace[K, I]
	tree          *ordinalTree[K, I]
	keySerializer common.Serializer[K]
	comparator    common.Comparator[K]
	hashIndex     *indexhash.IndexHash[K]
	hashes        []common.Hash // state hash at each snapshot part boundary
}

// NewIndex constructs a new Index instance. The comparator defines the key
// order used by the internal search tree; the empty value pads unused
// capacity of the key sequence and is never treated as a stored key.
func NewIndex[K comparable, I common.Identifier](
	keySerializer common.Serializer[K],
	comparator common.Comparator[K],
	empty K) *Index[K, I] {

	keys := newKeySpace[K, I](empty)
	return &Index[K, I]{
		keys:          keys,
		tree:          newOrdinalTree(keys, comparator),
		keySerializer: keySerializer,
		comparator:    comparator,
		hashIndex:     indexhash.New[K](keySerializer),
	}
}

// GetOrAdd returns the ordinal mapped to the key, assigning the next free
// ordinal if the key is new. Ordinals are assigned gaplessly in insertion
// order; re-adding a key at any later time returns its original ordinal.
func (m *Index[K, I]) GetOrAdd(key K) (I, error) {
	ordinal, added := m.tree.insert(key)
	if !added {
		return ordinal, nil
	}

	// remember the state hash at part boundaries for snapshot proofs
	keysPerPart := I(index.GetKeysPerPart(m.keySerializer))
	if m.keys.size%keysPerPart == 0 {
		hash, err := m.GetStateHash()
		if err != nil {
			return ordinal, err
		}
		m.hashes = append(m.hashes, hash)
	}

	m.keys.append(key)
	m.hashIndex.AddKey(key)
	return ordinal, nil
}

// Get returns the ordinal mapped to the key, or index.ErrNotFound.
func (m *Index[K, I]) Get(key K) (I, error) {
	ordinal, exists := m.tree.find(key)
	if !exists {
		return ordinal, index.ErrNotFound
	}
	return ordinal, nil
}

// GetKey returns the key a given ordinal was assigned to. Calling it with
// an ordinal at or above Size() violates the caller's precondition and
// yields index.ErrIndexOutOfRange.
func (m *Index[K, I]) GetKey(ordinal I) (K, error) {
	key, exists := m.keys.get(ordinal)
	if !exists {
		return key, index.ErrIndexOutOfRange
	}
	return key, nil
}

// Contains returns whether the key exists in the mapping or not.
func (m *Index[K, I]) Contains(key K) bool {
	_, exists := m.tree.find(key)
	return exists
}

// Size returns the number of distinct keys added so far.
func (m *Index[K, I]) Size() I {
	return m.keys.size
}

// GetStateHash returns the index hash computed over all keys in their
// insertion order.
func (m *Index[K, I]) GetStateHash() (common.Hash, error) {
	return m.hashIndex.Commit()
}

// Flush does nothing.
func (m *Index[K, I]) Flush() error {
	return nil
}

// Close does nothing.
func (m *Index[K, I]) Close() error {
	return nil
}

// State is an opaque bundle of the full internal state of an Index, to be
// passed back into RestoreState. The bundle shares structure with the index
// it was taken from; it stays valid only as long as that index is not
// mutated afterwards. Host applications may hold on to it to transfer state
// wholesale between instances created with the same comparator.
type State[K comparable, I common.Identifier] struct {
	root   *treeNode[I]
	keys   []K
	size   I
	hash   common.Hash
	hashes []common.Hash
}

// State captures the internal state of the index - the ordinal tree, the
// backing key sequence including its unused padded capacity, and the size -
// as an opaque bundle. The index itself is not modified beyond committing
// pending key hashes.
func (m *Index[K, I]) State() (State[K, I], error) {
	hash, err := m.hashIndex.Commit()
	if err != nil {
		return State[K, I]{}, err
	}
	hashes := make([]common.Hash, len(m.hashes))
	copy(hashes, m.hashes)
	return State[K, I]{
		root:   m.tree.root,
		keys:   m.keys.keys,
		size:   m.keys.size,
		hash:   hash,
		hashes: hashes,
	}, nil
}

// RestoreState replaces the full internal state of the index with the given
// bundle, unconditionally and without validation. The caller guarantees the
// bundle originates from an index using the same comparator and serializer;
// restoring a malformed or foreign bundle silently corrupts the index and
// all future results. This deliberately unchecked contract keeps bulk state
// transfer free of re-validation cost - it is an escape hatch for trusted
// callers, not a deserialization path.
func (m *Index[K, I]) RestoreState(state State[K, I]) {
	m.tree.root = state.root
	m.keys.keys = state.keys
	m.keys.size = state.size
	m.hashIndex = indexhash.Init(state.hash, m.keySerializer)
	m.hashes = append(m.hashes[0:0], state.hashes...)
}

// GetProof returns the proof a snapshot of the current index state would exhibit.
func (m *Index[K, I]) GetProof() (backend.Proof, error) {
	hash, err := m.GetStateHash()
	if err != nil {
		return nil, err
	}
	return index.NewProof(common.Hash{}, hash), nil
}

// CreateSnapshot creates a part-based snapshot of the current index state.
// Since keys are never removed, the snapshot remains valid under subsequent
// additions; it is invalidated by Restore and RestoreState.
func (m *Index[K, I]) CreateSnapshot() (backend.Snapshot, error) {
	hash, err := m.GetStateHash()
	if err != nil {
		return nil, err
	}
	return index.CreateSnapshotFromIndex[K](
		m.keySerializer,
		hash,
		int(m.keys.size),
		&snapshotSource[K, I]{m, int(m.keys.size), hash}), nil
}

// Restore rebuilds the index from validated snapshot data, replacing all
// current content.
func (m *Index[K, I]) Restore(data backend.SnapshotData) error {
	snapshot, err := index.CreateSnapshotFromData(m.keySerializer, data)
	if err != nil {
		return err
	}

	m.clear()
	for i := 0; i < snapshot.GetNumParts(); i++ {
		part, err := snapshot.GetPart(i)
		if err != nil {
			return err
		}
		indexPart, ok := part.(*index.Part[K])
		if !ok {
			return fmt.Errorf("invalid part format encountered")
		}
		for _, key := range indexPart.GetKeys() {
			if _, err := m.GetOrAdd(key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Index[K, I]) GetSnapshotVerifier([]byte) (backend.SnapshotVerifier, error) {
	return index.CreateSnapshotVerifier(m.keySerializer), nil
}

// clear resets the index to its empty state.
func (m *Index[K, I]) clear() {
	m.keys = newKeySpace[K, I](m.keys.empty)
	m.tree = newOrdinalTree(m.keys, m.comparator)
	m.hashIndex.Clear()
	m.hashes = m.hashes[0:0]
}

// snapshotSource provides the snapshot machinery access to the frozen state
// of the index at snapshot creation time.
type snapshotSource[K comparable, I common.Identifier] struct {
	index   *Index[K, I]
	numKeys int         // the number of keys when the snapshot was created
	hash    common.Hash // the state hash when the snapshot was created
}

func (s *snapshotSource[K, I]) GetHash(keyHeight int) (common.Hash, error) {
	if keyHeight == s.numKeys {
		return s.hash, nil
	}
	if keyHeight > s.numKeys {
		return common.Hash{}, fmt.Errorf("invalid key height, not covered by snapshot")
	}
	keysPerPart := index.GetKeysPerPart(s.index.keySerializer)
	if keyHeight%keysPerPart != 0 {
		return common.Hash{}, fmt.Errorf("invalid key height, only supported at part boundaries")
	}
	return s.index.hashes[keyHeight/keysPerPart], nil
}

func (s *snapshotSource[K, I]) GetKeys(from, to int) ([]K, error) {
	if from < 0 || to < from || to > s.numKeys {
		return nil, fmt.Errorf("invalid key range [%d, %d)", from, to)
	}
	return s.index.keys.getKeys(from, to), nil
}

func (s *snapshotSource[K, I]) Release() error {
	return nil
}

// GetMemoryFootprint provides the size of the index in memory in bytes.
func (m *Index[K, I]) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*m))
	mf.AddChild("keys", m.keys.GetMemoryFootprint())
	mf.AddChild("tree", m.tree.GetMemoryFootprint())
	mf.AddChild("hashIndex", m.hashIndex.GetMemoryFootprint())
	mf.SetNote(fmt.Sprintf("(items: %d)", m.keys.size))
	return mf
}
