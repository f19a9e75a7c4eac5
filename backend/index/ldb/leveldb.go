package ldb

import (
	"unsafe"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"

	"github.com/ordex-io/ordex/go/backend"
	"github.com/ordex-io/ordex/go/backend/index"
	"github.com/ordex-io/ordex/go/backend/index/indexhash"
	"github.com/ordex-io/ordex/go/common"
)

const (
	HashKey      = "hash"
	LastIndexKey = "last"
)

// Index is a persisted implementation of index.Index backed by LevelDB.
// The key → ordinal direction lives in the KeyOrdinalSpace table space, the
// ordinal → key direction in the OrdinalKeySpace table space; both entries
// for a newly added key are written in a single atomic batch together with
// the next free ordinal.
type Index[K comparable, I common.Identifier] struct {
	db              backend.LevelDB
	keySerializer   common.Serializer[K]
	indexSerializer common.Serializer[I]
	hashIndex       *indexhash.IndexHash[K]
	hashSerializer  common.HashSerializer
	lastIndex       I
}

// NewIndex creates a new instance of the index backed by a persisted database.
func NewIndex[K comparable, I common.Identifier](
	db backend.LevelDB,
	keySerializer common.Serializer[K],
	indexSerializer common.Serializer[I]) (*Index[K, I], error) {

	// read the last hash from the database
	var hash []byte
	hashDbKey := backend.KeyOrdinalSpace.StrToDBKey(HashKey).ToBytes()
	hash, err := db.Get(hashDbKey, nil)
	if err != nil {
		if err != errors.ErrNotFound {
			return nil, err
		}
		hash = []byte{}
	}

	// read the last assigned ordinal from the database
	var last []byte
	lastDbKey := backend.KeyOrdinalSpace.StrToDBKey(LastIndexKey).ToBytes()
	last, err = db.Get(lastDbKey, nil)
	if err != nil {
		if err != errors.ErrNotFound {
			return nil, err
		}
		last = make([]byte, indexSerializer.Size())
	}

	hashSerializer := common.HashSerializer{}
	return &Index[K, I]{
		db:              db,
		keySerializer:   keySerializer,
		indexSerializer: indexSerializer,
		hashIndex:       indexhash.Init[K](hashSerializer.FromBytes(hash), keySerializer),
		hashSerializer:  hashSerializer,
		lastIndex:       indexSerializer.FromBytes(last),
	}, nil
}

// GetOrAdd returns the ordinal mapped to the key, assigning the next free
// ordinal if the key is new.
func (m *Index[K, I]) GetOrAdd(key K) (I, error) {
	dbKey := m.convertKey(key).ToBytes()
	val, err := m.db.Get(dbKey, nil)
	if err == nil {
		return m.indexSerializer.FromBytes(val), nil
	}
	if err != errors.ErrNotFound {
		return m.lastIndex, err
	}

	// the key is new, persist both mapping directions and the next ordinal
	idx := m.lastIndex
	idxBytes := m.indexSerializer.ToBytes(idx)
	m.lastIndex = m.lastIndex + 1

	batch := new(leveldb.Batch)
	batch.Put(backend.KeyOrdinalSpace.StrToDBKey(LastIndexKey).ToBytes(), m.indexSerializer.ToBytes(m.lastIndex))
	batch.Put(dbKey, idxBytes)
	batch.Put(m.convertOrdinal(idx).ToBytes(), m.keySerializer.ToBytes(key))
	if err := m.db.Write(batch, nil); err != nil {
		return idx, err
	}

	m.hashIndex.AddKey(key)
	return idx, nil
}

// Get returns the ordinal mapped to the key, or index.ErrNotFound.
func (m *Index[K, I]) Get(key K) (I, error) {
	var idx I
	val, err := m.db.Get(m.convertKey(key).ToBytes(), nil)
	if err != nil {
		if err == errors.ErrNotFound {
			err = index.ErrNotFound
		}
		return idx, err
	}
	return m.indexSerializer.FromBytes(val), nil
}

// GetKey returns the key a given ordinal was assigned to, or
// index.ErrIndexOutOfRange.
func (m *Index[K, I]) GetKey(ordinal I) (K, error) {
	var key K
	val, err := m.db.Get(m.convertOrdinal(ordinal).ToBytes(), nil)
	if err != nil {
		if err == errors.ErrNotFound {
			err = index.ErrIndexOutOfRange
		}
		return key, err
	}
	return m.keySerializer.FromBytes(val), nil
}

// Contains returns whether the key exists in the mapping or not.
func (m *Index[K, I]) Contains(key K) bool {
	exists, _ := m.db.Has(m.convertKey(key).ToBytes(), nil)
	return exists
}

// Size returns the number of distinct keys added so far.
func (m *Index[K, I]) Size() I {
	return m.lastIndex
}

// GetStateHash returns the index hash.
func (m *Index[K, I]) GetStateHash() (common.Hash, error) {
	return m.hashIndex.Commit()
}

// Flush commits the state hash to the database.
func (m *Index[K, I]) Flush() error {
	hash, err := m.GetStateHash()
	if err != nil {
		return err
	}
	dbKey := backend.KeyOrdinalSpace.StrToDBKey(HashKey).ToBytes()
	return m.db.Put(dbKey, m.hashSerializer.ToBytes(hash), nil)
}

// Close flushes the index. The database connection is owned by the caller
// and stays open.
func (m *Index[K, I]) Close() error {
	return m.Flush()
}

// convertKey translates a key into its database key in the key → ordinal
// table space.
func (m *Index[K, I]) convertKey(key K) backend.DbKey {
	return backend.KeyOrdinalSpace.ToDBKey(m.keySerializer.ToBytes(key))
}

// convertOrdinal translates an ordinal into its database key in the
// ordinal → key table space.
func (m *Index[K, I]) convertOrdinal(ordinal I) backend.DbKey {
	return backend.OrdinalKeySpace.ToDBKey(m.indexSerializer.ToBytes(ordinal))
}

func (m *Index[K, I]) GetProof() (backend.Proof, error) {
	return nil, backend.ErrSnapshotNotSupported
}

func (m *Index[K, I]) CreateSnapshot() (backend.Snapshot, error) {
	return nil, backend.ErrSnapshotNotSupported
}

func (m *Index[K, I]) Restore(data backend.SnapshotData) error {
	return backend.ErrSnapshotNotSupported
}

func (m *Index[K, I]) GetSnapshotVerifier([]byte) (backend.SnapshotVerifier, error) {
	return nil, backend.ErrSnapshotNotSupported
}

func (m *Index[K, I]) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*m))
	mf.AddChild("hashIndex", m.hashIndex.GetMemoryFootprint())
	return mf
}
