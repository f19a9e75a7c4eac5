package sqlite

import (
	"database/sql"
	"fmt"
	"unsafe"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ordex-io/ordex/go/backend"
	"github.com/ordex-io/ordex/go/backend/index"
	"github.com/ordex-io/ordex/go/backend/index/indexhash"
	"github.com/ordex-io/ordex/go/common"
)

var (
	// See https://www.sqlite.org/pragma.html
	kConfigureConnection = []string{
		"PRAGMA journal_mode = OFF",
		"PRAGMA synchronous = OFF",
		"PRAGMA locking_mode = EXCLUSIVE",
	}
)

const (
	kCreateKeysTable = "CREATE TABLE IF NOT EXISTS keys (ordinal INT PRIMARY KEY, key BLOB UNIQUE)"
	kAddKeyStmt      = "INSERT INTO keys(ordinal, key) VALUES (?,?)"
	kGetOrdinalStmt  = "SELECT ordinal FROM keys WHERE key = ?"
	kGetKeyStmt      = "SELECT key FROM keys WHERE ordinal = ?"
	kCountKeysStmt   = "SELECT COUNT(*) FROM keys"

	kCreateMetaTable = "CREATE TABLE IF NOT EXISTS metadata (name TEXT PRIMARY KEY, value BLOB)"
	kSetMetaStmt     = "INSERT OR REPLACE INTO metadata(name, value) VALUES (?,?)"
	kGetMetaStmt     = "SELECT value FROM metadata WHERE name = ?"

	kHashMetaKey = "hash"
)

// Index is a persisted implementation of index.Index backed by a SQLite
// database file. Both lookup directions are served by a single keys table
// indexed on the ordinal (primary key) and the key (unique constraint).
type Index[K comparable, I common.Identifier] struct {
	db             *sql.DB
	addKeyStmt     *sql.Stmt
	getOrdinalStmt *sql.Stmt
	getKeyStmt     *sql.Stmt
	keySerializer  common.Serializer[K]
	hashIndex      *indexhash.IndexHash[K]
	hashSerializer common.HashSerializer
	lastIndex      I
}

// NewIndex creates a new instance of the index backed by the given SQLite
// database file, creating the file and the schema when missing.
func NewIndex[K comparable, I common.Identifier](file string, keySerializer common.Serializer[K]) (*Index[K, I], error) {
	db, err := sql.Open("sqlite3", "file:"+file)
	if err != nil {
		return nil, err
	}
	for _, cmd := range kConfigureConnection {
		if _, err := db.Exec(cmd); err != nil {
			return nil, err
		}
	}

	if _, err := db.Exec(kCreateKeysTable); err != nil {
		return nil, err
	}
	if _, err := db.Exec(kCreateMetaTable); err != nil {
		return nil, err
	}

	addKey, err := db.Prepare(kAddKeyStmt)
	if err != nil {
		return nil, err
	}
	getOrdinal, err := db.Prepare(kGetOrdinalStmt)
	if err != nil {
		return nil, err
	}
	getKey, err := db.Prepare(kGetKeyStmt)
	if err != nil {
		return nil, err
	}

	var numKeys int64
	if err := db.QueryRow(kCountKeysStmt).Scan(&numKeys); err != nil {
		return nil, err
	}

	hashSerializer := common.HashSerializer{}
	hash := common.Hash{}
	var hashBytes []byte
	err = db.QueryRow(kGetMetaStmt, kHashMetaKey).Scan(&hashBytes)
	if err == nil {
		hash = hashSerializer.FromBytes(hashBytes)
	} else if err != sql.ErrNoRows {
		return nil, err
	}

	return &Index[K, I]{
		db:             db,
		addKeyStmt:     addKey,
		getOrdinalStmt: getOrdinal,
		getKeyStmt:     getKey,
		keySerializer:  keySerializer,
		hashIndex:      indexhash.Init[K](hash, keySerializer),
		hashSerializer: hashSerializer,
		lastIndex:      I(numKeys),
	}, nil
}

// GetOrAdd returns the ordinal mapped to the key, assigning the next free
// ordinal if the key is new.
func (m *Index[K, I]) GetOrAdd(key K) (I, error) {
	idx, err := m.Get(key)
	if err == nil {
		return idx, nil
	}
	if err != index.ErrNotFound {
		return idx, err
	}

	idx = m.lastIndex
	if _, err := m.addKeyStmt.Exec(int64(idx), m.keySerializer.ToBytes(key)); err != nil {
		return idx, err
	}
	m.lastIndex = m.lastIndex + 1
	m.hashIndex.AddKey(key)
	return idx, nil
}

// Get returns the ordinal mapped to the key, or index.ErrNotFound.
func (m *Index[K, I]) Get(key K) (I, error) {
	var idx I
	var ordinal int64
	err := m.getOrdinalStmt.QueryRow(m.keySerializer.ToBytes(key)).Scan(&ordinal)
	if err == sql.ErrNoRows {
		return idx, index.ErrNotFound
	}
	if err != nil {
		return idx, err
	}
	return I(ordinal), nil
}

// GetKey returns the key a given ordinal was assigned to, or
// index.ErrIndexOutOfRange.
func (m *Index[K, I]) GetKey(ordinal I) (K, error) {
	var key K
	var keyBytes []byte
	err := m.getKeyStmt.QueryRow(int64(ordinal)).Scan(&keyBytes)
	if err == sql.ErrNoRows {
		return key, index.ErrIndexOutOfRange
	}
	if err != nil {
		return key, err
	}
	return m.keySerializer.FromBytes(keyBytes), nil
}

// Contains returns whether the key exists in the mapping or not.
func (m *Index[K, I]) Contains(key K) bool {
	_, err := m.Get(key)
	return err == nil
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
	_, err = m.db.Exec(kSetMetaStmt, kHashMetaKey, m.hashSerializer.ToBytes(hash))
	return err
}

// Close flushes the index and closes the database connection.
func (m *Index[K, I]) Close() error {
	if err := m.Flush(); err != nil {
		return err
	}
	for _, stmt := range []*sql.Stmt{m.addKeyStmt, m.getOrdinalStmt, m.getKeyStmt} {
		if err := stmt.Close(); err != nil {
			return fmt.Errorf("failed to close prepared statement; %w", err)
		}
	}
	return m.db.Close()
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
