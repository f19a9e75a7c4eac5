package backend

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/ordex-io/ordex/go/common"
)

// TableSpace divides a key-value store into logical tables by prefixing keys.
type TableSpace byte

const (
	// KeyOrdinalSpace maps serialized keys to their assigned ordinals.
	KeyOrdinalSpace TableSpace = 'K'
	// OrdinalKeySpace maps serialized ordinals back to their keys.
	OrdinalKeySpace TableSpace = 'O'
)

// DbKey fits a key of up to 32 bytes plus the table space prefix and an
// optional domain byte.
type DbKey [34]byte

func (d DbKey) ToBytes() []byte {
	return d[:]
}

// ToDBKey converts the input key to its respective table space key.
func (t TableSpace) ToDBKey(key []byte) DbKey {
	var dbKey DbKey
	dbKey[0] = byte(t)
	if n := copy(dbKey[1:], key); n < len(key) {
		panic(fmt.Sprintf("input key does not fit into dbkey: %d > %d", len(key), len(dbKey)-1))
	}
	return dbKey
}

// StrToDBKey converts the input string key to its respective table space key.
func (t TableSpace) StrToDBKey(key string) DbKey {
	var dbKey DbKey
	dbKey[0] = byte(t)
	copy(dbKey[1:], key)
	return dbKey
}

// LevelDB is an interface merging the methods common for transactional and
// non-transactional LevelDB instances, allowing for transparent switching
// between them.
type LevelDB interface {

	// Get gets the value for the given key. It returns leveldb's ErrNotFound
	// if the DB does not contain the key. The returned slice is its own copy.
	Get(key []byte, ro *opt.ReadOptions) (value []byte, err error)

	// Has returns true if the DB does contain the given key.
	Has(key []byte, ro *opt.ReadOptions) (bool, error)

	// NewIterator returns an iterator for the latest snapshot of the
	// underlying DB. The slice range restricts the covered keys. The iterator
	// must be released after use.
	NewIterator(slice *util.Range, ro *opt.ReadOptions) iterator.Iterator

	// Put sets the value for the given key, overwriting any previous value.
	Put(key, value []byte, wo *opt.WriteOptions) error

	// Write applies the given batch to the DB atomically.
	Write(batch *leveldb.Batch, wo *opt.WriteOptions) error
}

// OpenLevelDb opens the LevelDB connection and provides it wrapped in a
// memory-footprint-reporting object.
func OpenLevelDb(path string, options *opt.Options) (*LevelDbMemoryFootprintWrapper, error) {
	ldb, err := leveldb.OpenFile(path, options)
	if err != nil {
		return nil, err
	}
	mf := common.NewMemoryFootprint(0)
	if options != nil {
		mf.AddChild("writeBuffer", common.NewMemoryFootprint(uintptr(options.GetWriteBuffer())))
	}
	return &LevelDbMemoryFootprintWrapper{ldb, mf}, nil
}

// LevelDbMemoryFootprintWrapper is a LevelDB wrapper adding a memory
// footprint providing method.
type LevelDbMemoryFootprintWrapper struct {
	*leveldb.DB
	mf *common.MemoryFootprint
}

func (wrapper *LevelDbMemoryFootprintWrapper) GetMemoryFootprint() *common.MemoryFootprint {
	var stats leveldb.DBStats
	if err := wrapper.DB.Stats(&stats); err == nil {
		wrapper.mf.AddChild("blockCache", common.NewMemoryFootprint(uintptr(stats.BlockCacheSize)))
	}
	return wrapper.mf
}
