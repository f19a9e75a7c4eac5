package main

import (
	"github.com/ordex-io/ordex/go/backend"
	"github.com/ordex-io/ordex/go/backend/index"
	"github.com/ordex-io/ordex/go/backend/index/ldb"
	"github.com/ordex-io/ordex/go/common"
)

// openedIndex bundles a key index with the database connection it runs on.
type openedIndex struct {
	idx index.Index[common.Key, uint32]
	db  *backend.LevelDbMemoryFootprintWrapper
}

// open opens the LevelDB-backed key index stored in the given directory.
func open(dir string) (*openedIndex, error) {
	db, err := backend.OpenLevelDb(dir, nil)
	if err != nil {
		return nil, err
	}
	idx, err := ldb.NewIndex[common.Key, uint32](db, common.KeySerializer{}, common.Identifier32Serializer{})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &openedIndex{idx, db}, nil
}

func (o *openedIndex) Close() error {
	err := o.idx.Close()
	if dbErr := o.db.Close(); err == nil {
		err = dbErr
	}
	return err
}
