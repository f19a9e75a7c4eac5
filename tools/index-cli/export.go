package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/urfave/cli/v2"

	"github.com/ordex-io/ordex/go/backend/index"
	"github.com/ordex-io/ordex/go/common"
)

var (
	dbDirectoryFlag = cli.StringFlag{
		Name:     "dir",
		Usage:    "the targeted index DB directory",
		Required: true,
	}
	outputFileFlag = cli.StringFlag{
		Name:     "out",
		Usage:    "the file to write the export to",
		Required: true,
	}
)

var exportCommand = cli.Command{
	Action: doExport,
	Name:   "export",
	Usage:  "writes all keys of an index in insertion order into a compressed file",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&outputFileFlag,
	},
}

// exportMagic marks the head of an index export file.
var exportMagic = []byte("ordex-keys-v1\n")

func doExport(ctx *cli.Context) (err error) {
	dir := ctx.String(dbDirectoryFlag.Name)
	out := ctx.String(outputFileFlag.Name)

	log.Printf("Opening index in %v ...", dir)
	opened, err := open(dir)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := opened.Close(); err == nil {
			err = closeErr
		}
	}()

	file, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	writer := gzip.NewWriter(file)
	log.Printf("Exporting %d keys ...", opened.idx.Size())
	if err := writeExport(writer, opened.idx); err != nil {
		return err
	}
	return writer.Close()
}

// writeExport streams the full content of the index into the given writer:
// the export magic, the state hash, the number of keys, and all keys in
// insertion order.
func writeExport(out io.Writer, idx index.Index[common.Key, uint32]) error {
	hash, err := idx.GetStateHash()
	if err != nil {
		return err
	}

	if _, err := out.Write(exportMagic); err != nil {
		return err
	}
	if _, err := out.Write(hash.ToBytes()); err != nil {
		return err
	}
	numKeys := idx.Size()
	if err := binary.Write(out, binary.BigEndian, uint64(numKeys)); err != nil {
		return err
	}

	serializer := common.KeySerializer{}
	for i := uint32(0); i < numKeys; i++ {
		key, err := idx.GetKey(i)
		if err != nil {
			return fmt.Errorf("failed to resolve ordinal %d; %w", i, err)
		}
		if _, err := out.Write(serializer.ToBytes(key)); err != nil {
			return err
		}
	}
	return nil
}
