package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/urfave/cli/v2"

	"github.com/ordex-io/ordex/go/backend/index/indexhash"
	"github.com/ordex-io/ordex/go/common"
)

var inputFileFlag = cli.StringFlag{
	Name:     "in",
	Usage:    "the export file to verify",
	Required: true,
}

var verifyCommand = cli.Command{
	Action: doVerify,
	Name:   "verify",
	Usage:  "re-computes the key chain hash of an export file and checks it against the recorded one",
	Flags: []cli.Flag{
		&inputFileFlag,
	},
}

func doVerify(ctx *cli.Context) (err error) {
	in := ctx.String(inputFileFlag.Name)

	file, err := os.Open(in)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	reader, err := gzip.NewReader(file)
	if err != nil {
		return err
	}

	numKeys, err := verifyExport(reader)
	if err != nil {
		return err
	}
	log.Printf("Export of %d keys verified", numKeys)
	return reader.Close()
}

// verifyExport reads an index export, re-computes the recursive hash over all
// contained keys and compares it to the hash recorded in the header. It
// returns the number of keys covered by the export.
func verifyExport(in io.Reader) (uint64, error) {
	magic := make([]byte, len(exportMagic))
	if _, err := io.ReadFull(in, magic); err != nil {
		return 0, err
	}
	if !bytes.Equal(magic, exportMagic) {
		return 0, fmt.Errorf("not an index export file")
	}

	serializer := common.KeySerializer{}
	hashBytes := make([]byte, common.HashSize)
	if _, err := io.ReadFull(in, hashBytes); err != nil {
		return 0, err
	}
	recorded := common.HashSerializer{}.FromBytes(hashBytes)

	var numKeys uint64
	if err := binary.Read(in, binary.BigEndian, &numKeys); err != nil {
		return 0, err
	}

	hasher := indexhash.New[common.Key](serializer)
	buffer := make([]byte, serializer.Size())
	for i := uint64(0); i < numKeys; i++ {
		if _, err := io.ReadFull(in, buffer); err != nil {
			return 0, fmt.Errorf("failed to read key %d; %w", i, err)
		}
		hasher.AddKey(serializer.FromBytes(buffer))
	}

	computed, err := hasher.Commit()
	if err != nil {
		return 0, err
	}
	if computed != recorded {
		return 0, fmt.Errorf("hash mismatch: computed %x, recorded %x", computed, recorded)
	}
	return numKeys, nil
}
