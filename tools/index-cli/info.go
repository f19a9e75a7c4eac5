package main

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"

	"github.com/ordex-io/ordex/go/common"
)

var getInfoCommand = cli.Command{
	Action: getInfo,
	Name:   "info",
	Usage:  "prints summary information about an index DB directory",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
	},
}

func getInfo(ctx *cli.Context) (err error) {
	dir := ctx.String(dbDirectoryFlag.Name)
	log.Printf("Opening index in %v ...", dir)
	opened, err := open(dir)
	if err != nil {
		return err
	}
	defer func() {
		log.Printf("Closing index in %v ...", dir)
		if closeErr := opened.Close(); err == nil {
			err = closeErr
		}
	}()

	hash, err := opened.idx.GetStateHash()
	if err != nil {
		return
	}
	fmt.Printf("Keys:        %d\n", opened.idx.Size())
	fmt.Printf("State hash:  %x\n", hash)

	// a short fingerprint for quick eyeball comparison of two indexes
	fingerprint := common.Keccak256(hash.ToBytes())
	fmt.Printf("Fingerprint: %x\n", fingerprint.ToBytes()[:8])

	footprint := opened.idx.GetMemoryFootprint()
	fmt.Printf("Memory footprint:\n%s", footprint.ToString("index"))

	return nil
}
