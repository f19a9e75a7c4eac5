package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Run with `go run ./tools/index-cli`

func main() {
	app := &cli.App{
		Name:     "Ordex Index Toolbox",
		HelpName: "index",
		Usage:    "A set of utilities to inspect and transfer index DB directories",
		Flags:    []cli.Flag{},
		Commands: []*cli.Command{
			&getInfoCommand,
			&exportCommand,
			&verifyCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
