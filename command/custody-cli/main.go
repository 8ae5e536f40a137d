// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/custodyd/ledger"
	"github.com/bitmark-inc/custodyd/query"
	"github.com/bitmark-inc/custodyd/storage"
)

type metadata struct {
	store   *ledger.Store
	surface *query.Surface
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	os.Exit(run(os.Args))
}

func run(arguments []string) int {
	directory := os.Getenv("CUSTODY_LOG_DIRECTORY")
	if "" == directory {
		directory = os.TempDir()
	}
	err := logger.Initialise(logger.Configuration{
		Directory: directory,
		File:      "custody-cli.log",
		Size:      1048576,
		Count:     2,
		Levels: map[string]string{
			logger.DefaultTag: "error",
		},
	})
	if nil != err {
		fmt.Fprintf(os.Stderr, "logger setup failed with error: %s\n", err)
		return 1
	}
	defer logger.Finalise()

	app := newApp(os.Stdout, os.Stderr)
	err = app.Run(arguments)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		return 1
	}
	return 0
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "custody-cli"
	app.Usage = "inspect a custody ledger database"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "database, d",
			Value:  "",
			Usage:  "*ledger database `PATH`",
			EnvVar: "CUSTODY_DATABASE",
		},
		cli.StringFlag{
			Name:  "driver, D",
			Value: storage.DriverLevelDB,
			Usage: " database `DRIVER` [leveldb|sqlite]",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "dump",
			Usage:     "display blocks of the whole chain",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.Uint64Flag{
					Name:  "from, f",
					Usage: " first block `INDEX`",
				},
				cli.Uint64Flag{
					Name:  "to, t",
					Usage: " last block `INDEX`",
				},
			},
			Action: runDump,
		},
		{
			Name:      "trail",
			Usage:     "display the audit trail of one subject",
			ArgsUsage: "MRN\n   (* = required)",
			Action:    runTrail,
		},
		{
			Name:      "verify",
			Usage:     "verify the whole chain or one subject",
			ArgsUsage: "[MRN]",
			Action:    runVerify,
		},
		{
			Name:   "tail",
			Usage:  "display the latest block",
			Action: runTail,
		},
		{
			Name:  "version",
			Usage: "display custody-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// open the database read only
	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		// to suppress opening the database for certain commands
		command := c.Args().Get(0)
		if "" == command || "version" == command || "help" == command || "h" == command {
			return nil
		}

		name := c.GlobalString("database")
		if "" == name {
			return fmt.Errorf("database path is required")
		}
		driver := c.GlobalString("driver")

		if verbose {
			fmt.Fprintf(e, "database: %s  %q\n", driver, name)
		}

		backend, err := storage.Open(driver, name, storage.ReadOnly)
		if nil != err {
			return err
		}
		store, err := ledger.New(backend, nil)
		if nil != err {
			backend.Close()
			return err
		}

		c.App.Metadata["config"] = &metadata{
			store:   store,
			surface: query.New(store),
			verbose: verbose,
			e:       e,
			w:       w,
		}

		return nil
	}

	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok {
			return nil
		}
		return m.store.Close()
	}

	return app
}
