// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/custodyd/custody"
	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/ledger"
	"github.com/bitmark-inc/custodyd/publish"
	"github.com/bitmark-inc/custodyd/query"
	"github.com/bitmark-inc/custodyd/rpc"
	"github.com/bitmark-inc/custodyd/storage"
	"github.com/bitmark-inc/custodyd/zmqutil"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "env-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'e'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		processSetupCommand(program, []string{"version"})
		return
	}

	if len(options["help"]) > 0 {
		processSetupCommand(program, []string{"help"})
		return
	}

	// these commands do not require the configuration and
	// process data needed for initial setup
	if len(arguments) > 0 && processSetupCommand(program, arguments) {
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	environmentFile := ""
	if len(options["env-file"]) > 0 {
		environmentFile = options["env-file"][0]
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := getConfiguration(configurationFile, environmentFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// these commands require the configuration and
	// perform enquiries on the configuration
	if len(arguments) > 0 && processConfigCommand(arguments, theConfiguration) {
		return
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	if err = fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: fault setup failed with error: %s", program, err)
	}
	defer fault.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// start the data storage
	log.Infof("database: %s  %q", theConfiguration.Database.Driver, theConfiguration.Database.Name)
	backend, err := storage.Open(theConfiguration.Database.Driver, theConfiguration.Database.Name, storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}

	if "" != theConfiguration.Database.Cache {
		expiration, err := time.ParseDuration(theConfiguration.Database.Cache)
		if nil != err {
			log.Criticalf("database cache: %q  error: %s", theConfiguration.Database.Cache, err)
			exitwithstatus.Message("database cache: %q  error: %s", theConfiguration.Database.Cache, err)
		}
		if expiration > 0 {
			log.Infof("block cache expiration: %s", expiration)
			backend = storage.NewCached(backend, expiration)
		}
	}

	// the ledger owns the backend from here
	store, err := ledger.New(backend, nil)
	if nil != err {
		backend.Close()
		log.Criticalf("ledger initialise error: %s", err)
		exitwithstatus.Message("ledger initialise error: %s", err)
	}
	defer store.Close()

	// these commands are allowed to access the ledger
	if len(arguments) > 0 && processDataCommand(log, arguments, store) {
		return
	}

	if theConfiguration.VerifyOnStart {
		log.Info("verifying stored chain…")
		result, err := store.Verify(context.Background(), 0, storage.MaximumIndex)
		if nil != err {
			log.Criticalf("verify on start error: %s", err)
			exitwithstatus.Message("verify on start error: %s", err)
		}
		if !result.Valid {
			log.Criticalf("chain is broken at block: %d  reason: %s", *result.FirstInvalidIndex, result.Reason)
			exitwithstatus.Message("chain is broken at block: %d  reason: %s", *result.FirstInvalidIndex, result.Reason)
		}
		log.Infof("verified: %d blocks", result.Checked)
	}

	// initialise encryption
	if "" != theConfiguration.Publishing.PrivateKey {
		err = zmqutil.StartAuthentication()
		if nil != err {
			log.Criticalf("zmq.AuthStart: error: %s", err)
			exitwithstatus.Message("zmq.AuthStart: error: %s", err)
		}
	}

	// start up the publishing background processes
	err = publish.Initialise(&theConfiguration.Publishing)
	if nil != err {
		log.Criticalf("publish initialise error: %s", err)
		exitwithstatus.Message("publish initialise error: %s", err)
	}
	defer publish.Finalise()
	store.Subscribe(publish.Observe)

	// start up the rpc listeners
	err = rpc.Initialise(&theConfiguration.ClientRPC, version, theConfiguration.DataDirectory, query.New(store), custody.NewRecorder(store))
	if nil != err {
		log.Criticalf("rpc initialise error: %s", err)
		exitwithstatus.Message("rpc initialise error: %s", err)
	}
	defer rpc.Finalise()

	// re-apply the allow list when the configuration changes
	watcher, err := newFileWatcher(log, configurationFile, func(fileName string) error {
		c, err := getConfiguration(fileName, environmentFile)
		if nil != err {
			return err
		}
		return rpc.SetAllow(c.ClientRPC.Allow)
	})
	if nil == err {
		err = watcher.Start()
	}
	if nil != err {
		log.Errorf("configuration watcher error: %s", err)
	} else {
		defer watcher.Stop()
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}
