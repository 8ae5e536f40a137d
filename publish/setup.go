// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/custodyd/background"
	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/messagebus"
	"github.com/bitmark-inc/custodyd/zmqutil"
)

// Configuration - the publishing section of the daemon configuration
type Configuration struct {
	Broadcast  []string `gluamapper:"broadcast" json:"broadcast"`
	PrivateKey string   `gluamapper:"private_key" json:"private_key"`
	PublicKey  string   `gluamapper:"public_key" json:"public_key"`
	QueueSize  int      `gluamapper:"queue_size" json:"queue_size"`
}

// globals for background process
type publishData struct {
	sync.RWMutex // to allow locking

	log *logger.L

	queue *messagebus.Queue
	brdc  broadcaster

	// for background
	background *background.T

	// set once during initialise
	initialised bool
}

// global data
var globalData publishData

// Initialise - bind the broadcast sockets and start the sender
//
// with no broadcast addresses publishing is disabled and Observe
// discards blocks
func Initialise(configuration *Configuration) error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("publish")
	globalData.log.Info("starting…")

	if 0 == len(configuration.Broadcast) {
		globalData.log.Info("no broadcast addresses: disabled")
		globalData.initialised = true
		return nil
	}

	var privateKey, publicKey []byte
	if "" != configuration.PrivateKey {
		var err error
		privateKey, err = zmqutil.ReadPrivateKeyFile(configuration.PrivateKey)
		if nil != err {
			globalData.log.Errorf("read private key file: %q  error: %s", configuration.PrivateKey, err)
			return err
		}
		publicKey, err = zmqutil.ReadPublicKeyFile(configuration.PublicKey)
		if nil != err {
			globalData.log.Errorf("read public key file: %q  error: %s", configuration.PublicKey, err)
			return err
		}
	}

	globalData.queue = messagebus.NewQueue(configuration.QueueSize)
	if err := globalData.brdc.initialise(privateKey, publicKey, configuration.Broadcast); nil != err {
		return err
	}

	// all data initialised
	globalData.initialised = true

	// start background processes
	globalData.log.Info("start background…")

	processes := background.Processes{
		&globalData.brdc,
	}

	globalData.background = background.Start(processes, globalData.queue)

	return nil
}

// Observe - queue a committed block for broadcast, never blocks
//
// suitable for ledger.Store.Subscribe
func Observe(block *blockrecord.Block) {
	globalData.RLock()
	queue := globalData.queue
	globalData.RUnlock()

	if nil == queue {
		return
	}
	if !queue.Send(blockCommand, block) {
		globalData.log.Warnf("queue full: block: %d dropped  total dropped: %d", block.Index, queue.Dropped())
	}
}

// Finalise - stop all background tasks
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	// stop background
	globalData.background.Stop()
	globalData.background = nil
	globalData.queue = nil

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}
