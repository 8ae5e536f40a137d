// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish

import (
	"encoding/json"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/messagebus"
	"github.com/bitmark-inc/custodyd/query"
	"github.com/bitmark-inc/custodyd/zmqutil"
)

// first frame of every published message
const blockCommand = "block"

type broadcaster struct {
	log    *logger.L
	socket *zmq.Socket
}

// bind the PUB socket
func (brdc *broadcaster) initialise(privateKey []byte, publicKey []byte, broadcast []string) error {
	log := logger.New("broadcaster")
	brdc.log = log

	log.Info("initialising…")

	socket, err := zmqutil.NewPublisher(log, privateKey, publicKey, broadcast)
	if nil != err {
		log.Errorf("bind error: %s", err)
		return err
	}
	brdc.socket = socket
	return nil
}

// Run - wait for queued blocks and publish them
func (brdc *broadcaster) Run(args interface{}, shutdown <-chan struct{}) {
	log := brdc.log
	queue := args.(*messagebus.Queue).Chan()

	log.Info("starting…")

loop:
	for {
		log.Debug("waiting…")
		select {
		case <-shutdown:
			break loop
		case item := <-queue:
			block, ok := item.Item.(*blockrecord.Block)
			if !ok {
				log.Errorf("unexpected item: %q", item.Command)
				continue loop
			}
			if err := brdc.process(item.Command, block); nil != err {
				log.Errorf("publish block: %d  error: %s", block.Index, err)
			}
		}
	}

	log.Info("shutting down…")
	brdc.socket.Close()
	log.Info("stopped")
}

// send one block as two frames: command, JSON entry
func (brdc *broadcaster) process(command string, block *blockrecord.Block) error {
	data, err := json.Marshal(query.NewEntry(block))
	if nil != err {
		return err
	}
	_, err = brdc.socket.SendMessage(command, data)
	if nil != err {
		return err
	}
	brdc.log.Debugf("published block: %d", block.Index)
	return nil
}
