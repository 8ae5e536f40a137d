// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zmqutil - ZeroMQ socket and CURVE key helpers
package zmqutil

import (
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/logger"
)

const (
	heartbeatInterval = 15 * time.Second
	heartbeatTimeout  = 60 * time.Second
	heartbeatTTL      = 120 * time.Second

	// zap domain for CURVE authentication of subscribers
	zapDomain = "custodyd"
)

// NewPublisher - a PUB socket bound to every listen address
//
// with a nil private key the socket is plain text, otherwise it acts
// as a CURVE server accepting any client key
func NewPublisher(log *logger.L, privateKey []byte, publicKey []byte, listen []string) (*zmq.Socket, error) {
	socket, err := zmq.NewSocket(zmq.PUB)
	if nil != err {
		return nil, err
	}

	ok := false
	defer func() {
		if !ok {
			socket.Close()
		}
	}()

	if err := socket.SetLinger(0); nil != err {
		return nil, err
	}

	if nil != privateKey {
		if err := StartAuthentication(); nil != err {
			return nil, err
		}
		zmq.AuthCurveAdd(zapDomain, zmq.CURVE_ALLOW_ANY)

		socket.SetCurveServer(1)
		socket.SetCurveSecretkey(string(privateKey))
		socket.SetZapDomain(zapDomain)
		socket.SetIdentity(string(publicKey)) // just use public key for identity
	}

	// heartbeat
	socket.SetHeartbeatIvl(heartbeatInterval)
	socket.SetHeartbeatTimeout(heartbeatTimeout)
	socket.SetHeartbeatTtl(heartbeatTTL)

	for i, address := range listen {
		socket.SetIpv6(isIPv6(address))
		if err := socket.Bind(address); nil != err {
			log.Errorf("cannot bind[%d]: %q  error: %s", i, address, err)
			return nil, err
		}
		log.Infof("bind[%d]: %q", i, address)
	}

	ok = true
	return socket, nil
}

// tcp://[::1]:2135 style addresses
func isIPv6(address string) bool {
	for i := 0; i < len(address); i += 1 {
		if '[' == address[i] {
			return true
		}
	}
	return false
}
