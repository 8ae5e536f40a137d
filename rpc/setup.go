// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/query"
	"github.com/bitmark-inc/custodyd/rpc/certificate"
)

const (
	serverName      = "http_rpc"
	shutdownTimeout = 5 * time.Second
)

// Configuration - configuration file data for HTTP(S) setup
//
// an empty certificate serves plain HTTP
type Configuration struct {
	MaximumConnections uint64              `gluamapper:"maximum_connections" json:"maximum_connections"`
	RequestRate        float64             `gluamapper:"request_rate" json:"request_rate"`
	Listen             []string            `gluamapper:"listen" json:"listen"`
	Certificate        string              `gluamapper:"certificate" json:"certificate"`
	PrivateKey         string              `gluamapper:"private_key" json:"private_key"`
	Allow              map[string][]string `gluamapper:"allow" json:"allow"`
}

// globals
type rpcData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	handler *Handler
	servers []*http.Server

	// set once during initialise
	initialised bool
}

// global data
var globalData rpcData

// Initialise - start the listeners
func Initialise(configuration *Configuration, version string, dataDirectory string, surface *query.Surface, recorder Recorder) error {
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	log := logger.New("rpc")
	globalData.log = log
	log.Info("starting…")

	if 0 == len(configuration.Listen) {
		log.Infof("disable: %s", serverName)
		globalData.initialised = true
		return nil
	}

	if configuration.MaximumConnections < 1 {
		log.Errorf("invalid %s maximum connection limit: %d", serverName, configuration.MaximumConnections)
		return fault.ErrMissingParameters
	}

	allow, err := ParseAllow(configuration.Allow)
	if nil != err {
		return err
	}

	var tlsConfiguration *tls.Config
	if "" != configuration.Certificate {
		c, fingerprint, err := certificate.Get(log, serverName, configuration.Certificate, configuration.PrivateKey)
		if nil != err {
			return err
		}
		log.Infof("%s: SHA3-256 fingerprint: %x", serverName, fingerprint)
		c.NextProtos = []string{"http/1.1"}
		tlsConfiguration = c
	} else {
		log.Warnf("%s: no certificate, serving plain HTTP", serverName)
	}

	handler, err := NewHandler(log, surface, recorder, Options{
		Version:            version,
		DataDirectory:      dataDirectory,
		RequestRate:        configuration.RequestRate,
		MaximumConnections: configuration.MaximumConnections,
		Allow:              allow,
	})
	if nil != err {
		return err
	}
	globalData.handler = handler

	router := handler.Router()
	servers := make([]*http.Server, 0, len(configuration.Listen))
	for _, listen := range configuration.Listen {
		listen = listenAddress(listen)
		log.Infof("starting server: %s on: %q", serverName, listen)

		ln, err := net.Listen("tcp", listen)
		if nil != err {
			log.Errorf("%s: listen: %q  error: %s", serverName, listen, err)
			shutdown(servers)
			return err
		}
		if nil != tlsConfiguration {
			ln = tls.NewListener(ln, tlsConfiguration)
		}

		s := &http.Server{
			Addr:           listen,
			Handler:        router,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		servers = append(servers, s)

		go func(s *http.Server, ln net.Listener) {
			err := s.Serve(ln)
			if nil != err && !errors.Is(err, http.ErrServerClosed) {
				log.Criticalf("%s: %q  error: %s", serverName, s.Addr, err)
			}
		}(s, ln)
	}
	globalData.servers = servers

	// all data initialised
	globalData.initialised = true

	return nil
}

// SetAllow - replace the allow list of the running handler
func SetAllow(configuration map[string][]string) error {
	globalData.RLock()
	defer globalData.RUnlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}
	if nil == globalData.handler {
		return nil
	}

	allow, err := ParseAllow(configuration)
	if nil != err {
		return err
	}
	globalData.handler.SetAllow(allow)
	globalData.log.Info("allow list updated")
	return nil
}

// Finalise - stop all listeners
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	shutdown(globalData.servers)
	globalData.servers = nil
	globalData.handler = nil

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}

// graceful stop of each server
func shutdown(servers []*http.Server) {
	for _, s := range servers {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := s.Shutdown(ctx); nil != err {
			s.Close()
		}
		cancel()
	}
}

// change "*:PORT" to "[::]:PORT"
// on the assumption that this will listen on tcp4 and tcp6
func listenAddress(listen string) string {
	if strings.HasPrefix(listen, "*:") {
		return "[::]" + listen[1:]
	}
	return listen
}
