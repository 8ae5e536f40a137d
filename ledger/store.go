// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/custodyd/blockdigest"
	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/storage"
)

// Clock - source of block timestamps
type Clock func() time.Time

// Observer - called with each committed block, in index order
type Observer func(*blockrecord.Block)

// Store - the append-only custody ledger
//
// one writer at a time; readers work from the tail captured when they
// start and never wait for the writer
type Store struct {
	log     *logger.L
	backend storage.Backend
	clock   Clock

	// one slot semaphore guarding the writer section
	writer chan struct{}
	closed bool // only accessed inside the writer section

	// nil while the ledger is empty
	tail atomic.Pointer[blockrecord.Block]

	observersLock sync.RWMutex
	observers     []Observer
}

// New - open a ledger over a backend, recovering the tail from storage
func New(backend storage.Backend, clock Clock) (*Store, error) {
	if nil == backend {
		return nil, fault.ErrDatabaseIsNotSet
	}
	if nil == clock {
		clock = time.Now
	}

	log := logger.New("ledger")
	if nil == log {
		return nil, fault.ErrInvalidLoggerChannel
	}
	log.Info("starting…")

	last, err := backend.Last()
	if nil != err {
		log.Criticalf("tail recovery failed: %s", err)
		return nil, err
	}

	s := &Store{
		log:     log,
		backend: backend,
		clock:   clock,
		writer:  make(chan struct{}, 1),
	}

	if nil == last {
		log.Info("ledger is empty")
		tailIndex.Set(-1)
	} else {
		digest, err := last.Rehash()
		if nil != err || digest != last.CurrentHash {
			log.Criticalf("tail block: %d does not match its stored hash", last.Index)
		}
		log.Infof("tail block: %d  hash: %s", last.Index, last.CurrentHash)
		s.tail.Store(last)
		tailIndex.Set(float64(last.Index))
	}

	return s, nil
}

// Subscribe - register an observer of committed blocks
//
// observers run inside the writer section so they must not block
func (s *Store) Subscribe(o Observer) {
	s.observersLock.Lock()
	s.observers = append(s.observers, o)
	s.observersLock.Unlock()
}

// Append - build, seal and commit one block after the current tail
//
// the context is only honoured while waiting for the writer section;
// once a block is being committed it runs to completion
func (s *Store) Append(ctx context.Context, request blockrecord.Request) (*blockrecord.Block, error) {
	if err := ctx.Err(); nil != err {
		appendTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		appendTotal.WithLabelValues("cancelled").Inc()
		return nil, ctx.Err()
	}
	defer func() { <-s.writer }()

	if s.closed {
		appendTotal.WithLabelValues("closed").Inc()
		return nil, fault.ErrNotInitialised
	}

	start := time.Now()
	block, err := s.append(request)
	appendDuration.Observe(time.Since(start).Seconds())
	appendTotal.WithLabelValues(outcome(err)).Inc()

	if nil != err {
		return nil, err
	}

	s.observersLock.RLock()
	for _, o := range s.observers {
		o(block)
	}
	s.observersLock.RUnlock()

	return block, nil
}

// must be called inside the writer section
func (s *Store) append(request blockrecord.Request) (*blockrecord.Block, error) {
	previous := blockdigest.Genesis
	index := uint64(0)
	tail := s.tail.Load()
	if nil != tail {
		previous = tail.CurrentHash
		index = tail.Index + 1
	}

	u, err := blockrecord.Build(request, index, s.clock())
	if nil != err {
		s.log.Debugf("build: subject: %q  error: %s", request.SubjectID, err)
		return nil, err
	}

	block, err := blockrecord.Seal(u, previous)
	if nil != err {
		s.log.Errorf("seal: block: %d  error: %s", index, err)
		return nil, err
	}

	err = s.backend.Commit(block)
	if nil != err {
		s.log.Errorf("commit: block: %d  error: %s", index, err)
		if fault.IsErrStorageIO(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: block: %d: %w", fault.ErrStorageWrite, index, err)
	}

	if !s.tail.CompareAndSwap(tail, block) {
		fault.Panicf("ledger: tail moved during commit of block: %d", index)
	}
	tailIndex.Set(float64(index))

	s.log.Infof("block: %d  subject: %q  action: %s  hash: %s", index, block.SubjectID, block.Action, block.CurrentHash)
	return block, nil
}

// Close - wait for any writer to finish then close the backend
//
// later appends fail with ErrNotInitialised
func (s *Store) Close() error {
	s.writer <- struct{}{}
	defer func() { <-s.writer }()

	if s.closed {
		return nil
	}
	s.closed = true

	s.log.Info("shutting down…")
	s.log.Flush()
	return s.backend.Close()
}
