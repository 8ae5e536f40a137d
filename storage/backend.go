// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"math"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/fault"
)

// driver names
const (
	DriverLevelDB = "leveldb"
	DriverSQLite  = "sqlite"
)

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// MaximumIndex - open ended upper bound for Range and Subject
const MaximumIndex = math.MaxInt64

//go:generate mockgen -destination=mocks/backend.go -package=mocks github.com/bitmark-inc/custodyd/storage Backend

// Backend - durable block store
//
// Commit is all-or-nothing: either the block and its subject index
// entry are both durable or neither is visible. Range and Subject
// bounds are inclusive and results are in block index order.
type Backend interface {
	Commit(block *blockrecord.Block) error
	Last() (*blockrecord.Block, error)
	Get(index uint64) (*blockrecord.Block, error)
	Range(from uint64, to uint64, f func(*blockrecord.Block) error) error
	Subject(subjectID string, from uint64, to uint64, f func(*blockrecord.Block) error) error
	Close() error
}

// Open - open a backend by driver name
func Open(driver string, name string, readOnly bool) (Backend, error) {
	switch driver {
	case DriverLevelDB, "":
		return OpenLevelDB(name, readOnly)
	case DriverSQLite:
		return OpenSQLite(name, readOnly)
	default:
		return nil, fault.ErrInvalidDriver
	}
}
