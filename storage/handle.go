// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/custodyd/fault"
)

// PoolHandle - one prefix range of a LevelDB database
type PoolHandle struct {
	prefix   byte
	limit    []byte
	database *LevelDB
}

// Element - a binary data item
type Element struct {
	Key   []byte
	Value []byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// the whole pool, or the part of it beginning with a key prefix
func (p *PoolHandle) keyRange(keyPrefix []byte) *ldb_util.Range {
	if 0 == len(keyPrefix) {
		return &ldb_util.Range{
			Start: []byte{p.prefix}, // Start of key range, included in the range
			Limit: p.limit,          // Limit of key range, excluded from the range
		}
	}
	return ldb_util.BytesPrefix(p.prefixKey(keyPrefix))
}

// Put - store a key/value bytes pair outside any block commit
//
// this bypasses the append-only checks of Commit and is only for
// database maintenance
func (p *PoolHandle) Put(key []byte, value []byte) error {
	p.database.RLock()
	defer p.database.RUnlock()

	if nil == p.database.db {
		return fault.ErrDatabaseIsNotSet
	}
	return p.database.db.Put(p.prefixKey(key), value, nil)
}

// Get - read a value for a given key
//
// returns nil, nil if the key does not exist
func (p *PoolHandle) Get(key []byte) ([]byte, error) {
	p.database.RLock()
	defer p.database.RUnlock()

	if nil == p.database.db {
		return nil, fault.ErrDatabaseIsNotSet
	}
	value, err := p.database.db.Get(p.prefixKey(key), nil)
	if leveldb.ErrNotFound == err {
		return nil, nil
	}
	return value, err
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) (bool, error) {
	p.database.RLock()
	defer p.database.RUnlock()

	if nil == p.database.db {
		return false, fault.ErrDatabaseIsNotSet
	}
	return p.database.db.Has(p.prefixKey(key), nil)
}

// LastElement - get the last element in a pool
func (p *PoolHandle) LastElement() (Element, bool, error) {
	p.database.RLock()
	defer p.database.RUnlock()

	if nil == p.database.db {
		return Element{}, false, fault.ErrDatabaseIsNotSet
	}

	iter := p.database.db.NewIterator(p.keyRange(nil), nil)

	found := false
	result := Element{}
	if iter.Last() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-1) // strip the prefix
		copy(dataKey, key[1:])              // ...

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		result.Key = dataKey
		result.Value = dataValue
		found = true
	}
	iter.Release()
	return result, found, iter.Error()
}
