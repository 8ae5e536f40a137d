// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/custodyd/fault"
)

// FetchCursor - cursor structure
type FetchCursor struct {
	pool     *PoolHandle
	maxRange *ldb_util.Range
}

// NewFetchCursor - initialise a cursor to the start of a key range
//
// an empty key prefix covers the whole pool
func (p *PoolHandle) NewFetchCursor(keyPrefix []byte) *FetchCursor {
	return &FetchCursor{
		pool:     p,
		maxRange: p.keyRange(keyPrefix),
	}
}

// Seek - move cursor to specific key position
func (cursor *FetchCursor) Seek(key []byte) *FetchCursor {
	cursor.maxRange.Start = cursor.pool.prefixKey(key)
	return cursor
}

// Limit - stop the cursor before a specific key position
func (cursor *FetchCursor) Limit(key []byte) *FetchCursor {
	cursor.maxRange.Limit = cursor.pool.prefixKey(key)
	return cursor
}

// Map - run a function on all elements in the range
//
// the key passed to f has the pool prefix stripped
func (cursor *FetchCursor) Map(f func(key []byte, value []byte) error) error {
	if nil == cursor {
		return fault.ErrInvalidCursor
	}

	d := cursor.pool.database
	d.RLock()
	defer d.RUnlock()

	if nil == d.db {
		return fault.ErrDatabaseIsNotSet
	}

	iter := d.db.NewIterator(cursor.maxRange, nil)

	var err error
iterating:
	for iter.Next() {

		// contents of the returned slice must not be modified, and are
		// only valid until the next call to Next
		key := iter.Key()
		value := iter.Value()

		dataKey := make([]byte, len(key)-1) // strip the prefix
		copy(dataKey, key[1:])              // ...

		dataValue := make([]byte, len(value))
		copy(dataValue, value)

		err = f(dataKey, dataValue)
		if nil != err {
			break iterating
		}
	}
	iter.Release()
	if nil == err {
		err = iter.Error()
	}
	return err
}
