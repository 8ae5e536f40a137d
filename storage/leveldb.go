// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/util"
)

// big endian block index
func blockKey(index uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, index)
	return key
}

// length prefixed subject, so one subject can never be a prefix of another
func subjectPrefix(subjectID string) []byte {
	return util.AppendPrefixed(nil, []byte(subjectID))
}

// subject index key for one block
func subjectKey(prefix []byte, index uint64) []byte {
	key := make([]byte, 0, len(prefix)+8)
	key = append(key, prefix...)
	return append(key, blockKey(index)...)
}

// split a subject index key into its subject and block index
func splitSubjectKey(key []byte) (string, uint64, bool) {
	subject, n, ok := util.FromPrefixed(key)
	if !ok || 8 != len(key)-n {
		return "", 0, false
	}
	return string(subject), binary.BigEndian.Uint64(key[n:]), true
}

// Commit - write a block and its subject index entry in one batch
func (d *LevelDB) Commit(block *blockrecord.Block) error {
	data, err := EncodeBlock(block)
	if nil != err {
		return err
	}

	key := blockKey(block.Index)

	exists, err := d.Pool.Blocks.Has(key)
	if nil != err {
		return fmt.Errorf("%w: %s", fault.ErrStorageRead, err)
	}
	if exists {
		return fault.ErrBlockExists
	}

	batch := new(leveldb.Batch)
	batch.Put(d.Pool.Blocks.prefixKey(key), data)
	batch.Put(d.Pool.Subjects.prefixKey(subjectKey(subjectPrefix(block.SubjectID), block.Index)), []byte{})

	d.RLock()
	defer d.RUnlock()

	if nil == d.db {
		return fault.ErrDatabaseIsNotSet
	}
	err = d.db.Write(batch, &ldb_opt.WriteOptions{Sync: true})
	if nil != err {
		return fmt.Errorf("%w: %s", fault.ErrStorageWrite, err)
	}
	return nil
}

// Last - the highest indexed block, nil if the database is empty
func (d *LevelDB) Last() (*blockrecord.Block, error) {
	element, found, err := d.Pool.Blocks.LastElement()
	if nil != err {
		return nil, fmt.Errorf("%w: %s", fault.ErrStorageRead, err)
	}
	if !found {
		return nil, nil
	}
	return DecodeBlock(element.Value)
}

// Get - a single block by index
func (d *LevelDB) Get(index uint64) (*blockrecord.Block, error) {
	data, err := d.Pool.Blocks.Get(blockKey(index))
	if nil != err {
		return nil, fmt.Errorf("%w: %s", fault.ErrStorageRead, err)
	}
	if nil == data {
		return nil, fault.ErrBlockNotFound
	}
	return DecodeBlock(data)
}

// Range - blocks from..to inclusive in index order
func (d *LevelDB) Range(from uint64, to uint64, f func(*blockrecord.Block) error) error {
	if from > to {
		return nil
	}

	cursor := d.Pool.Blocks.NewFetchCursor(nil).Seek(blockKey(from))
	if to < MaximumIndex {
		cursor.Limit(blockKey(to + 1))
	}

	// decode after the iterator is released so f may call back into the store
	var elements []Element
	err := cursor.Map(func(key []byte, value []byte) error {
		elements = append(elements, Element{Key: key, Value: value})
		return nil
	})
	if nil != err {
		return fmt.Errorf("%w: %s", fault.ErrStorageRead, err)
	}

	for _, e := range elements {
		block, err := DecodeBlock(e.Value)
		if nil != err {
			return err
		}
		if err := f(block); nil != err {
			return err
		}
	}
	return nil
}

// Subject - blocks of one subject with index from..to inclusive
func (d *LevelDB) Subject(subjectID string, from uint64, to uint64, f func(*blockrecord.Block) error) error {
	if from > to {
		return nil
	}

	prefix := subjectPrefix(subjectID)
	cursor := d.Pool.Subjects.NewFetchCursor(prefix).Seek(subjectKey(prefix, from))
	if to < MaximumIndex {
		cursor.Limit(subjectKey(prefix, to+1))
	}

	var indexes []uint64
	err := cursor.Map(func(key []byte, value []byte) error {
		id, index, ok := splitSubjectKey(key)
		if !ok || id != subjectID {
			return fault.ErrInvalidStoredBlock
		}
		indexes = append(indexes, index)
		return nil
	})
	if nil != err {
		return fmt.Errorf("%w: %s", fault.ErrStorageRead, err)
	}

	for _, index := range indexes {
		block, err := d.Get(index)
		if nil != err {
			return err
		}
		if err := f(block); nil != err {
			return err
		}
	}
	return nil
}
