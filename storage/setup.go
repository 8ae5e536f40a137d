// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/custodyd/fault"
)

// the pools of a custody database
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	Blocks   *PoolHandle `prefix:"B"`
	Subjects *PoolHandle `prefix:"S"`
}

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDBVersion = 0x100

// LevelDB - a custody chain held in a LevelDB database
type LevelDB struct {
	sync.RWMutex
	log  *logger.L
	db   *leveldb.DB
	Pool pools
}

// OpenLevelDB - open up the database connection
//
// a read only open requires an existing database of the current version
func OpenLevelDB(name string, readOnly bool) (*LevelDB, error) {
	log := logger.New("storage")

	db, version, err := getDB(name, readOnly)
	if nil != err {
		return nil, fmt.Errorf("%w: open: %q: %s", fault.ErrStorageRead, name, err)
	}

	ok := false
	defer func() {
		if !ok {
			db.Close()
		}
	}()

	// ensure no database downgrade
	if version > currentDBVersion {
		log.Criticalf("database version: %d > current version: %d", version, currentDBVersion)
		return nil, fault.ErrIncompatibleDatabase
	}

	// prevent readOnly from modifying the database
	if readOnly && version != currentDBVersion {
		log.Criticalf("database version: %d  current: %d", version, currentDBVersion)
		return nil, fault.ErrIncompatibleDatabase
	}

	if 0 == version {
		// database was empty so tag as current version
		if err := putVersion(db, currentDBVersion); nil != err {
			return nil, fmt.Errorf("%w: version: %s", fault.ErrStorageWrite, err)
		}
	}

	d := &LevelDB{
		log: log,
		db:  db,
	}

	// this will be a struct type
	poolType := reflect.TypeOf(d.Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&d.Pool).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)

		prefixTag := fieldInfo.Tag.Get("prefix")
		if 1 != len(prefixTag) {
			return nil, fmt.Errorf("pool: %v has invalid prefix: %q", fieldInfo, prefixTag)
		}

		prefix := prefixTag[0]
		limit := []byte(nil)
		if prefix < 255 {
			limit = []byte{prefix + 1}
		}

		p := &PoolHandle{
			prefix:   prefix,
			limit:    limit,
			database: d,
		}
		poolValue.Field(i).Set(reflect.ValueOf(p))
	}

	log.Infof("opened: %q  read only: %v", name, readOnly)
	ok = true // prevent db close
	return d, nil
}

// Close - close the database connection
func (d *LevelDB) Close() error {
	d.Lock()
	defer d.Unlock()

	if nil == d.db {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	d.log.Info("closed")
	d.log.Flush()
	return err
}

// return:
//   database handle
//   version number
func getDB(name string, readOnly bool) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fmt.Errorf("incompatible database version length: expected: %d  actual: %d", 4, len(versionValue))
	}

	version := int(binary.BigEndian.Uint32(versionValue))
	return db, version, nil
}

func putVersion(db *leveldb.DB, version int) error {
	currentVersion := make([]byte, 4)
	binary.BigEndian.PutUint32(currentVersion, uint32(version))

	return db.Put(versionKey, currentVersion, nil)
}
