// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/custodyd/fault"
)

func setupPools(t *testing.T) *LevelDB {
	d, err := OpenLevelDB(filepath.Join(t.TempDir(), "cursor.leveldb"), ReadWrite)
	require.NoError(t, err, "open")
	t.Cleanup(func() { _ = d.Close() })

	for i := uint64(0); i < 5; i += 1 {
		require.NoError(t, d.Pool.Blocks.Put(blockKey(i), []byte{byte('a' + i)}), "put")
	}
	require.NoError(t, d.Pool.Subjects.Put(subjectKey(subjectPrefix("B001"), 3), []byte{}), "put subject")
	return d
}

func TestCursorSeekLimit(t *testing.T) {
	d := setupPools(t)

	keys := [][]byte{}
	err := d.Pool.Blocks.NewFetchCursor(nil).Seek(blockKey(1)).Limit(blockKey(3)).Map(func(key []byte, value []byte) error {
		keys = append(keys, key)
		return nil
	})
	require.NoError(t, err, "map")
	assert.Equal(t, [][]byte{blockKey(1), blockKey(2)}, keys, "half open range")
}

func TestPoolsAreSeparate(t *testing.T) {
	d := setupPools(t)

	element, found, err := d.Pool.Blocks.LastElement()
	require.NoError(t, err, "last block")
	assert.True(t, found, "found")
	assert.Equal(t, blockKey(4), element.Key, "last block key")

	element, found, err = d.Pool.Subjects.LastElement()
	require.NoError(t, err, "last subject")
	assert.True(t, found, "found")
	assert.Equal(t, subjectKey(subjectPrefix("B001"), 3), element.Key, "subject key")

	has, err := d.Pool.Subjects.Has(blockKey(4))
	require.NoError(t, err, "has")
	assert.False(t, has, "block key is not in the subject pool")

	value, err := d.Pool.Blocks.Get(blockKey(9))
	assert.NoError(t, err, "missing get")
	assert.Nil(t, value, "missing value")
}

func TestClosedDatabase(t *testing.T) {
	d := setupPools(t)
	require.NoError(t, d.Close(), "close")

	_, err := d.Pool.Blocks.Get(blockKey(0))
	assert.Equal(t, fault.ErrDatabaseIsNotSet, err, "get after close")

	err = d.Pool.Blocks.NewFetchCursor(nil).Map(func([]byte, []byte) error { return nil })
	assert.Equal(t, fault.ErrDatabaseIsNotSet, err, "map after close")
}

func TestSplitSubjectKey(t *testing.T) {
	key := subjectKey(subjectPrefix("B001"), 300)
	subjectID, index, ok := splitSubjectKey(key)
	assert.True(t, ok, "split")
	assert.Equal(t, "B001", subjectID, "subject")
	assert.Equal(t, uint64(300), index, "index")

	_, _, ok = splitSubjectKey(key[:len(key)-1])
	assert.False(t, ok, "short index")

	_, _, ok = splitSubjectKey([]byte{0x09, 'B', '0'})
	assert.False(t, ok, "truncated subject")
}
