// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/fixtures"
	"github.com/bitmark-inc/custodyd/storage"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	code := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(code)
}

var drivers = []string{storage.DriverLevelDB, storage.DriverSQLite}

func open(t *testing.T, driver string) storage.Backend {
	dir := t.TempDir()
	backend, err := storage.Open(driver, filepath.Join(dir, "custody."+driver), storage.ReadWrite)
	require.NoError(t, err, driver)
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func collect(t *testing.T, run func(func(*blockrecord.Block) error) error) []uint64 {
	indexes := []uint64{}
	err := run(func(b *blockrecord.Block) error {
		indexes = append(indexes, b.Index)
		return nil
	})
	require.NoError(t, err)
	return indexes
}

func TestEmptyBackend(t *testing.T) {
	for _, driver := range drivers {
		backend := open(t, driver)

		last, err := backend.Last()
		assert.NoError(t, err, driver)
		assert.Nil(t, last, driver)

		_, err = backend.Get(0)
		assert.Equal(t, fault.ErrBlockNotFound, err, driver)

		assert.Empty(t, collect(t, func(f func(*blockrecord.Block) error) error {
			return backend.Range(0, storage.MaximumIndex, f)
		}), driver)
	}
}

func TestCommitAndRead(t *testing.T) {
	chain := fixtures.Chain("B001", "B002", "B001", "B003", "B001")

	for _, driver := range drivers {
		backend := open(t, driver)
		for _, b := range chain {
			require.NoError(t, backend.Commit(b), driver)
		}

		last, err := backend.Last()
		require.NoError(t, err, driver)
		assert.Equal(t, chain[4], last, driver)

		for _, expected := range chain {
			actual, err := backend.Get(expected.Index)
			require.NoError(t, err, driver)
			assert.Equal(t, expected, actual, driver)

			digest, err := actual.Rehash()
			require.NoError(t, err, driver)
			assert.Equal(t, expected.CurrentHash, digest, "stored block rehash: %s", driver)
		}

		all := collect(t, func(f func(*blockrecord.Block) error) error {
			return backend.Range(0, storage.MaximumIndex, f)
		})
		assert.Equal(t, []uint64{0, 1, 2, 3, 4}, all, driver)

		middle := collect(t, func(f func(*blockrecord.Block) error) error {
			return backend.Range(1, 3, f)
		})
		assert.Equal(t, []uint64{1, 2, 3}, middle, driver)

		reversed := collect(t, func(f func(*blockrecord.Block) error) error {
			return backend.Range(3, 1, f)
		})
		assert.Empty(t, reversed, driver)

		subject := collect(t, func(f func(*blockrecord.Block) error) error {
			return backend.Subject("B001", 0, storage.MaximumIndex, f)
		})
		assert.Equal(t, []uint64{0, 2, 4}, subject, driver)

		bounded := collect(t, func(f func(*blockrecord.Block) error) error {
			return backend.Subject("B001", 1, 3, f)
		})
		assert.Equal(t, []uint64{2}, bounded, driver)

		unknown := collect(t, func(f func(*blockrecord.Block) error) error {
			return backend.Subject("B00", 0, storage.MaximumIndex, f)
		})
		assert.Empty(t, unknown, "subject prefix must not match: %s", driver)
	}
}

func TestCommitExisting(t *testing.T) {
	chain := fixtures.Chain("B001", "B002")

	for _, driver := range drivers {
		backend := open(t, driver)
		require.NoError(t, backend.Commit(chain[0]), driver)
		require.NoError(t, backend.Commit(chain[1]), driver)

		err := backend.Commit(chain[1])
		assert.Equal(t, fault.ErrBlockExists, err, driver)
		assert.True(t, fault.IsErrExists(err), driver)

		last, err := backend.Last()
		require.NoError(t, err, driver)
		assert.Equal(t, chain[1], last, driver)
	}
}

func TestRangeStopsOnError(t *testing.T) {
	chain := fixtures.Chain("B001", "B002", "B003")

	for _, driver := range drivers {
		backend := open(t, driver)
		for _, b := range chain {
			require.NoError(t, backend.Commit(b), driver)
		}

		seen := 0
		err := backend.Range(0, storage.MaximumIndex, func(b *blockrecord.Block) error {
			seen += 1
			if 1 == b.Index {
				return fault.ErrInvalidRange
			}
			return nil
		})
		assert.Equal(t, fault.ErrInvalidRange, err, driver)
		assert.Equal(t, 2, seen, driver)
	}
}

func TestReopen(t *testing.T) {
	chain := fixtures.Chain("B001", "B002")

	for _, driver := range drivers {
		name := filepath.Join(t.TempDir(), "custody."+driver)

		backend, err := storage.Open(driver, name, storage.ReadWrite)
		require.NoError(t, err, driver)
		for _, b := range chain {
			require.NoError(t, backend.Commit(b), driver)
		}
		require.NoError(t, backend.Close(), driver)

		backend, err = storage.Open(driver, name, storage.ReadOnly)
		require.NoError(t, err, driver)
		last, err := backend.Last()
		assert.NoError(t, err, driver)
		assert.Equal(t, chain[1], last, driver)
		require.NoError(t, backend.Close(), driver)
	}
}

func TestOpenInvalidDriver(t *testing.T) {
	_, err := storage.Open("postgres", "custody", storage.ReadWrite)
	assert.Equal(t, fault.ErrInvalidDriver, err)
}

func TestEncodeDecode(t *testing.T) {
	b := fixtures.Chain("B001")[0]

	data, err := storage.EncodeBlock(b)
	require.NoError(t, err)

	again, err := storage.EncodeBlock(b)
	require.NoError(t, err)
	assert.Equal(t, data, again, "encoding must be deterministic")

	decoded, err := storage.DecodeBlock(data)
	require.NoError(t, err)
	assert.Equal(t, b, decoded)

	_, err = storage.DecodeBlock([]byte{0xff, 0x00})
	assert.True(t, fault.IsErrStorageIO(err))
}
