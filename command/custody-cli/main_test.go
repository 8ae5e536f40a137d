// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/custodyd/fixtures"
	"github.com/bitmark-inc/custodyd/query"
	"github.com/bitmark-inc/custodyd/storage"
	"github.com/bitmark-inc/custodyd/verifier"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	cli.OsExiter = func(int) {}
	code := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(code)
}

// a database holding blocks for the given subjects
func database(t *testing.T, driver string, subjects ...string) string {
	name := filepath.Join(t.TempDir(), "custody."+driver)
	backend, err := storage.Open(driver, name, storage.ReadWrite)
	require.NoError(t, err, "open")
	for _, b := range fixtures.Chain(subjects...) {
		require.NoError(t, backend.Commit(b), "commit: %d", b.Index)
	}
	require.NoError(t, backend.Close(), "close")
	return name
}

func runApp(t *testing.T, arguments ...string) (string, error) {
	var w, e bytes.Buffer
	app := newApp(&w, &e)
	err := app.Run(append([]string{"custody-cli"}, arguments...))
	return w.String(), err
}

func TestDump(t *testing.T) {
	for _, driver := range []string{storage.DriverLevelDB, storage.DriverSQLite} {
		name := database(t, driver, "B001", "B002", "B001")

		out, err := runApp(t, "--driver", driver, "--database", name, "dump", "--from", "1")
		require.NoError(t, err, "%s: dump", driver)

		var entries []query.Entry
		require.NoError(t, json.Unmarshal([]byte(out), &entries), "%s: decode", driver)
		require.Equal(t, 2, len(entries), "%s: entries", driver)
		assert.Equal(t, uint64(1), entries[0].BlockIndex, "%s: first", driver)
		assert.Equal(t, "B002", entries[0].BabyMRN, "%s: subject", driver)
	}
}

func TestTrail(t *testing.T) {
	name := database(t, storage.DriverLevelDB, "B001", "B002", "B001")

	out, err := runApp(t, "-d", name, "trail", "B001")
	require.NoError(t, err, "trail")

	var entries []query.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries), "decode")
	require.Equal(t, 2, len(entries), "entries")
	assert.Equal(t, uint64(0), entries[0].BlockIndex, "first")
	assert.Equal(t, uint64(2), entries[1].BlockIndex, "second")

	_, err = runApp(t, "-d", name, "trail")
	assert.Error(t, err, "missing subject")
}

func TestVerifyAndTail(t *testing.T) {
	name := database(t, storage.DriverSQLite, "B001", "B002")

	out, err := runApp(t, "-D", storage.DriverSQLite, "-d", name, "verify")
	require.NoError(t, err, "verify")
	var result verifier.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result), "decode result")
	assert.True(t, result.Valid, "valid")
	assert.Equal(t, 2, result.Checked, "checked")

	out, err = runApp(t, "-D", storage.DriverSQLite, "-d", name, "verify", "B002")
	require.NoError(t, err, "verify subject")
	require.NoError(t, json.Unmarshal([]byte(out), &result), "decode subject result")
	assert.Equal(t, 1, result.Checked, "subject checked")

	out, err = runApp(t, "-D", storage.DriverSQLite, "-d", name, "tail")
	require.NoError(t, err, "tail")
	var entry query.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entry), "decode tail")
	assert.Equal(t, uint64(1), entry.BlockIndex, "tail index")
}

func TestEmptyTail(t *testing.T) {
	name := database(t, storage.DriverLevelDB)

	out, err := runApp(t, "-d", name, "tail")
	require.NoError(t, err, "tail")
	assert.JSONEq(t, `{"empty":true}`, out, "empty")
}

func TestMissingDatabase(t *testing.T) {
	_, err := runApp(t, "dump")
	assert.Error(t, err, "no database flag")

	out, err := runApp(t, "version")
	require.NoError(t, err, "version needs no database")
	assert.Equal(t, version+"\n", out, "version")
}
