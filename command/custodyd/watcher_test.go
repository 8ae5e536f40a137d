// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/custodyd/fixtures"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	code := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(code)
}

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "custodyd.conf")
	other := filepath.Join(dir, "other.conf")
	require.NoError(t, os.WriteFile(fileName, []byte("return {}"), 0600), "write")

	reloaded := make(chan string, 10)
	w, err := newFileWatcher(logger.New(fixtures.LogCategory), fileName, func(name string) error {
		reloaded <- name
		return nil
	})
	require.NoError(t, err, "new watcher")
	require.NoError(t, w.Start(), "start")
	defer w.Stop()

	require.NoError(t, os.WriteFile(other, []byte("return {}"), 0600), "write other")
	require.NoError(t, os.WriteFile(fileName, []byte("return { verify_on_start = true }"), 0600), "rewrite")

	select {
	case name := <-reloaded:
		assert.Equal(t, fileName, name, "reloaded file")
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcherMissingFile(t *testing.T) {
	_, err := newFileWatcher(logger.New(fixtures.LogCategory), filepath.Join(t.TempDir(), "missing.conf"), nil)
	assert.Error(t, err, "missing file")
}
