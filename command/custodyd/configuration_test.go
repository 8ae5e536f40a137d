// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/custodyd/storage"
)

func writeConfiguration(t *testing.T, dir string, content string) string {
	fileName := filepath.Join(dir, "custodyd.conf")
	require.NoError(t, os.WriteFile(fileName, []byte(content), 0600), "write configuration")
	return fileName
}

func TestSampleConfiguration(t *testing.T) {
	dir := t.TempDir()
	sample, err := os.ReadFile("custodyd.conf.sample")
	require.NoError(t, err, "read sample")
	fileName := writeConfiguration(t, dir, string(sample))

	c, err := getConfiguration(fileName, "")
	require.NoError(t, err, "sample configuration")

	assert.True(t, c.VerifyOnStart, "verify on start")
	assert.Equal(t, filepath.Clean(dir)+string(filepath.Separator), c.DataDirectory, "data directory")
	assert.Equal(t, storage.DriverLevelDB, c.Database.Driver, "driver")
	assert.Equal(t, filepath.Join(dir, "data", defaultLevelDBDatabase), c.Database.Name, "database name")
	assert.Equal(t, "2m", c.Database.Cache, "cache")
	assert.Equal(t, uint64(50), c.ClientRPC.MaximumConnections, "rpc connections")
	assert.Equal(t, filepath.Join(dir, "rpc.crt"), c.ClientRPC.Certificate, "rpc certificate")
	assert.Equal(t, []string{"127.0.0.0/8"}, c.ClientRPC.Allow["metrics"], "metrics allow")
	assert.Empty(t, c.Publishing.Broadcast, "publishing disabled")
	assert.Equal(t, filepath.Join(dir, "log"), c.Logging.Directory, "log directory")

	assert.DirExists(t, filepath.Join(dir, "data"), "database directory created")
	assert.DirExists(t, filepath.Join(dir, "log"), "log directory created")
}

func TestEnvironmentFile(t *testing.T) {
	const key = "CUSTODYD_DB_DRIVER"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	dir := t.TempDir()
	sample, err := os.ReadFile("custodyd.conf.sample")
	require.NoError(t, err, "read sample")
	fileName := writeConfiguration(t, dir, string(sample))
	require.NoError(t, os.WriteFile(filepath.Join(dir, defaultEnvironmentFile), []byte(key+"=SQLite\n"), 0600), "write env")

	c, err := getConfiguration(fileName, "")
	require.NoError(t, err, "configuration")
	assert.Equal(t, storage.DriverSQLite, c.Database.Driver, "driver from dotenv")
	assert.Equal(t, filepath.Join(dir, "data", defaultSQLiteDatabase), c.Database.Name, "sqlite default name")
}

func TestInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no data directory", `return {}`},
		{"missing data directory", `return { data_directory = "/no/such/custodyd/dir" }`},
		{"unknown driver", `return { data_directory = ".", database = { driver = "mongo" } }`},
		{"path as name", `return { data_directory = ".", database = { name = "a/b.leveldb" } }`},
	}

	for _, test := range tests {
		fileName := writeConfiguration(t, t.TempDir(), test.content)
		_, err := getConfiguration(fileName, "")
		assert.Error(t, err, test.name)
	}

	fileName := writeConfiguration(t, t.TempDir(), `return { data_directory = "." }`)
	_, err := getConfiguration(fileName, filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err, "explicit environment file must exist")
}

func TestFilenameWithDirectory(t *testing.T) {
	assert.Equal(t, rpcCertificateKeyFilename, getFilenameWithDirectory(nil, rpcCertificateKeyFilename), "current directory")
	assert.Equal(t, filepath.Join("/tmp/keys", publishPublicKeyFilename), getFilenameWithDirectory([]string{"/tmp/keys"}, publishPublicKeyFilename), "given directory")
}
