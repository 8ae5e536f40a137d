// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/custodyd/configuration"
	"github.com/bitmark-inc/custodyd/fault"
)

type database struct {
	Driver string `gluamapper:"driver"`
	Name   string `gluamapper:"name"`
}

type testConfiguration struct {
	DataDirectory string              `gluamapper:"data_directory"`
	VerifyOnStart bool                `gluamapper:"verify_on_start"`
	Database      database            `gluamapper:"database"`
	Listen        []string            `gluamapper:"listen"`
	Rate          float64             `gluamapper:"request_rate"`
	Allow         map[string][]string `gluamapper:"allow"`
	Secret        string              `gluamapper:"secret"`
}

const luaConfiguration = `
local M = {}

M.data_directory = "."
M.verify_on_start = true
M.database = {
    driver = "sqlite",
    name = "custody.sqlite",
}
M.listen = { "127.0.0.1:2150", "[::1]:2150" }
M.request_rate = 12.5
M.allow = {
    details = { "127.0.0.0/8" },
}
M.secret = os.getenv("CUSTODYD_TEST_SECRET") or "none"

return M
`

func write(t *testing.T, name string, content string) string {
	fileName := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fileName, []byte(content), 0600), "write %s", name)
	return fileName
}

func TestParseConfigurationFile(t *testing.T) {
	fileName := write(t, "custodyd.conf", luaConfiguration)

	var c testConfiguration
	err := configuration.ParseConfigurationFile(fileName, &c)
	require.NoError(t, err, "parse")

	assert.Equal(t, ".", c.DataDirectory, "data directory")
	assert.True(t, c.VerifyOnStart, "verify on start")
	assert.Equal(t, database{Driver: "sqlite", Name: "custody.sqlite"}, c.Database, "database")
	assert.Equal(t, []string{"127.0.0.1:2150", "[::1]:2150"}, c.Listen, "listen")
	assert.Equal(t, 12.5, c.Rate, "rate")
	assert.Equal(t, map[string][]string{"details": {"127.0.0.0/8"}}, c.Allow, "allow")
}

func TestParseWithEnvironment(t *testing.T) {
	const key = "CUSTODYD_TEST_SECRET"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	envFile := write(t, "custodyd.env", key+"=from-dotenv\n")
	require.NoError(t, configuration.LoadEnvironment(envFile, false), "load environment")

	fileName := write(t, "custodyd.conf", luaConfiguration)
	var c testConfiguration
	require.NoError(t, configuration.ParseConfigurationFile(fileName, &c), "parse")
	assert.Equal(t, "from-dotenv", c.Secret, "secret from dotenv")
}

func TestLoadEnvironment(t *testing.T) {
	assert.NoError(t, configuration.LoadEnvironment("", false), "blank name")

	missing := filepath.Join(t.TempDir(), "missing.env")
	assert.NoError(t, configuration.LoadEnvironment(missing, true), "optional missing file")
	assert.Error(t, configuration.LoadEnvironment(missing, false), "required missing file")
}

func TestParseErrors(t *testing.T) {
	var c testConfiguration

	err := configuration.ParseConfigurationFile(filepath.Join(t.TempDir(), "missing.conf"), &c)
	assert.Error(t, err, "missing file")

	err = configuration.ParseConfigurationFile(write(t, "syntax.conf", "return {"), &c)
	assert.Error(t, err, "syntax error")

	err = configuration.ParseConfigurationFile(write(t, "number.conf", "return 42"), &c)
	assert.Equal(t, fault.ErrInvalidConfiguration, err, "not a table")
}
