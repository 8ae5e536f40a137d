// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package publish_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	zmq "github.com/pebbe/zmq4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/fixtures"
	"github.com/bitmark-inc/custodyd/publish"
	"github.com/bitmark-inc/custodyd/query"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	code := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(code)
}

func TestDisabled(t *testing.T) {
	require.NoError(t, publish.Initialise(&publish.Configuration{}), "initialise")
	assert.Equal(t, fault.ErrAlreadyInitialised, publish.Initialise(&publish.Configuration{}), "second initialise")

	// nothing is queued when disabled
	publish.Observe(fixtures.Chain("B001")[0])

	require.NoError(t, publish.Finalise(), "finalise")
	assert.Equal(t, fault.ErrNotInitialised, publish.Finalise(), "second finalise")
}

func TestBroadcast(t *testing.T) {
	address := "ipc://" + filepath.Join(t.TempDir(), "publish.ipc")

	require.NoError(t, publish.Initialise(&publish.Configuration{
		Broadcast: []string{address},
		QueueSize: 10,
	}), "initialise")
	defer publish.Finalise()

	sub, err := zmq.NewSocket(zmq.SUB)
	require.NoError(t, err, "subscriber")
	defer sub.Close()
	require.NoError(t, sub.SetSubscribe("block"), "subscribe")
	require.NoError(t, sub.SetRcvtimeo(2*time.Second), "timeout")
	require.NoError(t, sub.Connect(address), "connect")

	// allow the subscription to reach the publisher
	time.Sleep(200 * time.Millisecond)

	block := fixtures.Chain("B001")[0]
	publish.Observe(block)

	frames, err := sub.RecvMessageBytes(0)
	require.NoError(t, err, "receive")
	require.Equal(t, 2, len(frames), "frame count")
	assert.Equal(t, "block", string(frames[0]), "command frame")

	var entry query.Entry
	require.NoError(t, json.Unmarshal(frames[1], &entry), "entry")
	assert.Equal(t, block.CurrentHash.String(), entry.CurrentHash, "hash")
	assert.Equal(t, "B001", entry.BabyMRN, "subject")
}
