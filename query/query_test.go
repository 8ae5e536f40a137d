// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package query_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/fieldvalue"
	"github.com/bitmark-inc/custodyd/fixtures"
	"github.com/bitmark-inc/custodyd/ledger"
	"github.com/bitmark-inc/custodyd/query"
	"github.com/bitmark-inc/custodyd/storage"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	code := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(code)
}

func setup(t *testing.T) (*ledger.Store, *query.Surface) {
	backend, err := storage.Open(storage.DriverSQLite, filepath.Join(t.TempDir(), "custody.sqlite"), storage.ReadWrite)
	require.NoError(t, err, "open")

	store, err := ledger.New(backend, ledger.Clock(fixtures.Clock()))
	require.NoError(t, err, "new ledger")
	t.Cleanup(func() { _ = store.Close() })

	return store, query.New(store)
}

func TestAuditTrail(t *testing.T) {
	store, surface := setup(t)
	ctx := context.Background()

	_, ok := surface.Tail()
	assert.False(t, ok, "empty tail")

	trail, err := surface.AuditTrail(ctx, "B001")
	require.NoError(t, err, "empty trail")
	assert.NotNil(t, trail, "empty trail is not nil")
	assert.Empty(t, trail, "empty trail")

	_, err = store.Append(ctx, fixtures.Weight("B001", 2.8))
	require.NoError(t, err, "create")
	_, err = store.Append(ctx, fixtures.Weight("B002", 3.1))
	require.NoError(t, err, "create other")

	next, err := fieldvalue.NewNumber("2.90")
	require.NoError(t, err, "number")
	old, err := fieldvalue.NewNumber("2.8")
	require.NoError(t, err, "number")
	_, err = store.Append(ctx, blockrecord.Request{
		SubjectID: "B001",
		UserID:    "nurse-2",
		Action:    blockrecord.Update,
		Changes:   blockrecord.Changes{"weight": {Old: old, New: next}},
	})
	require.NoError(t, err, "update")

	trail, err = surface.AuditTrail(ctx, "B001")
	require.NoError(t, err, "trail")
	require.Equal(t, 2, len(trail), "trail length")

	assert.Equal(t, uint64(0), trail[0].BlockIndex, "first index")
	assert.Equal(t, uint64(2), trail[1].BlockIndex, "second index")
	assert.Equal(t, "B001", trail[1].BabyMRN, "subject")
	assert.Equal(t, "UPDATE", trail[1].Action, "action")
	assert.Equal(t, "2024-03-01T08:30:02.000Z", trail[1].Timestamp, "timestamp")
	assert.Equal(t, "0000000000000000000000000000000000000000000000000000000000000000", trail[0].PreviousHash, "genesis")

	data, err := json.Marshal(trail[1])
	require.NoError(t, err, "marshal")
	var shape map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &shape), "unmarshal")
	for _, key := range []string{"block_index", "timestamp", "user_id", "action", "baby_mrn", "changes", "previous_hash", "current_hash"} {
		assert.Contains(t, shape, key, "entry key")
	}
	assert.Equal(t, map[string]interface{}{
		"weight": map[string]interface{}{"old_value": 2.8, "new_value": 2.9},
	}, shape["changes"], "display changes")

	all, err := surface.Chain(ctx, nil, nil)
	require.NoError(t, err, "chain")
	assert.Equal(t, 3, len(all), "whole chain")

	from := uint64(1)
	part, err := surface.Chain(ctx, &from, nil)
	require.NoError(t, err, "partial chain")
	assert.Equal(t, 2, len(part), "from 1")

	tail, ok := surface.Tail()
	assert.True(t, ok, "tail present")
	assert.Equal(t, trail[1], tail, "tail entry")

	r, err := surface.Verify(ctx, "")
	require.NoError(t, err, "verify chain")
	assert.True(t, r.Valid, "chain valid")
	assert.Equal(t, 3, r.Checked, "chain checked")

	r, err = surface.Verify(ctx, "B001")
	require.NoError(t, err, "verify subject")
	assert.True(t, r.Valid, "subject valid")
	assert.Equal(t, 2, r.Checked, "subject checked")
}
