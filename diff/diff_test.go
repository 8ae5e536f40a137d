// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/diff"
	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/fieldvalue"
)

func snapshot(t *testing.T, s string) diff.Snapshot {
	result, err := diff.SnapshotFromJSON([]byte(s))
	require.NoError(t, err, "snapshot: %s", s)
	return result
}

func TestCreate(t *testing.T) {
	changes, err := diff.Compute(blockrecord.Create, nil, snapshot(t, `{"weight":2.8,"notes":null,"name":"Baby A"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "weight"}, changes.Keys())
	assert.True(t, changes["weight"].Old.IsNull(), "old value")
	assert.Equal(t, "2.8", changes["weight"].New.String())
}

func TestDelete(t *testing.T) {
	changes, err := diff.Compute(blockrecord.Delete, snapshot(t, `{"weight":2.8,"notes":null,"ward":""}`), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"ward", "weight"}, changes.Keys())
	assert.True(t, changes["ward"].New.IsNull(), "new value")
	assert.Equal(t, fieldvalue.String, changes["ward"].Old.Kind(), "empty string kept")
}

func TestUpdate(t *testing.T) {
	before := snapshot(t, `{"weight":2.8,"length":48,"notes":null,"ward":"","nicu":false,"gone":"x"}`)
	after := snapshot(t, `{"weight":2.90,"length":48.0,"notes":"","ward":"","nicu":true,"added":"y","absent":null}`)

	changes, err := diff.Compute(blockrecord.Update, before, after)
	require.NoError(t, err)

	assert.Equal(t, []string{"added", "gone", "nicu", "notes", "weight"}, changes.Keys())
	assert.Equal(t, "2.8", changes["weight"].Old.String())
	assert.Equal(t, "2.9", changes["weight"].New.String())
	assert.True(t, changes["notes"].Old.IsNull(), "null old")
	assert.Equal(t, fieldvalue.String, changes["notes"].New.Kind(), "empty new")
	assert.True(t, changes["gone"].New.IsNull(), "removed field")
	assert.True(t, changes["added"].Old.IsNull(), "added field")
}

// changes contains a key iff the normalised values differ
func TestMinimality(t *testing.T) {
	before := snapshot(t, `{"a":1,"b":"1","c":null,"d":true,"e":"x"}`)
	after := snapshot(t, `{"a":1.000,"b":1,"c":"","d":true}`)

	changes, err := diff.Compute(blockrecord.Update, before, after)
	require.NoError(t, err)

	keys := map[string]bool{}
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		keys[k] = !before[k].Equal(after[k])
	}
	for k, differs := range keys {
		_, present := changes[k]
		assert.Equal(t, differs, present, "field: %q", k)
	}
}

func TestNoChanges(t *testing.T) {
	s := snapshot(t, `{"weight":2.8,"name":"Baby A"}`)
	changes, err := diff.Compute(blockrecord.Update, s, snapshot(t, `{"weight":2.80,"name":"Baby A"}`))
	require.NoError(t, err)
	assert.Equal(t, 0, len(changes))
}

func TestInvalid(t *testing.T) {
	_, err := diff.Compute("MERGE", nil, nil)
	assert.Equal(t, fault.ErrInvalidAction, err)

	_, err = diff.SnapshotFromJSON([]byte(`{"vitals":[1,2]}`))
	assert.True(t, fault.IsErrSerialization(err), "array accepted: %v", err)

	_, err = diff.SnapshotFromJSON([]byte(`{"weight":1e-9}`))
	assert.Equal(t, fault.ErrNumberPrecision, err)

	s, err := diff.SnapshotFromJSON([]byte(` null `))
	require.NoError(t, err)
	assert.Equal(t, 0, len(s))
}
