// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package diff - field level change sets between record snapshots
//
// values are compared by kind and canonical text (see fieldvalue), so
// 2.8 and 2.80 are equal while null, "" and "null" are all distinct.
// A field missing from a snapshot is treated as null.
package diff

import (
	"bytes"
	"encoding/json"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/fieldvalue"
)

// Snapshot - one version of a record: field name → value
type Snapshot map[string]fieldvalue.Value

// Compute - the minimal change set for an action
//
//   CREATE: every non-null field of next, old value null
//   DELETE: every non-null field of previous, new value null
//   UPDATE: every field whose value differs
//
// an UPDATE with identical snapshots returns an empty map
func Compute(action blockrecord.Action, previous Snapshot, next Snapshot) (blockrecord.Changes, error) {
	changes := make(blockrecord.Changes)

	switch action {
	case blockrecord.Create:
		for field, value := range next {
			if !value.IsNull() {
				changes[field] = blockrecord.Change{Old: fieldvalue.NewNull(), New: value}
			}
		}

	case blockrecord.Delete:
		for field, value := range previous {
			if !value.IsNull() {
				changes[field] = blockrecord.Change{Old: value, New: fieldvalue.NewNull()}
			}
		}

	case blockrecord.Update:
		for field, old := range previous {
			if value := next[field]; !old.Equal(value) {
				changes[field] = blockrecord.Change{Old: old, New: value}
			}
		}
		for field, value := range next {
			if _, ok := previous[field]; ok {
				continue
			}
			if !value.IsNull() {
				changes[field] = blockrecord.Change{Old: fieldvalue.NewNull(), New: value}
			}
		}

	default:
		return nil, fault.ErrInvalidAction
	}

	return changes, nil
}

// SnapshotFromJSON - decode a JSON object of scalar fields
//
// null or empty input is an empty snapshot
func SnapshotFromJSON(data []byte) (Snapshot, error) {
	data = bytes.TrimSpace(data)
	if 0 == len(data) || bytes.Equal(data, []byte("null")) {
		return Snapshot{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); nil != err {
		return nil, err
	}

	snapshot := make(Snapshot, len(raw))
	for field, item := range raw {
		var v fieldvalue.Value
		if err := v.UnmarshalJSON(item); nil != err {
			return nil, err
		}
		snapshot[field] = v
	}
	return snapshot, nil
}
