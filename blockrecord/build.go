// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"time"

	"github.com/bitmark-inc/custodyd/fault"
)

// Request - everything a caller supplies for one ledger append
//
// the index, timestamp and hashes are assigned by the store
type Request struct {
	SubjectID string
	UserID    string
	Action    Action
	Changes   Changes

	// allow an UPDATE with no changes to be recorded as an audit marker
	AuditMarker bool
}

// Build - assemble an unsealed block at the given index
//
// an UPDATE without changes is rejected with ErrEmptyChangeSet unless
// the request is flagged as an audit marker
func Build(request Request, index uint64, now time.Time) (*Unsealed, error) {
	if !request.Action.Valid() {
		return nil, fault.ErrInvalidAction
	}
	if "" == request.SubjectID {
		return nil, fault.ErrMissingSubject
	}
	if "" == request.UserID {
		return nil, fault.ErrMissingUser
	}

	if Update == request.Action && 0 == len(request.Changes) && !request.AuditMarker {
		return nil, fault.ErrEmptyChangeSet
	}

	changes := make(Changes, len(request.Changes))
	for field, change := range request.Changes {
		switch request.Action {
		case Create:
			if !change.Old.IsNull() {
				return nil, fault.ErrOldValueOnCreate
			}
		case Delete:
			if !change.New.IsNull() {
				return nil, fault.ErrNewValueOnDelete
			}
		}
		changes[field] = change
	}

	return &Unsealed{
		Index:     index,
		Timestamp: now.UTC().Truncate(time.Millisecond),
		UserID:    request.UserID,
		Action:    request.Action,
		SubjectID: request.SubjectID,
		Changes:   changes,
	}, nil
}
