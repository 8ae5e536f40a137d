// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package custody - turn record mutations into ledger blocks
package custody

import (
	"context"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/diff"
	"github.com/bitmark-inc/custodyd/fault"
)

// Appender - where committed changes go
type Appender interface {
	Append(ctx context.Context, request blockrecord.Request) (*blockrecord.Block, error)
}

// Event - a mutation already committed to the record store
type Event struct {
	SubjectID   string
	ActorID     string
	Action      blockrecord.Action
	Old         diff.Snapshot
	New         diff.Snapshot
	AuditMarker bool
}

// Recorder - diffs mutation events and appends them to the ledger
type Recorder struct {
	log      *logger.L
	appender Appender
}

// NewRecorder - create a recorder writing to an appender
func NewRecorder(appender Appender) *Recorder {
	return &Recorder{
		log:      logger.New("custody"),
		appender: appender,
	}
}

// Record - append the changes described by an event
//
// an UPDATE that changes nothing returns fault.ErrEmptyChangeSet and
// appends nothing, unless the event is an audit marker
func (r *Recorder) Record(ctx context.Context, event Event) (*blockrecord.Block, error) {
	changes, err := diff.Compute(event.Action, event.Old, event.New)
	if nil != err {
		return nil, err
	}

	block, err := r.appender.Append(ctx, blockrecord.Request{
		SubjectID:   event.SubjectID,
		UserID:      event.ActorID,
		Action:      event.Action,
		Changes:     changes,
		AuditMarker: event.AuditMarker,
	})
	if fault.IsErrEmptyChangeSet(err) {
		r.log.Debugf("subject: %q  actor: %q  no changes detected", event.SubjectID, event.ActorID)
		return nil, err
	}
	if nil != err {
		r.log.Errorf("subject: %q  actor: %q  action: %s  error: %s", event.SubjectID, event.ActorID, event.Action, err)
		return nil, err
	}
	return block, nil
}
