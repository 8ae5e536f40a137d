// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package query - read only views of the custody ledger for display
package query

import (
	"context"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/ledger"
	"github.com/bitmark-inc/custodyd/storage"
	"github.com/bitmark-inc/custodyd/verifier"
)

// Reader - the ledger operations a Surface needs
type Reader interface {
	GetChain(ctx context.Context, q ledger.Query) ([]*blockrecord.Block, error)
	GetTail() ledger.Tail
	Verify(ctx context.Context, from uint64, to uint64) (verifier.Result, error)
	VerifySubject(ctx context.Context, subjectID string) (verifier.Result, error)
}

// Entry - one block as shown to operators and API clients
type Entry struct {
	BlockIndex   uint64              `json:"block_index"`
	Timestamp    string              `json:"timestamp"`
	UserID       string              `json:"user_id"`
	Action       string              `json:"action"`
	BabyMRN      string              `json:"baby_mrn"`
	Changes      blockrecord.Changes `json:"changes"`
	PreviousHash string              `json:"previous_hash"`
	CurrentHash  string              `json:"current_hash"`
}

// NewEntry - the display form of a block
func NewEntry(b *blockrecord.Block) Entry {
	changes := b.Changes
	if nil == changes {
		changes = blockrecord.Changes{}
	}
	return Entry{
		BlockIndex:   b.Index,
		Timestamp:    blockrecord.FormatTimestamp(b.Timestamp),
		UserID:       b.UserID,
		Action:       string(b.Action),
		BabyMRN:      b.SubjectID,
		Changes:      changes,
		PreviousHash: b.PreviousHash.String(),
		CurrentHash:  b.CurrentHash.String(),
	}
}

// Surface - stateless adapter from the ledger to display entries
type Surface struct {
	reader Reader
}

// New - create a query surface
func New(reader Reader) *Surface {
	return &Surface{
		reader: reader,
	}
}

// AuditTrail - all entries for one subject in index order
//
// an unknown subject has an empty trail
func (s *Surface) AuditTrail(ctx context.Context, subjectID string) ([]Entry, error) {
	return s.entries(ctx, ledger.Query{SubjectID: subjectID})
}

// Chain - entries of the whole ledger, optionally bounded
func (s *Surface) Chain(ctx context.Context, from *uint64, to *uint64) ([]Entry, error) {
	return s.entries(ctx, ledger.Query{From: from, To: to})
}

// Tail - the latest entry, false if the ledger is empty
func (s *Surface) Tail() (Entry, bool) {
	tail := s.reader.GetTail()
	if tail.Empty {
		return Entry{}, false
	}
	return NewEntry(tail.Block), true
}

// Verify - verify one subject, or the whole chain for an empty subject
func (s *Surface) Verify(ctx context.Context, subjectID string) (verifier.Result, error) {
	if "" == subjectID {
		return s.reader.Verify(ctx, 0, storage.MaximumIndex)
	}
	return s.reader.VerifySubject(ctx, subjectID)
}

func (s *Surface) entries(ctx context.Context, q ledger.Query) ([]Entry, error) {
	blocks, err := s.reader.GetChain(ctx, q)
	if nil != err {
		return nil, err
	}
	entries := make([]Entry, 0, len(blocks))
	for _, b := range blocks {
		entries = append(entries, NewEntry(b))
	}
	return entries, nil
}
