// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/bitmark-inc/custodyd/blockdigest"
	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/fieldvalue"
)

type storedValue struct {
	Tag  byte   `cbor:"1,keyasint"`
	Text string `cbor:"2,keyasint"`
}

type storedChange struct {
	Field string      `cbor:"1,keyasint"`
	Old   storedValue `cbor:"2,keyasint"`
	New   storedValue `cbor:"3,keyasint"`
}

type storedBlock struct {
	Index        uint64         `cbor:"1,keyasint"`
	Timestamp    string         `cbor:"2,keyasint"`
	UserID       string         `cbor:"3,keyasint"`
	Action       string         `cbor:"4,keyasint"`
	SubjectID    string         `cbor:"5,keyasint"`
	Changes      []storedChange `cbor:"6,keyasint"`
	PreviousHash string         `cbor:"7,keyasint"`
	CurrentHash  string         `cbor:"8,keyasint"`
}

// deterministic encoding, so a stored record has a single byte form
var encoding cbor.EncMode

func init() {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if nil != err {
		panic(err)
	}
	encoding = em
}

// EncodeBlock - the stored form of a block
func EncodeBlock(block *blockrecord.Block) ([]byte, error) {
	return encoding.Marshal(storedBlock{
		Index:        block.Index,
		Timestamp:    blockrecord.FormatTimestamp(block.Timestamp),
		UserID:       block.UserID,
		Action:       string(block.Action),
		SubjectID:    block.SubjectID,
		Changes:      toStoredChanges(block.Changes),
		PreviousHash: block.PreviousHash.String(),
		CurrentHash:  block.CurrentHash.String(),
	})
}

// DecodeBlock - rebuild a block from its stored form
func DecodeBlock(data []byte) (*blockrecord.Block, error) {
	var s storedBlock
	if err := cbor.Unmarshal(data, &s); nil != err {
		return nil, fmt.Errorf("%w: %s", fault.ErrInvalidStoredBlock, err)
	}
	return s.block()
}

func encodeChanges(changes blockrecord.Changes) ([]byte, error) {
	return encoding.Marshal(toStoredChanges(changes))
}

func decodeChanges(data []byte) (blockrecord.Changes, error) {
	var list []storedChange
	if err := cbor.Unmarshal(data, &list); nil != err {
		return nil, fmt.Errorf("%w: %s", fault.ErrInvalidStoredBlock, err)
	}
	changes, err := fromStoredChanges(list)
	if nil != err {
		return nil, fmt.Errorf("%w: changes: %s", fault.ErrInvalidStoredBlock, err)
	}
	return changes, nil
}

func toStoredChanges(changes blockrecord.Changes) []storedChange {
	list := make([]storedChange, 0, len(changes))
	for _, field := range changes.Keys() {
		c := changes[field]
		list = append(list, storedChange{
			Field: field,
			Old:   storedValue{Tag: c.Old.Tag(), Text: c.Old.Canonical()},
			New:   storedValue{Tag: c.New.Tag(), Text: c.New.Canonical()},
		})
	}
	return list
}

func fromStoredChanges(list []storedChange) (blockrecord.Changes, error) {
	changes := make(blockrecord.Changes, len(list))
	for _, c := range list {
		old, err := c.Old.value()
		if nil != err {
			return nil, err
		}
		next, err := c.New.value()
		if nil != err {
			return nil, err
		}
		changes[c.Field] = blockrecord.Change{Old: old, New: next}
	}
	return changes, nil
}

func (v storedValue) value() (fieldvalue.Value, error) {
	kind, err := fieldvalue.KindFromTag(v.Tag)
	if nil != err {
		return fieldvalue.Value{}, err
	}
	return fieldvalue.FromCanonical(kind, v.Text)
}

func (s *storedBlock) block() (*blockrecord.Block, error) {
	timestamp, err := blockrecord.ParseTimestamp(s.Timestamp)
	if nil != err {
		return nil, fmt.Errorf("%w: timestamp: %s", fault.ErrInvalidStoredBlock, err)
	}
	changes, err := fromStoredChanges(s.Changes)
	if nil != err {
		return nil, fmt.Errorf("%w: changes: %s", fault.ErrInvalidStoredBlock, err)
	}
	return assemble(s.Index, timestamp, s.UserID, s.Action, s.SubjectID, changes, s.PreviousHash, s.CurrentHash)
}

// build a block from decoded columns
func assemble(index uint64, timestamp time.Time, userID, action, subjectID string, changes blockrecord.Changes, previous, current string) (*blockrecord.Block, error) {
	previousHash, err := blockdigest.DigestFromHex(previous)
	if nil != err {
		return nil, fmt.Errorf("%w: previous hash: %s", fault.ErrInvalidStoredBlock, err)
	}
	currentHash, err := blockdigest.DigestFromHex(current)
	if nil != err {
		return nil, fmt.Errorf("%w: current hash: %s", fault.ErrInvalidStoredBlock, err)
	}

	// an unknown action is kept as stored so verification reports it
	return &blockrecord.Block{
		Unsealed: blockrecord.Unsealed{
			Index:     index,
			Timestamp: timestamp,
			UserID:    userID,
			Action:    blockrecord.Action(action),
			SubjectID: subjectID,
			Changes:   changes,
		},
		PreviousHash: previousHash,
		CurrentHash:  currentHash,
	}, nil
}
