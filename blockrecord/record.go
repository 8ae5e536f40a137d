// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"sort"
	"strings"
	"time"

	"github.com/bitmark-inc/custodyd/blockdigest"
	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/fieldvalue"
)

// TimestampFormat - ISO-8601 UTC with millisecond precision
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Action - the kind of mutation a block records
type Action string

// the possible actions
const (
	Create Action = "CREATE"
	Update Action = "UPDATE"
	Delete Action = "DELETE"
)

// ParseAction - convert text to an action, ignoring case
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fault.ErrInvalidAction
	}
	return a, nil
}

// Valid - true for the three known actions
func (a Action) Valid() bool {
	switch a {
	case Create, Update, Delete:
		return true
	default:
		return false
	}
}

// Change - before and after values of one field
type Change struct {
	Old fieldvalue.Value `json:"old_value"`
	New fieldvalue.Value `json:"new_value"`
}

// Changes - field name → change
type Changes map[string]Change

// Keys - field names in byte-wise lexicographic order
func (c Changes) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Unsealed - a block before it is linked into the chain
type Unsealed struct {
	Index     uint64
	Timestamp time.Time
	UserID    string
	Action    Action
	SubjectID string
	Changes   Changes
}

// Block - a committed, immutable chain entry
type Block struct {
	Unsealed
	PreviousHash blockdigest.Digest
	CurrentHash  blockdigest.Digest
}

// Copy - a block that shares no map with the original
func (b *Block) Copy() *Block {
	c := *b
	c.Changes = make(Changes, len(b.Changes))
	for field, change := range b.Changes {
		c.Changes[field] = change
	}
	return &c
}

// FormatTimestamp - the text form of a block timestamp
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ParseTimestamp - inverse of FormatTimestamp
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampFormat, s, time.UTC)
}
