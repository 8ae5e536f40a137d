// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"unicode/utf8"

	"github.com/bitmark-inc/custodyd/blockdigest"
	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/fieldvalue"
	"github.com/bitmark-inc/custodyd/util"
)

// FormatVersion - first field of every packed block
const FormatVersion = 1

// Packed - canonical byte form of a block, the input to its digest
type Packed []byte

// Pack - canonical encoding of an unsealed block linked to previous
//
// field order is fixed:
//
//   format version            varint
//   block index               varint
//   timestamp                 prefixed text (TimestampFormat)
//   user id                   prefixed text
//   action                    prefixed text
//   subject id                prefixed text
//   change count              varint
//   per change, sorted by field name:
//     field name              prefixed text
//     old value               tag byte ++ prefixed canonical text
//     new value               tag byte ++ prefixed canonical text
//   previous hash             prefixed lower case hex
//
// every variable field carries its own length so no content can
// imitate a boundary
func (u *Unsealed) Pack(previous blockdigest.Digest) (Packed, error) {
	if !u.Action.Valid() {
		return nil, fault.ErrInvalidAction
	}
	if !utf8.ValidString(u.UserID) || !utf8.ValidString(u.SubjectID) {
		return nil, fault.ErrUTF8
	}

	buffer := make([]byte, 0, 256)
	buffer = util.AppendVarint64(buffer, FormatVersion)
	buffer = util.AppendVarint64(buffer, u.Index)
	buffer = util.AppendPrefixed(buffer, []byte(FormatTimestamp(u.Timestamp)))
	buffer = util.AppendPrefixed(buffer, []byte(u.UserID))
	buffer = util.AppendPrefixed(buffer, []byte(u.Action))
	buffer = util.AppendPrefixed(buffer, []byte(u.SubjectID))

	buffer = util.AppendVarint64(buffer, uint64(len(u.Changes)))
	for _, field := range u.Changes.Keys() {
		if "" == field {
			return nil, fault.ErrEmptyChangeKey
		}
		if !utf8.ValidString(field) {
			return nil, fault.ErrUTF8
		}
		change := u.Changes[field]
		buffer = util.AppendPrefixed(buffer, []byte(field))
		buffer = packValue(buffer, change.Old)
		buffer = packValue(buffer, change.New)
	}

	buffer = util.AppendPrefixed(buffer, []byte(previous.String()))

	return buffer, nil
}

func packValue(buffer []byte, v fieldvalue.Value) []byte {
	buffer = append(buffer, v.Tag())
	return util.AppendPrefixed(buffer, []byte(v.Canonical()))
}

// Digest - digest of a packed block
func (record Packed) Digest() blockdigest.Digest {
	return blockdigest.NewDigest(record)
}
