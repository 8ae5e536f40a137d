// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdigest

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/custodyd/fault"
)

// Length - number of bytes in the digest
const Length = 32

// HexLength - number of characters in the hex form of a digest
const HexLength = 2 * Length

// Digest - type for a block digest
//
// SHA3-256 of a canonically packed block; printed and stored as
// lower case hex in byte order
type Digest [Length]byte

// Genesis - the previous digest of the first block in a chain
var Genesis = Digest{}

// NewDigest - create a digest from a byte slice
func NewDigest(record []byte) Digest {
	return Digest(sha3.Sum256(record))
}

// IsGenesis - true for the genesis sentinel
func (digest Digest) IsGenesis() bool {
	return Genesis == digest
}

// String - convert a binary digest to hex string for use by the fmt package (for %s)
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// GoString - convert a binary digest to hex string for use by the fmt package (for %#v)
func (digest Digest) GoString() string {
	return "<SHA3-256:" + hex.EncodeToString(digest[:]) + ">"
}

// Scan - convert a hex representation to a digest for use by the format package scan routines
func (digest *Digest) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, func(c rune) bool {
		if c >= '0' && c <= '9' {
			return true
		}
		if c >= 'A' && c <= 'F' {
			return true
		}
		if c >= 'a' && c <= 'f' {
			return true
		}
		return false
	})
	if nil != err {
		return err
	}
	return digest.UnmarshalText(token)
}

// MarshalText - convert digest to hex text
func (digest Digest) MarshalText() ([]byte, error) {
	buffer := make([]byte, HexLength)
	hex.Encode(buffer, digest[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a digest
//
// the text must be exactly HexLength characters
func (digest *Digest) UnmarshalText(s []byte) error {
	if HexLength != len(s) {
		return fault.ErrInvalidDigest
	}
	buffer := make([]byte, Length)
	if _, err := hex.Decode(buffer, s); nil != err {
		return fault.ErrInvalidDigest
	}
	copy(digest[:], buffer)
	return nil
}

// DigestFromHex - convert and validate a hex string to a digest
func DigestFromHex(s string) (Digest, error) {
	var digest Digest
	err := digest.UnmarshalText([]byte(s))
	return digest, err
}
