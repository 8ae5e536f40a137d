// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package verifier - replay a sequence of blocks and check every digest and link
package verifier

import (
	"fmt"

	"github.com/bitmark-inc/custodyd/blockdigest"
	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/fault"
)

// Reason - why a chain failed verification
type Reason string

// the possible failure reasons
const (
	HashMismatch Reason = "hash mismatch" // content altered
	BrokenLink   Reason = "broken link"   // reordered or spliced
	IndexGap     Reason = "index gap"     // block missing
)

// Anchor - what the first block of a range must link to
type Anchor struct {
	PreviousHash blockdigest.Digest
	NextIndex    uint64
}

// Genesis - anchor for a chain starting at its first block
var Genesis = Anchor{
	PreviousHash: blockdigest.Genesis,
	NextIndex:    0,
}

// AnchorAfter - anchor for the range that follows a block
func AnchorAfter(b *blockrecord.Block) Anchor {
	return Anchor{
		PreviousHash: b.CurrentHash,
		NextIndex:    b.Index + 1,
	}
}

// Result - outcome of a verification
type Result struct {
	Valid             bool    `json:"valid"`
	FirstInvalidIndex *uint64 `json:"first_invalid_index,omitempty"`
	Reason            Reason  `json:"reason,omitempty"`
	Checked           int     `json:"checked"`
}

// Verify - check a contiguous block sequence against its anchor
//
// stops at the first failing block; each block is checked for its own
// digest, then its index, then its link to the prior block
func Verify(blocks []*blockrecord.Block, anchor Anchor) Result {
	c := NewChain(anchor)
	for _, b := range blocks {
		if !c.Add(b) {
			break
		}
	}
	return c.Result()
}

// Chain - incremental verification for blocks streamed from storage
type Chain struct {
	expected Anchor
	checked  int
	failure  *Result
}

// NewChain - start verifying at an anchor
func NewChain(anchor Anchor) *Chain {
	return &Chain{
		expected: anchor,
	}
}

// Add - check the next block, false once the chain has failed
func (c *Chain) Add(b *blockrecord.Block) bool {
	if nil != c.failure {
		return false
	}

	// a tampered index must not move the report away from the block's
	// position in the chain
	digest, err := b.Rehash()
	if nil != err || digest != b.CurrentHash {
		if b.Index != c.expected.NextIndex {
			return c.fail(c.expected.NextIndex, HashMismatch)
		}
		return c.fail(b.Index, HashMismatch)
	}

	if b.Index > c.expected.NextIndex {
		return c.fail(c.expected.NextIndex, IndexGap)
	}
	if b.Index < c.expected.NextIndex {
		return c.fail(b.Index, BrokenLink)
	}

	if 0 == b.Index {
		if !b.PreviousHash.IsGenesis() {
			return c.fail(b.Index, BrokenLink)
		}
	} else if b.PreviousHash != c.expected.PreviousHash {
		return c.fail(b.Index, BrokenLink)
	}

	c.expected = AnchorAfter(b)
	c.checked += 1
	return true
}

// Complete - the result, also requiring that every index up to last was seen
func (c *Chain) Complete(last uint64) Result {
	if nil == c.failure && c.expected.NextIndex <= last {
		c.fail(c.expected.NextIndex, IndexGap)
	}
	return c.Result()
}

// Result - outcome of the blocks added so far
func (c *Chain) Result() Result {
	if nil != c.failure {
		return *c.failure
	}
	return Result{
		Valid:   true,
		Checked: c.checked,
	}
}

func (c *Chain) fail(index uint64, reason Reason) bool {
	r := Failure(c.checked, index, reason)
	c.failure = &r
	return false
}

// Failure - an invalid result at a block index
func Failure(checked int, index uint64, reason Reason) Result {
	return Result{
		Valid:             false,
		FirstInvalidIndex: &index,
		Reason:            reason,
		Checked:           checked,
	}
}

// Err - nil for a valid result, otherwise a ChainBrokenError naming the block
func (r Result) Err() error {
	if r.Valid {
		return nil
	}

	var err error
	switch r.Reason {
	case HashMismatch:
		err = fault.ErrHashMismatch
	case IndexGap:
		err = fault.ErrIndexGap
	default:
		err = fault.ErrBrokenLink
	}
	if nil == r.FirstInvalidIndex {
		return err
	}
	return fmt.Errorf("block: %d: %w", *r.FirstInvalidIndex, err)
}
