// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"context"

	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/verifier"
)

// Tail - the most recent block, or the empty genesis state
type Tail struct {
	Empty bool
	Block *blockrecord.Block
}

// Query - selects blocks for GetChain
//
// an empty SubjectID selects the whole chain; nil bounds are open
type Query struct {
	SubjectID string
	From      *uint64
	To        *uint64
}

// GetTail - the current tail
func (s *Store) GetTail() Tail {
	tail := s.tail.Load()
	return Tail{
		Empty: nil == tail,
		Block: tail,
	}
}

// bounds of a query clipped to a tail; ok is false if nothing can match
func (q Query) bounds(tail *blockrecord.Block) (uint64, uint64, bool, error) {
	if nil != q.From && nil != q.To && *q.From > *q.To {
		return 0, 0, false, fault.ErrInvalidRange
	}
	if nil == tail {
		return 0, 0, false, nil
	}

	from := uint64(0)
	if nil != q.From {
		from = *q.From
	}
	to := tail.Index
	if nil != q.To && *q.To < to {
		to = *q.To
	}
	return from, to, from <= to, nil
}

// GetChain - committed blocks in index order
//
// results never extend past the tail at the time of the call, so a
// concurrent append is either wholly visible or not at all
func (s *Store) GetChain(ctx context.Context, q Query) ([]*blockrecord.Block, error) {
	blocks := []*blockrecord.Block{}

	from, to, ok, err := q.bounds(s.tail.Load())
	if nil != err || !ok {
		return blocks, err
	}

	collect := func(b *blockrecord.Block) error {
		if err := ctx.Err(); nil != err {
			return err
		}
		blocks = append(blocks, b)
		return nil
	}

	if "" == q.SubjectID {
		err = s.backend.Range(from, to, collect)
	} else {
		err = s.backend.Subject(q.SubjectID, from, to, collect)
	}
	if nil != err {
		return nil, err
	}

	readBlocks.Add(float64(len(blocks)))
	return blocks, nil
}

// Anchor - what the block at index must link to
func (s *Store) Anchor(index uint64) (verifier.Anchor, error) {
	if 0 == index {
		return verifier.Genesis, nil
	}
	previous, err := s.backend.Get(index - 1)
	if nil != err {
		return verifier.Anchor{}, err
	}
	return verifier.AnchorAfter(previous), nil
}

// Get - a single committed block
func (s *Store) Get(index uint64) (*blockrecord.Block, error) {
	tail := s.tail.Load()
	if nil == tail || index > tail.Index {
		return nil, fault.ErrBlockNotFound
	}
	return s.backend.Get(index)
}
