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

// Verify - replay stored blocks from..to against their stored predecessor
//
// the range is clipped to the current tail and every index up to it
// must be present
func (s *Store) Verify(ctx context.Context, from uint64, to uint64) (verifier.Result, error) {
	if from > to {
		return verifier.Result{}, fault.ErrInvalidRange
	}
	tail := s.tail.Load()
	if nil == tail || from > tail.Index {
		return s.report("chain", verifier.Result{Valid: true}), nil
	}
	if to > tail.Index {
		to = tail.Index
	}

	anchor, err := s.Anchor(from)
	if fault.IsErrNotFound(err) {
		return s.report("chain", verifier.Failure(0, from-1, verifier.IndexGap)), nil
	}
	if nil != err {
		return verifier.Result{}, err
	}

	chain := verifier.NewChain(anchor)
	err = s.backend.Range(from, to, func(b *blockrecord.Block) error {
		if err := ctx.Err(); nil != err {
			return err
		}
		if !chain.Add(b) {
			return errStop
		}
		return nil
	})
	if nil != err && errStop != err {
		return verifier.Result{}, err
	}

	return s.report("chain", chain.Complete(to)), nil
}

// VerifySubject - replay the whole chain and check one subject's history
//
// the subject index is not covered by any hash, so the subject's blocks
// are taken from the replayed chain and every one of them must also be
// present in the index; a failure anywhere up to the tail makes the
// subject's history unprovable
func (s *Store) VerifySubject(ctx context.Context, subjectID string) (verifier.Result, error) {
	if "" == subjectID {
		return verifier.Result{}, fault.ErrMissingSubject
	}

	tail := s.tail.Load()
	if nil == tail {
		return s.report(subjectID, verifier.Result{Valid: true}), nil
	}

	// an index entry for a missing block stops the index scan; the replay
	// below reports the missing block before reaching any later entry
	indexed := make(map[uint64]struct{})
	err := s.backend.Subject(subjectID, 0, tail.Index, func(b *blockrecord.Block) error {
		if err := ctx.Err(); nil != err {
			return err
		}
		indexed[b.Index] = struct{}{}
		return nil
	})
	if nil != err && !fault.IsErrNotFound(err) {
		return verifier.Result{}, err
	}

	chain := verifier.NewChain(verifier.Genesis)
	checked := 0
	var unindexed *verifier.Result
	err = s.backend.Range(0, tail.Index, func(b *blockrecord.Block) error {
		if err := ctx.Err(); nil != err {
			return err
		}
		if !chain.Add(b) {
			return errStop
		}
		if b.SubjectID != subjectID {
			return nil
		}
		if _, ok := indexed[b.Index]; !ok {
			r := verifier.Failure(checked, b.Index, verifier.IndexGap)
			unindexed = &r
			return errStop
		}
		checked += 1
		return nil
	})
	if nil != err && errStop != err {
		return verifier.Result{}, err
	}
	if nil != unindexed {
		s.log.Criticalf("verify: %s: block: %d missing from subject index", subjectID, *unindexed.FirstInvalidIndex)
		return s.report(subjectID, *unindexed), nil
	}

	r := chain.Complete(tail.Index)
	r.Checked = checked
	return s.report(subjectID, r), nil
}

// count and log a verification outcome
func (s *Store) report(scope string, r verifier.Result) verifier.Result {
	verifyTotal.WithLabelValues(verified(r.Valid)).Inc()
	if !r.Valid {
		s.log.Criticalf("verify: %s: %s", scope, r.Err())
	} else {
		s.log.Debugf("verify: %s: %d blocks valid", scope, r.Checked)
	}
	return r
}

// ends a Range early once verification has failed
type stopVerify struct{}

func (stopVerify) Error() string { return "stop verify" }

var errStop error = stopVerify{}
