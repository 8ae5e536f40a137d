// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockrecord

import (
	"github.com/bitmark-inc/custodyd/blockdigest"
)

// Seal - link an unsealed block to the chain tail
//
// pure: the same block and previous digest always give the same result
func Seal(u *Unsealed, previous blockdigest.Digest) (*Block, error) {
	packed, err := u.Pack(previous)
	if nil != err {
		return nil, err
	}

	return &Block{
		Unsealed:     *u,
		PreviousHash: previous,
		CurrentHash:  packed.Digest(),
	}, nil
}

// Rehash - recompute the digest from the stored fields
func (b *Block) Rehash() (blockdigest.Digest, error) {
	packed, err := b.Unsealed.Pack(b.PreviousHash)
	if nil != err {
		return blockdigest.Digest{}, err
	}
	return packed.Digest(), nil
}
