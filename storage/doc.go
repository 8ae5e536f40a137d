// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk custody chain
//
// Two drivers implement Backend: LevelDB (the default) and SQLite.
// Both hold one durable record per block keyed by block index, with a
// secondary index by subject, and both commit a block all-or-nothing.
//
// LevelDB layout
//
// The database is split into pools, each defined by a prefix byte
// obtained from the prefix tag in the struct defining the pools.
//
// Notes:
// 1. ++           = concatenation of byte data
// 2. block index  = big endian uint64 (8 bytes)
// 3. subject      = varint length ++ UTF-8 subject id
// 4. record       = CBOR of the stored block, hashes as 64 character hex
//
// Blocks:
//
//   B ++ block index           - block store
//                                data: record
//
// Subjects:
//
//   S ++ subject ++ block index
//                              - blocks of one subject in index order
//                                data: empty
//
// Version:
//
//   0x00 ++ "VERSION"          - database version (big endian uint32)
//
// SQLite layout
//
//   blocks(block_index INTEGER PRIMARY KEY, timestamp, user_id, action,
//          subject_id, changes BLOB, previous_hash, current_hash)
//   index blocks_subject(subject_id, block_index)
//
// changes holds the CBOR encoded change list of the block
package storage
