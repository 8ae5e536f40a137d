// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - bounded queues carrying committed blocks from
// the ledger writer to background consumers
//
// a sender never waits: when a queue is full the message is dropped
// and counted, so a slow consumer cannot stall ledger appends
package messagebus
