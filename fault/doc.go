// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of each custody ledger error, grouped
// into classes so callers can test the class of a wrapped error
// without resorting to partial string matches
package fault
