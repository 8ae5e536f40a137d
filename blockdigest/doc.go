// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockdigest - the hash that links custody blocks
//
// every block carries the digest of its predecessor and its own
// digest, computed over the packed block including that link
package blockdigest
