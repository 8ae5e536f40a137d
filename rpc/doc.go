// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - HTTP access to the custody ledger
//
//   GET  /custody-log                 whole chain (from, to)
//   GET  /custody-log/tail            latest block
//   GET  /custody-log/verify          verify whole chain
//   GET  /custody-log/{mrn}           one subject's audit trail
//   GET  /custody-log/{mrn}/verify    verify one subject
//   POST /custody-log/events          record a mutation event
//   GET  /custodyd/details            daemon status
//   GET  /metrics                     Prometheus metrics
//
// the last three are restricted by the allow list
package rpc
