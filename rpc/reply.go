// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"encoding/json"
	"net/http"

	"github.com/bitmark-inc/custodyd/fault"
)

// send an JSON encoded reply
func sendReply(w http.ResponseWriter, data interface{}) {
	sendStatus(w, http.StatusOK, data)
}

func sendStatus(w http.ResponseWriter, code int, data interface{}) {
	text, err := json.Marshal(data)
	if nil != err {
		sendInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	w.Write(text)
}

// selected errors
func sendNotFound(w http.ResponseWriter) {
	sendError(w, "not found", http.StatusNotFound)
}
func sendMethodNotAllowed(w http.ResponseWriter) {
	sendError(w, "method not allowed", http.StatusMethodNotAllowed)
}
func sendForbidden(w http.ResponseWriter) {
	sendError(w, "forbidden", http.StatusForbidden)
}
func sendInternalServerError(w http.ResponseWriter) {
	sendError(w, "internal server error", http.StatusInternalServerError)
}

// map an error class to an HTTP status
func sendFault(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case fault.IsErrNotFound(err):
		code = http.StatusNotFound
	case fault.IsErrInvalid(err), fault.IsErrSerialization(err):
		code = http.StatusBadRequest
	case fault.IsErrExists(err), fault.IsErrStorageIO(err):
		code = http.StatusInternalServerError
	case fault.IsErrChainBroken(err):
		code = http.StatusConflict
	}
	if fault.ErrRateLimiting == err {
		code = http.StatusTooManyRequests
	}
	sendError(w, err.Error(), code)
}

// to compose JSON error messages
type eType struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// output an error with a JSON body
func sendError(w http.ResponseWriter, message string, code int) {
	text, err := json.Marshal(eType{
		Code:  code,
		Error: message,
	})
	if nil != err {
		// manually composed error just incase JSON fails
		http.Error(w, `{"code":500,"error":"Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	w.Write(text)
}
