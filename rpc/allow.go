// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/bitmark-inc/custodyd/fault"
)

// Allow - restricted route name → permitted client networks
type Allow map[string][]*net.IPNet

// ParseAllow - convert configuration CIDR strings to networks
func ParseAllow(configuration map[string][]string) (Allow, error) {
	allow := make(Allow, len(configuration))
	for name, addresses := range configuration {
		set := make([]*net.IPNet, len(addresses))
		for i, ip := range addresses {
			_, cidr, err := net.ParseCIDR(strings.TrimSpace(ip))
			if nil != err {
				return nil, fmt.Errorf("%w: %s: %q", fault.ErrInvalidAllowList, name, ip)
			}
			set[i] = cidr
		}
		allow[name] = set
	}
	return allow, nil
}

// permits - check a request's remote address against one route's networks
func (allow Allow) permits(name string, r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if nil != err {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	if nil == ip {
		return false
	}
	for _, cidr := range allow[name] {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
