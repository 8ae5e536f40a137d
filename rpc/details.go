// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

type blocksDetail struct {
	Empty bool   `json:"empty"`
	Tail  uint64 `json:"tail"`
	Hash  string `json:"hash,omitempty"`
}

type hostDetail struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	DiskFree      uint64  `json:"diskFree"`
}

type detailsReply struct {
	Version     string       `json:"version"`
	Uptime      string       `json:"uptime"`
	Connections uint64       `json:"connections"`
	Blocks      blocksDetail `json:"blocks"`
	Host        hostDetail   `json:"host"`
}

// GET /custodyd/details
func (h *Handler) details(w http.ResponseWriter, _ *http.Request) {
	reply := detailsReply{
		Version:     h.version,
		Uptime:      time.Since(h.start).Round(time.Second).String(),
		Connections: h.connections.Uint64(),
		Blocks: blocksDetail{
			Empty: true,
		},
	}

	if entry, ok := h.surface.Tail(); ok {
		reply.Blocks = blocksDetail{
			Tail: entry.BlockIndex,
			Hash: entry.CurrentHash,
		}
	}

	// host figures are best effort
	if p, err := cpu.Percent(0, false); nil == err && len(p) > 0 {
		reply.Host.CPUPercent = p[0]
	}
	if v, err := mem.VirtualMemory(); nil == err {
		reply.Host.MemoryPercent = v.UsedPercent
	}
	if "" != h.dataDirectory {
		if u, err := disk.Usage(h.dataDirectory); nil == err {
			reply.Host.DiskFree = u.Free
		}
	}

	sendReply(w, reply)
}
