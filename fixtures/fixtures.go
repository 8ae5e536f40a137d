// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fixtures

import (
	"fmt"
	"os"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/custodyd/blockdigest"
	"github.com/bitmark-inc/custodyd/blockrecord"
	"github.com/bitmark-inc/custodyd/fieldvalue"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// Epoch - the first timestamp issued by Clock
var Epoch = time.Date(2024, time.March, 1, 8, 30, 0, 0, time.UTC)

// SetupTestLogger - log to a scratch directory that TeardownTestLogger removes
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - stop logging and remove the scratch directory
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

// Directory - a fresh database location below the scratch directory
func Directory(name string) string {
	path := dir + "/" + name
	_ = os.RemoveAll(path)
	return path
}

// Clock - a deterministic clock advancing one second per call
func Clock() func() time.Time {
	n := 0
	return func() time.Time {
		t := Epoch.Add(time.Duration(n) * time.Second)
		n += 1
		return t
	}
}

// Weight - a CREATE request for a subject with a single number field
func Weight(subjectID string, weight float64) blockrecord.Request {
	value, _ := fieldvalue.NewFloat(weight)
	return blockrecord.Request{
		SubjectID: subjectID,
		UserID:    "nurse-1",
		Action:    blockrecord.Create,
		Changes: blockrecord.Changes{
			"weight": {Old: fieldvalue.NewNull(), New: value},
		},
	}
}

// Chain - a valid sealed chain with one weight block per subject given
func Chain(subjects ...string) []*blockrecord.Block {
	now := Clock()
	previous := blockdigest.Genesis
	blocks := make([]*blockrecord.Block, 0, len(subjects))
	for i, subjectID := range subjects {
		u, err := blockrecord.Build(Weight(subjectID, 3.0+float64(i)/10), uint64(i), now())
		if nil != err {
			panic(err)
		}
		b, err := blockrecord.Seal(u, previous)
		if nil != err {
			panic(err)
		}
		blocks = append(blocks, b)
		previous = b.CurrentHash
	}
	return blocks
}

func removeFiles() {
	err := os.RemoveAll(dir)
	if nil != err {
		fmt.Println("remove dir with error: ", err)
	}
}
