// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli"
)

// exit status of a failed verification
const brokenChainStatus = 2

func runDump(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	var from, to *uint64
	if c.IsSet("from") {
		n := c.Uint64("from")
		from = &n
	}
	if c.IsSet("to") {
		n := c.Uint64("to")
		to = &n
	}

	if m.verbose {
		fmt.Fprintf(m.e, "from: %v  to: %v\n", c.Uint64("from"), c.Uint64("to"))
	}

	entries, err := m.surface.Chain(context.Background(), from, to)
	if nil != err {
		return err
	}
	return printJson(m.w, entries)
}

func runTrail(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	subjectID := c.Args().First()
	if "" == subjectID {
		return fmt.Errorf("subject MRN is required")
	}

	entries, err := m.surface.AuditTrail(context.Background(), subjectID)
	if nil != err {
		return err
	}
	return printJson(m.w, entries)
}

func runVerify(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	subjectID := c.Args().First()
	result, err := m.surface.Verify(context.Background(), subjectID)
	if nil != err {
		return err
	}

	if err := printJson(m.w, result); nil != err {
		return err
	}
	if !result.Valid {
		return cli.NewExitError(fmt.Sprintf("chain is broken at block: %d  reason: %s", *result.FirstInvalidIndex, result.Reason), brokenChainStatus)
	}
	return nil
}

func runTail(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	entry, ok := m.surface.Tail()
	if !ok {
		return printJson(m.w, struct {
			Empty bool `json:"empty"`
		}{Empty: true})
	}
	return printJson(m.w, entry)
}

func printJson(handle io.Writer, message interface{}) error {

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}

	fmt.Fprintf(handle, "%s\n", b)
	return nil
}
