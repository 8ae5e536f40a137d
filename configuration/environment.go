// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvironment - add the variables of a dotenv file to the process
// environment
//
// variables already set are not overridden; a blank name or a missing
// optional file does nothing
func LoadEnvironment(fileName string, optional bool) error {
	if "" == fileName {
		return nil
	}
	if _, err := os.Stat(fileName); nil != err && optional && os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(fileName)
}
