// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fieldvalue

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/bitmark-inc/custodyd/fault"
)

// Scale - number of fractional decimal digits kept by a number
const Scale = 6

const (
	unitsPerWhole = 1000000
	maxExponent   = 30
)

// JSON number grammar
var numberSyntax = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// NewNumber - a fixed point number from its decimal text
//
// the text must be exactly representable with Scale fractional digits,
// so "2.8" and "2.800000" are the same value but "0.0000001" is an error
func NewNumber(text string) (Value, error) {
	if !numberSyntax.MatchString(text) {
		return Value{}, fault.ErrNumberSyntax
	}

	if i := strings.IndexAny(text, "eE"); i >= 0 {
		e, err := strconv.Atoi(text[i+1:])
		if nil != err || e > maxExponent || e < -maxExponent {
			return Value{}, fault.ErrNumberRange
		}
	}

	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return Value{}, fault.ErrNumberSyntax
	}
	r.Mul(r, big.NewRat(unitsPerWhole, 1))
	if !r.IsInt() {
		return Value{}, fault.ErrNumberPrecision
	}
	units := r.Num()
	if !units.IsInt64() {
		return Value{}, fault.ErrNumberRange
	}
	return Value{kind: Number, units: units.Int64()}, nil
}

// NewFloat - a fixed point number from a float
//
// uses the shortest decimal text that round trips the float
func NewFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fault.ErrNumberNotFinite
	}
	return NewNumber(strconv.FormatFloat(f, 'f', -1, 64))
}

// NewInteger - a fixed point number from an integer
func NewInteger(i int64) (Value, error) {
	if i > math.MaxInt64/unitsPerWhole || i < math.MinInt64/unitsPerWhole {
		return Value{}, fault.ErrNumberRange
	}
	return Value{kind: Number, units: i * unitsPerWhole}, nil
}

// render micro units, optionally without trailing fractional zeros
func formatUnits(units int64, trim bool) string {
	negative := units < 0
	u := uint64(units)
	if negative {
		u = ^u + 1
	}

	s := strconv.FormatUint(u/unitsPerWhole, 10)
	fraction := strconv.FormatUint(u%unitsPerWhole, 10)
	fraction = strings.Repeat("0", Scale-len(fraction)) + fraction
	if trim {
		fraction = strings.TrimRight(fraction, "0")
	}
	if "" != fraction {
		s += "." + fraction
	}
	if negative {
		s = "-" + s
	}
	return s
}
