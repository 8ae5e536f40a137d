// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fieldvalue_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitmark-inc/custodyd/fault"
	"github.com/bitmark-inc/custodyd/fieldvalue"
)

func TestNumberCanonical(t *testing.T) {
	items := []struct {
		text      string
		canonical string
		display   string
	}{
		{"2.8", "2.800000", "2.8"},
		{"2.800000", "2.800000", "2.8"},
		{"0", "0.000000", "0"},
		{"-0", "0.000000", "0"},
		{"-0.5", "-0.500000", "-0.5"},
		{"3", "3.000000", "3"},
		{"1e3", "1000.000000", "1000"},
		{"12.5e-1", "1.250000", "1.25"},
		{"0.000001", "0.000001", "0.000001"},
		{"9223372036854.775807", "9223372036854.775807", "9223372036854.775807"},
		{"-9223372036854.775808", "-9223372036854.775808", "-9223372036854.775808"},
	}

	for i, item := range items {
		v, err := fieldvalue.NewNumber(item.text)
		require.NoError(t, err, "%d: %q", i, item.text)
		assert.Equal(t, fieldvalue.Number, v.Kind(), "%d: kind", i)
		assert.Equal(t, item.canonical, v.Canonical(), "%d: canonical", i)
		assert.Equal(t, item.display, v.String(), "%d: display", i)
	}
}

func TestNumberErrors(t *testing.T) {
	items := []struct {
		text string
		err  error
	}{
		{"", fault.ErrNumberSyntax},
		{"abc", fault.ErrNumberSyntax},
		{"1/3", fault.ErrNumberSyntax},
		{"0x10", fault.ErrNumberSyntax},
		{"01", fault.ErrNumberSyntax},
		{"2.", fault.ErrNumberSyntax},
		{"+2", fault.ErrNumberSyntax},
		{"0.0000001", fault.ErrNumberPrecision},
		{"1e-7", fault.ErrNumberPrecision},
		{"1e999", fault.ErrNumberRange},
		{"9223372036854.775808", fault.ErrNumberRange},
	}

	for i, item := range items {
		_, err := fieldvalue.NewNumber(item.text)
		assert.Equal(t, item.err, err, "%d: %q", i, item.text)
		assert.True(t, fault.IsErrSerialization(err), "%d: class", i)
	}
}

func TestFloat(t *testing.T) {
	v, err := fieldvalue.NewFloat(2.9)
	require.NoError(t, err)
	assert.Equal(t, "2.900000", v.Canonical())

	w, err := fieldvalue.NewNumber("2.90")
	require.NoError(t, err)
	assert.True(t, v.Equal(w), "float and text forms differ")

	_, err = fieldvalue.NewFloat(math.NaN())
	assert.Equal(t, fault.ErrNumberNotFinite, err)
	_, err = fieldvalue.NewFloat(math.Inf(-1))
	assert.Equal(t, fault.ErrNumberNotFinite, err)

	_, err = fieldvalue.NewInteger(math.MaxInt64)
	assert.Equal(t, fault.ErrNumberRange, err)
}

func TestEquality(t *testing.T) {
	empty, _ := fieldvalue.NewString("")
	nullText, _ := fieldvalue.NewString("null")
	trueText, _ := fieldvalue.NewString("true")
	two, _ := fieldvalue.NewInteger(2)
	twoText, _ := fieldvalue.NewString("2")

	assert.False(t, fieldvalue.NewNull().Equal(empty), "null equals empty string")
	assert.False(t, fieldvalue.NewNull().Equal(nullText), "null equals \"null\"")
	assert.False(t, fieldvalue.NewBool(true).Equal(trueText), "bool equals string")
	assert.False(t, two.Equal(twoText), "number equals string")
	assert.True(t, fieldvalue.NewNull().Equal(fieldvalue.Value{}), "zero value is not null")
	assert.True(t, fieldvalue.NewBool(false).Equal(fieldvalue.NewBool(false)))
}

func TestInvalidUTF8(t *testing.T) {
	_, err := fieldvalue.NewString("bad\xff")
	assert.Equal(t, fault.ErrUTF8, err)
}

func TestJSON(t *testing.T) {
	var snapshot map[string]fieldvalue.Value
	err := json.Unmarshal([]byte(`{"weight":2.8,"name":"Baby A","notes":null,"nicu":true,"blank":""}`), &snapshot)
	require.NoError(t, err)

	assert.Equal(t, "2.800000", snapshot["weight"].Canonical())
	assert.Equal(t, fieldvalue.String, snapshot["name"].Kind())
	assert.True(t, snapshot["notes"].IsNull())
	assert.Equal(t, fieldvalue.Bool, snapshot["nicu"].Kind())
	assert.Equal(t, fieldvalue.String, snapshot["blank"].Kind())

	out, err := json.Marshal(snapshot["weight"])
	require.NoError(t, err)
	assert.Equal(t, "2.8", string(out))

	out, err = json.Marshal(snapshot["name"])
	require.NoError(t, err)
	assert.Equal(t, `"Baby A"`, string(out))

	err = json.Unmarshal([]byte(`{"nested":{"a":1}}`), &snapshot)
	assert.True(t, fault.IsErrSerialization(err), "nested value accepted: %v", err)
}

func TestCanonicalRoundTrip(t *testing.T) {
	n, _ := fieldvalue.NewNumber("-12.345")
	s, _ := fieldvalue.NewString("null")
	for i, v := range []fieldvalue.Value{fieldvalue.NewNull(), n, s, fieldvalue.NewBool(true)} {
		kind, err := fieldvalue.KindFromTag(v.Tag())
		require.NoError(t, err, "%d: tag", i)
		w, err := fieldvalue.FromCanonical(kind, v.Canonical())
		require.NoError(t, err, "%d: rebuild", i)
		assert.True(t, v.Equal(w), "%d: %v != %v", i, v, w)
	}

	_, err := fieldvalue.KindFromTag('x')
	assert.Equal(t, fault.ErrUnknownValueKind, err)
}
