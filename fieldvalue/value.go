// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fieldvalue

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/bitmark-inc/custodyd/fault"
)

// Kind - the closed set of value kinds a record field may hold
type Kind uint8

// the value kinds
const (
	Null Kind = iota // zero value of a Value is null
	String
	Number
	Bool
)

// Value - a single record field value
//
// values are immutable and compared through their canonical text
type Value struct {
	kind  Kind
	text  string
	units int64
	flag  bool
}

// NewNull - the explicit null value
func NewNull() Value {
	return Value{kind: Null}
}

// NewString - a text value, which must be valid UTF-8
func NewString(s string) (Value, error) {
	if !utf8.ValidString(s) {
		return Value{}, fault.ErrUTF8
	}
	return Value{kind: String, text: s}, nil
}

// NewBool - a boolean value
func NewBool(b bool) Value {
	return Value{kind: Bool, flag: b}
}

// Kind - the kind of this value
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull - true for the null value
func (v Value) IsNull() bool {
	return Null == v.kind
}

// Tag - single byte identifying the kind in a canonical encoding
func (v Value) Tag() byte {
	return v.kind.Tag()
}

// Tag - single byte identifying the kind in a canonical encoding
func (k Kind) Tag() byte {
	switch k {
	case String:
		return 'S'
	case Number:
		return 'N'
	case Bool:
		return 'B'
	default:
		return '0'
	}
}

// KindFromTag - inverse of Tag
func KindFromTag(tag byte) (Kind, error) {
	switch tag {
	case '0':
		return Null, nil
	case 'S':
		return String, nil
	case 'N':
		return Number, nil
	case 'B':
		return Bool, nil
	default:
		return Null, fault.ErrUnknownValueKind
	}
}

// Canonical - the single textual form used for hashing and comparison
//
//   null   → "null"
//   string → the string unchanged
//   number → fixed Scale fractional digits, e.g. "2.800000"
//   bool   → "true" or "false"
//
// the kind tag must accompany this text, since the string "null" and
// the null value share a canonical text
func (v Value) Canonical() string {
	switch v.kind {
	case String:
		return v.text
	case Number:
		return formatUnits(v.units, false)
	case Bool:
		if v.flag {
			return "true"
		}
		return "false"
	default:
		return "null"
	}
}

// String - display form, numbers without trailing zeros
func (v Value) String() string {
	if Number == v.kind {
		return formatUnits(v.units, true)
	}
	return v.Canonical()
}

// Equal - normalised equality
//
// null and the empty string are different values
func (v Value) Equal(other Value) bool {
	return v.kind == other.kind && v.Canonical() == other.Canonical()
}

// FromCanonical - rebuild a value from its kind and canonical text
func FromCanonical(kind Kind, text string) (Value, error) {
	switch kind {
	case Null:
		return NewNull(), nil
	case String:
		return NewString(text)
	case Number:
		return NewNumber(text)
	case Bool:
		switch text {
		case "true":
			return NewBool(true), nil
		case "false":
			return NewBool(false), nil
		}
		return Value{}, fault.ErrUnknownValueKind
	default:
		return Value{}, fault.ErrUnknownValueKind
	}
}

// FromInterface - convert a decoded JSON scalar
//
// decoders should use json.Decoder.UseNumber so that numbers arrive
// as their original text rather than a float64
func FromInterface(item interface{}) (Value, error) {
	switch x := item.(type) {
	case nil:
		return NewNull(), nil
	case string:
		return NewString(x)
	case bool:
		return NewBool(x), nil
	case json.Number:
		return NewNumber(x.String())
	case float64:
		return NewFloat(x)
	case int:
		return NewInteger(int64(x))
	case int64:
		return NewInteger(x)
	case Value:
		return x, nil
	default:
		return Value{}, fault.ErrNestedValue
	}
}

// MarshalJSON - convert a value to its JSON form
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case String:
		return json.Marshal(v.text)
	case Number, Bool:
		return []byte(v.String()), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON - convert a JSON scalar to a value
func (v *Value) UnmarshalJSON(b []byte) error {
	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()
	var item interface{}
	if err := d.Decode(&item); nil != err {
		return err
	}
	value, err := FromInterface(item)
	if nil != err {
		return err
	}
	*v = value
	return nil
}
