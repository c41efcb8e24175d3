// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package kconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Tristate is the three-valued state of a boolean-like option.
type Tristate int

const (
	TristateUnset Tristate = iota
	TristateFalse
	TristateTrue
)

func (t Tristate) String() string {
	switch t {
	case TristateFalse:
		return No
	case TristateTrue:
		return Yes
	default:
		return "unset"
	}
}

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindTristate Kind = iota
	KindString
	KindInt
)

// Value is a closed variant over the values an sdkconfig entry may carry.  The
// zero Value is an unset tristate.
type Value struct {
	kind     Kind
	tristate Tristate
	str      string
	num      int64
}

func TristateValue(t Tristate) Value {
	return Value{kind: KindTristate, tristate: t}
}

func Bool(b bool) Value {
	if b {
		return TristateValue(TristateTrue)
	}
	return TristateValue(TristateFalse)
}

func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func Int(n int64) Value {
	return Value{kind: KindInt, num: n}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Tristate returns the tristate state, and false if v holds another variant.
func (v Value) Tristate() (Tristate, bool) {
	return v.tristate, v.kind == KindTristate
}

// IsTrue reports whether v is the tristate true state.
func (v Value) IsTrue() bool {
	return v.kind == KindTristate && v.tristate == TristateTrue
}

func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) Int() (int64, bool) {
	return v.num, v.kind == KindInt
}

// String renders the value the way it would appear on the right hand side of
// an sdkconfig assignment.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	default:
		return v.tristate.String()
	}
}

func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("String(%q)", v.str)
	case KindInt:
		return fmt.Sprintf("Int(%d)", v.num)
	default:
		return fmt.Sprintf("Tristate(%s)", v.tristate)
	}
}

// ParseValue interprets the raw right hand side of a `CONFIG_KEY=...` line.
func ParseValue(raw string) (Value, error) {
	switch raw {
	case Yes, Mod:
		return TristateValue(TristateTrue), nil
	case "n":
		return TristateValue(TristateFalse), nil
	case "":
		return TristateValue(TristateUnset), nil
	}

	if strings.HasPrefix(raw, `"`) {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return Value{}, errors.Wrapf(err, "malformed string value %s", raw)
		}
		return String(s), nil
	}

	if n, ok := parseInt(raw); ok {
		return Int(n), nil
	}

	// Anything else is kept verbatim, the format is loosely specified.
	return String(raw), nil
}

// parseInt accepts the integer notations of sdkconfig files: decimal with an
// optional minus sign, and 0x prefixed hexadecimal.
func parseInt(raw string) (int64, bool) {
	sign, digits := "", raw
	if rest, ok := strings.CutPrefix(digits, "-"); ok {
		sign, digits = "-", rest
	}

	base := 10
	if rest, ok := strings.CutPrefix(digits, "0x"); ok {
		base, digits = 16, rest
	} else if rest, ok := strings.CutPrefix(digits, "0X"); ok {
		base, digits = 16, rest
	}

	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return 0, false
	}

	n, err := strconv.ParseInt(sign+digits, base, 64)
	return n, err == nil
}

// Entry is a single key and value pair read from an sdkconfig file.  Keys do
// not carry the CONFIG_ prefix.
type Entry struct {
	Key   string
	Value Value
}

func (e Entry) String() string {
	return Prefix + e.Key + "=" + e.Value.String()
}
