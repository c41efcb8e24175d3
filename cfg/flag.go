// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package cfg derives conditional-compilation flags from SDK configuration.
package cfg

import (
	"regexp"
	"strconv"
	"strings"
)

var reNonIdent = regexp.MustCompile(`[^a-z0-9_]+`)

// Flag is a single conditional-compilation predicate, either bare (`key`) or
// string valued (`key="value"`).
type Flag struct {
	Key    string
	Value  string
	Valued bool
}

// Bare returns a flag which is matched on presence only.
func Bare(key string) Flag {
	return Flag{Key: key}
}

// Valued returns a flag which carries a quoted value.
func Valued(key, value string) Flag {
	return Flag{Key: key, Value: value, Valued: true}
}

func (f Flag) String() string {
	if !f.Valued {
		return f.Key
	}

	return f.Key + "=" + strconv.Quote(f.Value)
}

// Key builds a normalized flag identifier from a namespace and a config key:
// lower case, with every run of characters outside [a-z0-9_] collapsed into a
// single underscore.
func Key(namespace, key string) string {
	id := strings.ToLower(key)
	if namespace != "" {
		id = strings.ToLower(namespace) + "_" + id
	}

	return reNonIdent.ReplaceAllString(id, "_")
}
