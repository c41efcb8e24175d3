// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package cfg

import (
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"idfkit.sh/kconfig"
)

// DefaultAllow matches the string valued keys whose value is kept regardless
// of truthiness.
var DefaultAllow = []string{`IDF_TARGET`}

// Policy decides whether a config entry becomes a flag.
type Policy func(key string, value kconfig.Value) bool

// DefaultPolicy admits tristate true entries, plus entries whose key matches
// one of the allow patterns.  The compiler consuming the flags limits the
// length of its command line, so everything else is dropped.
func DefaultPolicy(allow ...*regexp.Regexp) Policy {
	return func(key string, value kconfig.Value) bool {
		if value.IsTrue() {
			return true
		}

		for _, re := range allow {
			if re.MatchString(key) {
				return true
			}
		}

		return false
	}
}

// CompileAllow compiles allow-list patterns for DefaultPolicy.
func CompileAllow(patterns ...string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid kconfig allow pattern %q", p)
		}
		res = append(res, re)
	}

	return res, nil
}

// FromEntry converts one config value into a flag.  Tristates which are not
// true have no flag representation.
func FromEntry(namespace, key string, value kconfig.Value) (Flag, bool) {
	id := Key(namespace, key)

	switch value.Kind() {
	case kconfig.KindString:
		s, _ := value.Str()
		return Valued(id, s), true
	case kconfig.KindInt:
		n, _ := value.Int()
		return Valued(id, strconv.FormatInt(n, 10)), true
	default:
		if value.IsTrue() {
			return Bare(id), true
		}
		return Flag{}, false
	}
}

// Filter strips the CONFIG_ prefix from every key, applies policy and converts
// the admitted entries into flags.
func Filter(namespace string, entries iter.Seq[kconfig.Entry], policy Policy) *Args {
	args := NewArgs()
	if entries == nil {
		return args
	}

	for entry := range entries {
		key := strings.TrimPrefix(entry.Key, kconfig.Prefix)
		if !policy(key, entry.Value) {
			continue
		}

		if f, ok := FromEntry(namespace, key, entry.Value); ok {
			args.Add(f)
		}
	}

	return args
}
