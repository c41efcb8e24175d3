// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package cfg

import (
	"iter"

	"idfkit.sh/internal/set"
)

// Args is an ordered, duplicate free collection of flags.
type Args struct {
	flags *set.Ordered[Flag]
}

func NewArgs(flags ...Flag) *Args {
	return &Args{flags: set.NewOrdered(flags...)}
}

// Add appends flags which are not yet present.
func (a *Args) Add(flags ...Flag) *Args {
	a.flags.Add(flags...)
	return a
}

// Extend appends every flag yielded by seq.
func (a *Args) Extend(seq iter.Seq[Flag]) *Args {
	for f := range seq {
		a.flags.Add(f)
	}
	return a
}

// Get returns the value of the first flag named key.  Bare flags report an
// empty value.
func (a *Args) Get(key string) (string, bool) {
	for _, f := range a.flags.ToSlice() {
		if f.Key == key {
			return f.Value, true
		}
	}

	return "", false
}

func (a *Args) Len() int {
	return a.flags.Len()
}

// Strings renders every flag.
func (a *Args) Strings() []string {
	flags := a.flags.ToSlice()
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, f.String())
	}

	return out
}

func (a *Args) All() iter.Seq[Flag] {
	return func(yield func(Flag) bool) {
		for _, f := range a.flags.ToSlice() {
			if !yield(f) {
				return
			}
		}
	}
}
