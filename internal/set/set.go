// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package set

var exists = struct{}{}

// Ordered is a set which remembers the order in which its members were first
// added.
type Ordered[T comparable] struct {
	v []T
	m map[T]struct{}
}

func NewOrdered[T comparable](values ...T) *Ordered[T] {
	s := &Ordered[T]{
		m: make(map[T]struct{}, len(values)),
		v: make([]T, 0, len(values)),
	}

	s.Add(values...)

	return s
}

// Add inserts values which are not yet members, preserving first-seen order.
func (s *Ordered[T]) Add(values ...T) *Ordered[T] {
	for _, value := range values {
		if s.Contains(value) {
			continue
		}
		s.m[value] = exists
		s.v = append(s.v, value)
	}

	return s
}

func (s *Ordered[T]) Contains(value T) bool {
	_, ok := s.m[value]
	return ok
}

func (s *Ordered[T]) ContainsAnyOf(values ...T) bool {
	for _, value := range values {
		if s.Contains(value) {
			return true
		}
	}
	return false
}

func (s *Ordered[T]) Len() int {
	return len(s.m)
}

// ToSlice returns a copy of the members in insertion order.
func (s *Ordered[T]) ToSlice() []T {
	out := make([]T, len(s.v))
	copy(out, s.v)
	return out
}
