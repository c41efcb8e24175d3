// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package mutex binds a lock primitive to the value it protects.  The value
// can only be reached from inside a critical section.
package mutex

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Primitive is a platform lock.  Every call returns 0 on success and an
// implementation specific code otherwise.
type Primitive interface {
	Lock() int
	Unlock() int
	Destroy() int
}

// syncPrimitive is the default Primitive.  Its zero value is unlocked.
type syncPrimitive struct {
	mu        sync.Mutex
	destroyed atomic.Bool
}

func (p *syncPrimitive) Lock() int {
	if p.destroyed.Load() {
		return 1
	}
	p.mu.Lock()
	return 0
}

func (p *syncPrimitive) Unlock() int {
	p.mu.Unlock()
	return 0
}

func (p *syncPrimitive) Destroy() int {
	if !p.destroyed.CompareAndSwap(false, true) {
		return 1
	}
	return 0
}

// Mutex guards a value of type T.  It is not reentrant: calling Lock from
// inside a critical section of the same Mutex deadlocks.
type Mutex[T any] struct {
	prim   Primitive
	value  T
	closed atomic.Bool
}

// MutexOption configures a Mutex.
type MutexOption[T any] func(*Mutex[T])

// WithPrimitive replaces the default lock primitive.
func WithPrimitive[T any](p Primitive) MutexOption[T] {
	return func(m *Mutex[T]) {
		m.prim = p
	}
}

// New wraps value.
func New[T any](value T, opts ...MutexOption[T]) *Mutex[T] {
	m := &Mutex[T]{value: value}

	for _, opt := range opts {
		opt(m)
	}

	if m.prim == nil {
		m.prim = &syncPrimitive{}
	}

	return m
}

func check(op string, code int) {
	if code != 0 {
		panic(fmt.Sprintf("mutex: %s failed with code %d", op, code))
	}
}

// Lock runs fn with exclusive access to the wrapped value.  The primitive is
// released before Lock returns, also when fn panics.
func (m *Mutex[T]) Lock(fn func(*T)) {
	check("lock", m.prim.Lock())
	defer func() {
		check("unlock", m.prim.Unlock())
	}()

	fn(&m.value)
}

// WithLock runs fn like Lock and returns its result.
func WithLock[T, R any](m *Mutex[T], fn func(*T) R) R {
	var res R

	m.Lock(func(v *T) {
		res = fn(v)
	})

	return res
}

// Close destroys the primitive.  Closing twice panics.
func (m *Mutex[T]) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		panic("mutex: destroyed twice")
	}

	check("destroy", m.prim.Destroy())
}
