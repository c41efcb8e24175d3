// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package mutex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// countingPrimitive records calls and can be told to fail.
type countingPrimitive struct {
	locks, unlocks, destroys int
	held                     bool
	unlockCode               int
}

func (p *countingPrimitive) Lock() int {
	p.locks++
	p.held = true
	return 0
}

func (p *countingPrimitive) Unlock() int {
	p.unlocks++
	p.held = false
	return p.unlockCode
}

func (p *countingPrimitive) Destroy() int {
	p.destroys++
	return 0
}

func TestConcurrentIncrements(t *testing.T) {
	const (
		callers    = 16
		increments = 1000
	)

	m := New(0)
	defer m.Close()

	var g errgroup.Group
	for range callers {
		g.Go(func() error {
			for range increments {
				m.Lock(func(n *int) { *n++ })
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, callers*increments, WithLock(m, func(n *int) int { return *n }))
}

func TestWithLockReturnsResult(t *testing.T) {
	m := New([]string{"pthread"})
	defer m.Close()

	n := WithLock(m, func(v *[]string) int {
		*v = append(*v, "nvs_flash")
		return len(*v)
	})

	assert.Equal(t, 2, n)
	m.Lock(func(v *[]string) {
		assert.Equal(t, []string{"pthread", "nvs_flash"}, *v)
	})
}

func TestReleaseOnPanic(t *testing.T) {
	prim := &countingPrimitive{}
	m := New("x", WithPrimitive[string](prim))

	assert.PanicsWithValue(t, "boom", func() {
		m.Lock(func(*string) { panic("boom") })
	})

	assert.False(t, prim.held)
	assert.Equal(t, 1, prim.locks)
	assert.Equal(t, 1, prim.unlocks)

	// The mutex stays usable.
	m.Lock(func(s *string) { *s = "y" })
	assert.Equal(t, "y", WithLock(m, func(s *string) string { return *s }))
}

func TestUnlockFailureAborts(t *testing.T) {
	prim := &countingPrimitive{unlockCode: 22}
	m := New(0, WithPrimitive[int](prim))

	assert.PanicsWithValue(t, "mutex: unlock failed with code 22", func() {
		m.Lock(func(n *int) { *n++ })
	})
}

func TestCloseOnce(t *testing.T) {
	prim := &countingPrimitive{}
	m := New(0, WithPrimitive[int](prim))

	assert.NotPanics(t, m.Close)
	assert.Panics(t, m.Close)
	assert.Equal(t, 1, prim.destroys)
}

func TestLockAfterClose(t *testing.T) {
	m := New(0)
	m.Close()

	assert.Panics(t, func() {
		m.Lock(func(*int) {})
	})
}
