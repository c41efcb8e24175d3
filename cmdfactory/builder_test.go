// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Acorn Labs, Inc; All rights reserved.
// Copyright 2022 Unikraft GmbH; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
package cmdfactory

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nested struct {
	Board string `long:"board" usage:"the board"`
	Skip  string
}

type ComponentListOptions struct {
	Format  string   `long:"format" short:"f" usage:"output format" env:"CMDFACTORY_TEST_FORMAT"`
	Release bool     `long:"release" local:"true"`
	Jobs    int      `long:"jobs"`
	Allow   []string `long:"allow"`
	Nested  nested
	private string //nolint:unused

	got []string
}

func (opts *ComponentListOptions) Run(_ context.Context, args []string) error {
	opts.got = args
	return nil
}

func TestName(t *testing.T) {
	assert.Equal(t, "component-list", Name(&ComponentListOptions{}))
}

func TestNewParsesFlags(t *testing.T) {
	opts := &ComponentListOptions{Format: "table", Allow: []string{"IDF_TARGET"}}
	cmd, err := New(opts, cobra.Command{Use: "list"})
	require.NoError(t, err)

	assert.Nil(t, cmd.Flags().Lookup("skip"))
	assert.NotNil(t, cmd.Flags().Lookup("release"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("board"))

	cmd.SetArgs([]string{"-f", "json", "--release", "--jobs", "4", "--allow", "A,B", "--board", "esp32c3dev", "x"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "json", opts.Format)
	assert.True(t, opts.Release)
	assert.Equal(t, 4, opts.Jobs)
	assert.Equal(t, []string{"A", "B"}, opts.Allow)
	assert.Equal(t, "esp32c3dev", opts.Nested.Board)
	assert.Equal(t, []string{"x"}, opts.got)
}

func TestAttributeFlagsEnvironment(t *testing.T) {
	t.Setenv("CMDFACTORY_TEST_FORMAT", "yaml")

	opts := &ComponentListOptions{Format: "table"}
	cmd, err := New(opts, cobra.Command{Use: "list"})
	require.NoError(t, err)

	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "yaml", opts.Format)
}

type badOptions struct {
	Ratio float64 `long:"ratio"`
}

func (*badOptions) Run(context.Context, []string) error { return nil }

func TestAttributeFlagsUnsupported(t *testing.T) {
	_, err := New(&badOptions{}, cobra.Command{Use: "bad"})
	assert.Error(t, err)
}

type format string

func (f format) String() string { return string(f) }

func TestEnumFlag(t *testing.T) {
	f := NewEnumFlag([]format{"plain", "tree"}, format("plain"))

	require.NoError(t, f.Set("tree"))
	assert.Equal(t, "tree", f.String())

	err := f.Set("xml")
	assert.EqualError(t, err, "xml is not included in: plain, tree")
	assert.Equal(t, "tree", f.String())
}

func TestExactArgs(t *testing.T) {
	check := ExactArgs(1, "expected an sdkconfig")

	var flagErr *FlagError
	err := check(nil, nil)
	require.True(t, errors.As(err, &flagErr))
	assert.EqualError(t, err, "expected an sdkconfig")

	assert.Error(t, check(nil, []string{"a", "b"}))
	assert.NoError(t, check(nil, []string{"a"}))
}

func TestMutuallyExclusive(t *testing.T) {
	assert.NoError(t, MutuallyExclusive("pick one", true, false))
	assert.Error(t, MutuallyExclusive("pick one", true, true))
}

func TestMainReportsFlagErrors(t *testing.T) {
	cmd, err := New(&ComponentListOptions{}, cobra.Command{
		Use:  "list",
		Args: NoArgs,
	})
	require.NoError(t, err)

	var stderr bytes.Buffer
	cmd.SetErr(&stderr)
	cmd.SetOut(&stderr)
	cmd.SetArgs([]string{"unexpected"})

	assert.Equal(t, 1, Main(context.Background(), cmd))
	assert.Contains(t, stderr.String(), `unknown argument "unexpected"`)
	assert.Contains(t, stderr.String(), "Usage:")
}

func TestHelpListsGroups(t *testing.T) {
	root, err := New(&ComponentListOptions{}, cobra.Command{Use: "idfkit", Short: "root"})
	require.NoError(t, err)
	root.AddGroup(&cobra.Group{ID: "sdk", Title: "SDK COMMANDS"})
	root.AddCommand(&cobra.Command{
		Use:         "build",
		Short:       "Build the SDK",
		Annotations: map[string]string{AnnotationHelpGroup: "sdk"},
		Run:         func(*cobra.Command, []string) {},
	})

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "SDK COMMANDS")
	assert.Contains(t, out.String(), "build  ")
	assert.Contains(t, out.String(), "--format")
}
