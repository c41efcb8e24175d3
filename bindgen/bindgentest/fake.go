// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package bindgentest provides a stand-in bindgen executable for tests.
package bindgentest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// TB is the part of testing.TB the helpers need, so that they can be used
// from Ginkgo specs through GinkgoT as well.
type TB interface {
	Helper()
	Skip(args ...any)
	TempDir() string
	Fatal(args ...any)
}

// Bindings renders the version constants the way bindgen emits them.
func Bindings(major, minor, patch uint32) string {
	return fmt.Sprintf(`/* automatically generated by rust-bindgen */

pub const ESP_IDF_VERSION_MAJOR: u32 = %d;
pub const ESP_IDF_VERSION_MINOR: u32 = %d;
pub const ESP_IDF_VERSION_PATCH: u32 = %d;
pub type c_types = u8;
`, major, minor, patch)
}

// Fake is a shell script which writes fixed bindings to the path following
// --output and records its arguments, one per line.
type Fake struct {
	Bin     string
	ArgsLog string
}

// New installs a fake bindgen in a temporary directory.  The test is skipped
// on hosts without a POSIX shell.
func New(t TB, bindings string) *Fake {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	f := &Fake{
		Bin:     filepath.Join(dir, "bindgen"),
		ArgsLog: filepath.Join(dir, "args.log"),
	}

	content := filepath.Join(dir, "bindings.rs.in")
	if err := os.WriteFile(content, []byte(bindings), 0o644); err != nil {
		t.Fatal(err)
	}

	script := strings.Join([]string{
		"#!/bin/sh",
		"out=''",
		`: > "` + f.ArgsLog + `"`,
		`while [ $# -gt 0 ]; do`,
		`  printf '%s\n' "$1" >> "` + f.ArgsLog + `"`,
		`  if [ "$1" = "--output" ]; then out="$2"; fi`,
		`  shift`,
		`done`,
		`[ -n "$out" ] || exit 2`,
		`cp "` + content + `" "$out"`,
		"",
	}, "\n")

	if err := os.WriteFile(f.Bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	return f
}

// Args returns the arguments of the last run.
func (f *Fake) Args(t TB) []string {
	t.Helper()

	data, err := os.ReadFile(f.ArgsLog)
	if err != nil {
		t.Fatal(err)
	}

	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}
