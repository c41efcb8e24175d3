// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package bindgen prepares and runs invocations of the bindgen binding
// generator.
package bindgen

import (
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

const (
	DefaultBin = "bindgen"

	// OutputFileName is the name of the generated bindings below the output
	// directory.
	OutputFileName = "bindings.rs"
)

// Factory holds the settings a backend knows about, i.e. how to reach the
// compiler's view of the SDK.  Each build starts a fresh Builder from it.
type Factory struct {
	bin       string
	clangArgs []string
}

type FactoryOption func(*Factory) error

func NewFactory(opts ...FactoryOption) (*Factory, error) {
	f := &Factory{bin: DefaultBin}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// WithBin sets the bindgen executable.  An empty bin keeps the default.
func WithBin(bin string) FactoryOption {
	return func(f *Factory) error {
		if bin != "" {
			f.bin = bin
		}
		return nil
	}
}

// WithClangArgs appends arguments handed to clang on every run, typically
// include directories and defines of the SDK build.
func WithClangArgs(args ...string) FactoryOption {
	return func(f *Factory) error {
		f.clangArgs = append(f.clangArgs, args...)
		return nil
	}
}

// WithExtraArgs splits a shell-quoted string into clang arguments.
func WithExtraArgs(extra string) FactoryOption {
	return func(f *Factory) error {
		if extra == "" {
			return nil
		}

		args, err := shellwords.Parse(extra)
		if err != nil {
			return errors.Wrapf(err, "could not parse extra clang arguments %q", extra)
		}

		f.clangArgs = append(f.clangArgs, args...)
		return nil
	}
}

func (f *Factory) Bin() string {
	return f.bin
}

func (f *Factory) ClangArgs() []string {
	return append([]string(nil), f.clangArgs...)
}

// Builder starts a new invocation which inherits the factory's settings.
func (f *Factory) Builder() *Builder {
	return &Builder{
		bin:       f.bin,
		clangArgs: f.ClangArgs(),
	}
}
