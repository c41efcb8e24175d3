// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package bindgen

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"idfkit.sh/exec"
	"idfkit.sh/log"
)

// options are serialized into bindgen's command line.
type options struct {
	UseCore           bool     `flag:"--use-core"`
	NoLayoutTests     bool     `flag:"--no-layout-tests"`
	CtypesPrefix      string   `flag:"--ctypes-prefix"`
	BlocklistFunction []string `flag:"--blocklist-function"`
	Output            string   `flag:"--output"`
}

// Builder accumulates the settings of one bindgen run.
type Builder struct {
	bin       string
	header    string
	opts      options
	clangArgs []string
}

func (b *Builder) CtypesPrefix(prefix string) *Builder {
	b.opts.CtypesPrefix = prefix
	return b
}

func (b *Builder) Header(path string) *Builder {
	b.header = path
	return b
}

func (b *Builder) BlocklistFunction(names ...string) *Builder {
	b.opts.BlocklistFunction = append(b.opts.BlocklistFunction, names...)
	return b
}

func (b *Builder) ClangArgs(args ...string) *Builder {
	b.clangArgs = append(b.clangArgs, args...)
	return b
}

// UseCore makes the generated code refer to core instead of std.
func (b *Builder) UseCore() *Builder {
	b.opts.UseCore = true
	b.opts.NoLayoutTests = true
	return b
}

// Executable renders the command line which writes the bindings to output.
func (b *Builder) Executable(output string) (*exec.Executable, error) {
	if b.header == "" {
		return nil, errors.New("no header set")
	}

	opts := b.opts
	opts.Output = output

	e, err := exec.NewExecutable(b.bin, opts)
	if err != nil {
		return nil, err
	}

	args := []string{b.header}
	if len(b.clangArgs) > 0 {
		args = append(args, "--")
		args = append(args, b.clangArgs...)
	}

	return e.WithArgs(args...), nil
}

// Run generates the bindings into outDir and returns the path of the
// generated file.
func (b *Builder) Run(ctx context.Context, outDir string) (string, error) {
	output := filepath.Join(outDir, OutputFileName)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "could not create %s", outDir)
	}

	bin, err := exec.LookPath(b.bin)
	if err != nil {
		return "", err
	}

	b.bin = bin

	e, err := b.Executable(output)
	if err != nil {
		return "", err
	}

	logger := log.G(ctx).WithField(log.StageField, "bindgen")
	stderr := logger.WriterLevel(logrus.WarnLevel)
	defer stderr.Close()

	process, err := exec.NewProcessFromExecutable(e,
		exec.WithStdout(stderr),
		exec.WithStderr(stderr),
		exec.WithOnExitCallback(func(code int) {
			logger.WithField("code", code).Debug("bindgen exited")
		}),
	)
	if err != nil {
		return "", err
	}

	if err := process.StartAndWait(ctx); err != nil {
		return "", errors.Wrap(err, "binding generation failed")
	}

	if _, err := os.Stat(output); err != nil {
		return "", errors.Wrapf(err, "bindgen did not produce %s", output)
	}

	return output, nil
}
