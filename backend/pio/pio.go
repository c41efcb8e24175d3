// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package pio builds the SDK with PlatformIO.
package pio

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"idfkit.sh/backend"
	"idfkit.sh/bindgen"
	"idfkit.sh/config"
	"idfkit.sh/exec"
	"idfkit.sh/idf"
	"idfkit.sh/log"
)

const Name = "pio"

type Backend struct {
	bin            string
	project        Project
	sconsDump      string
	patchRoot      string
	patchGlobs     []string
	bindgenBin     string
	extraClangArgs string
}

type BackendOption func(*Backend) error

// WithConfig applies the pio, path and bindgen settings of c.
func WithConfig(c *config.Config) BackendOption {
	return func(b *Backend) error {
		b.bin = c.Pio.Bin
		b.sconsDump = c.Pio.SconsDump
		b.patchGlobs = c.Pio.Patches
		b.bindgenBin = c.Bindgen.Bin
		b.extraClangArgs = c.Bindgen.ExtraClangArgs
		b.project = Project{
			Dir:       filepath.Join(c.Paths.OutDir, "esp-idf"),
			Platform:  c.Pio.Platform,
			Framework: c.Pio.Framework,
			Board:     c.Pio.Board,
			Release:   c.Pio.Release,
			Options:   c.Pio.Options,
		}
		return nil
	}
}

// WithPatchRoot sets the directory the patch patterns are relative to.
func WithPatchRoot(dir string) BackendOption {
	return func(b *Backend) error {
		b.patchRoot = dir
		return nil
	}
}

func NewBackend(opts ...BackendOption) (*Backend, error) {
	b := &Backend{
		bin:       "pio",
		patchRoot: ".",
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	if b.project.Dir == "" {
		return nil, errors.New("no output directory for the PlatformIO project")
	}

	return b, nil
}

func (b *Backend) Name() string {
	return Name
}

// Build reuses the SCons dump of a PlatformIO build which is already running
// when there is one, and otherwise builds the SDK in a generated project.
func (b *Backend) Build(ctx context.Context) (*idf.BuildOutput, error) {
	logger := log.G(ctx).WithFields(logrus.Fields{
		log.StageField: "backend",
		"backend":      Name,
	})

	var (
		vars     *SconsVariables
		linkArgs *idf.LinkArgs
		tracked  []string
		err      error
	)

	if dump := b.sconsDump; dump != "" && fileExists(dump) {
		logger.Info("PlatformIO build detected, generating bindings only")

		if vars, err = ReadSconsDump(dump); err != nil {
			return nil, err
		}
	} else {
		patches, err := backend.TrackedGlobs(b.patchRoot, b.patchGlobs...)
		if err != nil {
			return nil, err
		}

		project := b.project
		project.Patches = patches
		tracked = append(tracked, patches...)

		logger.WithField("dir", project.Dir).Debug("generating project")
		if err := project.Generate(); err != nil {
			return nil, err
		}

		if err := b.run(ctx, &project, logger); err != nil {
			return nil, err
		}

		if vars, err = ReadSconsDump(project.DumpPath()); err != nil {
			return nil, err
		}

		if linkArgs, err = vars.LinkArgs(); err != nil {
			return nil, err
		}
	}

	cincl, err := vars.CInclArgs()
	if err != nil {
		return nil, err
	}

	clangArgs, err := vars.BindgenClangArgs()
	if err != nil {
		return nil, err
	}

	components := idf.NewComponents()

	factory, err := bindgen.NewFactory(
		bindgen.WithBin(b.bindgenBin),
		bindgen.WithClangArgs(clangArgs...),
		bindgen.WithClangArgs(slices.Collect(components.ClangArgs())...),
		bindgen.WithExtraArgs(b.extraClangArgs),
	)
	if err != nil {
		return nil, err
	}

	sdkconfig, err := vars.KConfig()
	if err != nil {
		return nil, err
	}

	return &idf.BuildOutput{
		CInclArgs:  cincl,
		LinkArgs:   linkArgs,
		KConfig:    sdkconfig.All(),
		Components: components,
		Bindgen:    factory,
		Tracked:    append(tracked, vars.SdkConfig()),
	}, nil
}

func (b *Backend) run(ctx context.Context, project *Project, logger *logrus.Entry) error {
	bin, err := exec.LookPath(b.bin)
	if err != nil {
		return err
	}

	out := logger.WriterLevel(logrus.DebugLevel)
	defer out.Close()

	process, err := exec.NewProcess(bin, []string{"run", "--project-dir", project.Dir},
		exec.WithDir(project.Dir),
		exec.WithStdout(out),
		exec.WithEnvKey("PLATFORMIO_NO_ANSI", "true"),
	)
	if err != nil {
		return err
	}

	if err := process.StartAndWait(ctx); err != nil {
		return errors.Wrap(err, "PlatformIO build failed")
	}

	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
