// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package native builds the SDK with its own CMake based build system.
package native

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"idfkit.sh/bindgen"
	"idfkit.sh/config"
	"idfkit.sh/exec"
	"idfkit.sh/idf"
	"idfkit.sh/kconfig"
	"idfkit.sh/log"
)

const Name = "native"

type Backend struct {
	repository     string
	version        string
	sdkDir         string
	toolsDir       string
	outDir         string
	mcu            string
	cmake          string
	bindgenBin     string
	extraClangArgs string
}

type BackendOption func(*Backend) error

// WithConfig applies the native, path and bindgen settings of c.
func WithConfig(c *config.Config) BackendOption {
	return func(b *Backend) error {
		b.repository = c.Native.Repository
		b.version = c.Native.Version
		b.sdkDir = c.Paths.SdkDir
		b.toolsDir = c.Paths.ToolsDir
		b.outDir = c.Paths.OutDir
		b.mcu = c.Native.Target
		b.cmake = c.Native.CmakeBin
		b.bindgenBin = c.Bindgen.Bin
		b.extraClangArgs = c.Bindgen.ExtraClangArgs
		return nil
	}
}

func NewBackend(opts ...BackendOption) (*Backend, error) {
	b := &Backend{cmake: "cmake"}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}

	if b.outDir == "" {
		return nil, errors.New("no output directory configured")
	}
	if b.mcu == "" {
		return nil, errors.New("no target MCU configured")
	}

	return b, nil
}

func (b *Backend) Name() string {
	return Name
}

func (b *Backend) Build(ctx context.Context) (*idf.BuildOutput, error) {
	logger := log.G(ctx).WithFields(logrus.Fields{
		log.StageField: "backend",
		"backend":      Name,
		"mcu":          b.mcu,
	})

	sdkDir := b.sdkDir
	if sdkDir == "" {
		sdkDir = filepath.Join(b.outDir, "esp-idf-"+b.version)
		if err := Checkout(ctx, b.repository, b.version, sdkDir); err != nil {
			return nil, err
		}
	}

	projectDir := filepath.Join(b.outDir, "idfkit-project")
	buildDir := filepath.Join(b.outDir, "build")
	sdkconfig := filepath.Join(b.outDir, kconfig.DotConfigFileName)

	if err := generateProject(projectDir); err != nil {
		return nil, err
	}

	if err := b.cmakeBuild(ctx, logger, sdkDir, projectDir, buildDir, sdkconfig); err != nil {
		return nil, err
	}

	desc, err := readProjectDescription(buildDir)
	if err != nil {
		return nil, err
	}

	if desc.ConfigFile != "" {
		sdkconfig = desc.ConfigFile
	}

	names := make([]string, 0, len(desc.BuildComponents))
	for _, c := range desc.BuildComponents {
		names = append(names, idf.ComponentName(c))
	}
	components := idf.ComponentsFrom(names...)

	cincl := idf.CInclArgs{}
	for _, dir := range desc.IncludeDirs() {
		cincl.Args = append(cincl.Args, "-I"+dir)
	}

	linkArgs, err := readLinkArgs(filepath.Join(desc.BuildDir, LinkArgsFileName))
	if err != nil {
		return nil, err
	}

	factory, err := bindgen.NewFactory(
		bindgen.WithBin(b.bindgenBin),
		bindgen.WithClangArgs(cincl.Args...),
		bindgen.WithClangArgs(slices.Collect(components.ClangArgs())...),
		bindgen.WithExtraArgs(b.extraClangArgs),
	)
	if err != nil {
		return nil, err
	}

	entries, err := kconfig.Entries(sdkconfig)
	if err != nil {
		return nil, err
	}

	logger.WithField("components", components.Len()).Debug("SDK built")

	return &idf.BuildOutput{
		CInclArgs:  cincl,
		LinkArgs:   linkArgs,
		KConfig:    entries,
		Components: components,
		Bindgen:    factory,
		Tracked:    []string{sdkconfig},
	}, nil
}

func (b *Backend) cmakeBuild(ctx context.Context, logger *logrus.Entry, sdkDir, projectDir, buildDir, sdkconfig string) error {
	bin, err := exec.LookPath(b.cmake)
	if err != nil {
		return err
	}

	out := logger.WriterLevel(logrus.DebugLevel)
	defer out.Close()

	opts := []exec.ExecOption{
		exec.WithDir(projectDir),
		exec.WithStdout(out),
		exec.WithEnvKey("IDF_PATH", sdkDir),
		exec.WithEnvKey("IDF_TARGET", b.mcu),
	}
	if b.toolsDir != "" {
		opts = append(opts, exec.WithEnvKey("IDF_TOOLS_PATH", b.toolsDir))
	}

	configure, err := exec.NewProcess(bin, []string{
		"-G", "Ninja",
		"-S", projectDir,
		"-B", buildDir,
		"-DIDF_TARGET=" + b.mcu,
		"-DSDKCONFIG=" + sdkconfig,
		"-DPYTHON_DEPS_CHECKED=1",
	}, opts...)
	if err != nil {
		return err
	}

	build, err := exec.NewProcess(bin, []string{"--build", buildDir}, opts...)
	if err != nil {
		return err
	}

	if err := exec.NewSequential(configure, build).StartAndWait(ctx); err != nil {
		return errors.Wrap(err, "CMake build of the SDK failed")
	}

	return nil
}

// readLinkArgs returns nil when the build did not produce link arguments.
func readLinkArgs(path string) (*idf.LinkArgs, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	defer f.Close()

	var args []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		if line := strings.TrimSpace(s.Text()); line != "" {
			args = append(args, line)
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}

	if len(args) == 0 {
		return nil, nil
	}

	return &idf.LinkArgs{Args: args}, nil
}
