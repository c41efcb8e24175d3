// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package pipeline drives a build from the SDK to the published flags.
package pipeline

import (
	"context"
	"iter"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"idfkit.sh/backend"
	"idfkit.sh/backend/native"
	"idfkit.sh/backend/pio"
	"idfkit.sh/cfg"
	"idfkit.sh/config"
	"idfkit.sh/idf"
	"idfkit.sh/kconfig"
	"idfkit.sh/log"
	"idfkit.sh/publish"
)

// BlockedFunctions are not representable by the binding generator.
var BlockedFunctions = []string{
	"strtold",
	"_strtold_r",
	"esp_eth_mac_new_esp32",
}

const CtypesPrefix = "c_types"

type Driver struct {
	backend    backend.Backend
	publisher  publish.Publisher
	policy     cfg.Policy
	includeDir string
	outDir     string
}

type DriverOption func(*Driver) error

func WithBackend(b backend.Backend) DriverOption {
	return func(d *Driver) error {
		d.backend = b
		return nil
	}
}

func WithPublisher(p publish.Publisher) DriverOption {
	return func(d *Driver) error {
		d.publisher = p
		return nil
	}
}

// WithPolicy sets which configuration entries become flags.
func WithPolicy(p cfg.Policy) DriverOption {
	return func(d *Driver) error {
		d.policy = p
		return nil
	}
}

// WithIncludeDir sets the directory holding the bindings headers.
func WithIncludeDir(dir string) DriverOption {
	return func(d *Driver) error {
		d.includeDir = dir
		return nil
	}
}

// WithOutDir sets the directory the bindings are generated into.
func WithOutDir(dir string) DriverOption {
	return func(d *Driver) error {
		d.outDir = dir
		return nil
	}
}

// NewBackend returns the backend called name configured from c.
func NewBackend(name string, c *config.Config) (backend.Backend, error) {
	switch name {
	case pio.Name:
		return pio.NewBackend(pio.WithConfig(c))
	case native.Name:
		return native.NewBackend(native.WithConfig(c))
	default:
		return nil, errors.Errorf("unknown backend %q, expected one of %v", name, Backends())
	}
}

// Backends lists the known backend names.
func Backends() []string {
	return []string{native.Name, pio.Name}
}

// WithConfig selects backend, publisher and filter policy from c.  Options
// given after it take precedence.
func WithConfig(c *config.Config) DriverOption {
	return func(d *Driver) error {
		b, err := NewBackend(c.Backend, c)
		if err != nil {
			return err
		}

		p, err := publish.New(c.Publish.Type, c.Publish.Manifest)
		if err != nil {
			return err
		}

		allow, err := cfg.CompileAllow(c.KConfig.Allow...)
		if err != nil {
			return err
		}

		d.backend = b
		d.publisher = p
		d.policy = cfg.DefaultPolicy(allow...)
		d.includeDir = c.Paths.IncludeDir
		d.outDir = c.Paths.OutDir

		return nil
	}
}

func NewDriver(opts ...DriverOption) (*Driver, error) {
	d := &Driver{
		includeDir: "src/include",
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.backend == nil {
		return nil, errors.New("no backend selected")
	}
	if d.publisher == nil {
		return nil, errors.New("no publisher selected")
	}
	if d.outDir == "" {
		return nil, errors.New("no output directory configured")
	}

	if d.policy == nil {
		allow, err := cfg.CompileAllow(cfg.DefaultAllow...)
		if err != nil {
			return nil, err
		}
		d.policy = cfg.DefaultPolicy(allow...)
	}

	return d, nil
}

// FilterTarget filters the configuration entries and extracts the target MCU.
// A missing target is reported together with every flag that was derived.
func FilterTarget(entries iter.Seq[kconfig.Entry], policy cfg.Policy) (*cfg.Args, string, error) {
	args := cfg.Filter(idf.Namespace, entries, policy)

	mcu, ok := args.Get(idf.TargetFlag)
	if !ok || mcu == "" {
		return args, "", errors.Errorf("failed to get IDF_TARGET from kconfig, cfgs:\n%s",
			strings.Join(args.Strings(), "\n"))
	}

	return args, mcu, nil
}

// Run executes every stage in order.  Nothing is published unless all
// previous stages succeeded.
func (d *Driver) Run(ctx context.Context) (*publish.Result, error) {
	logger := log.G(ctx).WithField("backend", d.backend.Name())

	// Backend resolution
	logger.WithField(log.StageField, StageBackend).Info("building SDK")

	out, err := d.backend.Build(ctx)
	if err == nil {
		err = out.Validate()
	}
	if err != nil {
		return nil, stageError(StageBackend, err)
	}

	// Target identification
	args, mcu, err := FilterTarget(out.KConfig, d.policy)
	if err != nil {
		return nil, stageError(StageTarget, err)
	}

	logger = logger.WithField("mcu", mcu)
	logger.WithFields(logrus.Fields{
		log.StageField: StageTarget,
		"flags":        args.Len(),
	}).Debug("filtered SDK configuration")

	// Header selection
	header := idf.HeaderPath(d.includeDir, mcu)
	if _, err := os.Stat(header); err != nil {
		return nil, stageError(StageHeader, errors.Wrapf(err, "missing bindings header"))
	}

	tracked := append(slices.Clone(out.Tracked), header)

	// Binding generation
	logger.WithField(log.StageField, StageBindgen).Info("generating bindings")

	bindings, err := out.Bindgen.Builder().
		UseCore().
		CtypesPrefix(CtypesPrefix).
		Header(header).
		BlocklistFunction(BlockedFunctions...).
		ClangArgs(slices.Collect(out.Components.ClangArgs())...).
		ClangArgs("-target", idf.ClangTarget(mcu)).
		Run(ctx, d.outDir)
	if err != nil {
		return nil, stageError(StageBindgen, err)
	}

	var size uint64
	if info, err := os.Stat(bindings); err == nil {
		size = uint64(info.Size())
		logger.WithFields(logrus.Fields{
			log.StageField: StageBindgen,
			"size":         humanize.Bytes(size),
		}).Debugf("wrote %s", bindings)
	}

	// Version extraction and flag merge
	version, err := idf.ParseVersionFile(bindings)
	if err != nil {
		return nil, stageError(StageVersion, err)
	}

	if !version.Supported() {
		logger.WithField(log.StageField, StageVersion).
			Warnf("ESP-IDF %s is outside of the supported range %s", version, idf.SupportedVersions)
	}

	merged := cfg.NewArgs().
		Extend(args.All()).
		Extend(version.CfgArgs()).
		Extend(out.Components.CfgArgs()).
		Add(cfg.Bare(mcu))

	result := &publish.Result{
		Mcu:       mcu,
		Version:   version,
		Cfg:       merged,
		CInclArgs: out.CInclArgs,
		LinkArgs:  out.LinkArgs,
		Tracked:   tracked,
		Bindings:  bindings,

		BindingsSize: size,
	}

	// Publication
	logger.WithFields(logrus.Fields{
		log.StageField: StagePublish,
		"publisher":    d.publisher.Name(),
	}).Debugf("publishing %s flags", humanize.Comma(int64(merged.Len())))

	if err := d.publisher.Publish(result); err != nil {
		return nil, stageError(StagePublish, err)
	}

	return result, nil
}
