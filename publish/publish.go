// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package publish hands the results of a build to whatever consumes them.
package publish

import (
	"github.com/pkg/errors"

	"idfkit.sh/cfg"
	"idfkit.sh/idf"
)

// Result is everything which is published at the end of a build.
type Result struct {
	Mcu       string
	Version   idf.Version
	Cfg       *cfg.Args
	CInclArgs idf.CInclArgs
	LinkArgs  *idf.LinkArgs
	Tracked   []string
	Bindings  string

	// BindingsSize is the size in bytes of the generated bindings.
	BindingsSize uint64
}

// Publisher declares a Result to the surrounding build system.
type Publisher interface {
	Name() string
	Publish(r *Result) error
}

// Strategies lists the known publisher names.
func Strategies() []string {
	return []string{CargoName, ManifestName}
}

// New returns the publisher called name.  The manifest publisher writes to
// manifestPath; the cargo publisher writes to standard output.
func New(name, manifestPath string) (Publisher, error) {
	switch name {
	case CargoName:
		return NewCargo(nil), nil
	case ManifestName:
		return NewManifest(manifestPath), nil
	default:
		return nil, errors.Errorf("unknown publisher %q, expected one of %v", name, Strategies())
	}
}
