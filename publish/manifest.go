// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package publish

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const ManifestName = "manifest"

// ManifestDocument is the YAML representation of a Result.
type ManifestDocument struct {
	Mcu       string   `yaml:"mcu"`
	Version   string   `yaml:"version"`
	Bindings  string   `yaml:"bindings,omitempty"`
	Cfg       []string `yaml:"cfg"`
	CInclArgs []string `yaml:"cincl_args"`
	LinkArgs  []string `yaml:"link_args,omitempty"`
	Tracked   []string `yaml:"tracked,omitempty"`
}

// Manifest writes a YAML document for build systems other than cargo.
type Manifest struct {
	path string
}

func NewManifest(path string) *Manifest {
	return &Manifest{path: path}
}

func (m *Manifest) Name() string {
	return ManifestName
}

func (m *Manifest) Publish(r *Result) error {
	doc := ManifestDocument{
		Mcu:       r.Mcu,
		Version:   r.Version.String(),
		Bindings:  r.Bindings,
		Cfg:       r.Cfg.Strings(),
		CInclArgs: r.CInclArgs.Args,
		Tracked:   r.Tracked,
	}
	if r.LinkArgs != nil {
		doc.LinkArgs = r.LinkArgs.Args
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return errors.Wrap(err, "could not encode manifest")
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return errors.Wrapf(err, "could not create %s", filepath.Dir(m.path))
	}

	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return errors.Wrapf(err, "could not write manifest %s", m.path)
	}

	return nil
}
