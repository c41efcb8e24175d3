// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// YamlFeeder feeds using a YAML file.
type YamlFeeder struct {
	File string
}

func (f YamlFeeder) Feed(structure interface{}) error {
	file, err := os.Open(filepath.Clean(f.File))
	if err != nil {
		return errors.Wrap(err, "cannot open yaml file")
	}

	defer file.Close()

	if err = yaml.NewDecoder(file).Decode(structure); err != nil && err != io.EOF {
		return errors.Wrap(err, "cannot feed config file")
	}

	return nil
}

// Write serializes structure into the file.  Without merge an existing file
// is left untouched.
func (f YamlFeeder) Write(structure interface{}, merge bool) error {
	if len(f.File) == 0 {
		return errors.New("filename for YAML cannot be empty")
	}

	if _, err := os.Stat(f.File); err == nil && !merge {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(f.File), 0o771); err != nil {
		return errors.Wrap(err, "could not create config directory")
	}

	data, err := yaml.Marshal(structure)
	if err != nil {
		return err
	}

	return os.WriteFile(f.File, data, 0o600)
}
