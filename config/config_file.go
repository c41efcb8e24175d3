// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const (
	IDFKIT_CONFIG_DIR = "IDFKIT_CONFIG_DIR"
	XDG_CONFIG_HOME   = "XDG_CONFIG_HOME"
)

// ConfigDir returns the configuration directory, by precedence:
// 1. IDFKIT_CONFIG_DIR
// 2. XDG_CONFIG_HOME
// 3. HOME
func ConfigDir() string {
	if a := os.Getenv(IDFKIT_CONFIG_DIR); a != "" {
		return a
	}

	if b := os.Getenv(XDG_CONFIG_HOME); b != "" {
		return filepath.Join(b, "idfkit")
	}

	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(".", ".idfkit")
	}

	return filepath.Join(home, ".config", "idfkit")
}

func DefaultConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
