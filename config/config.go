// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package config holds the settings of idfkit, gathered from defaults, the
// YAML configuration file and the environment, in that order.
package config

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

type Config struct {
	Backend string `yaml:"backend" env:"IDFKIT_BACKEND" long:"backend" usage:"Backend building the SDK (native, pio)" default:"pio"`

	Log struct {
		Level      string `yaml:"level" env:"IDFKIT_LOG_LEVEL" long:"log-level" usage:"Log level verbosity" default:"info"`
		Type       string `yaml:"type" env:"IDFKIT_LOG_TYPE" long:"log-type" usage:"Log type" default:"basic"`
		Timestamps bool   `yaml:"timestamps" env:"IDFKIT_LOG_TIMESTAMPS" long:"log-timestamps" usage:"Enable log timestamps"`
	} `yaml:"log"`

	Paths struct {
		OutDir     string `yaml:"out_dir,omitempty" env:"IDFKIT_OUT_DIR" long:"out-dir" usage:"Directory receiving the SDK build and the bindings"`
		IncludeDir string `yaml:"include_dir" env:"IDFKIT_INCLUDE_DIR" long:"include-dir" usage:"Directory holding the bindings headers" default:"src/include"`
		SdkDir     string `yaml:"sdk_dir,omitempty" env:"IDF_PATH" long:"sdk-dir" usage:"Existing ESP-IDF checkout"`
		ToolsDir   string `yaml:"tools_dir,omitempty" env:"IDF_TOOLS_PATH" long:"tools-dir" usage:"ESP-IDF tools installation"`
	} `yaml:"paths"`

	KConfig struct {
		Allow []string `yaml:"allow" env:"IDFKIT_KCONFIG_ALLOW" long:"kconfig-allow" usage:"Patterns of keys kept regardless of their value" default:"IDF_TARGET"`
	} `yaml:"kconfig"`

	Bindgen struct {
		Bin            string `yaml:"bin" env:"IDFKIT_BINDGEN" long:"bindgen" usage:"Binding generator executable" default:"bindgen"`
		ExtraClangArgs string `yaml:"extra_clang_args,omitempty" env:"IDFKIT_EXTRA_CLANG_ARGS" long:"extra-clang-args" usage:"Additional shell-quoted clang arguments"`
	} `yaml:"bindgen"`

	Publish struct {
		Type     string `yaml:"type" env:"IDFKIT_PUBLISH" long:"publish" usage:"How results are published (cargo, manifest)" default:"cargo"`
		Manifest string `yaml:"manifest,omitempty" env:"IDFKIT_MANIFEST" long:"manifest" usage:"Path of the manifest written by the manifest publisher" default:"idfkit.yaml"`
	} `yaml:"publish"`

	Native struct {
		Repository string `yaml:"repository" env:"IDFKIT_IDF_REPOSITORY" usage:"ESP-IDF git repository" default:"https://github.com/espressif/esp-idf.git"`
		Version    string `yaml:"version" env:"IDFKIT_IDF_VERSION" long:"idf-version" usage:"ESP-IDF release to check out" default:"4.4.1"`
		Target     string `yaml:"target" env:"IDFKIT_MCU" long:"mcu" usage:"Target MCU" default:"esp32"`
		CmakeBin   string `yaml:"cmake_bin" env:"IDFKIT_CMAKE" usage:"CMake executable" default:"cmake"`
	} `yaml:"native"`

	Pio struct {
		Bin       string   `yaml:"bin" env:"IDFKIT_PIO" usage:"PlatformIO executable" default:"pio"`
		Platform  string   `yaml:"platform" env:"IDFKIT_PIO_PLATFORM" usage:"PlatformIO platform" default:"espressif32"`
		Framework string   `yaml:"framework" env:"IDFKIT_PIO_FRAMEWORK" usage:"PlatformIO framework" default:"espidf"`
		Board     string   `yaml:"board" env:"IDFKIT_PIO_BOARD" long:"board" usage:"PlatformIO board" default:"esp32dev"`
		Release   bool     `yaml:"release" env:"IDFKIT_RELEASE" long:"release" usage:"Build the SDK in release mode"`
		SconsDump string   `yaml:"scons_dump,omitempty" env:"IDFKIT_PIO_SCONS_DUMP" usage:"SCons variable dump of an existing PlatformIO build"`
		Patches   []string `yaml:"patches" env:"IDFKIT_PIO_PATCHES" usage:"Patterns of patches applied to the framework" default:"patches/**.diff"`
		Options   []string `yaml:"options,omitempty" env:"IDFKIT_PIO_OPTIONS" usage:"Additional key=value lines for platformio.ini"`
	} `yaml:"pio"`
}

// allowedValues lists the accepted values of the enumerated settings, in the
// order they are validated.
var allowedValues = []struct {
	key    string
	values []string
}{
	{"backend", []string{"native", "pio"}},
	{"log.level", []string{"panic", "fatal", "error", "warning", "warn", "info", "debug", "trace"}},
	{"log.type", []string{"quiet", "basic", "fancy", "json"}},
	{"publish.type", []string{"cargo", "manifest"}},
}

// AllowedValues returns the accepted values of key, or nothing when key is not
// enumerated.
func AllowedValues(key string) []string {
	for _, allowed := range allowedValues {
		if allowed.key == key {
			return allowed.values
		}
	}

	return nil
}

// Validate rejects enumerated settings holding a value AllowedValues does not
// list.
func (c *Config) Validate() error {
	current := map[string]string{
		"backend":      c.Backend,
		"log.level":    c.Log.Level,
		"log.type":     c.Log.Type,
		"publish.type": c.Publish.Type,
	}

	for _, allowed := range allowedValues {
		if !slices.Contains(allowed.values, current[allowed.key]) {
			return errors.Errorf("invalid %s %q, expected one of: %s",
				allowed.key, current[allowed.key], strings.Join(allowed.values, ", "))
		}
	}

	return nil
}
