// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package pio

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"idfkit.sh/idf"
	"idfkit.sh/kconfig"
)

// SconsDumpFileName is written below the project's .pio directory by the
// extra script installed into every generated project.
const SconsDumpFileName = "idfkit-scons.json"

// SconsVariables is the subset of the SCons construction environment of a
// PlatformIO build needed to compile against and link with the SDK.
type SconsVariables struct {
	ProjectDir   string `mapstructure:"project_dir"`
	ReleaseBuild bool   `mapstructure:"release_build"`
	Path         string `mapstructure:"path"`
	Mcu          string `mapstructure:"mcu"`
	IncFlags     string `mapstructure:"incflags"`
	ClangArgs    string `mapstructure:"clangargs"`
	LibDirFlags  string `mapstructure:"libdirflags"`
	LibFlags     string `mapstructure:"libflags"`
	LinkFlags    string `mapstructure:"linkflags"`
}

// ReadSconsDump decodes the dump at path.  Booleans may be encoded as strings
// or numbers, depending on the PlatformIO version.
func ReadSconsDump(path string) (*SconsVariables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read SCons dump %s", path)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "could not parse SCons dump %s", path)
	}

	vars := &SconsVariables{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           vars,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrapf(err, "could not decode SCons dump %s", path)
	}

	if vars.ProjectDir == "" {
		vars.ProjectDir = filepath.Dir(filepath.Dir(path))
	}

	return vars, nil
}

// SdkConfig returns the sdkconfig the build used.
func (v *SconsVariables) SdkConfig() string {
	name := "sdkconfig.debug"
	if v.ReleaseBuild {
		name = "sdkconfig.release"
	}

	return filepath.Join(v.ProjectDir, name)
}

// KConfig parses the sdkconfig the build used.
func (v *SconsVariables) KConfig() (*kconfig.DotConfigFile, error) {
	return kconfig.ParseConfig(v.SdkConfig())
}

func (v *SconsVariables) CInclArgs() (idf.CInclArgs, error) {
	args, err := shellwords.Parse(v.IncFlags)
	if err != nil {
		return idf.CInclArgs{}, errors.Wrap(err, "could not split include flags")
	}

	return idf.CInclArgs{Args: args}, nil
}

// BindgenClangArgs are the include flags followed by the extra clang
// arguments of the toolchain.
func (v *SconsVariables) BindgenClangArgs() ([]string, error) {
	incl, err := v.CInclArgs()
	if err != nil {
		return nil, err
	}

	extra, err := shellwords.Parse(v.ClangArgs)
	if err != nil {
		return nil, errors.Wrap(err, "could not split clang arguments")
	}

	return append(incl.Args, extra...), nil
}

func (v *SconsVariables) LinkArgs() (*idf.LinkArgs, error) {
	var args []string

	for _, flags := range []string{v.LinkFlags, v.LibDirFlags, v.LibFlags} {
		split, err := shellwords.Parse(flags)
		if err != nil {
			return nil, errors.Wrap(err, "could not split link flags")
		}
		args = append(args, split...)
	}

	if len(args) == 0 {
		return nil, errors.New("SCons dump carries no link flags")
	}

	return &idf.LinkArgs{Args: args}, nil
}
