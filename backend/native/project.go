// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package native

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	ProjectDescriptionFileName = "project_description.json"
	LinkArgsFileName           = "idfkit-link-args.txt"
)

const projectCMakeLists = `cmake_minimum_required(VERSION 3.16)
include($ENV{IDF_PATH}/tools/cmake/project.cmake)
project(idfkit)

file(GENERATE
  OUTPUT "${CMAKE_BINARY_DIR}/` + LinkArgsFileName + `"
  CONTENT "$<JOIN:$<TARGET_PROPERTY:${CMAKE_PROJECT_NAME}.elf,LINK_OPTIONS>,\n>\n$<JOIN:$<TARGET_PROPERTY:${CMAKE_PROJECT_NAME}.elf,LINK_LIBRARIES>,\n>\n")
`

const mainCMakeLists = `idf_component_register(SRCS "idfkit_main.c")
`

// ProjectDescription is the part of the description ESP-IDF writes into the
// build directory which describes the outcome of the build.
type ProjectDescription struct {
	BuildDir            string   `json:"build_dir"`
	ConfigFile          string   `json:"config_file"`
	Target              string   `json:"target"`
	BuildComponents     []string `json:"build_components"`
	BuildComponentPaths []string `json:"build_component_paths"`
}

func generateProject(dir string) error {
	files := map[string]string{
		"CMakeLists.txt":                        projectCMakeLists,
		filepath.Join("main", "CMakeLists.txt"): mainCMakeLists,
		filepath.Join("main", "idfkit_main.c"):  "void app_main() {}\n",
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Wrapf(err, "could not create %s", filepath.Dir(path))
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return errors.Wrapf(err, "could not write %s", path)
		}
	}

	return nil
}

func readProjectDescription(buildDir string) (*ProjectDescription, error) {
	path := filepath.Join(buildDir, ProjectDescriptionFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}

	desc := &ProjectDescription{}
	if err := json.Unmarshal(data, desc); err != nil {
		return nil, errors.Wrapf(err, "could not parse %s", path)
	}

	if desc.BuildDir == "" {
		desc.BuildDir = buildDir
	}

	return desc, nil
}

// IncludeDirs are the include directories of the built components followed
// by the directory of the generated sdkconfig.h.
func (d *ProjectDescription) IncludeDirs() []string {
	var dirs []string
	for _, path := range d.BuildComponentPaths {
		inc := filepath.Join(path, "include")
		if info, err := os.Stat(inc); err == nil && info.IsDir() {
			dirs = append(dirs, inc)
		}
	}

	return append(dirs, filepath.Join(d.BuildDir, "config"))
}
