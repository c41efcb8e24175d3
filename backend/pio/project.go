// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package pio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	ProjectFileName = "platformio.ini"
	dumpScriptName  = "idfkit_scons_dump.py"
)

// dumpScript runs as a post script of the PlatformIO build.  It applies the
// configured patches to the framework before the build and writes the
// construction variables once the firmware is linked.
const dumpScript = `Import("env")

import json
import os
import subprocess

project_dir = env.subst("$PROJECT_DIR")
framework_dir = env.PioPlatform().get_package_dir("framework-espidf")

for patch in env.GetProjectOption("custom_idfkit_patches", "").split():
    check = subprocess.run(["git", "apply", "--reverse", "--check", patch], cwd=framework_dir)
    if check.returncode != 0:
        subprocess.run(["git", "apply", patch], cwd=framework_dir, check=True)

def dump(target, source, env):
    out = os.path.join(project_dir, ".pio", "` + SconsDumpFileName + `")
    with open(out, "w") as f:
        json.dump({
            "project_dir": project_dir,
            "release_build": env.GetBuildType() == "release",
            "path": env["ENV"]["PATH"],
            "mcu": env.BoardConfig().get("build.mcu"),
            "incflags": env.subst("$_CPPINCFLAGS"),
            "clangargs": env.subst("$_CPPDEFFLAGS"),
            "libdirflags": env.subst("$_LIBDIRFLAGS"),
            "libflags": env.subst("$_LIBFLAGS"),
            "linkflags": env.subst("$LINKFLAGS"),
        }, f)

env.AddPostAction("$BUILD_DIR/${PROGNAME}.elf", dump)
`

// Project is a minimal PlatformIO project building the SDK only.
type Project struct {
	Dir       string
	Platform  string
	Framework string
	Board     string
	Release   bool

	// Options are extra `key = value` lines of the environment section.
	Options []string

	// Patches are copied into the project and applied to the framework.
	Patches []string
}

// DumpPath is where the build leaves its SCons variables.
func (p *Project) DumpPath() string {
	return filepath.Join(p.Dir, ".pio", SconsDumpFileName)
}

func (p *Project) ini() []byte {
	var b bytes.Buffer

	buildType := "debug"
	if p.Release {
		buildType = "release"
	}

	fmt.Fprintf(&b, "[env:idfkit]\n")
	fmt.Fprintf(&b, "platform = %s\n", p.Platform)
	fmt.Fprintf(&b, "framework = %s\n", p.Framework)
	fmt.Fprintf(&b, "board = %s\n", p.Board)
	fmt.Fprintf(&b, "build_type = %s\n", buildType)
	fmt.Fprintf(&b, "extra_scripts = post:%s\n", dumpScriptName)

	if len(p.Patches) > 0 {
		names := make([]string, 0, len(p.Patches))
		for _, patch := range p.Patches {
			names = append(names, filepath.Join("patches", filepath.Base(patch)))
		}
		fmt.Fprintf(&b, "custom_idfkit_patches = %s\n", strings.Join(names, " "))
	}

	for _, opt := range p.Options {
		key, value, found := strings.Cut(opt, "=")
		if !found {
			continue
		}
		fmt.Fprintf(&b, "%s = %s\n", strings.TrimSpace(key), strings.TrimSpace(value))
	}

	return b.Bytes()
}

// Generate writes the project to disk, replacing a previous generation.
func (p *Project) Generate() error {
	for _, dir := range []string{p.Dir, filepath.Join(p.Dir, "src"), filepath.Join(p.Dir, "patches")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "could not create %s", dir)
		}
	}

	files := map[string][]byte{
		ProjectFileName:                       p.ini(),
		dumpScriptName:                        []byte(dumpScript),
		filepath.Join("src", "idfkit_main.c"): []byte("void app_main() {}\n"),
	}

	for name, data := range files {
		if err := os.WriteFile(filepath.Join(p.Dir, name), data, 0o644); err != nil {
			return errors.Wrapf(err, "could not write %s", name)
		}
	}

	for _, patch := range p.Patches {
		if err := copyFile(patch, filepath.Join(p.Dir, "patches", filepath.Base(patch))); err != nil {
			return err
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "could not open patch %s", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, "could not copy %s", src)
	}

	return nil
}
