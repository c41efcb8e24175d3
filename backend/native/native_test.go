// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package native

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfkit.sh/config"
)

// fakeCmake emulates configuring and building an ESP-IDF project.
const fakeCmake = `#!/bin/sh
mode=configure
while [ $# -gt 0 ]; do
  case "$1" in
    -B) build="$2"; shift ;;
    --build) mode=build; build="$2"; shift ;;
    -DSDKCONFIG=*) sdkconfig="${1#-DSDKCONFIG=}" ;;
  esac
  shift
done

if [ "$mode" = configure ]; then
  mkdir -p "$build/config"
  printf 'CONFIG_IDF_TARGET="%s"\nCONFIG_PTHREAD_ENABLED=y\n' "$IDF_TARGET" > "$sdkconfig"
  cat > "$build/project_description.json" <<JSON
{
  "build_dir": "$build",
  "config_file": "$sdkconfig",
  "target": "$IDF_TARGET",
  "build_components": ["pthread", "nvs_flash", "freertos"],
  "build_component_paths": ["$IDF_PATH/components/pthread", "$IDF_PATH/components/freertos"]
}
JSON
else
  printf -- '-Wl,--gc-sections\n\n-lpthread\n' > "$build/idfkit-link-args.txt"
fi
`

func TestReferenceName(t *testing.T) {
	tests := []struct {
		version string
		expect  plumbing.ReferenceName
	}{
		{"4.4.1", "refs/tags/v4.4.1"},
		{"v5.0", "refs/tags/v5.0"},
		{"4.4", "refs/tags/v4.4"},
		{"master", "refs/heads/master"},
		{"release/v4.4", "refs/heads/release/v4.4"},
	}

	for _, tc := range tests {
		t.Run(tc.version, func(t *testing.T) {
			ref, err := ReferenceName(tc.version)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, ref)
		})
	}

	_, err := ReferenceName("")
	assert.Error(t, err)
}

func TestCheckoutReusesRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	assert.NoError(t, Checkout(context.Background(), "https://invalid.example/esp-idf.git", "4.4.1", dir))
}

func TestCheckoutRejectsForeignDirectory(t *testing.T) {
	assert.Error(t, Checkout(context.Background(), "https://invalid.example/esp-idf.git", "4.4.1", t.TempDir()))
}

func TestNewBackendRequiresTarget(t *testing.T) {
	c, err := config.NewDefaultConfig()
	require.NoError(t, err)
	c.Native.Target = ""

	_, err = NewBackend(WithConfig(c))
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	tmp := t.TempDir()
	cmake := filepath.Join(tmp, "cmake")
	require.NoError(t, os.WriteFile(cmake, []byte(fakeCmake), 0o755))

	sdk := filepath.Join(tmp, "esp-idf")
	require.NoError(t, os.MkdirAll(filepath.Join(sdk, "components", "pthread", "include"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(sdk, "components", "freertos"), 0o755))

	c, err := config.NewDefaultConfig()
	require.NoError(t, err)
	c.Paths.OutDir = filepath.Join(tmp, "out")
	c.Paths.SdkDir = sdk
	c.Native.Target = "esp32c3"
	c.Native.CmakeBin = cmake

	b, err := NewBackend(WithConfig(c))
	require.NoError(t, err)
	assert.Equal(t, Name, b.Name())

	out, err := b.Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, out.Validate())

	build := filepath.Join(c.Paths.OutDir, "build")

	assert.FileExists(t, filepath.Join(c.Paths.OutDir, "idfkit-project", "CMakeLists.txt"))
	assert.Equal(t, []string{"comp_pthread_enabled", "comp_nvs_flash_enabled"}, out.Components.Names())
	assert.Equal(t, []string{
		"-I" + filepath.Join(sdk, "components", "pthread", "include"),
		"-I" + filepath.Join(build, "config"),
	}, out.CInclArgs.Args)

	require.NotNil(t, out.LinkArgs)
	assert.Equal(t, []string{"-Wl,--gc-sections", "-lpthread"}, out.LinkArgs.Args)
	assert.Equal(t, []string{filepath.Join(c.Paths.OutDir, "sdkconfig")}, out.Tracked)

	var target string
	for e := range out.KConfig {
		if e.Key == "IDF_TARGET" {
			target, _ = e.Value.Str()
		}
	}
	assert.Equal(t, "esp32c3", target)
}

func TestReadLinkArgsMissing(t *testing.T) {
	args, err := readLinkArgs(filepath.Join(t.TempDir(), LinkArgsFileName))
	require.NoError(t, err)
	assert.Nil(t, args)
}
