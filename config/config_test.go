// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	t.Setenv("OUT_DIR", "/tmp/out")
	t.Setenv("PROFILE", "release")

	c, err := NewDefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "pio", c.Backend)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, []string{"IDF_TARGET"}, c.KConfig.Allow)
	assert.Equal(t, []string{"patches/**.diff"}, c.Pio.Patches)
	assert.Equal(t, "/tmp/out", c.Paths.OutDir)
	assert.True(t, c.Pio.Release)
}

func TestDefault(t *testing.T) {
	assert.Equal(t, "info", Default("log.level"))
	assert.Equal(t, "cargo", Default("publish.type"))
	assert.Equal(t, "", Default("no.such.key"))
}

func TestManagerPrecedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
backend: native
log:
  level: debug
kconfig:
  allow:
    - IDF_TARGET
    - ^FREERTOS_HZ$
`), 0o600))

	t.Setenv("IDFKIT_LOG_LEVEL", "trace")
	t.Setenv("IDFKIT_PIO_OPTIONS", "board_build.f_cpu=160000000L,monitor_speed=115200")

	cm, err := NewConfigManager(WithFile(file, false), WithEnv())
	require.NoError(t, err)

	assert.Equal(t, file, cm.ConfigFile)
	assert.Equal(t, "native", cm.Config.Backend)
	assert.Equal(t, "trace", cm.Config.Log.Level)
	assert.Equal(t, []string{"IDF_TARGET", "^FREERTOS_HZ$"}, cm.Config.KConfig.Allow)
	assert.Equal(t, []string{"board_build.f_cpu=160000000L", "monitor_speed=115200"}, cm.Config.Pio.Options)
}

func TestWithFileMissing(t *testing.T) {
	dir := t.TempDir()

	cm, err := NewConfigManager(WithFile(filepath.Join(dir, "absent.yaml"), false))
	require.NoError(t, err)
	assert.Empty(t, cm.ConfigFile)

	created := filepath.Join(dir, "nested", "created.yaml")
	_, err = NewConfigManager(WithFile(created, true))
	require.NoError(t, err)
	assert.FileExists(t, created)
}

func TestWithFileUnsupported(t *testing.T) {
	_, err := NewConfigManager(WithFile("config.toml", false))
	assert.Error(t, err)
}

func TestEnvFeederInvalidBool(t *testing.T) {
	t.Setenv("IDFKIT_RELEASE", "perhaps")

	_, err := NewConfigManager(WithEnv())
	assert.Error(t, err)
}

func TestEnvFeederNested(t *testing.T) {
	t.Setenv("IDFKIT_BACKEND", "native")
	t.Setenv("IDF_TOOLS_PATH", "/opt/espressif")
	t.Setenv("IDFKIT_KCONFIG_ALLOW", "IDF_TARGET,^SPIRAM")

	c := &Config{}
	c.Log.Level = "warn"
	require.NoError(t, EnvFeeder{}.Feed(c))

	assert.Equal(t, "native", c.Backend)
	assert.Equal(t, "/opt/espressif", c.Paths.ToolsDir)
	assert.Equal(t, []string{"IDF_TARGET", "^SPIRAM"}, c.KConfig.Allow)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestEnvFeederRequiresPointer(t *testing.T) {
	assert.Error(t, EnvFeeder{}.Feed(Config{}))
}

func TestValidate(t *testing.T) {
	c, err := NewDefaultConfig()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	c.Log.Level = "loud"
	assert.ErrorContains(t, c.Validate(), `invalid log.level "loud"`)

	c.Log.Level = "debug"
	c.Publish.Type = "ninja"
	assert.ErrorContains(t, c.Validate(), "expected one of: cargo, manifest")
}

func TestAllowedValues(t *testing.T) {
	assert.Equal(t, []string{"native", "pio"}, AllowedValues("backend"))
	assert.Empty(t, AllowedValues("paths.out_dir"))
}

func TestConfigDir(t *testing.T) {
	t.Setenv(IDFKIT_CONFIG_DIR, "/etc/idfkit")
	assert.Equal(t, "/etc/idfkit", ConfigDir())

	t.Setenv(IDFKIT_CONFIG_DIR, "")
	t.Setenv(XDG_CONFIG_HOME, "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "idfkit"), ConfigDir())
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, "pio", G(context.Background()).Backend)

	cm, err := NewConfigManager()
	require.NoError(t, err)
	cm.Config.Backend = "native"

	assert.Equal(t, "native", G(WithConfigManager(context.Background(), cm)).Backend)
}
