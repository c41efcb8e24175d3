// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package pipeline

import (
	"errors"
	"slices"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfkit.sh/cfg"
	"idfkit.sh/config"
	"idfkit.sh/kconfig"
)

func TestFilterTarget(t *testing.T) {
	allow, err := cfg.CompileAllow(cfg.DefaultAllow...)
	require.NoError(t, err)

	args, mcu, err := FilterTarget(slices.Values([]kconfig.Entry{
		{Key: "IDF_TARGET", Value: kconfig.String("esp32c3")},
		{Key: "SOME_FEATURE", Value: kconfig.Bool(true)},
		{Key: "OTHER_FEATURE", Value: kconfig.Bool(false)},
	}), cfg.DefaultPolicy(allow...))
	require.NoError(t, err)

	assert.Equal(t, "esp32c3", mcu)
	assert.Equal(t, []string{`esp_idf_idf_target="esp32c3"`, "esp_idf_some_feature"}, args.Strings())
}

func TestFilterTargetMissing(t *testing.T) {
	args, _, err := FilterTarget(slices.Values([]kconfig.Entry{
		{Key: "A", Value: kconfig.Bool(true)},
		{Key: "B", Value: kconfig.Bool(true)},
	}), cfg.DefaultPolicy())
	require.Error(t, err)

	for _, f := range args.Strings() {
		assert.Contains(t, err.Error(), f)
	}
	assert.Equal(t, 2, args.Len())
}

func TestStageError(t *testing.T) {
	cause := errors.New("boom")
	err := stageError(StageBindgen, pkgerrors.Wrap(cause, "generating"))

	assert.EqualError(t, err, "bindgen stage failed: generating: boom")
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, pkgerrors.Cause(err))
	assert.NoError(t, stageError(StageBindgen, nil))
}

func TestNewDriverFromConfig(t *testing.T) {
	c, err := config.NewDefaultConfig()
	require.NoError(t, err)
	c.Paths.OutDir = t.TempDir()

	for _, name := range Backends() {
		c.Backend = name
		d, err := NewDriver(WithConfig(c))
		require.NoError(t, err)
		assert.Equal(t, name, d.backend.Name())
	}

	c.Backend = "docker"
	_, err = NewDriver(WithConfig(c))
	assert.Error(t, err)

	c.Backend = "pio"
	c.KConfig.Allow = []string{"("}
	_, err = NewDriver(WithConfig(c))
	assert.Error(t, err)
}

func TestNewDriverRequiresBackend(t *testing.T) {
	_, err := NewDriver(WithOutDir(t.TempDir()))
	assert.Error(t, err)
}
