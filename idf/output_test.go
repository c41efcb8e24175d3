// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package idf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfkit.sh/bindgen"
)

func TestBuildOutputValidate(t *testing.T) {
	factory, err := bindgen.NewFactory()
	require.NoError(t, err)

	valid := func() *BuildOutput {
		return &BuildOutput{Components: NewComponents(), Bindgen: factory}
	}

	assert.NoError(t, valid().Validate())

	o := valid()
	o.Components = ComponentsFrom()
	assert.Error(t, o.Validate())

	o = valid()
	o.Bindgen = nil
	assert.Error(t, o.Validate())

	o = valid()
	o.LinkArgs = &LinkArgs{}
	assert.Error(t, o.Validate())

	o = valid()
	o.LinkArgs = &LinkArgs{Args: []string{"-Wl,--gc-sections"}}
	assert.NoError(t, o.Validate())
}

func TestCInclArgsString(t *testing.T) {
	c := CInclArgs{Args: []string{"-I/sdk/include", "-I/path with space", "-DX=1"}}
	assert.Equal(t, `-I/sdk/include "-I/path with space" -DX=1`, c.String())
}
