// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// EnvFeeder feeds using the environment variables named by `env` tags.  List
// values are comma separated.  Unset variables leave fields untouched.
type EnvFeeder struct{}

func (f EnvFeeder) Feed(structure interface{}) error {
	if err := env.Parse(structure); err != nil {
		return errors.Wrap(err, "could not read the environment")
	}

	return nil
}

// Write does nothing, the environment is never written back.
func (f EnvFeeder) Write(structure interface{}, merge bool) error {
	return nil
}
