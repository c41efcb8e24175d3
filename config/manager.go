// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Feeder populates a configuration structure from some source.
type Feeder interface {
	Feed(structure interface{}) error
	Write(structure interface{}, merge bool) error
}

// ConfigManager holds the configuration and the feeders it is read from.
type ConfigManager struct {
	Config     *Config
	ConfigFile string
	Feeders    []Feeder
}

type ConfigManagerOption func(cm *ConfigManager) error

func WithFeeder(feeder Feeder) ConfigManagerOption {
	return func(cm *ConfigManager) error {
		cm.AddFeeder(feeder)
		return nil
	}
}

// WithFile reads the YAML file at path.  With forceCreate a missing file is
// created from the current configuration, otherwise it is skipped.
func WithFile(file string, forceCreate bool) ConfigManagerOption {
	return func(cm *ConfigManager) error {
		switch filepath.Ext(file) {
		case ".yaml", ".yml":
		default:
			return errors.Errorf("unsupported file extension: %s", file)
		}

		yml := YamlFeeder{File: file}

		if _, err := os.Stat(file); os.IsNotExist(err) {
			if !forceCreate {
				return nil
			}
			if err := yml.Write(cm.Config, false); err != nil {
				return errors.Wrap(err, "could not write initial config")
			}
		}

		cm.ConfigFile = file
		return WithFeeder(yml)(cm)
	}
}

// WithDefaultConfigFile reads the user's configuration file if there is one.
func WithDefaultConfigFile() ConfigManagerOption {
	return WithFile(DefaultConfigFile(), false)
}

// WithEnv lets the environment override every other source.
func WithEnv() ConfigManagerOption {
	return WithFeeder(EnvFeeder{})
}

func NewConfigManager(opts ...ConfigManagerOption) (*ConfigManager, error) {
	c, err := NewDefaultConfig()
	if err != nil {
		return nil, errors.Wrap(err, "could not seed default values for config")
	}

	cm := &ConfigManager{Config: c}

	for _, o := range opts {
		if err := o(cm); err != nil {
			return nil, errors.Wrap(err, "could not apply config manager option")
		}
	}

	// The manager is returned even on failure, the defaults are still usable.
	if err := cm.Feed(); err != nil {
		return cm, errors.Wrap(err, "could not feed config")
	}

	return cm, nil
}

func (cm *ConfigManager) AddFeeder(f Feeder) *ConfigManager {
	cm.Feeders = append(cm.Feeders, f)
	return cm
}

// Feed applies every feeder in the order they were added.
func (cm *ConfigManager) Feed() error {
	for _, f := range cm.Feeders {
		if err := f.Feed(cm.Config); err != nil {
			return errors.Wrap(err, "failed to feed config")
		}
	}

	return nil
}

func (cm *ConfigManager) Write(merge bool) error {
	for _, f := range cm.Feeders {
		if err := f.Write(cm.Config, merge); err != nil {
			return err
		}
	}

	return nil
}
