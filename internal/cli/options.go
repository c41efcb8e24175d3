// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package cli

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"idfkit.sh/cmdfactory"
	"idfkit.sh/config"
	"idfkit.sh/log"
)

type CliOptions struct {
	ConfigManager *config.ConfigManager
	Logger        *logrus.Logger
	Stderr        io.Writer
}

type CliOption func(*CliOptions) error

// WithConfigManager sets a previously instantiated ConfigManager.
func WithConfigManager(cfgm *config.ConfigManager) CliOption {
	return func(copts *CliOptions) error {
		copts.ConfigManager = cfgm
		return nil
	}
}

// WithDefaultConfigManager reads the user's configuration file and the
// environment, and exposes every configuration attribute as a persistent
// flag of cmd.
func WithDefaultConfigManager(cmd *cobra.Command) CliOption {
	return func(copts *CliOptions) error {
		if copts.ConfigManager == nil {
			cfgm, err := config.NewConfigManager(
				config.WithDefaultConfigFile(),
				config.WithEnv(),
			)
			if err != nil {
				return err
			}

			copts.ConfigManager = cfgm
		}

		return cmdfactory.AttributeFlags(cmd, copts.ConfigManager.Config)
	}
}

// WithStderr sets where logs are written to.
func WithStderr(w io.Writer) CliOption {
	return func(copts *CliOptions) error {
		copts.Stderr = w
		return nil
	}
}

// WithDefaultLogger sets up a logger from the logging configuration.  Build
// script output on stdout is reserved for directives, so logs go to stderr.
func WithDefaultLogger() CliOption {
	return func(copts *CliOptions) error {
		if copts.Logger != nil {
			return nil
		}

		if copts.Stderr == nil {
			copts.Stderr = os.Stderr
		}

		var c *config.Config
		if copts.ConfigManager != nil {
			c = copts.ConfigManager.Config
		} else {
			var err error
			if c, err = config.NewDefaultConfig(); err != nil {
				return err
			}
		}

		copts.Logger = NewLogger(copts.Stderr, c)
		return nil
	}
}

// NewLogger builds the logger described by c.
func NewLogger(w io.Writer, c *config.Config) *logrus.Logger {
	return log.New(w, c.Log.Type, c.Log.Level, c.Log.Timestamps)
}
