// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package build

import (
	"context"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"idfkit.sh/cmdfactory"
	"idfkit.sh/config"
	"idfkit.sh/log"
	"idfkit.sh/pipeline"
)

type BuildOptions struct{}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&BuildOptions{}, cobra.Command{
		Short: "Build the SDK and publish its bindings",
		Use:   "build [FLAGS]",
		Args:  cmdfactory.NoArgs,
		Long: heredoc.Docf(`
			Build the ESP-IDF SDK with the configured backend, generate its
			bindings and publish the derived flags.

			The build runs these stages in order and stops at the first one
			failing, in which case nothing is published:

			  %s`, strings.Join(stageNames(), ", ")),
		Example: heredoc.Doc(`
			# From a cargo build script
			$ idfkit build

			# Build for the ESP32-C3 with a native SDK checkout
			$ idfkit build --backend native --mcu esp32c3 --sdk-dir ~/esp/esp-idf

			# Write a YAML manifest instead of cargo directives
			$ idfkit build --publish manifest --manifest out/idfkit.yaml
		`),
		Annotations: map[string]string{
			cmdfactory.AnnotationHelpGroup: "build",
		},
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

func (opts *BuildOptions) Run(ctx context.Context, _ []string) error {
	d, err := pipeline.NewDriver(pipeline.WithConfig(config.G(ctx)))
	if err != nil {
		return err
	}

	start := time.Now()

	result, err := d.Run(ctx)
	if err != nil {
		return err
	}

	log.G(ctx).WithFields(logrus.Fields{
		"mcu":      result.Mcu,
		"version":  result.Version.String(),
		"flags":    humanize.Comma(int64(result.Cfg.Len())),
		"bindings": humanize.Bytes(result.BindingsSize),
		"took":     time.Since(start).Round(time.Millisecond),
	}).Info("published")

	return nil
}

func stageNames() []string {
	var names []string
	for _, stage := range pipeline.Stages() {
		names = append(names, string(stage))
	}

	return names
}
