// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package version

import (
	"context"
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"idfkit.sh/cmdfactory"
	"idfkit.sh/idf"
	"idfkit.sh/internal/version"
)

type VersionOptions struct {
	out io.Writer
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&VersionOptions{}, cobra.Command{
		Short:   "Show idfkit version information",
		Use:     "version",
		Aliases: []string{"v"},
		Args:    cmdfactory.NoArgs,
		Long:    "Show idfkit version information and the supported ESP-IDF releases.",
		Example: heredoc.Doc(`
			# Show idfkit version information
			$ idfkit version
		`),
		Annotations: map[string]string{
			cmdfactory.AnnotationHelpGroup: "misc",
		},
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

func (opts *VersionOptions) PreRun(cmd *cobra.Command, _ []string) error {
	opts.out = cmd.OutOrStdout()
	return nil
}

func (opts *VersionOptions) Run(_ context.Context, _ []string) error {
	fmt.Fprintf(opts.out, "idfkit %s", version.String())
	fmt.Fprintf(opts.out, "ESP-IDF %s\n", idf.SupportedVersions)
	return nil
}
