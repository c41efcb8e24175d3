// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package components

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"idfkit.sh/cmdfactory"
	"idfkit.sh/idf"
)

type ComponentsOptions struct {
	Plain bool `long:"plain" local:"true" usage:"Only print the catalog names"`

	out io.Writer
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&ComponentsOptions{}, cobra.Command{
		Short: "List the SDK components known to the bindings",
		Use:   "components [FLAGS]",
		Args:  cmdfactory.NoArgs,
		Long: heredoc.Doc(`
			List the optional SDK components which, when part of a build, turn
			into a flag and a preprocessor define.`),
		Annotations: map[string]string{
			cmdfactory.AnnotationHelpGroup: "misc",
		},
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

func (opts *ComponentsOptions) PreRun(cmd *cobra.Command, _ []string) error {
	opts.out = cmd.OutOrStdout()
	return nil
}

func (opts *ComponentsOptions) Run(_ context.Context, _ []string) error {
	catalog := idf.NewComponents()

	if opts.Plain {
		for _, name := range catalog.Names() {
			fmt.Fprintln(opts.out, name)
		}
		return nil
	}

	flags := slices.Collect(catalog.CfgArgs())
	defines := slices.Collect(catalog.ClangArgs())

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("COMPONENT", "FLAG", "DEFINE")

	for i, name := range catalog.Names() {
		t.Row(name, flags[i].String(), defines[i])
	}

	_, err := fmt.Fprintln(opts.out, t.Render())
	return err
}
