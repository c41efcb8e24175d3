// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package cfg

import (
	"context"
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	kcfg "idfkit.sh/cfg"
	"idfkit.sh/cmdfactory"
	"idfkit.sh/config"
	"idfkit.sh/idf"
	"idfkit.sh/kconfig"
)

type format string

const (
	formatPlain = format("plain")
	formatTree  = format("tree")
)

func (f format) String() string { return string(f) }

type CfgOptions struct {
	Bindings string `long:"bindings" local:"true" usage:"Generated bindings to read the SDK version from"`

	format *cmdfactory.EnumFlag[format]
	out    io.Writer
}

func NewCmd() *cobra.Command {
	opts := &CfgOptions{
		format: cmdfactory.NewEnumFlag([]format{formatPlain, formatTree}, formatPlain),
	}

	cmd, err := cmdfactory.New(opts, cobra.Command{
		Short: "Show the flags derived from an sdkconfig",
		Use:   "cfg [FLAGS] SDKCONFIG",
		Args:  cmdfactory.ExactArgs(1, "expected the path of an sdkconfig"),
		Long: heredoc.Doc(`
			Filter an sdkconfig the way a build does and print the resulting
			flags.  With --bindings the SDK version flags are added.`),
		Example: heredoc.Doc(`
			# Print the flags of a configuration
			$ idfkit cfg sdkconfig

			# Group the flags by origin
			$ idfkit cfg --format tree --bindings target/idfkit/bindings.rs sdkconfig
		`),
		Annotations: map[string]string{
			cmdfactory.AnnotationHelpGroup: "build",
		},
	})
	if err != nil {
		panic(err)
	}

	cmd.Flags().AddFlag(cmdfactory.VarPF(opts.format, "format", "", "Output format (plain, tree)"))

	return cmd
}

func (opts *CfgOptions) PreRun(cmd *cobra.Command, _ []string) error {
	opts.out = cmd.OutOrStdout()
	return nil
}

func (opts *CfgOptions) Run(ctx context.Context, args []string) error {
	c := config.G(ctx)

	allow, err := kcfg.CompileAllow(c.KConfig.Allow...)
	if err != nil {
		return err
	}

	entries, err := kconfig.Entries(args[0])
	if err != nil {
		return err
	}

	filtered := kcfg.Filter(idf.Namespace, entries, kcfg.DefaultPolicy(allow...))

	var versionFlags []string
	if opts.Bindings != "" {
		v, err := idf.ParseVersionFile(opts.Bindings)
		if err != nil {
			return err
		}

		for f := range v.CfgArgs() {
			versionFlags = append(versionFlags, f.String())
		}
	}

	if opts.format.Value == formatTree {
		tree := treeprint.NewWithRoot(args[0])

		branch := tree.AddBranch("kconfig")
		for _, f := range filtered.Strings() {
			branch.AddNode(f)
		}

		if len(versionFlags) > 0 {
			branch = tree.AddBranch("version")
			for _, f := range versionFlags {
				branch.AddNode(f)
			}
		}

		_, err := fmt.Fprint(opts.out, tree.String())
		return err
	}

	for _, f := range append(filtered.Strings(), versionFlags...) {
		if _, err := fmt.Fprintln(opts.out, f); err != nil {
			return err
		}
	}

	return nil
}
