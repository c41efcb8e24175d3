// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package idfkit

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"idfkit.sh/cmdfactory"
	"idfkit.sh/config"
	"idfkit.sh/internal/cli"
	kitversion "idfkit.sh/internal/version"
	"idfkit.sh/log"

	"idfkit.sh/internal/cli/idfkit/build"
	"idfkit.sh/internal/cli/idfkit/cfg"
	"idfkit.sh/internal/cli/idfkit/components"
	"idfkit.sh/internal/cli/idfkit/version"
)

type IdfkitOptions struct{}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&IdfkitOptions{}, cobra.Command{
		Short: "Build ESP-IDF and generate its Rust bindings",
		Use:   "idfkit [FLAGS] SUBCOMMAND",
		Long: heredoc.Docf(`
			Build the ESP-IDF SDK, generate Rust bindings for it and publish the
			configuration flags derived from its sdkconfig.

			Version: %s`, kitversion.Version()),
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	})
	if err != nil {
		panic(err)
	}

	cmd.AddGroup(&cobra.Group{ID: "build", Title: "BUILD COMMANDS"})
	cmd.AddCommand(build.NewCmd())
	cmd.AddCommand(cfg.NewCmd())

	cmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISCELLANEOUS COMMANDS"})
	cmd.AddCommand(components.NewCmd())
	cmd.AddCommand(version.NewCmd())

	return cmd
}

// PersistentPre rebuilds the logger once the flags overriding the logging
// configuration are parsed.
func (*IdfkitOptions) PersistentPre(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c := config.G(ctx)

	if err := c.Validate(); err != nil {
		return cmdfactory.FlagErrorWrap(err)
	}

	cmd.SetContext(log.WithLogger(ctx, cli.NewLogger(cmd.ErrOrStderr(), c)))

	return nil
}

func (*IdfkitOptions) Run(_ context.Context, _ []string) error {
	return pflag.ErrHelp
}

func Main(args []string) int {
	cmd := NewCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	copts := &cli.CliOptions{}

	for _, o := range []cli.CliOption{
		cli.WithDefaultConfigManager(cmd),
		cli.WithDefaultLogger(),
	} {
		if err := o(copts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	ctx = config.WithConfigManager(ctx, copts.ConfigManager)
	ctx = log.WithLogger(ctx, copts.Logger)

	log.G(ctx).Debugf("idfkit %s", kitversion.Version())

	cmd.SetArgs(args)

	return cmdfactory.Main(ctx, cmd)
}
