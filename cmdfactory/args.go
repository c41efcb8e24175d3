// SPDX-License-Identifier: MIT
// Copyright (c) 2019, 2019 GitHub Inc.
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the MIT License (the "License").
// You may not use this file except in compliance with the License.
package cmdfactory

import (
	"github.com/spf13/cobra"
)

// ExactArgs requires n positional arguments and reports msg when fewer are
// given.
func ExactArgs(n int, msg string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) > n {
			return FlagErrorf("too many arguments")
		}

		if len(args) < n {
			return FlagErrorf("%s", msg)
		}

		return nil
	}
}

// NoArgs rejects any positional argument.
func NoArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return FlagErrorf("unknown argument %q", args[0])
	}

	return nil
}
