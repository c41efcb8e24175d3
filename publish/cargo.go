// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package publish

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	CargoName = "cargo"

	// CfgArgsKey names the links metadata carrying the derived flags.
	CfgArgsKey       = "EMBUILD_CFG_ARGS"
	CfgArgsSeparator = ":"
)

// Cargo prints build script directives.  Flags become cfg items of the crate.
// The flag set and the include arguments are propagated to dependent crates
// through the links metadata, every metadata line being a KEY=VALUE pair.
type Cargo struct {
	out io.Writer
}

// NewCargo writes to out, or to standard output when out is nil.
func NewCargo(out io.Writer) *Cargo {
	if out == nil {
		out = os.Stdout
	}

	return &Cargo{out: out}
}

func (c *Cargo) Name() string {
	return CargoName
}

func (c *Cargo) Publish(r *Result) error {
	w := bufio.NewWriter(c.out)

	flags := r.Cfg.Strings()
	for _, f := range flags {
		directive(w, "rustc-cfg="+f)
	}

	// Dependents read the set back from DEP_ESP_IDF_EMBUILD_CFG_ARGS.
	directive(w, CfgArgsKey+"="+strings.Join(flags, CfgArgsSeparator))

	directive(w, "EMBUILD_CINCL_ARGS="+r.CInclArgs.String())

	if r.LinkArgs != nil {
		for _, arg := range r.LinkArgs.Args {
			directive(w, "rustc-link-arg="+arg)
		}
	}

	for _, path := range r.Tracked {
		directive(w, "rerun-if-changed="+path)
	}

	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "could not write cargo directives")
	}

	return nil
}

func directive(w *bufio.Writer, s string) {
	w.WriteString("cargo:")
	w.WriteString(s)
	w.WriteByte('\n')
}
