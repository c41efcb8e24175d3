// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package idf

import (
	"fmt"
	"iter"
	"strings"

	"github.com/pkg/errors"

	"idfkit.sh/bindgen"
	"idfkit.sh/kconfig"
)

// LinkArgs are the linker arguments of the SDK build.  A backend which does
// not link the final binary produces none.
type LinkArgs struct {
	Args []string
}

// CInclArgs are the compiler arguments which make the SDK headers reachable,
// i.e. include directories and defines.
type CInclArgs struct {
	Args []string
}

// String joins the arguments, quoting the ones which contain blanks.
func (c CInclArgs) String() string {
	quoted := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		if strings.ContainsAny(a, " \t") {
			a = fmt.Sprintf("%q", a)
		}
		quoted = append(quoted, a)
	}

	return strings.Join(quoted, " ")
}

// BuildOutput is everything a backend learned while building the SDK.
type BuildOutput struct {
	CInclArgs CInclArgs

	// LinkArgs is nil when the SDK was not linked by the backend.
	LinkArgs *LinkArgs

	// KConfig is consumed once.
	KConfig iter.Seq[kconfig.Entry]

	Components *Components
	Bindgen    *bindgen.Factory

	// Tracked files invalidate the build when they change.
	Tracked []string
}

// Validate checks the contract every backend must honor.
func (o *BuildOutput) Validate() error {
	if o.Components == nil || o.Components.Len() == 0 {
		return errors.New("backend reported no enabled components")
	}
	if o.Bindgen == nil {
		return errors.New("backend did not provide a bindgen factory")
	}
	if o.LinkArgs != nil && len(o.LinkArgs.Args) == 0 {
		return errors.New("backend reported empty link arguments")
	}

	return nil
}
