// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package backend defines how the compiled SDK is obtained.
package backend

import (
	"context"

	"idfkit.sh/idf"
)

// Backend builds the SDK and reports what the rest of the pipeline needs to
// know about the result.
type Backend interface {
	// Name of the backend, as used in the configuration.
	Name() string

	// Build the SDK.  The returned output satisfies BuildOutput.Validate.
	Build(ctx context.Context) (*idf.BuildOutput, error)
}
