// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package exec

import "context"

type SequentialProcesses struct {
	sequence []*Process
}

// NewSequential returns a SequentialProcesses running the given processes in
// order.
func NewSequential(sequence ...*Process) *SequentialProcesses {
	return &SequentialProcesses{sequence: sequence}
}

// StartAndWait starts each process after the previous one exited
// successfully and stops at the first failure.
func (sq *SequentialProcesses) StartAndWait(ctx context.Context) error {
	for _, process := range sq.sequence {
		if err := process.StartAndWait(ctx); err != nil {
			return err
		}
	}

	return nil
}
