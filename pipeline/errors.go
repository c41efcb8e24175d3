// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package pipeline

import "fmt"

// Stage names a step of the pipeline, in execution order.
type Stage string

const (
	StageBackend Stage = "backend"
	StageTarget  Stage = "target"
	StageHeader  Stage = "header"
	StageBindgen Stage = "bindgen"
	StageVersion Stage = "version"
	StagePublish Stage = "publish"
)

// Stages lists every stage in execution order.
func Stages() []Stage {
	return []Stage{StageBackend, StageTarget, StageHeader, StageBindgen, StageVersion, StagePublish}
}

// StageError aborts the pipeline and names the stage which failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Cause lets errors.Cause reach the underlying error.
func (e *StageError) Cause() error {
	return e.Err
}

func stageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}

	return &StageError{Stage: stage, Err: err}
}
