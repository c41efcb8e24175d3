// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package exec

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"idfkit.sh/log"
)

type Process struct {
	executable *Executable
	opts       *ExecOptions
	cmd        *exec.Cmd
}

// NewProcess prepares a process to be executed from a given binary name and
// optional execution options
func NewProcess(bin string, args []string, eopts ...ExecOption) (*Process, error) {
	executable, err := NewExecutable(bin, nil, args...)
	if err != nil {
		return nil, err
	}

	return NewProcessFromExecutable(executable, eopts...)
}

// NewProcessFromExecutable prepares a process to be executed from a given
// *Executable object and optional execution options
func NewProcessFromExecutable(executable *Executable, eopts ...ExecOption) (*Process, error) {
	if executable == nil {
		return nil, errors.New("cannot prepare process without executable")
	}

	opts, err := NewExecOptions(eopts...)
	if err != nil {
		return nil, err
	}

	return &Process{
		executable: executable,
		opts:       opts,
	}, nil
}

// Cmdline returns the full command line to be executed
func (e *Process) Cmdline() string {
	return strings.Join(append([]string{e.executable.bin}, e.executable.Args()...), " ")
}

// Start the process.  The process is killed when ctx is done.
func (e *Process) Start(ctx context.Context) error {
	e.cmd = exec.CommandContext(ctx, e.executable.bin, e.executable.Args()...)

	e.cmd.Stdout = e.opts.stdout

	// Without a dedicated stderr, errors go wherever stdout goes.
	if e.opts.stderr != nil {
		e.cmd.Stderr = e.opts.stderr
	} else {
		e.cmd.Stderr = e.opts.stdout
	}

	e.cmd.Dir = e.opts.dir
	e.cmd.Env = append(os.Environ(), e.opts.env...)

	log.G(ctx).WithField("dir", e.opts.dir).Debug(e.Cmdline())

	if err := e.cmd.Start(); err != nil {
		return errors.Wrapf(err, "could not start %s", e.executable.bin)
	}

	return nil
}

// Wait for the process to complete
func (e *Process) Wait() error {
	if e.cmd == nil {
		return errors.New("process has not yet started cannot wait")
	}

	err := e.cmd.Wait()
	for _, cb := range e.opts.callbacks {
		cb(e.cmd.ProcessState.ExitCode())
	}

	if err != nil {
		return errors.Wrapf(err, "%s", e.Cmdline())
	}

	return nil
}

// StartAndWait starts the process and waits for it to exit
func (e *Process) StartAndWait(ctx context.Context) error {
	if err := e.Start(ctx); err != nil {
		return err
	}

	return e.Wait()
}

