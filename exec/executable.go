// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package exec runs the external tools the build depends on.
package exec

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cli/safeexec"
	"github.com/pkg/errors"
)

type Executable struct {
	bin  string
	args []string
}

// LookPath resolves bin against PATH without considering the current working
// directory.  Absolute and relative paths are returned as is.
func LookPath(bin string) (string, error) {
	if strings.ContainsRune(bin, '/') {
		return bin, nil
	}

	path, err := safeexec.LookPath(bin)
	if err != nil {
		return "", errors.Wrapf(err, "could not find %s in PATH", bin)
	}

	return path, nil
}

// NewExecutable accepts the path or name of the binary to run.  The optional
// face is a struct whose fields carry `flag:"--name"` tags; its set fields are
// serialized into command-line arguments after args.
func NewExecutable(bin string, face interface{}, args ...string) (*Executable, error) {
	if len(bin) == 0 {
		return nil, errors.New("binary argument cannot be empty")
	}

	e := &Executable{bin: bin}
	e.args = append(e.args, args...)

	if face != nil {
		faceArgs, err := ParseInterfaceArgs(face)
		if err != nil {
			return nil, err
		}

		e.args = append(e.args, faceArgs...)
	}

	return e, nil
}

func (e *Executable) Bin() string {
	return e.bin
}

func (e *Executable) Args() []string {
	return e.args
}

// WithArgs returns a copy of e with extra arguments appended.
func (e *Executable) WithArgs(args ...string) *Executable {
	return &Executable{
		bin:  e.bin,
		args: append(append([]string(nil), e.args...), args...),
	}
}

type flag struct {
	name        string
	omitvalueif string
	joined      bool
}

func parseFlag(tag reflect.StructTag) (*flag, bool) {
	raw, ok := tag.Lookup("flag")
	if !ok {
		return nil, false
	}

	parts := strings.Split(raw, ",")
	f := &flag{name: parts[0]}

	for _, part := range parts[1:] {
		switch {
		case strings.HasPrefix(part, "omitvalueif="):
			f.omitvalueif = strings.TrimPrefix(part, "omitvalueif=")
		case part == "joined":
			f.joined = true
		}
	}

	return f, true
}

func (f *flag) render(value string) []string {
	if f.joined {
		return []string{f.name + "=" + value}
	}

	return []string{f.name, value}
}

// ParseInterfaceArgs returns the arguments derived from the `flag` tagged
// fields of face.  Untagged struct fields are walked recursively.
func ParseInterfaceArgs(face interface{}, args ...string) ([]string, error) {
	v := reflect.ValueOf(face)
	if v.Kind() == reflect.Ptr {
		return nil, errors.New("cannot derive interface arguments from pointer: passed by reference")
	}
	if v.Kind() != reflect.Struct {
		return nil, errors.Errorf("cannot derive interface arguments from %s", v.Kind())
	}

	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)

		f, ok := parseFlag(t.Field(i).Tag)
		if !ok {
			if field.Kind() == reflect.Struct && field.CanInterface() {
				nested, err := ParseInterfaceArgs(field.Interface())
				if err != nil {
					return nil, err
				}
				args = append(args, nested...)
			}
			continue
		}

		switch field.Kind() {
		case reflect.Ptr:
			if field.IsNil() {
				continue
			}

			value := fmt.Sprint(reflect.Indirect(field).Interface())
			if value == f.omitvalueif {
				args = append(args, f.name)
			} else {
				args = append(args, f.render(value)...)
			}

		case reflect.Bool:
			if field.Bool() {
				args = append(args, f.name)
			}

		case reflect.String:
			if field.Len() > 0 {
				args = append(args, f.render(field.String())...)
			}

		case reflect.Slice:
			for j := 0; j < field.Len(); j++ {
				var str string
				switch item := field.Index(j).Interface().(type) {
				case string:
					str = item
				case fmt.Stringer:
					str = item.String()
				default:
					continue
				}

				if len(str) > 0 {
					args = append(args, f.render(str)...)
				}
			}

		default:
			if !field.CanInterface() {
				continue
			}

			if s, ok := field.Interface().(fmt.Stringer); ok && len(s.String()) > 0 {
				args = append(args, f.render(s.String())...)
			}
		}
	}

	return args, nil
}
