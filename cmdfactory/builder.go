// SPDX-License-Identifier: Apache-2.0
// Copyright 2022 Acorn Labs, Inc; All rights reserved.
// Copyright 2022 Unikraft GmbH; All rights reserved.
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package cmdfactory builds cobra commands from option structs.
package cmdfactory

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"idfkit.sh/log"
)

var caseRegexp = regexp.MustCompile("([a-z])([A-Z])")

type PersistentPreRunnable interface {
	PersistentPre(cmd *cobra.Command, args []string) error
}

type PreRunnable interface {
	PreRun(cmd *cobra.Command, args []string) error
}

type Runnable interface {
	Run(ctx context.Context, args []string) error
}

type fieldInfo struct {
	FieldType  reflect.StructField
	FieldValue reflect.Value
}

func fields(obj any) []fieldInfo {
	objValue := reflect.ValueOf(obj)
	if objValue.Kind() == reflect.Ptr {
		objValue = objValue.Elem()
	}

	var result []fieldInfo

	for i := 0; i < objValue.NumField(); i++ {
		fieldType := objValue.Type().Field(i)
		if fieldType.Anonymous && fieldType.Type.Kind() == reflect.Struct {
			result = append(result, fields(objValue.Field(i).Addr().Interface())...)
		} else if !fieldType.Anonymous {
			result = append(result, fieldInfo{
				FieldValue: objValue.Field(i),
				FieldType:  fieldType,
			})
		}
	}

	return result
}

// Name derives the command name from the options type, e.g. BuildOptions
// becomes "build".
func Name(obj any) string {
	typeName := reflect.ValueOf(obj).Elem().Type().Name()
	typeName = strings.TrimSuffix(strings.TrimSuffix(typeName, "Options"), "Command")

	return strings.ToLower(caseRegexp.ReplaceAllString(typeName, "$1-$2"))
}

// Main executes the given command and returns the process exit code.
func Main(ctx context.Context, cmd *cobra.Command) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		var flagErr *FlagError
		if errors.As(err, &flagErr) {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n\n", err)
			_ = cmd.Usage()
			return 1
		}

		if errors.Is(err, ErrSilent) {
			return 1
		}

		log.G(ctx).Error(err)
		return 1
	}

	if HasFailed() {
		return 1
	}

	return 0
}

// AttributeFlags registers a flag for every exported field of obj which has
// a `long` tag, recursing into nested structs.  The current field value is
// the flag default, unless the variable named by the `env` tag is set.
//
// Supported tags are `long`, `short`, `usage`, `env`, `local` (register on
// the command instead of its children) and `hidden`.
func AttributeFlags(c *cobra.Command, obj any) error {
	for _, info := range fields(obj) {
		fieldType := info.FieldType
		v := info.FieldValue

		if !fieldType.IsExported() || fieldType.Tag.Get("noattribute") == "true" {
			continue
		}

		if fieldType.Type.Kind() == reflect.Struct {
			if err := AttributeFlags(c, v.Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		name := fieldType.Tag.Get("long")
		if name == "" {
			continue
		}

		short := fieldType.Tag.Get("short")
		usage := fieldType.Tag.Get("usage")

		if env := fieldType.Tag.Get("env"); env != "" {
			if envValue, ok := os.LookupEnv(env); ok && envValue != "" {
				if err := setFromString(v, envValue); err != nil {
					return errors.Wrapf(err, "invalid value of %s", env)
				}
			}
		}

		flags := c.PersistentFlags()
		if fieldType.Tag.Get("local") == "true" {
			flags = c.Flags()
		}

		switch ptr := v.Addr().Interface().(type) {
		case *string:
			flags.StringVarP(ptr, name, short, *ptr, usage)
		case *bool:
			flags.BoolVarP(ptr, name, short, *ptr, usage)
		case *int:
			flags.IntVarP(ptr, name, short, *ptr, usage)
		case *[]string:
			if fieldType.Tag.Get("split") == "false" {
				flags.StringArrayVarP(ptr, name, short, *ptr, usage)
			} else {
				flags.StringSliceVarP(ptr, name, short, *ptr, usage)
			}
		default:
			return fmt.Errorf("unsupported flag type %s of field %s", fieldType.Type, fieldType.Name)
		}

		if fieldType.Tag.Get("hidden") == "true" {
			if err := flags.MarkHidden(name); err != nil {
				return err
			}
		}
	}

	return nil
}

func setFromString(v reflect.Value, s string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		switch strings.ToLower(s) {
		case "1", "true", "yes", "y":
			v.SetBool(true)
		case "0", "false", "no", "n":
			v.SetBool(false)
		default:
			return fmt.Errorf("not a boolean: %q", s)
		}
	case reflect.Int:
		var n int
		if _, err := fmt.Sscan(s, &n); err != nil {
			return err
		}
		v.SetInt(int64(n))
	case reflect.Slice:
		v.Set(reflect.ValueOf(strings.Split(s, ",")))
	}

	return nil
}

// New populates a cobra.Command from the struct tags of obj and assigns its
// Run method to the command.
func New(obj Runnable, cmd cobra.Command) (*cobra.Command, error) {
	c := cmd
	if c.Use == "" {
		c.Use = fmt.Sprintf("%s [FLAGS]", Name(obj))
	}

	if p, ok := obj.(PersistentPreRunnable); ok {
		c.PersistentPreRunE = p.PersistentPre
	}

	if p, ok := obj.(PreRunnable); ok {
		c.PreRunE = p.PreRun
	}

	c.SilenceErrors = true
	c.SilenceUsage = true
	c.DisableFlagsInUseLine = true
	c.InitDefaultHelpFlag()

	if obj != nil {
		c.RunE = func(cmd *cobra.Command, args []string) error {
			return obj.Run(cmd.Context(), args)
		}

		if err := AttributeFlags(&c, obj); err != nil {
			return nil, err
		}
	}

	c.SetHelpFunc(rootHelpFunc)
	c.SetUsageFunc(rootUsageFunc)
	c.SetFlagErrorFunc(rootFlagErrorFunc)

	return &c, nil
}
