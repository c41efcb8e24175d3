// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// NewDefaultConfig returns a configuration populated from the `default` tags
// and from the variables cargo sets for build scripts.
func NewDefaultConfig() (*Config, error) {
	c := &Config{}

	if err := setDefaults(c); err != nil {
		return nil, errors.Wrap(err, "could not set defaults for config")
	}

	if len(c.Paths.OutDir) == 0 {
		if out := os.Getenv("OUT_DIR"); out != "" {
			c.Paths.OutDir = out
		} else {
			c.Paths.OutDir = filepath.Join("target", "idfkit")
		}
	}

	if os.Getenv("PROFILE") == "release" {
		c.Pio.Release = true
	}

	return c, nil
}

func setDefaults(s interface{}) error {
	return setDefaultValue(reflect.ValueOf(s), "")
}

func setDefaultValue(v reflect.Value, def string) error {
	if v.Kind() != reflect.Ptr {
		return errors.New("not a pointer value")
	}

	v = reflect.Indirect(v)

	switch v.Kind() {
	case reflect.Int:
		if len(def) > 0 {
			i, err := strconv.ParseInt(def, 10, 64)
			if err != nil {
				return errors.Wrap(err, "could not parse default integer value")
			}
			v.SetInt(i)
		}

	case reflect.String:
		if len(def) > 0 {
			v.SetString(def)
		}

	case reflect.Bool:
		if len(def) > 0 {
			b, err := strconv.ParseBool(def)
			if err != nil {
				return errors.Wrap(err, "could not parse default boolean value")
			}
			v.SetBool(b)
		}

	case reflect.Slice:
		if len(def) > 0 && v.Type().Elem().Kind() == reflect.String {
			v.Set(reflect.ValueOf(strings.Split(def, ",")))
		}

	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err := setDefaultValue(
				v.Field(i).Addr(),
				v.Type().Field(i).Tag.Get("default"),
			); err != nil {
				return err
			}
		}
	}

	return nil
}

// Default returns the default of the dotted yaml key, e.g. "log.level".
func Default(key string) string {
	def, _ := findDefault(strings.Split(key, "."), reflect.TypeOf(Config{}))
	return def
}

func findDefault(path []string, t reflect.Type) (string, bool) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name != path[0] {
			continue
		}

		if len(path) == 1 {
			return field.Tag.Get("default"), true
		}

		if field.Type.Kind() == reflect.Struct {
			return findDefault(path[1:], field.Type)
		}
	}

	return "", false
}
