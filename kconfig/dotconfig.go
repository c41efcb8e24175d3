// SPDX-License-Identifier: Apache-2.0
// Copyright 2020 syzkaller project authors. All rights reserved.
// Copyright 2020 The Compose Specification Authors.
// Copyright 2022 Unikraft GmbH. All rights reserved.

package kconfig

import (
	"bufio"
	"bytes"
	"fmt"
	"iter"
	"os"
	"regexp"

	"github.com/pkg/errors"
)

const (
	DotConfigFileName = "sdkconfig"

	Yes    = "y"
	Mod    = "m"
	No     = "n"
	Prefix = "CONFIG_"
)

// DotConfigFile represents a parsed sdkconfig file.  Config names don't include
// the CONFIG_ prefix, here and in other public interfaces.
type DotConfigFile struct {
	Configs  []*Entry
	Map      map[string]*Entry // duplicates Configs for convenience
	comments []string
}

// Value returns the config value, or an unset tristate if it is not present
// at all.
func (cf *DotConfigFile) Value(name string) Value {
	cfg := cf.Map[name]
	if cfg == nil {
		return TristateValue(TristateUnset)
	}

	return cfg.Value
}

// Set changes config value, or adds it if it's not yet present.
func (cf *DotConfigFile) Set(name string, val Value) {
	cfg := cf.Map[name]
	if cfg == nil {
		cfg = &Entry{Key: name}
		cf.Map[name] = cfg
		cf.Configs = append(cf.Configs, cfg)
	}

	cfg.Value = val
}

// All yields the entries in file order.
func (cf *DotConfigFile) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, cfg := range cf.Configs {
			if !yield(*cfg) {
				return
			}
		}
	}
}

func (cf *DotConfigFile) Serialize() []byte {
	buf := new(bytes.Buffer)
	for _, comment := range cf.comments {
		fmt.Fprintf(buf, "%v\n", comment)
	}

	for _, cfg := range cf.Configs {
		if t, ok := cfg.Value.Tristate(); ok && t != TristateTrue {
			fmt.Fprintf(buf, "# %v%v is not set\n", Prefix, cfg.Key)
		} else {
			fmt.Fprintf(buf, "%v\n", cfg)
		}
	}

	return buf.Bytes()
}

func NewDotConfigFile(comments ...string) *DotConfigFile {
	return &DotConfigFile{
		Map:      make(map[string]*Entry),
		comments: comments,
	}
}

func ParseConfig(file string) (*DotConfigFile, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sdkconfig file %s", file)
	}

	return ParseConfigData(data, file)
}

func ParseConfigData(data []byte, file string) (*DotConfigFile, error) {
	cf := NewDotConfigFile()

	s := bufio.NewScanner(bytes.NewReader(data))
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for s.Scan() {
		line++
		if err := cf.parseLine(s.Text()); err != nil {
			return nil, errors.Wrapf(err, "%s:%d", file, line)
		}
	}

	if err := s.Err(); err != nil {
		return nil, errors.Wrapf(err, "could not read %s", file)
	}

	return cf, nil
}

// Entries reads the sdkconfig file at path and returns its entries as a lazy
// sequence.
func Entries(path string) (iter.Seq[Entry], error) {
	cf, err := ParseConfig(path)
	if err != nil {
		return nil, err
	}

	return cf.All(), nil
}

func (cf *DotConfigFile) parseLine(text string) error {
	if match := reConfigSet.FindStringSubmatch(text); match != nil {
		val, err := ParseValue(match[2])
		if err != nil {
			return err
		}
		cf.Set(match[1], val)
	} else if match := reConfigNotSet.FindStringSubmatch(text); match != nil {
		cf.Set(match[1], TristateValue(TristateFalse))
	}

	return nil
}

var (
	reConfigSet    = regexp.MustCompile(`^` + Prefix + `([A-Za-z0-9_]+)=(.*)$`)
	reConfigNotSet = regexp.MustCompile(`^# ` + Prefix + `([A-Za-z0-9_]+) is not set$`)
)
