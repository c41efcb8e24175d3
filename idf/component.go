// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package idf

import (
	"iter"
	"strings"

	"idfkit.sh/cfg"
	"idfkit.sh/internal/set"
)

// Namespace prefixes every flag and define derived from the SDK.
const Namespace = "esp_idf"

// AllComponents is the catalog of optional SDK components which the bindings
// know about, in the order their flags are emitted.
var AllComponents = []string{
	"comp_pthread_enabled",
	"comp_nvs_flash_enabled",
	"comp_esp_http_client_enabled",
	"comp_esp_http_server_enabled",
	"comp_espcoredump_enabled",
	"comp_app_update_enabled",
	"comp_esp_serial_slave_link_enabled",
	"comp_spi_flash_enabled",
	"comp_esp_adc_cal_enabled",
}

// ComponentName maps an SDK component directory name, e.g. "nvs_flash", to its
// catalog entry.
func ComponentName(sdkName string) string {
	return "comp_" + sdkName + "_enabled"
}

// Components is the set of enabled catalog entries.
type Components struct {
	enabled []string
}

// NewComponents enables the whole catalog.
func NewComponents() *Components {
	return &Components{enabled: append([]string(nil), AllComponents...)}
}

// ComponentsFrom enables the catalog entries present in names.  Order and
// duplicates in names do not matter and unknown names are ignored.
func ComponentsFrom(names ...string) *Components {
	wanted := set.NewOrdered(names...)

	c := &Components{}
	for _, name := range AllComponents {
		if wanted.Contains(name) {
			c.enabled = append(c.enabled, name)
		}
	}

	return c
}

func (c *Components) Names() []string {
	return append([]string(nil), c.enabled...)
}

func (c *Components) Len() int {
	return len(c.enabled)
}

func (c *Components) Enabled(name string) bool {
	for _, e := range c.enabled {
		if e == name {
			return true
		}
	}
	return false
}

// ClangArgs yields one preprocessor define per enabled component.
func (c *Components) ClangArgs() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range c.enabled {
			if !yield("-D" + strings.ToUpper(Namespace+"_"+name)) {
				return
			}
		}
	}
}

// CfgArgs yields one bare flag per enabled component.
func (c *Components) CfgArgs() iter.Seq[cfg.Flag] {
	return func(yield func(cfg.Flag) bool) {
		for _, name := range c.enabled {
			if !yield(cfg.Bare(Namespace + "_" + name)) {
				return
			}
		}
	}
}
