// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package idf

import (
	"path/filepath"
	"testing"
)

func TestHeaderPath(t *testing.T) {
	tests := []struct {
		mcu    string
		expect string
	}{
		{"esp8266", filepath.Join("inc", "esp-8266-rtos-sdk", "bindings.h")},
		{"esp32", filepath.Join("inc", "esp-idf", "bindings.h")},
		{"esp32c3", filepath.Join("inc", "esp-idf", "bindings.h")},
	}

	for _, tc := range tests {
		if got := HeaderPath("inc", tc.mcu); got != tc.expect {
			t.Errorf("%s: expected %s, got %s", tc.mcu, tc.expect, got)
		}
	}
}

func TestClangTarget(t *testing.T) {
	tests := map[string]string{
		"esp32c3": "riscv32",
		"esp32c6": "riscv32",
		"esp32":   "xtensa",
		"esp32s3": "xtensa",
		"esp8266": "xtensa",
	}

	for mcu, expect := range tests {
		if got := ClangTarget(mcu); got != expect {
			t.Errorf("%s: expected %s, got %s", mcu, expect, got)
		}
	}
}
