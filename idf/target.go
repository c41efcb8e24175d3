// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package idf

import "path/filepath"

// TargetFlag is the flag which carries the target MCU after filtering.
const TargetFlag = Namespace + "_idf_target"

const esp8266 = "esp8266"

var riscvTargets = map[string]bool{
	"esp32c2": true,
	"esp32c3": true,
	"esp32c5": true,
	"esp32c6": true,
	"esp32h2": true,
	"esp32p4": true,
}

// HeaderPath returns the bindings header for mcu below includeDir.  The
// ESP8266 uses a different SDK with its own header.
func HeaderPath(includeDir, mcu string) string {
	sdk := "esp-idf"
	if mcu == esp8266 {
		sdk = "esp-8266-rtos-sdk"
	}

	return filepath.Join(includeDir, sdk, "bindings.h")
}

// ClangTarget returns the value passed to clang's -target for mcu.
func ClangTarget(mcu string) string {
	if riscvTargets[mcu] {
		return "riscv32"
	}

	return "xtensa"
}
