// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package log

import "strings"

// LoggerType controls how log statements are output
type LoggerType uint

const (
	QUIET LoggerType = iota
	BASIC
	FANCY
	JSON
)

var loggerTypeNames = map[LoggerType]string{
	QUIET: "quiet",
	BASIC: "basic",
	FANCY: "fancy",
	JSON:  "json",
}

// LoggerTypes lists the accepted logger type names.
func LoggerTypes() []string {
	return []string{"quiet", "basic", "fancy", "json"}
}

func LoggerTypeFromString(name string) LoggerType {
	for t, n := range loggerTypeNames {
		if n == strings.ToLower(name) {
			return t
		}
	}

	return BASIC
}

func LoggerTypeToString(t LoggerType) string {
	if name, ok := loggerTypeNames[t]; ok {
		return name
	}

	return "basic"
}
