// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package log

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Levels returns a map of log level string names to their constant equivalent.
func Levels() map[string]logrus.Level {
	return map[string]logrus.Level{
		"panic":   logrus.PanicLevel,
		"fatal":   logrus.FatalLevel,
		"error":   logrus.ErrorLevel,
		"warning": logrus.WarnLevel,
		"warn":    logrus.WarnLevel,
		"info":    logrus.InfoLevel,
		"debug":   logrus.DebugLevel,
		"trace":   logrus.TraceLevel,
	}
}

// LevelFromString returns the named level, falling back to info.
func LevelFromString(name string) logrus.Level {
	if level, ok := Levels()[strings.ToLower(name)]; ok {
		return level
	}

	return logrus.InfoLevel
}
