// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to out, formatted according to the named logger
// type and filtered at the named level.
func New(out io.Writer, loggerType, level string, timestamps bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(LevelFromString(level))

	switch LoggerTypeFromString(loggerType) {
	case QUIET:
		logger.SetOutput(io.Discard)

	case FANCY:
		logger.Formatter = &TextFormatter{
			ForceColors:      true,
			DisableTimestamp: !timestamps,
		}

	case JSON:
		logger.Formatter = &logrus.JSONFormatter{
			DisableTimestamp: !timestamps,
		}

	default:
		logger.Formatter = &TextFormatter{
			DisableTimestamp: !timestamps,
		}
	}

	return logger
}
