// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// StageField is rendered as a prefix in front of the message rather than as
// a trailing key=value pair.
const StageField = "stage"

type renderFunc func(...string) string

func badge(bg string) renderFunc {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(bg)).
		Foreground(lipgloss.AdaptiveColor{Light: "15", Dark: "0"}).
		Render
}

func plain(strs ...string) string {
	return strings.Join(strs, " ")
}

var levelBadges = map[logrus.Level]struct {
	text   string
	render renderFunc
}{
	logrus.PanicLevel: {"X", badge("9")},
	logrus.FatalLevel: {"!", badge("9")},
	logrus.ErrorLevel: {"E", badge("9")},
	logrus.WarnLevel:  {"W", badge("11")},
	logrus.InfoLevel:  {"i", badge("8")},
	logrus.DebugLevel: {"D", badge("12")},
	logrus.TraceLevel: {"T", badge("0")},
}

// TextFormatter renders entries as a level badge, an optional timestamp, the
// stage prefix, the message and the remaining fields sorted by key.
type TextFormatter struct {
	// ForceColors bypasses the TTY check.
	ForceColors bool

	// DisableColors wins over ForceColors.
	DisableColors bool

	DisableTimestamp bool

	// TimestampFormat defaults to time.RFC3339.
	TimestampFormat string

	colored bool
	once    sync.Once
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	f.once.Do(func() {
		f.colored = !f.DisableColors &&
			(f.ForceColors || (entry.Logger != nil && isTerminal(entry.Logger.Out)))
	})

	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	lvl, ok := levelBadges[entry.Level]
	if !ok {
		lvl = levelBadges[logrus.DebugLevel]
	}

	render := lvl.render
	if !f.colored {
		render = plain
	}

	b.WriteString(render(" " + lvl.text + " "))

	if !f.DisableTimestamp {
		format := f.TimestampFormat
		if format == "" {
			format = time.RFC3339
		}
		b.WriteString(" " + entry.Time.Format(format))
	}

	if stage, ok := entry.Data[StageField]; ok {
		fmt.Fprintf(b, " %v:", stage)
	}

	b.WriteString(" " + entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != StageField {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(b, " %s=%+v", render(k), entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
