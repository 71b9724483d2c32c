// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	LogFormatPlain = "plain"
	LogFormatText  = "text"
	LogFormatJSON  = "json"
)

// NewLogger returns a logger writing to w. Level may set per-module levels,
// see [ParseModuleLevels].
func NewLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	switch strings.ToLower(format) {
	case LogFormatPlain, LogFormatText, "":
		w = newConsoleWriter(w, false)
	case LogFormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("unsupported log format %q", format)
	}

	levels, err := ParseModuleLevels(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	if len(levels.Modules) > 0 {
		w = moduleWriter{out: w, levels: levels}
	}

	return zerolog.New(w).Level(levels.Lowest()).With().Timestamp().Logger(), nil
}

func newConsoleWriter(w io.Writer, noColor bool) io.Writer {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}
}
