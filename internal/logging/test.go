// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// testWriter forwards each log line to the test log.
type testWriter struct{ tb testing.TB }

func (w testWriter) Write(b []byte) (int, error) {
	w.tb.Log(strings.TrimSuffix(string(b), "\n"))
	return len(b), nil
}

// NewTestLogger returns a plain-text logger that writes to the test log. The
// level defaults to debug and can be changed with TRANSMUTE_TEST_LOG.
func NewTestLogger(tb testing.TB) zerolog.Logger {
	level := os.Getenv("TRANSMUTE_TEST_LOG")
	if level == "" {
		level = "debug"
	}
	levels, err := ParseModuleLevels(level)
	if err != nil {
		tb.Fatalf("invalid TRANSMUTE_TEST_LOG: %v", err)
	}

	w := moduleWriter{out: newConsoleWriter(testWriter{tb}, true), levels: levels}
	return zerolog.New(w).Level(levels.Lowest()).With().Timestamp().Logger()
}
