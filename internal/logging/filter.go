// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// ModuleLevels is a default log level plus per-module overrides. Events are
// matched to a module by their "module" field.
type ModuleLevels struct {
	Default zerolog.Level
	Modules map[string]zerolog.Level
}

// ParseModuleLevels parses a specification such as "error;executor=info". An
// entry without a module, or with the module "*", sets the default.
func ParseModuleLevels(s string) (ModuleLevels, error) {
	m := ModuleLevels{Default: zerolog.InfoLevel, Modules: map[string]zerolog.Level{}}
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		module, level, ok := strings.Cut(entry, "=")
		if !ok {
			module, level = "*", entry
		}
		l, err := zerolog.ParseLevel(strings.TrimSpace(level))
		if err != nil {
			return ModuleLevels{}, err
		}

		module = strings.TrimSpace(module)
		if module == "*" {
			m.Default = l
		} else {
			m.Modules[module] = l
		}
	}
	return m, nil
}

// Lowest returns the most verbose level of any module.
func (m ModuleLevels) Lowest() zerolog.Level {
	lowest := m.Default
	for _, l := range m.Modules {
		if l < lowest {
			lowest = l
		}
	}
	return lowest
}

// Enabled returns true if an event at the level for the module is logged.
func (m ModuleLevels) Enabled(module string, level zerolog.Level) bool {
	l, ok := m.Modules[module]
	if !ok {
		l = m.Default
	}
	return level >= l
}

// moduleWriter drops events below the level of their module.
type moduleWriter struct {
	out    io.Writer
	levels ModuleLevels
}

var _ zerolog.LevelWriter = moduleWriter{}

func (w moduleWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w moduleWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	// Requires zerolog's JSON encoding, which is the default
	var evt struct {
		Module string `json:"module"`
		Level  string `json:"level"`
	}
	err := json.Unmarshal(p, &evt)
	if err != nil {
		return 0, fmt.Errorf("cannot decode event: %w", err)
	}

	if level == zerolog.NoLevel {
		level, _ = zerolog.ParseLevel(evt.Level)
	}
	if !w.levels.Enabled(evt.Module, level) {
		return len(p), nil
	}
	return w.out.Write(p)
}
