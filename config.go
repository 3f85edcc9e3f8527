// Copyright 2024 The Termcore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package termcore

import (
	"os"
	"strconv"
	"time"
)

// backendHintEnv is the variable an embedder can set to force a specific
// backend tier instead of letting Probe.Score pick one: "ansi",
// "termios", or "curses".
const backendHintEnv = "TERMCORE_BACKEND"

// Config carries every value the core reads from the environment plus
// the tunables the spec leaves to the implementer, so a single struct
// can be constructed once (LoadConfigFromEnv, or by hand for tests) and
// threaded through Probe, Parser, Coalescer, and FpsLimiter construction.
// There is no file I/O here and nothing is persisted between runs.
type Config struct {
	Term       string
	ColorTerm  string
	Locale     string
	Lines      int
	Columns    int
	NoColor    bool
	BackendHint string

	EscTimeout      time.Duration
	FPS             int
	CoalesceWindow  time.Duration
	ProbeTimeout    time.Duration
}

// DefaultConfig returns the tunables the spec's Open Questions settled on
// absent any environment override: a 50ms lone-ESC window, a 60fps
// ceiling, a 16ms coalescing window, and a 150ms DA2 probe timeout.
func DefaultConfig() Config {
	return Config{
		EscTimeout:     defaultEscTimeout,
		FPS:            defaultFPS,
		CoalesceWindow: defaultCoalesceWindow,
		ProbeTimeout:   150 * time.Millisecond,
	}
}

// LoadConfigFromEnv reads TERM, COLORTERM, LANG/LC_CTYPE, LINES/COLUMNS,
// NO_COLOR, and the backend-hint variable, layering them over
// DefaultConfig. A malformed LINES/COLUMNS value is ignored rather than
// treated as fatal, since the real terminal size is always re-queried by
// Probe/winsize regardless.
func LoadConfigFromEnv() Config {
	c := DefaultConfig()
	c.Term = os.Getenv("TERM")
	c.ColorTerm = os.Getenv("COLORTERM")
	c.Locale = firstNonEmpty(os.Getenv("LC_CTYPE"), os.Getenv("LC_ALL"), os.Getenv("LANG"))
	c.NoColor = os.Getenv("NO_COLOR") != ""
	c.BackendHint = os.Getenv(backendHintEnv)

	if v, err := strconv.Atoi(os.Getenv("LINES")); err == nil {
		c.Lines = v
	}
	if v, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil {
		c.Columns = v
	}
	return c
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// BackendOverride reports the backend the config forces, if any.
func (c Config) BackendOverride() (backendKind, bool) {
	switch c.BackendHint {
	case "ansi":
		return backendAnsi, true
	case "termios":
		return backendTermiosRaw, true
	case "curses":
		return backendCurses, true
	default:
		return 0, false
	}
}
