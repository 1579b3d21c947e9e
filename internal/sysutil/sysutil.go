// Package sysutil holds process-level helpers shared by the binary: logger
// setup and small environment parsing utilities.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogger sets the global level from a LOG_LEVEL value and replaces the
// global logger. Pretty logs go to stderr through a console writer; otherwise
// JSON lines go to stdout.
func SetupLogger(level string, pretty bool) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	zerolog.TimeFieldFormat = time.RFC3339
	out := io.Writer(os.Stdout)
	if pretty {
		out = os.Stderr
	}
	log.Logger = NewLogger(out, pretty)
}

// NewLogger builds a timestamped logger writing to w.
func NewLogger(w io.Writer, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// ParseLevel maps a level name (case-insensitive, "warning" accepted) to a
// zerolog level. Empty or unknown names give info.
func ParseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

var truthy = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "y": {}, "on": {}}

// IsTruthy reports whether v is one of 1/true/yes/y/on, ignoring case and
// surrounding space.
func IsTruthy(v string) bool {
	_, ok := truthy[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// FirstNonEmpty returns the first value that is not blank, unmodified, or "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
