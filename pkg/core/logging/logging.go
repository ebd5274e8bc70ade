// Package logging builds the process-wide zerolog logger. Components derive
// scoped loggers from the one returned here; nothing logs through a global.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates the root logger for the given level and format.
func New(level, format string) zerolog.Logger {
	var out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	if strings.ToLower(format) == "json" {
		return zerolog.New(os.Stdout).Level(parseLevel(level)).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
