/*
Copyright © 2025 Herdwise Authors
SPDX-License-Identifier: Apache-2.0
*/
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// Format selects the log output encoding.
type Format string

const (
	// FormatJSON emits structured JSON records to stderr.
	FormatJSON Format = "json"
	// FormatConsole emits human-friendly colorized records to stderr.
	FormatConsole Format = "console"
)

const envLogLevel = "LOG_LEVEL"

// ParseLevel converts a level name into a slog.Level. Matching is
// case-insensitive; unrecognized names fall back to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewStructuredLogger creates a logger that writes to stderr in the given
// format with module and version attributes attached to every record. Debug
// level enables source location tracking for the JSON handler.
func NewStructuredLogger(module, version, level string, format Format) *slog.Logger {
	lvl := ParseLevel(level)

	var handler slog.Handler
	if format == FormatConsole {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      lvl,
			TimeFormat: "15:04:05",
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     lvl,
			AddSource: lvl == slog.LevelDebug,
		})
	}

	return slog.New(handler).With(
		slog.String("module", module),
		slog.String("version", version),
	)
}

// SetDefaultStructuredLogger installs the default logger using the LOG_LEVEL
// environment variable (Info when unset).
func SetDefaultStructuredLogger(module, version string) {
	SetDefaultStructuredLoggerWithLevel(module, version, os.Getenv(envLogLevel), FormatJSON)
}

// SetDefaultStructuredLoggerWithLevel installs the default logger with an
// explicit level and format, e.g. after CLI flags are parsed.
func SetDefaultStructuredLoggerWithLevel(module, version, level string, format Format) {
	slog.SetDefault(NewStructuredLogger(module, version, level, format))
}
