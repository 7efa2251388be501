// Package logging provides structured logging utilities shared by the
// feedopt CLI and library packages.
//
// It wraps the standard library slog package with project defaults:
// structured JSON to stderr for non-interactive use, an optional colorized
// console format (tint) for terminals, environment-based level configuration
// via LOG_LEVEL, and module/version context on every record.
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("feedopt", version)
//
//	    slog.Info("loading inputs", "cows", cowPath)
//	    slog.Debug("constraint assembled", "name", "dm_intake")
//	    slog.Error("solve failed", "error", err, "group", 2)
//	}
//
// Setting an explicit level and format after flag parsing:
//
//	logging.SetDefaultStructuredLoggerWithLevel("feedopt", version, "warn", logging.FormatConsole)
package logging
