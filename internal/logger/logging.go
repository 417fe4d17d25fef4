// Package logger provides modifications to charmbracelet/log's default logger to be used in various files/packages.
//
// All loggers write to stderr: stdout is reserved for the msgpack IPC
// channel when running in server mode.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// EnvVar names the environment variable consulted by Setup for the
// initial log level ("debug", "info", "warn", "error").
const EnvVar = "SNIPMATCH_LOG"

// Setup configures the package-level charm logger shared by all packages
// that call log.Debugf/Warnf/Errorf directly. Debug forces debug level
// and timestamps; otherwise EnvVar is consulted, defaulting to warn so
// interactive output stays quiet.
func Setup(debug bool) {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)
	level := log.WarnLevel
	if env := os.Getenv(EnvVar); env != "" {
		if parsed, err := log.ParseLevel(env); err == nil {
			level = parsed
		}
	}
	if debug {
		level = log.DebugLevel
		log.SetReportTimestamp(true)
	}
	log.SetLevel(level)
}

// Default creates a new default charm log that respects the global log level
func Default(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}
