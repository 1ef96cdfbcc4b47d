// Package logging wires structured logging through every halleypack
// component using hclog, the same way the pack's own tooling does.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// NewLogger builds an hclog.Logger with the module's standard settings.
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv("HALLEYPACK_JSON_LOG") == "1"

	if !jsonFormat {
		output = NewPrefixWriter("🗃️  ", output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// LevelFromEnv resolves the configured log level: explicit flag value first,
// then HALLEYPACK_LOG_LEVEL, then "info".
func LevelFromEnv(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("HALLEYPACK_LOG_LEVEL"); v != "" {
		return v
	}
	return "info"
}

// NullLogger returns a logger that discards everything, for tests that don't
// care about log output.
func NullLogger() hclog.Logger {
	return hclog.NewNullLogger()
}
