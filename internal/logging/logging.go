// Package logging builds the console logger shared by the CLI and the
// evaluation engine.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "ARCHQ_LOG_LEVEL"

// Params configures New.
type Params struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string
	// Output defaults to stderr.
	Output io.Writer
	Prefix string
}

// New returns a timestamped charmbracelet logger. Unknown levels fall back
// to info.
func New(params Params) *log.Logger {
	out := params.Output
	if out == nil {
		out = os.Stderr
	}
	return log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Level:           ParseLevel(params.Level),
		Prefix:          params.Prefix,
	})
}

// ParseLevel maps a level name to a log.Level, defaulting to info.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// ResolveLevel returns the env override if set, else configured.
func ResolveLevel(configured string) string {
	if v := os.Getenv(EnvLevel); v != "" {
		return v
	}
	return configured
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
