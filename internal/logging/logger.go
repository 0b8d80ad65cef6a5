package logging

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"
)

// DefaultLevel is used when no log level is configured
const DefaultLevel = hclog.Info

// New returns a named logger writing to stderr. Stdout is reserved for decoded changes.
func New(name string, level hclog.Level) hclog.Logger {
	return NewWithOutput(name, level, os.Stderr)
}

// NewWithOutput returns a named logger writing to w
func NewWithOutput(name string, level hclog.Level, w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   name,
		Level:  level,
		Output: w,
	})
}

// SetupBareLogger returns a logger with no name and no timestamps, for clean plugin output
func SetupBareLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Level:       levelFromEnv(),
		Output:      os.Stderr,
		DisableTime: true,
	})
}

// ParseLevel converts a level name ("trace", "debug", "info", "warn", "error", "off").
// An empty name yields DefaultLevel.
func ParseLevel(name string) (hclog.Level, error) {
	if strings.TrimSpace(name) == "" {
		return DefaultLevel, nil
	}
	level := hclog.LevelFromString(name)
	if level == hclog.NoLevel {
		return hclog.NoLevel, errors.Newf("unknown log level %q", name)
	}
	return level, nil
}

func levelFromEnv() hclog.Level {
	level, err := ParseLevel(os.Getenv("DSTREAM_LOG_LEVEL"))
	if err != nil {
		return DefaultLevel
	}
	return level
}
