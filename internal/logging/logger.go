package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

const (
	EnvLevel       = "IMAGECORE_DEBUG"
	EnvLevelLegacy = "MAGICK_DEBUG"
	EnvJSON        = "IMAGECORE_JSON_LOG"
)

// New creates the root logger. A nil output means stderr.
func New(name, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: os.Getenv(EnvJSON) == "1",
		Output:     output,
	})
}

// LevelFromEnv reads the log level, defaulting to warn.
func LevelFromEnv() string {
	for _, key := range []string{EnvLevel, EnvLevelLegacy} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if hclog.LevelFromString(v) == hclog.NoLevel {
				// MAGICK_DEBUG historically takes an event list ("All", "Coder,Module")
				return "trace"
			}
			return v
		}
	}
	return "warn"
}

// OrNull lets components accept a nil logger.
func OrNull(l hclog.Logger) hclog.Logger {
	if l == nil {
		return hclog.NewNullLogger()
	}
	return l
}
