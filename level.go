package lambdalog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Severities understood by the formatter. They share slog's numbering so
// plain slog calls and this package's Logger can be mixed freely.
const (
	LevelDebug    = slog.LevelDebug
	LevelInfo     = slog.LevelInfo
	LevelWarning  = slog.LevelWarn
	LevelError    = slog.LevelError
	LevelCritical = slog.Level(12)
)

// DefaultLevel is used when Setup receives an empty level name.
const DefaultLevel = "DEBUG"

var levelNames = []struct {
	level slog.Level
	name  string
}{
	{LevelDebug, "DEBUG"},
	{LevelInfo, "INFO"},
	{LevelWarning, "WARNING"},
	{LevelError, "ERROR"},
	{LevelCritical, "CRITICAL"},
}

// ErrInvalidLevel is matched by every *ConfigurationError.
var ErrInvalidLevel = errors.New("invalid log level")

// ConfigurationError reports a severity name Setup could not understand.
type ConfigurationError struct {
	Level string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("lambdalog: invalid log level %q", e.Level)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidLevel
}

// ParseLevel converts a severity name into a level. Names are
// case-insensitive; WARN and FATAL are accepted as aliases of WARNING and
// CRITICAL.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARNING", "WARN":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL", "FATAL":
		return LevelCritical, nil
	default:
		return 0, &ConfigurationError{Level: name}
	}
}

// LevelName returns the name written in the level field. Levels between
// the named ones render relative to the nearest lower name, e.g. INFO+2.
func LevelName(l slog.Level) string {
	if l < LevelDebug {
		return fmt.Sprintf("DEBUG%d", l-LevelDebug)
	}
	base := levelNames[0]
	for _, ln := range levelNames {
		if l >= ln.level {
			base = ln
		}
	}
	if l == base.level {
		return base.name
	}
	return fmt.Sprintf("%s+%d", base.name, l-base.level)
}
