// Package logger defines the structured Logger used by every go-iec104 package, with a log/slog
// implementation and a testify mock.
//
// Applications plug in their own logging framework by implementing Logger and passing it to
// master.WithLogger. Without one, sessions log through the package default logger, whose level and
// format follow the LOG_LEVEL and LOG_FORMAT environment variables.
//
// Log records carry key-value pairs; a session logger always carries the "remote" address.
package logger

import "strings"

// Level is a logging severity.
type Level int8

const (
	// DebugLevel enables frame dumps and state transitions.
	DebugLevel Level = iota - 1
	// InfoLevel is the default level and reports link start and stop.
	InfoLevel
	// WarnLevel reports protocol oddities that do not end the connection.
	WarnLevel
	// ErrorLevel reports connection loss.
	ErrorLevel
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel
)

// String returns the lower case name of the level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case FatalLevel:
		return "fatal"
	default:
		return "unknown"
	}
}

// Logger is a leveled, structured logger.
//
// Each logging method takes a message and alternating keys and values, which are added to the fields
// accumulated with With.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	// Fatal logs at FatalLevel and then calls os.Exit(1), even if FatalLevel is disabled.
	Fatal(msg string, keysAndValues ...any)
	// With returns a child logger carrying keyValues. The parent is not modified.
	With(keyValues ...any) Logger
	// Level returns the minimum enabled level.
	Level() Level
	// SetLevel sets the minimum enabled level.
	SetLevel(level Level)
}

// ParseLevel converts a level name ("debug", "info", "warn", "error", "fatal") to Level.
// Unknown or empty names map to InfoLevel.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}
