package logger

import "os"

// defLogger is used by the package level functions and by components created without a logger.
// LOG_LEVEL and LOG_FORMAT select its level and format.
var defLogger = NewSlog(ParseLevel(os.Getenv("LOG_LEVEL")))

func Debug(msg string, keysAndValues ...any) { defLogger.Debug(msg, keysAndValues...) }
func Info(msg string, keysAndValues ...any) { defLogger.Info(msg, keysAndValues...) }
func Warn(msg string, keysAndValues ...any) { defLogger.Warn(msg, keysAndValues...) }
func Error(msg string, keysAndValues ...any) { defLogger.Error(msg, keysAndValues...) }
func Fatal(msg string, keysAndValues ...any) { defLogger.Fatal(msg, keysAndValues...) }

// SetLevel changes the level of the default logger and its children.
func SetLevel(level Level) {
	defLogger.SetLevel(level)
}

// GetLogger returns the package default logger.
func GetLogger() Logger {
	return defLogger
}

// With returns a child of the default logger.
func With(keyValues ...any) Logger {
	return defLogger.With(keyValues...)
}
