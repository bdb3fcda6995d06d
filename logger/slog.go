package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/phsym/console-slog"
)

// Format selects the slog handler used by NewSlog.
type Format string

const (
	// FormatJSON writes one JSON object per record, the time key is renamed to "ts".
	FormatJSON Format = "json"
	// FormatText writes logfmt style records.
	FormatText Format = "text"
	// FormatConsole writes colored human readable records.
	FormatConsole Format = "console"
)

// SlogLogger is a Logger backed by log/slog.
type SlogLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

var _ Logger = (*SlogLogger)(nil)

type slogOptions struct {
	output    io.Writer
	addSource bool
	format    Format
}

// SlogOption configures NewSlog.
type SlogOption func(*slogOptions)

// WithOutput sets the destination of log records, os.Stdout by default.
func WithOutput(w io.Writer) SlogOption {
	return func(o *slogOptions) { o.output = w }
}

// WithSource adds the source file and line of the log site.
func WithSource(enabled bool) SlogOption {
	return func(o *slogOptions) { o.addSource = enabled }
}

// WithFormat sets the record format.
func WithFormat(format Format) SlogOption {
	return func(o *slogOptions) { o.format = format }
}

// FormatFromEnv returns the format named by LOG_FORMAT. ENV=development selects FormatConsole,
// otherwise FormatJSON is returned.
func FormatFromEnv() Format {
	switch Format(strings.ToLower(os.Getenv("LOG_FORMAT"))) {
	case FormatJSON:
		return FormatJSON
	case FormatText:
		return FormatText
	case FormatConsole:
		return FormatConsole
	}

	if os.Getenv("ENV") == "development" {
		return FormatConsole
	}

	return FormatJSON
}

// NewSlog creates a slog based logger with the given minimum level.
func NewSlog(level Level, opts ...SlogOption) Logger {
	o := &slogOptions{output: os.Stdout, format: FormatFromEnv()}
	for _, opt := range opts {
		opt(o)
	}

	lv := &slog.LevelVar{}
	lv.Set(toSlogLevel(level))

	var handler slog.Handler
	switch o.format {
	case FormatConsole:
		handler = console.NewHandler(o.output, &console.HandlerOptions{
			AddSource: o.addSource,
			Level:     lv,
		})
	case FormatText:
		handler = slog.NewTextHandler(o.output, &slog.HandlerOptions{
			AddSource: o.addSource,
			Level:     lv,
		})
	default:
		handler = slog.NewJSONHandler(o.output, &slog.HandlerOptions{
			AddSource: o.addSource,
			Level:     lv,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					a.Key = "ts"
				}
				return a
			},
		})
	}

	return &SlogLogger{logger: slog.New(handler), level: lv}
}

func (l *SlogLogger) Debug(msg string, keysAndValues ...any) {
	l.log(slog.LevelDebug, msg, keysAndValues...)
}

func (l *SlogLogger) Info(msg string, keysAndValues ...any) {
	l.log(slog.LevelInfo, msg, keysAndValues...)
}

func (l *SlogLogger) Warn(msg string, keysAndValues ...any) {
	l.log(slog.LevelWarn, msg, keysAndValues...)
}

func (l *SlogLogger) Error(msg string, keysAndValues ...any) {
	l.log(slog.LevelError, msg, keysAndValues...)
}

func (l *SlogLogger) Fatal(msg string, keysAndValues ...any) {
	l.log(slogLevelFatal, msg, keysAndValues...)
	os.Exit(1)
}

// With returns a child logger sharing the level of l.
func (l *SlogLogger) With(keyValues ...any) Logger {
	return &SlogLogger{logger: l.logger.With(keyValues...), level: l.level}
}

func (l *SlogLogger) Level() Level {
	switch lv := l.level.Level(); {
	case lv <= slog.LevelDebug:
		return DebugLevel
	case lv <= slog.LevelInfo:
		return InfoLevel
	case lv <= slog.LevelWarn:
		return WarnLevel
	case lv <= slog.LevelError:
		return ErrorLevel
	default:
		return FatalLevel
	}
}

// SetLevel changes the level of l and of every logger derived from it with With.
func (l *SlogLogger) SetLevel(level Level) {
	l.level.Set(toSlogLevel(level))
}

// log must be called directly by an exported logging method, since it uses a fixed call depth to obtain the pc.
func (l *SlogLogger) log(level slog.Level, msg string, args ...any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	// skip [runtime.Callers, log, exported method]
	runtime.Callers(3, pcs[:])

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.logger.Handler().Handle(ctx, r)
}

const slogLevelFatal = slog.LevelError + 4

func toSlogLevel(level Level) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case InfoLevel:
		return slog.LevelInfo
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slogLevelFatal
	}
}
