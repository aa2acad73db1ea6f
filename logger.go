package lambdalog

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// Logger offers the severity helpers of a classic logging facility on top
// of an slog.Handler: printf forms, CRITICAL and exception reporting.
type Logger struct {
	handler slog.Handler
}

// NewLogger wraps any slog handler.
func NewLogger(h slog.Handler) *Logger {
	return &Logger{handler: h}
}

// Handler returns the underlying handler.
func (l *Logger) Handler() slog.Handler {
	return l.handler
}

// Slog returns an *slog.Logger sharing l's handler.
func (l *Logger) Slog() *slog.Logger {
	return slog.New(l.handler)
}

// With returns a logger that adds args, given as slog key/value pairs or
// attributes, to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{handler: slog.New(l.handler).With(args...).Handler()}
}

// Named returns a child logger. Names are dotted: Named("db") on a logger
// named "app" yields "app.db". Handlers other than *Handler carry the name
// as a "logger" attribute.
func (l *Logger) Named(name string) *Logger {
	if h, ok := l.handler.(*Handler); ok {
		if h.name != "" {
			name = h.name + "." + name
		}
		return &Logger{handler: h.WithName(name)}
	}
	return &Logger{handler: l.handler.WithAttrs([]slog.Attr{slog.String("logger", name)})}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.output(context.Background(), LevelDebug, msg, args, false)
}

func (l *Logger) Info(msg string, args ...any) {
	l.output(context.Background(), LevelInfo, msg, args, false)
}

func (l *Logger) Warning(msg string, args ...any) {
	l.output(context.Background(), LevelWarning, msg, args, false)
}

func (l *Logger) Error(msg string, args ...any) {
	l.output(context.Background(), LevelError, msg, args, false)
}

func (l *Logger) Critical(msg string, args ...any) {
	l.output(context.Background(), LevelCritical, msg, args, false)
}

// Log emits a record at an arbitrary level.
func (l *Logger) Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	l.output(ctx, level, msg, args, false)
}

// Debugf logs a printf-style message. The format is used verbatim when no
// args are given.
func (l *Logger) Debugf(format string, args ...any) {
	l.output(context.Background(), LevelDebug, format, args, true)
}

func (l *Logger) Infof(format string, args ...any) {
	l.output(context.Background(), LevelInfo, format, args, true)
}

func (l *Logger) Warningf(format string, args ...any) {
	l.output(context.Background(), LevelWarning, format, args, true)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.output(context.Background(), LevelError, format, args, true)
}

func (l *Logger) Criticalf(format string, args ...any) {
	l.output(context.Background(), LevelCritical, format, args, true)
}

// Exception logs msg at ERROR with err attached as exception information.
func (l *Logger) Exception(err error, msg string, args ...any) {
	args = append(args, slog.Any(ExcInfoKey, newExcInfo(err, 1)))
	l.output(context.Background(), LevelError, msg, args, false)
}

// output builds the record. It must be called directly from the exported
// method so the caller's PC sits three frames up.
func (l *Logger) output(ctx context.Context, level slog.Level, msg string, args []any, printf bool) {
	if !l.handler.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:]) // skip [Callers, output, exported method]

	if printf {
		msg = resolveMessage(msg, args)
		args = nil
	}
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.handler.Handle(ctx, r)
}

// root is the logger behind the package-level functions. It shares the
// process-wide core, so it follows every Setup.
var root = &Logger{handler: &Handler{core: global}}

// Default returns the root logger.
func Default() *Logger {
	return root
}

// Named returns a logger whose records carry name in their location.
func Named(name string) *Logger {
	return root.Named(name)
}

func Debug(msg string, args ...any) {
	root.output(context.Background(), LevelDebug, msg, args, false)
}

func Info(msg string, args ...any) {
	root.output(context.Background(), LevelInfo, msg, args, false)
}

func Warning(msg string, args ...any) {
	root.output(context.Background(), LevelWarning, msg, args, false)
}

func Error(msg string, args ...any) {
	root.output(context.Background(), LevelError, msg, args, false)
}

func Critical(msg string, args ...any) {
	root.output(context.Background(), LevelCritical, msg, args, false)
}

func Debugf(format string, args ...any) {
	root.output(context.Background(), LevelDebug, format, args, true)
}

func Infof(format string, args ...any) {
	root.output(context.Background(), LevelInfo, format, args, true)
}

func Warningf(format string, args ...any) {
	root.output(context.Background(), LevelWarning, format, args, true)
}

func Errorf(format string, args ...any) {
	root.output(context.Background(), LevelError, format, args, true)
}

func Criticalf(format string, args ...any) {
	root.output(context.Background(), LevelCritical, format, args, true)
}

// Exception logs msg at ERROR on the root logger with err attached.
func Exception(err error, msg string, args ...any) {
	args = append(args, slog.Any(ExcInfoKey, newExcInfo(err, 1)))
	root.output(context.Background(), LevelError, msg, args, false)
}
