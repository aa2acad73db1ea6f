package lambdalog

import (
	"fmt"
	"io"
	"os"
	"time"
)

// DefaultTimeFormat renders timestamps as "2006-01-02 15:04:05,000".
const DefaultTimeFormat = "2006-01-02 15:04:05,000"

type options struct {
	out           io.Writer
	errOut        io.Writer
	timeFormat    string
	jsonDefault   func(any) any
	parseMessages bool
	loggerLevels  map[string]string
	clock         func() time.Time
}

// Option customises Setup, NewHandler and NewFormatter.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		out:        os.Stdout,
		errOut:     os.Stderr,
		timeFormat: DefaultTimeFormat,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithWriter sets where records are written. Defaults to stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

// WithErrorWriter sets where formatting failures are reported. Defaults to
// stderr.
func WithErrorWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.errOut = w
		}
	}
}

// WithTimeFormat replaces the timestamp layout.
func WithTimeFormat(layout string) Option {
	return func(o *options) {
		if layout != "" {
			o.timeFormat = layout
		}
	}
}

// WithJSONDefault installs a coercion for values encoding/json rejects.
// The function must not panic; with it installed serialisation never fails.
func WithJSONDefault(fn func(any) any) Option {
	return func(o *options) { o.jsonDefault = fn }
}

// WithParsedMessages embeds messages that are themselves valid JSON as
// JSON values instead of strings.
func WithParsedMessages() Option {
	return func(o *options) { o.parseMessages = true }
}

// WithLoggerLevel gives loggers named prefix, or prefix followed by a dot
// and more, their own threshold.
func WithLoggerLevel(prefix, level string) Option {
	return func(o *options) {
		if o.loggerLevels == nil {
			o.loggerLevels = make(map[string]string)
		}
		o.loggerLevels[prefix] = level
	}
}

// WithClock overrides the record time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// StringDefault is a WithJSONDefault coercion that renders values with
// fmt's %v verb.
func StringDefault(v any) any {
	return fmt.Sprint(v)
}
