package lambdalog

import (
	"log/slog"
)

// global is the process-wide configuration shared by the root logger and
// every logger derived from it.
var global = &core{}

// Setup installs the JSON handler as the process default logger.
//
// level is a severity name (see ParseLevel); empty means DEBUG. fields are
// attached to every record. Calling Setup again replaces the previous
// configuration entirely, including for loggers obtained earlier.
//
// Setup is meant to run before the function starts logging. If it races
// with concurrent log calls, each record sees either the old or the new
// configuration.
func Setup(level string, fields map[string]any, opts ...Option) error {
	st, err := newState(level, fields, opts)
	if err != nil {
		return err
	}
	global.state.Store(st)
	slog.SetDefault(slog.New(root.handler))
	return nil
}

// AddField merges fields into the active static context. It does nothing
// before Setup.
func AddField(fields map[string]any) {
	for {
		cur := global.state.Load()
		if cur == nil {
			return
		}
		next := *cur
		next.formatter = cur.formatter.withFields(fields)
		if global.state.CompareAndSwap(cur, &next) {
			return
		}
	}
}

// Configured reports whether Setup has succeeded.
func Configured() bool {
	return global.state.Load() != nil
}

// StaticFields returns a copy of the active static context, or nil before
// Setup.
func StaticFields() map[string]any {
	st := global.state.Load()
	if st == nil {
		return nil
	}
	return st.formatter.Static()
}
