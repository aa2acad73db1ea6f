package lambdalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// state is one configuration produced by Setup. It is never modified after
// being published.
type state struct {
	formatter    *Formatter
	level        slog.Level
	loggerLevels []loggerLevel
	// floor is the lowest threshold of any logger.
	floor slog.Level
	out          io.Writer
	errOut       io.Writer
	clock        func() time.Time
}

type loggerLevel struct {
	prefix string
	level  slog.Level
}

func newState(level string, fields map[string]any, opts []Option) (*state, error) {
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)

	st := &state{
		formatter: newFormatter(fields, o),
		level:     lvl,
		out:       o.out,
		errOut:    o.errOut,
		clock:     o.clock,
	}
	for prefix, name := range o.loggerLevels {
		l, err := ParseLevel(name)
		if err != nil {
			return nil, err
		}
		st.loggerLevels = append(st.loggerLevels, loggerLevel{prefix: prefix, level: l})
	}
	st.floor = st.level
	for _, ll := range st.loggerLevels {
		st.floor = min(st.floor, ll.level)
	}
	// Longest prefix first so the most specific override wins.
	sort.Slice(st.loggerLevels, func(i, j int) bool {
		return len(st.loggerLevels[i].prefix) > len(st.loggerLevels[j].prefix)
	})
	return st, nil
}

func (st *state) threshold(name string) slog.Level {
	for _, ll := range st.loggerLevels {
		if name == ll.prefix || strings.HasPrefix(name, ll.prefix+".") {
			return ll.level
		}
	}
	return st.level
}

// core is shared by a handler and everything derived from it, so a new
// configuration reaches loggers created earlier.
type core struct {
	mu    sync.Mutex // serialises writes
	state atomic.Pointer[state]
}

type groupOrAttrs struct {
	group string
	attrs []slog.Attr
}

// Handler is an slog.Handler writing one JSON object per record.
//
// Until its core is configured, a Handler forwards records to whatever
// slog.Default held, so early log calls keep the stock text output.
type Handler struct {
	core *core
	name string
	goas []groupOrAttrs
}

// NewHandler returns a standalone handler that does not touch the process
// default logger.
func NewHandler(level string, fields map[string]any, opts ...Option) (*Handler, error) {
	st, err := newState(level, fields, opts)
	if err != nil {
		return nil, err
	}
	c := &core{}
	c.state.Store(st)
	return &Handler{core: c}, nil
}

// Name returns the logger name records from h carry.
func (h *Handler) Name() string {
	return h.name
}

// WithName returns a handler whose records carry name.
func (h *Handler) WithName(name string) *Handler {
	h2 := *h
	h2.name = name
	return &h2
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	st := h.core.state.Load()
	if st == nil {
		return h.fallback().Enabled(ctx, level)
	}
	if h.name == "" {
		// The logger name is the caller's package, known only in Handle.
		return level >= st.floor
	}
	return level >= st.threshold(h.name)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	st := h.core.state.Load()
	if st == nil {
		return h.fallback().Handle(ctx, r)
	}

	rec := Record{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Logger:  h.name,
	}
	if st.clock != nil {
		rec.Time = st.clock()
	} else if rec.Time.IsZero() {
		rec.Time = time.Now()
	}

	// Add source info
	if r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		pkg, fn := splitFunction(f.Function)
		if rec.Logger == "" {
			rec.Logger = pkg
		}
		rec.Function = fn
		rec.Line = f.Line
	}
	if r.Level < st.threshold(rec.Logger) {
		return nil
	}

	rec.Fields, rec.Exception = h.collect(r)

	line, err := st.formatter.Format(rec)
	if err != nil {
		fmt.Fprintf(st.errOut, "lambdalog: dropping %s record from %s: %v\n", LevelName(r.Level), rec.Location(), err)
		return err
	}

	h.core.mu.Lock()
	defer h.core.mu.Unlock()
	_, err = st.out.Write(line)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.withGroupOrAttrs(groupOrAttrs{attrs: attrs})
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.withGroupOrAttrs(groupOrAttrs{group: name})
}

func (h *Handler) withGroupOrAttrs(goa groupOrAttrs) *Handler {
	h2 := *h
	h2.goas = append(slices.Clip(h.goas), goa)
	return &h2
}

// fallback rebuilds h on top of the current default handler.
func (h *Handler) fallback() slog.Handler {
	var fh slog.Handler = slog.Default().Handler()
	if _, ok := fh.(*Handler); ok {
		return slog.DiscardHandler
	}
	for _, goa := range h.goas {
		if goa.group != "" {
			fh = fh.WithGroup(goa.group)
		} else {
			fh = fh.WithAttrs(goa.attrs)
		}
	}
	return fh
}

// collect resolves handler and record attributes into fields, nesting them
// under any open groups. Exception information is returned separately.
func (h *Handler) collect(r slog.Record) ([]Field, string) {
	var exc string
	top := newObject(r.NumAttrs())
	cur := top
	for _, goa := range h.goas {
		if goa.group != "" {
			sub := newObject(0)
			cur.set(goa.group, sub)
			cur = sub
			continue
		}
		for _, a := range goa.attrs {
			addAttr(cur, a, &exc)
		}
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(cur, a, &exc)
		return true
	})
	prune(top)
	return top.fields(), exc
}

func addAttr(o *object, a slog.Attr, exc *string) {
	v := a.Value.Resolve()
	if a.Key == "" && v.Kind() != slog.KindGroup {
		return
	}
	switch v.Kind() {
	case slog.KindGroup:
		attrs := v.Group()
		if len(attrs) == 0 {
			return
		}
		if a.Key == "" {
			for _, ga := range attrs {
				addAttr(o, ga, exc)
			}
			return
		}
		sub := newObject(len(attrs))
		for _, ga := range attrs {
			addAttr(sub, ga, exc)
		}
		o.set(a.Key, sub)
		return
	case slog.KindTime:
		o.set(a.Key, v.Time().Format(time.RFC3339Nano))
		return
	case slog.KindDuration:
		o.set(a.Key, v.Duration().String())
		return
	case slog.KindAny:
		switch x := v.Any().(type) {
		case *excInfo:
			*exc = x.String()
			return
		case error:
			if a.Key == ExcInfoKey {
				*exc = formatException(x, nil)
				return
			}
			o.set(a.Key, x.Error())
			return
		}
	}
	o.set(a.Key, v.Any())
}

// prune drops groups that ended up without attributes.
func prune(o *object) {
	keys := o.keys[:0]
	for _, k := range o.keys {
		if sub, ok := o.vals[k].(*object); ok {
			prune(sub)
			if sub.len() == 0 {
				delete(o.vals, k)
				continue
			}
		}
		keys = append(keys, k)
	}
	o.keys = keys
}

// splitFunction splits a fully qualified function name such as
// "github.com/acme/app/store.(*DB).Get" into "store" and "(*DB).Get".
func splitFunction(full string) (pkg, fn string) {
	rest := full
	if i := strings.LastIndex(rest, "/"); i >= 0 {
		rest = rest[i+1:]
	}
	i := strings.Index(rest, ".")
	if i < 0 {
		return rest, ""
	}
	return rest[:i], rest[i+1:]
}
