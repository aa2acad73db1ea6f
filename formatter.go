package lambdalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fastjson"
)

// Base keys present in every record.
const (
	LevelKey     = "level"
	TimestampKey = "timestamp"
	LocationKey  = "location"
	MessageKey   = "message"
	ExceptionKey = "exception"
)

// Field is one key/value pair of a record.
type Field struct {
	Key   string
	Value any
}

// Record is a single log event before formatting.
type Record struct {
	Time    time.Time
	Level   slog.Level
	Message string
	// Args are printf operands for Message, if any.
	Args     []any
	Logger   string
	Function string
	Line     int
	// Fields are the per-call extras, in call order.
	Fields    []Field
	Exception string
}

// Location renders "<logger>.<function>:<line>". Records without caller
// information render as the bare logger name.
func (r Record) Location() string {
	name := r.Logger
	if name == "" {
		name = "root"
	}
	if r.Function == "" {
		return name
	}
	return name + "." + r.Function + ":" + strconv.Itoa(r.Line)
}

// Formatter turns records into JSON lines. A Formatter is immutable once
// built and safe for concurrent use.
type Formatter struct {
	static        []Field
	timeFormat    string
	jsonDefault   func(any) any
	parseMessages bool
}

// NewFormatter returns a formatter attaching fields to every record.
// Fields are ordered by key.
func NewFormatter(fields map[string]any, opts ...Option) *Formatter {
	return newFormatter(fields, newOptions(opts))
}

func newFormatter(fields map[string]any, o *options) *Formatter {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	static := make([]Field, 0, len(keys))
	for _, k := range keys {
		static = append(static, Field{Key: k, Value: fields[k]})
	}
	return &Formatter{
		static:        static,
		timeFormat:    o.timeFormat,
		jsonDefault:   o.jsonDefault,
		parseMessages: o.parseMessages,
	}
}

// withFields returns a copy of f with fields merged over its static
// context.
func (f *Formatter) withFields(fields map[string]any) *Formatter {
	merged := make(map[string]any, len(f.static)+len(fields))
	for _, sf := range f.static {
		merged[sf.Key] = sf.Value
	}
	for k, v := range fields {
		merged[k] = v
	}
	f2 := *f
	f2.static = newFormatter(merged, &options{}).static
	return &f2
}

// Static returns a copy of the static context.
func (f *Formatter) Static() map[string]any {
	m := make(map[string]any, len(f.static))
	for _, sf := range f.static {
		m[sf.Key] = sf.Value
	}
	return m
}

// Format renders r as one newline-terminated JSON object.
func (f *Formatter) Format(r Record) ([]byte, error) {
	obj := newObject(4 + len(f.static) + len(r.Fields) + 1)
	obj.set(LevelKey, LevelName(r.Level))
	obj.set(TimestampKey, r.Time.Format(f.timeFormat))
	obj.set(LocationKey, r.Location())

	msg := resolveMessage(r.Message, r.Args)
	if f.parseMessages && fastjson.Validate(msg) == nil {
		obj.set(MessageKey, json.RawMessage(msg))
	} else {
		obj.set(MessageKey, msg)
	}

	for _, sf := range f.static {
		obj.set(sf.Key, sf.Value)
	}
	for _, rf := range r.Fields {
		obj.set(rf.Key, rf.Value)
	}
	if r.Exception != "" {
		obj.set(ExceptionKey, r.Exception)
	}

	var buf bytes.Buffer
	if err := obj.encode(&buf, f.jsonDefault); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// resolveMessage applies printf substitution only when there is both a
// verb and something to substitute.
func resolveMessage(msg string, args []any) string {
	if len(args) == 0 || !strings.Contains(msg, "%") {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// object is a JSON object that remembers insertion order. Overwriting a
// key keeps its original position.
type object struct {
	keys []string
	vals map[string]any
}

func newObject(size int) *object {
	return &object{
		keys: make([]string, 0, size),
		vals: make(map[string]any, size),
	}
}

func (o *object) set(key string, v any) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *object) len() int {
	return len(o.keys)
}

// fields flattens the top level of o.
func (o *object) fields() []Field {
	out := make([]Field, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, Field{Key: k, Value: o.vals[k]})
	}
	return out
}

func (o *object) encode(buf *bytes.Buffer, def func(any) any) error {
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeValue(buf, k, nil); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encodeValue(buf, o.vals[k], def); err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeValue(buf *bytes.Buffer, v any, def func(any) any) error {
	if nested, ok := v.(*object); ok {
		return nested.encode(buf, def)
	}
	err := encodeJSON(buf, v)
	if err != nil && def != nil {
		err = encodeJSON(buf, def(v))
	}
	return err
}

// encodeJSON writes v without a trailing newline. json.Encoder marshals
// into its own buffer first, so nothing reaches buf on failure.
func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}
