package lambdalog

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func fixedRecord() Record {
	return Record{
		Time:     time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.Local),
		Level:    LevelInfo,
		Message:  "hello",
		Logger:   "app",
		Function: "handler",
		Line:     42,
	}
}

func TestFormat_BaseShape(t *testing.T) {
	f := NewFormatter(nil)

	line, err := f.Format(fixedRecord())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := `{"level":"INFO","timestamp":"2026-01-02 03:04:05,006","location":"app.handler:42","message":"hello"}` + "\n"
	if string(line) != want {
		t.Errorf("got  %s\nwant %s", line, want)
	}
}

func TestFormat_MergeOrder(t *testing.T) {
	f := NewFormatter(map[string]any{"b": "static-b", "a": "static-a"})
	r := fixedRecord()
	r.Fields = []Field{{Key: "a", Value: "call-a"}, {Key: "c", Value: 1}}
	r.Exception = "boom"

	line, err := f.Format(r)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := `{"level":"INFO","timestamp":"2026-01-02 03:04:05,006","location":"app.handler:42","message":"hello","a":"call-a","b":"static-b","c":1,"exception":"boom"}` + "\n"
	if string(line) != want {
		t.Errorf("got  %s\nwant %s", line, want)
	}
}

func TestFormat_MessageResolution(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		args []any
		want string
	}{
		{"verbatim", "plain", nil, "plain"},
		{"percent without args", "100% done", nil, "100% done"},
		{"printf", "user %s has %d items", []any{"bob", 3}, "user bob has 3 items"},
		{"args without verbs", "no verbs", []any{1}, "no verbs"},
	}

	f := NewFormatter(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fixedRecord()
			r.Message, r.Args = tt.msg, tt.args
			line, err := f.Format(r)
			if err != nil {
				t.Fatalf("Format: %v", err)
			}
			var m map[string]any
			if err := json.Unmarshal(line, &m); err != nil {
				t.Fatal(err)
			}
			if m["message"] != tt.want {
				t.Errorf("message = %q, want %q", m["message"], tt.want)
			}
		})
	}
}

func TestFormat_ParsedMessages(t *testing.T) {
	r := fixedRecord()
	r.Message = `{"order":7,"items":["a"]}`

	line, err := NewFormatter(nil, WithParsedMessages()).Format(r)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(line, &m); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"order": float64(7), "items": []any{"a"}}
	if diff := cmp.Diff(want, m["message"]); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}

	// Without the option the message stays a string.
	line, _ = NewFormatter(nil).Format(r)
	_ = json.Unmarshal(line, &m)
	if m["message"] != r.Message {
		t.Errorf("message = %v", m["message"])
	}
}

func TestFormat_Unserialisable(t *testing.T) {
	r := fixedRecord()
	r.Fields = []Field{{Key: "ratio", Value: math.NaN()}}

	_, err := NewFormatter(nil).Format(r)
	if err == nil {
		t.Fatal("expected an error for NaN")
	}
	if !strings.Contains(err.Error(), `field "ratio"`) {
		t.Errorf("error does not name the field: %v", err)
	}

	var unsupported *json.UnsupportedValueError
	if !errors.As(err, &unsupported) {
		t.Errorf("expected json.UnsupportedValueError, got %T", err)
	}
}

func TestFormat_JSONDefault(t *testing.T) {
	r := fixedRecord()
	r.Fields = []Field{{Key: "ch", Value: make(chan int)}, {Key: "ok", Value: true}}

	line, err := NewFormatter(map[string]any{"c": complex(1, 2)}, WithJSONDefault(StringDefault)).Format(r)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(line, &m); err != nil {
		t.Fatal(err)
	}
	if m["c"] != "(1+2i)" {
		t.Errorf("c = %v", m["c"])
	}
	if s, ok := m["ch"].(string); !ok || !strings.HasPrefix(s, "0x") {
		t.Errorf("ch = %v", m["ch"])
	}
}

func TestFormat_NoHTMLEscaping(t *testing.T) {
	r := fixedRecord()
	r.Message = "a < b && c > d"
	line, err := NewFormatter(nil).Format(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(line), `"a < b && c > d"`) {
		t.Errorf("message was escaped: %s", line)
	}
}

func TestFormat_CustomTimeFormat(t *testing.T) {
	line, err := NewFormatter(nil, WithTimeFormat(time.RFC3339)).Format(fixedRecord())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(line), `"timestamp":"2026-01-02T03:04:05`) {
		t.Errorf("unexpected timestamp: %s", line)
	}
}

func TestRecordLocation(t *testing.T) {
	tests := []struct {
		rec  Record
		want string
	}{
		{Record{Logger: "app", Function: "run", Line: 3}, "app.run:3"},
		{Record{Function: "run", Line: 3}, "root.run:3"},
		{Record{Logger: "app"}, "app"},
		{Record{}, "root"},
	}
	for _, tt := range tests {
		if got := tt.rec.Location(); got != tt.want {
			t.Errorf("Location() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatter_WithFieldsDoesNotMutate(t *testing.T) {
	f := NewFormatter(map[string]any{"a": 1})
	f2 := f.withFields(map[string]any{"a": 2, "b": 3})

	if diff := cmp.Diff(map[string]any{"a": 1}, f.Static()); diff != "" {
		t.Errorf("original changed (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"a": 2, "b": 3}, f2.Static()); diff != "" {
		t.Errorf("copy mismatch (-want +got):\n%s", diff)
	}
}
