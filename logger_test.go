package lambdalog

import (
	"strings"
	"testing"
)

func TestLogger_PrintfForms(t *testing.T) {
	buf := setupTest(t, "DEBUG", nil)

	Infof("user %s has %d items", "bob", 3)
	Warningf("100%")
	Named("billing").Criticalf("charge %s failed", "ch_1")

	recs := decodeLines(t, buf)
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[0]["message"] != "user bob has 3 items" {
		t.Errorf("message = %v", recs[0]["message"])
	}
	if recs[1]["message"] != "100%" {
		t.Errorf("message = %v", recs[1]["message"])
	}
	if recs[2]["level"] != "CRITICAL" || recs[2]["message"] != "charge ch_1 failed" {
		t.Errorf("unexpected record: %v", recs[2])
	}
}

func TestLogger_NamedLocation(t *testing.T) {
	buf := setupTest(t, "DEBUG", nil)

	Named("app").Named("db").Info("query")

	loc, _ := decodeLines(t, buf)[0]["location"].(string)
	if !strings.HasPrefix(loc, "app.db.TestLogger_NamedLocation:") {
		t.Errorf("location = %q", loc)
	}
}

func TestLogger_With(t *testing.T) {
	buf := setupTest(t, "DEBUG", map[string]any{"tenant": "static"})

	l := Default().With("tenant", "acme", "region", "eu-west-1")
	l.Info("scoped")
	l.Slog().Info("scoped via slog")

	for _, rec := range decodeLines(t, buf) {
		if rec["tenant"] != "acme" || rec["region"] != "eu-west-1" {
			t.Errorf("unexpected record: %v", rec)
		}
	}
}

func TestLogger_NamedOnForeignHandler(t *testing.T) {
	h, out, _ := newTestHandler(t, "DEBUG", nil)
	// Hide the concrete type so Named falls back to an attribute.
	l := NewLogger(struct{ *Handler }{h}).Named("worker")

	l.Info("tagged")

	if rec := decodeLines(t, out)[0]; rec["logger"] != "worker" {
		t.Errorf("logger = %v", rec["logger"])
	}
}
