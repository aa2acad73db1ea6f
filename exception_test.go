package lambdalog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestException_InsideErrorHandler(t *testing.T) {
	buf := setupTest(t, "DEBUG", nil)

	if err := failingOperation(); err != nil {
		Exception(err, "boom")
	}

	rec := decodeLines(t, buf)[0]
	if rec["level"] != "ERROR" || rec["message"] != "boom" {
		t.Errorf("unexpected record: %v", rec)
	}
	exc, _ := rec["exception"].(string)
	if !strings.HasPrefix(exc, "*errors.errorString: disk full") {
		t.Errorf("exception header = %q", exc)
	}
	if !strings.Contains(exc, "TestException_InsideErrorHandler") {
		t.Errorf("exception stack does not show the caller:\n%s", exc)
	}
	if strings.Contains(exc, "newExcInfo") {
		t.Errorf("exception stack includes internal frames:\n%s", exc)
	}
	if _, ok := rec[ExcInfoKey]; ok {
		t.Errorf("exc_info leaked as a field: %v", rec)
	}
}

func failingOperation() error {
	return errors.New("disk full")
}

func TestException_PkgErrorsStack(t *testing.T) {
	buf := setupTest(t, "DEBUG", nil)

	err := fmt.Errorf("saving order: %w", pkgerrors.WithStack(deepFailure()))
	Named("orders").Exception(err, "save failed", "order_id", 7)

	rec := decodeLines(t, buf)[0]
	exc, _ := rec["exception"].(string)
	if !strings.Contains(exc, "saving order: deep failure") {
		t.Errorf("exception message = %q", exc)
	}
	if !strings.Contains(exc, "deepFailure") {
		t.Errorf("expected the stack recorded by pkg/errors:\n%s", exc)
	}
	if rec["order_id"] != float64(7) {
		t.Errorf("order_id = %v", rec["order_id"])
	}
}

func deepFailure() error {
	return pkgerrors.New("deep failure")
}

func TestExcInfoAttr(t *testing.T) {
	buf := setupTest(t, "DEBUG", nil)

	slog.Error("via slog", ExcInfo(errors.New("timeout")))
	slog.Error("plain error under exc_info", ExcInfoKey, errors.New("refused"))

	recs := decodeLines(t, buf)
	if exc, _ := recs[0]["exception"].(string); !strings.Contains(exc, "timeout") || !strings.Contains(exc, "TestExcInfoAttr") {
		t.Errorf("exception = %q", exc)
	}
	if exc := recs[1]["exception"]; exc != "*errors.errorString: refused" {
		t.Errorf("exception = %q", exc)
	}
}

func TestFormatException_Nil(t *testing.T) {
	if got := formatException(nil, nil); got != "" {
		t.Errorf("formatException(nil) = %q", got)
	}
}

func TestPanicError(t *testing.T) {
	if err := panicError("bad"); err.Error() != "panic: bad" {
		t.Errorf("panicError(string) = %v", err)
	}
	sentinel := errors.New("sentinel")
	if err := panicError(sentinel); err != sentinel {
		t.Errorf("panicError(error) = %v", err)
	}
}
