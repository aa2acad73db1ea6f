package lambdalog

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-stack/stack"
	pkgerrors "github.com/pkg/errors"
)

// ExcInfoKey is the attribute key that marks exception information on a
// record. The handler moves it into the exception field.
const ExcInfoKey = "exc_info"

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// excInfo is an error together with the stack of the call that reported
// it.
type excInfo struct {
	err   error
	trace stack.CallStack
}

// newExcInfo records the current stack, dropping newExcInfo itself and skip
// further callers.
func newExcInfo(err error, skip int) *excInfo {
	cs := stack.Trace()
	if len(cs) > skip+1 {
		cs = cs[skip+1:]
	}
	return &excInfo{err: err, trace: cs}
}

// ExcInfo attaches err as exception information. The resulting record has
// an exception field holding the error type, message and stack trace.
func ExcInfo(err error) slog.Attr {
	return slog.Any(ExcInfoKey, newExcInfo(err, 1))
}

func (e *excInfo) String() string {
	return formatException(e.err, e.trace)
}

// formatException renders "<type>: <message>" followed by a stack trace.
// A stack recorded by github.com/pkg/errors wins over the stack of the
// logging call.
func formatException(err error, trace stack.CallStack) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%T: %s", pkgerrors.Cause(err), err.Error())

	if st := innermostStack(err); st != nil {
		fmt.Fprintf(&b, "%+v", st)
		return b.String()
	}
	for _, c := range trace {
		if fmt.Sprintf("%+k", c) == "runtime" {
			continue
		}
		fmt.Fprintf(&b, "\n%+n\n\t%#v", c, c)
	}
	return b.String()
}

// innermostStack returns the stack of the deepest error in the chain that
// carries one.
func innermostStack(err error) pkgerrors.StackTrace {
	var st pkgerrors.StackTrace
	for e := err; e != nil; e = errors.Unwrap(e) {
		if t, ok := e.(stackTracer); ok {
			st = t.StackTrace()
		}
	}
	return st
}

// panicError converts a recovered value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
