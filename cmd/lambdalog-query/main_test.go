package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const input = `START RequestId: r1
{"level":"INFO","timestamp":"2026-10-19 12:00:00,001","location":"main.handler:10","message":"accepted","aws_request_id":"r1"}
{"level":"ERROR","timestamp":"2026-10-19 12:00:00,002","location":"main.handler:14","message":"charge failed","aws_request_id":"r1","exception":"*errors.errorString: declined"}
{"level":"DEBUG","timestamp":"2026-10-19 12:00:00,003","location":"aws-sdk.Logf:3","message":"retry","aws_request_id":"r2"}
`

func TestRun_Filter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-q", "level>=WARNING"}, strings.NewReader(input), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "charge failed") {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "skipped 1 non-JSON lines") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRun_YAML(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-o", "yaml", "-q", `req:r2`}, strings.NewReader(input), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "message: retry") {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
}

func TestRun_Stats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.jsonl")
	if err := os.WriteFile(path, []byte(input), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-stats", path}, nil, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	for _, want := range []string{`"total_logs": 3`, `"skipped_lines": 1`, `"requests": 2`, `"exceptions": 1`} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("stats missing %s:\n%s", want, stdout.String())
		}
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"bad query", []string{"-q", "(level:ERROR"}, exitUsage},
		{"bad format", []string{"-o", "xml"}, exitUsage},
		{"bad flag", []string{"-nope"}, exitUsage},
		{"missing file", []string{filepath.Join(t.TempDir(), "missing.jsonl")}, exitIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if code := run(tt.args, strings.NewReader(""), &stdout, &stderr); code != tt.want {
				t.Errorf("exit %d, want %d (stderr: %s)", code, tt.want, stderr.String())
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRun_WriteError(t *testing.T) {
	line := `{"level":"INFO","message":"` + strings.Repeat("x", 100) + `"}` + "\n"
	var stderr bytes.Buffer
	code := run(nil, strings.NewReader(strings.Repeat(line, 200)), failingWriter{}, &stderr)
	if code != exitIO {
		t.Errorf("exit %d, want %d", code, exitIO)
	}
	if !strings.Contains(stderr.String(), "disk full") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRun_LocationQuery(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-q", "location:main.handler:14"}, strings.NewReader(input), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if got := strings.TrimSpace(stdout.String()); !strings.Contains(got, "charge failed") || strings.Count(got, "\n") != 0 {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
}
