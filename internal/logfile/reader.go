// Package logfile iterates over JSON-lines log streams, including
// gzip and zstd compressed exports.
package logfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fastjson"
)

// MaxLineSize bounds a single log line. Lambda truncates records well
// below this.
const MaxLineSize = 1 << 20

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Iterator provides an entry-by-entry view of a log stream.
type Iterator interface {
	Next() bool
	Entry() *Entry
	Skipped() int
	Err() error
	Close() error
}

// FileIterator reads one stream. Lines that hold no JSON object are
// skipped and counted.
type FileIterator struct {
	name    string
	closers []io.Closer
	scanner *bufio.Scanner
	parser  fastjson.Parser
	entry   *Entry
	skipped int
	line    int
	err     error
}

// Open opens a file for iteration; "-" reads stdin.
func Open(name string) (*FileIterator, error) {
	if name == "-" {
		return NewIterator(os.Stdin, "stdin")
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	it, err := NewIterator(f, name)
	if err != nil {
		f.Close()
		return nil, err
	}
	it.closers = append(it.closers, f)
	return it, nil
}

// NewIterator wraps r, detecting gzip or zstd compression from its first
// bytes.
func NewIterator(r io.Reader, name string) (*FileIterator, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	it := &FileIterator{name: name}
	var src io.Reader = br
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%s: gzip: %w", name, err)
		}
		it.closers = append(it.closers, gz)
		src = gz
	case bytes.HasPrefix(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%s: zstd: %w", name, err)
		}
		it.closers = append(it.closers, dec.IOReadCloser())
		src = dec
	}

	it.scanner = bufio.NewScanner(src)
	it.scanner.Buffer(make([]byte, 64*1024), MaxLineSize)
	return it, nil
}

// Next advances to the next JSON entry. The previous entry becomes invalid.
func (it *FileIterator) Next() bool {
	if it.err != nil {
		return false
	}
	for it.scanner.Scan() {
		it.line++
		obj := jsonPart(it.scanner.Bytes())
		if obj == nil {
			it.skipped++
			continue
		}
		v, err := it.parser.ParseBytes(obj)
		if err != nil || v.Type() != fastjson.TypeObject {
			it.skipped++
			continue
		}
		it.entry = &Entry{Raw: obj, value: v, Line: it.line, Source: it.name}
		return true
	}
	if err := it.scanner.Err(); err != nil {
		it.err = fmt.Errorf("%s:%d: %w", it.name, it.line+1, err)
	}
	return false
}

// jsonPart returns the object in line. CloudWatch exports prefix each
// record with a timestamp, so anything before the first brace is ignored.
func jsonPart(line []byte) []byte {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}
	i := bytes.IndexByte(line, '{')
	if i < 0 || line[len(line)-1] != '}' {
		return nil
	}
	return line[i:]
}

func (it *FileIterator) Entry() *Entry {
	return it.entry
}

// Skipped counts lines that were not JSON objects.
func (it *FileIterator) Skipped() int {
	return it.skipped
}

func (it *FileIterator) Err() error {
	return it.err
}

// Close releases the decompressor, then the underlying file.
func (it *FileIterator) Close() error {
	var errs []error
	for _, c := range it.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	it.closers = nil
	return errors.Join(errs...)
}
