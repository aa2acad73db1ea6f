// Command lambdalog-query filters JSON-lines logs written by lambdalog.
//
//	lambdalog-query -q 'level>=WARNING AND aws_request_id:abc-123' logs.jsonl.gz
//	lambdalog-query -q 'location:orders.handler:42 OR "card declined"' logs.jsonl
//	aws logs tail /aws/lambda/orders | lambdalog-query -stats
package main

import (
	"bufio"
	"flag"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coffersTech/lambdalog/internal/logfile"
	"github.com/coffersTech/lambdalog/internal/query"
	"github.com/coffersTech/lambdalog/internal/stats"
)

const (
	exitOK    = 0
	exitIO    = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type emitter func(e *logfile.Entry) error

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "lambdalog-query: ", 0)

	// Command-line flags
	fs := flag.NewFlagSet("lambdalog-query", flag.ContinueOnError)
	fs.SetOutput(stderr)
	q := fs.String("q", "", "Filter query, e.g. level>=ERROR AND aws_request_id:abc")
	showStats := fs.Bool("stats", false, "Print a summary instead of the matching records")
	top := fs.Int("top", 10, "Number of sources listed by -stats")
	format := fs.String("o", "json", "Output format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	node, err := query.Parse(*q)
	if err != nil {
		logger.Printf("invalid query: %v", err)
		return exitUsage
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()

	var emit emitter
	switch *format {
	case "json":
		emit = func(e *logfile.Entry) error {
			if _, err := out.Write(e.Raw); err != nil {
				return err
			}
			return out.WriteByte('\n')
		}
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		emit = func(e *logfile.Entry) error {
			return enc.Encode(e.YAML())
		}
	default:
		logger.Printf("unknown output format %q", *format)
		return exitUsage
	}

	files := fs.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	summary := stats.New()
	status := exitOK
	for _, name := range files {
		var it *logfile.FileIterator
		if name == "-" {
			it, err = logfile.NewIterator(stdin, "stdin")
		} else {
			it, err = logfile.Open(name)
		}
		if err != nil {
			logger.Printf("%v", err)
			status = exitIO
			continue
		}

		err = scan(it, node, summary, *showStats, emit)
		it.Close()
		if err != nil {
			logger.Printf("%v", err)
			status = exitIO
		}
	}

	if *showStats {
		if err := summary.WriteJSON(out, *top); err != nil {
			logger.Printf("writing stats: %v", err)
			return exitIO
		}
	} else if summary.Skipped > 0 {
		logger.Printf("skipped %d non-JSON lines", summary.Skipped)
	}
	return status
}

func scan(it logfile.Iterator, node query.Node, summary *stats.Summary, statsOnly bool, emit emitter) error {
	for it.Next() {
		e := it.Entry()
		if !query.Match(node, e) {
			continue
		}
		summary.Add(e)
		if statsOnly {
			continue
		}
		if err := emit(e); err != nil {
			return err
		}
	}
	summary.AddSkipped(it.Skipped())
	if err := it.Err(); err != nil {
		return err
	}
	return nil
}
