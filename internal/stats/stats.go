// Package stats summarises a stream of structured log records.
package stats

import (
	"encoding/json"
	"io"
	"sort"
	"strings"
)

// Record is anything exposing record fields by name.
type Record interface {
	Lookup(path string) (string, bool)
}

// Summary contains the counters reported by lambdalog-query -stats.
type Summary struct {
	TotalLogs   int64            `json:"total_logs"`
	Skipped     int64            `json:"skipped_lines"`
	LevelDist   map[string]int64 `json:"level_dist"`  // e.g. "INFO": 100
	TopSources  map[string]int64 `json:"top_sources"` // location without line
	Requests    int              `json:"requests"`    // distinct aws_request_id
	Exceptions  int64            `json:"exceptions"`
	FirstRecord string           `json:"first_timestamp,omitempty"`
	LastRecord  string           `json:"last_timestamp,omitempty"`

	requests map[string]struct{}
}

// New returns an empty summary.
func New() *Summary {
	return &Summary{
		LevelDist:  make(map[string]int64),
		TopSources: make(map[string]int64),
		requests:   make(map[string]struct{}),
	}
}

// Add counts one record.
func (s *Summary) Add(r Record) {
	s.TotalLogs++

	level, _ := r.Lookup("level")
	if level == "" {
		level = "UNKNOWN"
	}
	s.LevelDist[level]++

	if loc, ok := r.Lookup("location"); ok && loc != "" {
		if i := strings.LastIndex(loc, ":"); i > 0 {
			loc = loc[:i]
		}
		s.TopSources[loc]++
	}
	if id, ok := r.Lookup("aws_request_id"); ok && id != "" {
		s.requests[id] = struct{}{}
		s.Requests = len(s.requests)
	}
	if exc, ok := r.Lookup("exception"); ok && exc != "" {
		s.Exceptions++
	}

	// The record timestamp layout sorts lexically.
	if ts, ok := r.Lookup("timestamp"); ok && ts != "" {
		if s.FirstRecord == "" || ts < s.FirstRecord {
			s.FirstRecord = ts
		}
		if ts > s.LastRecord {
			s.LastRecord = ts
		}
	}
}

// AddSkipped counts lines that were not records.
func (s *Summary) AddSkipped(n int) {
	s.Skipped += int64(n)
}

// Top returns the n sources with the most records, busiest first.
func (s *Summary) Top(n int) []string {
	names := make([]string, 0, len(s.TopSources))
	for name := range s.TopSources {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := s.TopSources[names[i]], s.TopSources[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	if n > 0 && len(names) > n {
		names = names[:n]
	}
	return names
}

// WriteJSON writes the summary as indented JSON, keeping only the n
// busiest sources.
func (s *Summary) WriteJSON(w io.Writer, n int) error {
	out := *s
	out.TopSources = make(map[string]int64)
	for _, name := range s.Top(n) {
		out.TopSources[name] = s.TopSources[name]
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
