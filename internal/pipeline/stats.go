package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// Stats aggregates the outcome of one pipeline run.
type Stats struct {
	mu sync.Mutex

	processed int
	skipped   int
	failed    int
	pages     int
	tutorials int
	warnings  int
	errors    []string
	duration  time.Duration
}

func (s *Stats) addProcessed(pages, tutorials, warnings int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	s.pages += pages
	s.tutorials += tutorials
	s.warnings += warnings
}

func (s *Stats) addSkipped(pages, tutorials int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped++
	s.pages += pages
	s.tutorials += tutorials
}

func (s *Stats) addFailed(file string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
	s.errors = append(s.errors, fmt.Sprintf("%s: %s", file, err))
}

func (s *Stats) addWarning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings++
}

func (s *Stats) setDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = d
}

// Snapshot is a read-only, JSON-safe copy of run statistics.
type Snapshot struct {
	Processed  int            `json:"processed"`
	Skipped    int            `json:"skipped"`
	Failed     int            `json:"failed"`
	Pages      int            `json:"pages"`
	Tutorials  int            `json:"tutorials"`
	Warnings   int            `json:"warnings"`
	Errors     []string       `json:"errors"`
	DurationMs int64          `json:"duration_ms"`
	Timing     TimingSnapshot `json:"timing"`
}

// Snapshot returns a JSON-safe copy of the run statistics.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := s.errors
	if errs == nil {
		errs = []string{}
	}
	return Snapshot{
		Processed:  s.processed,
		Skipped:    s.skipped,
		Failed:     s.failed,
		Pages:      s.pages,
		Tutorials:  s.tutorials,
		Warnings:   s.warnings,
		Errors:     errs,
		DurationMs: s.duration.Milliseconds(),
	}
}
