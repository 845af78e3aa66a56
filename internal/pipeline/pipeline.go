// Package pipeline drives a single build pass: change detection against
// the hash ledger, parallel transformation of changed source files, reuse
// of cached artifacts for unchanged ones, and manifest assembly at the
// very end.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/learnstack/pagegen/internal/config"
	"github.com/learnstack/pagegen/internal/content"
	"github.com/learnstack/pagegen/internal/ledger"
	"github.com/learnstack/pagegen/internal/manifest"
	"github.com/learnstack/pagegen/internal/sheet"
	"github.com/learnstack/pagegen/internal/store"
	"github.com/learnstack/pagegen/internal/transform"
)

// Runner executes pipeline runs over one source directory and cache
// store. All run state lives inside Run, so watch mode reruns the same
// Runner on every change.
type Runner struct {
	cfg config.Config
	st  *store.Store
	log *slog.Logger
}

func New(cfg config.Config, st *store.Store, log *slog.Logger) *Runner {
	return &Runner{cfg: cfg, st: st, log: log}
}

// fileResult is the outcome of processing one changed file.
type fileResult struct {
	state     ledger.FileState
	pages     int
	tutorials int
	warnings  []string
	duration  time.Duration
	err       error
}

// Run executes one full pipeline pass. Per-file failures are logged and
// counted without stopping the run; an error is returned only for fatal
// conditions (unreadable source directory, cache write failures) or when
// every single file failed.
func (r *Runner) Run(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	stats := &Stats{}
	timings := &fileTimings{}

	names, err := r.listSources()
	if err != nil {
		return Snapshot{}, err
	}
	if len(names) == 0 {
		r.log.Warn("no source files found", "dir", r.cfg.SourceDir)
	}

	led, err := ledger.Load(r.st)
	if err != nil {
		r.log.Warn("hash ledger unreadable, rebuilding everything", "error", err)
		stats.addWarning()
	}

	states := ledger.Detect(led, r.cfg.SourceDir, names)
	var changed, unchanged, unreadable []ledger.FileState
	for _, fs := range states {
		switch fs.Status {
		case ledger.Changed:
			changed = append(changed, fs)
		case ledger.Unchanged:
			unchanged = append(unchanged, fs)
		default:
			unreadable = append(unreadable, fs)
		}
	}
	r.log.Info("change detection complete",
		"total", len(states),
		"changed", len(changed),
		"unchanged", len(unchanged),
		"unreadable", len(unreadable))

	for _, fs := range unreadable {
		r.log.Error("source file unreadable", "file", fs.Name, "error", fs.Err)
		stats.addFailed(fs.Name, fs.Err)
		fs.RevertEntry(led)
	}
	for _, fs := range unchanged {
		r.reuseArtifact(fs, stats)
	}

	// Fan changed files out to a bounded pool and merge results as they
	// land.
	workers := r.cfg.EffectiveWorkers()
	results := make(chan fileResult, len(changed))
	sem := make(chan struct{}, workers)
	for _, fs := range changed {
		sem <- struct{}{}
		go func(fs ledger.FileState) {
			defer func() { <-sem }()
			results <- r.processFile(ctx, fs)
		}(fs)
	}
	for range changed {
		res := <-results
		timings.record(res.duration)
		flog := r.log.With("file", res.state.Name)
		if res.err != nil {
			flog.Error("file processing failed", "error", res.err)
			stats.addFailed(res.state.Name, res.err)
			// Leave the old hash in place so the next run retries.
			res.state.RevertEntry(led)
			continue
		}
		for _, w := range res.warnings {
			flog.Warn("content warning", "detail", w)
		}
		stats.addProcessed(res.pages, res.tutorials, len(res.warnings))
		flog.Info("file processed",
			"pages", res.pages,
			"tutorials", res.tutorials,
			"duration_ms", res.duration.Milliseconds())
	}

	if err := led.Save(r.st); err != nil {
		return Snapshot{}, err
	}

	// Manifest strictly last: every artifact write above has completed.
	m, err := manifest.Build(r.st, r.log)
	if err != nil {
		return Snapshot{}, err
	}
	if err := manifest.Write(r.st, m); err != nil {
		return Snapshot{}, err
	}

	stats.setDuration(time.Since(start))
	snap := stats.Snapshot()
	snap.Timing = timings.snapshot()
	r.log.Info("pipeline run complete",
		"processed", snap.Processed,
		"skipped", snap.Skipped,
		"failed", snap.Failed,
		"pages", snap.Pages,
		"subjects", m.TotalSubjects,
		"homepages", m.TotalHomepages,
		"duration_ms", snap.DurationMs)

	if snap.Failed > 0 && snap.Processed == 0 && snap.Skipped == 0 {
		return snap, fmt.Errorf("all %d source files failed", snap.Failed)
	}
	return snap, nil
}

// listSources returns the sorted spreadsheet filenames in the source
// directory. Hidden files and Office lock files ("~$...") are ignored.
func (r *Runner) listSources() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !sheet.IsSupportedExtension(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// processFile parses, transforms and writes one changed source file.
func (r *Runner) processFile(ctx context.Context, fs ledger.FileState) (res fileResult) {
	start := time.Now()
	res.state = fs
	defer func() { res.duration = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	p, err := sheet.ForFile(fs.Name)
	if err != nil {
		res.err = err
		return res
	}
	rows, err := p.Parse(bytes.NewReader(fs.Data), fs.Name)
	if err != nil {
		res.err = fmt.Errorf("parse: %w", err)
		return res
	}
	if len(rows) == 0 {
		res.err = fmt.Errorf("no content rows")
		return res
	}

	name := content.ParseSourceName(fs.Name)
	if name.Homepage {
		doc, warns := transform.BuildHomepage(name, rows)
		if err := r.st.WriteJSON(doc.ArtifactName(), doc); err != nil {
			res.err = fmt.Errorf("write artifact: %w", err)
			return res
		}
		res.tutorials = doc.TutorialCount()
		res.warnings = warns
		return res
	}

	sub, warns := transform.BuildSubject(name, rows, fs.ModTime)
	if err := r.st.WriteJSON(sub.ArtifactName(), sub); err != nil {
		res.err = fmt.Errorf("write artifact: %w", err)
		return res
	}
	res.pages = sub.TotalPages
	res.warnings = warns
	return res
}

// reuseArtifact folds an unchanged file's cached artifact into the run
// totals without re-transforming it.
func (r *Runner) reuseArtifact(fs ledger.FileState, stats *Stats) {
	artifact := content.ParseSourceName(fs.Name).ArtifactName()
	data, err := r.st.ReadRaw(artifact)
	if err != nil {
		r.log.Warn("cached artifact missing for unchanged file, totals omit it",
			"file", fs.Name, "artifact", artifact)
		stats.addWarning()
		stats.addSkipped(0, 0)
		return
	}
	kind, err := content.Classify(data)
	if err != nil {
		r.log.Warn("cached artifact malformed for unchanged file, totals omit it",
			"file", fs.Name, "artifact", artifact, "error", err)
		stats.addWarning()
		stats.addSkipped(0, 0)
		return
	}
	switch kind {
	case content.TypeHomepage:
		var h content.Homepage
		if err := r.st.ReadJSON(artifact, &h); err != nil {
			stats.addWarning()
			stats.addSkipped(0, 0)
			return
		}
		stats.addSkipped(0, h.TutorialCount())
	default:
		var sub content.Subject
		if err := r.st.ReadJSON(artifact, &sub); err != nil {
			stats.addWarning()
			stats.addSkipped(0, 0)
			return
		}
		stats.addSkipped(len(sub.Content), 0)
	}
	r.log.Debug("unchanged file reused", "file", fs.Name, "artifact", artifact)
}
