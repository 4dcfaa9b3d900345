// SPDX-License-Identifier: BSD-2-Clause
// Package breakdown implements the parallel breakdown engine (§4.E): fan
// out detection across a worker pool fed by the walker, and reduce the
// results into a per-language breakdown.
//
// The shape is the teacher's: loccount.go's walk() goroutines do their
// per-file work (Generic) inline and push a SourceStat onto a single
// `pipeline` channel that one consumer drains into a map -- no mutex
// anywhere near the shared state, because only one goroutine ever
// touches it. This package keeps that shape and swaps SLOC counting for
// language detection: a fixed worker pool calls detect.Pipeline.Detect
// per path and sends a Result; one reducer goroutine owns the map.
package breakdown

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/hyply-dev/hyply/internal/catalog"
	"github.com/hyply-dev/hyply/internal/detect"
	"github.com/hyply-dev/hyply/internal/walk"
)

// Result pairs a detected file with its resolved language, or records
// that it was skipped (§7: unreadable files are logged and dropped, not
// fatal to the run).
type Result struct {
	Path      string
	Detection catalog.Detection
	Resolved  bool
}

// FileDetection pairs a resolved file with the Detection that resolved
// it: §3's BreakdownMap is a "mapping from language name -> ordered list
// of (Detection, path) pairs", and the Detection's Strategy is what lets
// a caller tell a classifier-tagged (lower-confidence) result apart from
// one pinned by filename or extension.
type FileDetection struct {
	Path      string
	Detection catalog.Detection
}

// Breakdown is the reduced output of a run: per-language FileDetection
// lists plus totals, in no particular order (§5: cross-file ordering is
// not guaranteed). Percentages gives each language's share; ranking
// is left to the caller (cmd/hyply uses internal/report.Rank).
type Breakdown struct {
	byLanguage map[string][]FileDetection
	skipped    []string
	totalFiles int
}

// Languages returns the distinct languages found, unordered.
func (b *Breakdown) Languages() []string {
	out := make([]string, 0, len(b.byLanguage))
	for lang := range b.byLanguage {
		out = append(out, lang)
	}
	return out
}

// Files returns the FileDetections attributed to lang, unordered.
func (b *Breakdown) Files(lang string) []FileDetection {
	return b.byLanguage[lang]
}

// Skipped returns paths that could not be read or resolved (§7).
func (b *Breakdown) Skipped() []string { return b.skipped }

// TotalFiles is the count of successfully resolved files across all
// languages (the denominator for percentages, §6).
func (b *Breakdown) TotalFiles() int { return b.totalFiles }

// Percentages returns the language -> share-of-total-files breakdown,
// summing to 100.0 modulo floating-point rounding (§6 scenario 6).
func (b *Breakdown) Percentages() map[string]float64 {
	out := make(map[string]float64, len(b.byLanguage))
	if b.totalFiles == 0 {
		return out
	}
	for lang, files := range b.byLanguage {
		out[lang] = float64(len(files)) * 100.0 / float64(b.totalFiles)
	}
	return out
}

// Engine runs the walker and detection pipeline together to build a
// Breakdown for a directory tree.
type Engine struct {
	pipeline *detect.Pipeline
	walker   *walk.Walker
	workers  int
	log      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers overrides the size of the detection worker pool. The
// default, set by New, is runtime.NumCPU(); passing n <= 0 is a
// no-op (§9: "reasonable default, overridable").
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger overrides the engine's logger. The default discards logs.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithExtraIgnoreGlobs appends globs to the walker's ignore list, on top
// of the catalog's built-in defaults (e.g. from a CLI --config file).
func WithExtraIgnoreGlobs(globs []string) Option {
	return func(e *Engine) {
		if len(globs) > 0 {
			e.walker = e.walker.WithExtraIgnoreGlobs(globs)
		}
	}
}

// New builds an Engine over cat, wiring a walker and detection pipeline
// from the same catalog.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		pipeline: detect.New(cat),
		walker:   walk.New(cat),
		workers:  runtime.NumCPU(),
		log:      slog.New(slog.NewTextHandler(discard{}, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Run walks root, detects every surviving file's language in parallel,
// and reduces the results into a Breakdown. Per-file read errors are
// logged and the file is dropped from the breakdown rather than failing
// the run (§7 "Recovery policy"); a walk-level error (root does not
// exist, root is unreadable) is returned.
func (e *Engine) Run(ctx context.Context, root string) (*Breakdown, error) {
	paths, walkErrc := e.walker.Walk(ctx, root)

	results := make(chan Result, 256)
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.work(ctx, paths, results)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	bd := &Breakdown{byLanguage: make(map[string][]FileDetection)}
	for res := range results {
		if !res.Resolved {
			bd.skipped = append(bd.skipped, res.Path)
			continue
		}
		lang := res.Detection.Language
		bd.byLanguage[lang] = append(bd.byLanguage[lang], FileDetection{Path: res.Path, Detection: res.Detection})
		bd.totalFiles++
	}

	if err := <-walkErrc; err != nil {
		return bd, err
	}
	return bd, nil
}

// work is one pool worker: it pulls paths until the channel closes or
// ctx is cancelled, running detection inline the way the teacher's
// walk-goroutines ran Generic inline (no extra hop through another
// queue).
func (e *Engine) work(ctx context.Context, paths <-chan string, results chan<- Result) {
	for {
		select {
		case path, ok := <-paths:
			if !ok {
				return
			}
			e.detectOne(path, results)
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) detectOne(path string, results chan<- Result) {
	d, ok, err := e.pipeline.Detect(path)
	if err != nil {
		e.log.Warn("skipping unreadable file", "path", path, "error", err)
		results <- Result{Path: path, Resolved: false}
		return
	}
	if !ok {
		results <- Result{Path: path, Resolved: false}
		return
	}
	results <- Result{Path: path, Detection: d, Resolved: true}
}
