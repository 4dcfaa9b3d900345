// SPDX-License-Identifier: BSD-2-Clause
// Package hyply identifies the programming language of source files and
// breaks down a directory tree by language, the way GitHub's Linguist
// does for repository language bars: a staged detection pipeline
// (filename, extension, interpreter, heuristics, token classifier) feeds
// a parallel directory walker and breakdown engine.
//
// The root package is the public surface; internal/token,
// internal/catalog, internal/detect, internal/walk, and
// internal/breakdown hold the implementation (mirroring the split
// between a module's public API and its implementation packages that
// wazero uses).
package hyply

import (
	"context"
	"log/slog"

	"github.com/hyply-dev/hyply/internal/breakdown"
	"github.com/hyply-dev/hyply/internal/catalog"
	"github.com/hyply-dev/hyply/internal/detect"
	"github.com/hyply-dev/hyply/internal/token"
)

// Detection is a resolved language result with the strategy that found it.
type Detection = catalog.Detection

// Strategy identifies which detection stage produced a Detection.
type Strategy = catalog.Strategy

const (
	StrategyFilename    = catalog.StrategyFilename
	StrategyExtension   = catalog.StrategyExtension
	StrategyInterpreter = catalog.StrategyInterpreter
	StrategyHeuristics  = catalog.StrategyHeuristics
	StrategyClassifier  = catalog.StrategyClassifier
)

// Language describes one entry of the language catalog.
type Language = catalog.Language

// Breakdown is the reduced per-language result of a directory walk.
type Breakdown = breakdown.Breakdown

// FileDetection pairs a file with the Detection that resolved it, the
// element type of Breakdown.Files.
type FileDetection = breakdown.FileDetection

// TokenStream is a restartable stream of lexical tokens over a byte slice.
type TokenStream = token.Stream

// TokenKind classifies a Token.
type TokenKind = token.Kind

const (
	TokenIdent       = token.Ident
	TokenSymbol      = token.Symbol
	TokenString      = token.String
	TokenNumber      = token.Number
	TokenLineComment = token.LineComment
	TokenBlockComment = token.BlockComment
	TokenError       = token.Error
)

// Identifier is the long-lived, reusable handle to the loaded catalog and
// wired-up pipelines. Build one with Open and reuse it across calls:
// loading the catalog is the one-time setup step, and doing it once
// amortizes it across many Detect/GetLanguageBreakdown calls.
type Identifier struct {
	cat *catalog.Catalog
	pl  *detect.Pipeline
}

// Open loads the built-in language catalog and returns an Identifier
// ready for use. The catalog is embedded in the binary (go:embed), so
// Open does no filesystem or network I/O and only fails if the embedded
// data itself is malformed -- which would indicate a build-time defect,
// not a runtime one.
func Open() (*Identifier, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, err
	}
	return &Identifier{cat: cat, pl: detect.New(cat)}, nil
}

// Detect resolves the language of the file at path, reading its content
// only if filename/extension detection does not already resolve it.
func (id *Identifier) Detect(path string) (Detection, bool, error) {
	return id.pl.Detect(path)
}

// DetectWithContent resolves the language of path given its content
// in-memory, performing no I/O of its own. It is the pure, deterministic
// entry point: the same (path, content) pair always yields the same
// Detection.
func (id *Identifier) DetectWithContent(path string, content []byte) (Detection, bool) {
	return id.pl.DetectWithContent(path, content)
}

// Languages lists every language known to the catalog, sorted by name.
func (id *Identifier) Languages() []Language {
	return id.cat.Languages()
}

// BreakdownOption configures a call to GetLanguageBreakdown.
type BreakdownOption = breakdown.Option

// WithWorkers overrides the breakdown engine's worker pool size.
func WithWorkers(n int) BreakdownOption { return breakdown.WithWorkers(n) }

// WithLogger routes the breakdown engine's skip/error logging through log.
func WithLogger(log *slog.Logger) BreakdownOption { return breakdown.WithLogger(log) }

// WithExtraIgnoreGlobs adds ignore-glob patterns on top of the catalog's
// built-in defaults.
func WithExtraIgnoreGlobs(globs []string) BreakdownOption { return breakdown.WithExtraIgnoreGlobs(globs) }

// GetLanguageBreakdown walks root in parallel, detects every surviving
// file's language, and reduces the results into a Breakdown. Per-file
// read errors are logged and dropped rather than failing the call; an
// error is returned only if root itself cannot be walked.
func (id *Identifier) GetLanguageBreakdown(ctx context.Context, root string, opts ...BreakdownOption) (*Breakdown, error) {
	eng := breakdown.New(id.cat, opts...)
	return eng.Run(ctx, root)
}

// Tokenize lexes content into a restartable token stream, independent of
// any language detection -- useful for callers who want the polyglot
// tokenizer on its own (e.g. a syntax-unaware highlighter).
func Tokenize(content []byte) *TokenStream {
	return token.Tokenize(content)
}
