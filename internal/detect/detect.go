// SPDX-License-Identifier: BSD-2-Clause
// Package detect implements the staged detection pipeline (§4.C): resolve
// a single (path, content) pair to a language label with provenance,
// narrowing a candidate set through filename, extension, interpreter,
// heuristics, and classifier stages.
//
// The pipeline is modeled the way §9's design notes recommend: a pure
// function over a shrinking candidate set, not a chain of short-circuiting
// calls with hidden state -- each stage takes the current set and either
// resolves, narrows, or passes it through unchanged. That makes the
// provenance guarantee (I3: the tag is always the stage that produced the
// singleton) structurally obvious rather than something to audit for.
package detect

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/hyply-dev/hyply/internal/catalog"
	"github.com/hyply-dev/hyply/internal/token"
)

// Pipeline resolves (path, content) pairs against a shared, immutable
// Catalog. A Pipeline has no mutable state of its own and is safe for
// concurrent use by many goroutines (§5 "Shared resources").
type Pipeline struct {
	cat *catalog.Catalog
}

// New builds a Pipeline over cat.
func New(cat *catalog.Catalog) *Pipeline { return &Pipeline{cat: cat} }

// candidateSet is the pipeline's shrinking working set. nil means
// "unconstrained" (no stage has narrowed anything yet), which is distinct
// from an empty, non-nil set (every candidate eliminated).
type candidateSet map[string]bool

func setOf(langs []catalog.Language) candidateSet {
	if len(langs) == 0 {
		return nil
	}
	s := make(candidateSet, len(langs))
	for _, l := range langs {
		s[l.Name] = true
	}
	return s
}

// narrow intersects cur with found. A nil cur is treated as "everything",
// so narrow(nil, found) == found. If the intersection would eliminate
// every candidate, narrow is a no-op (returns cur unchanged) -- the spec
// requires the set be non-increasing (P3), not that it can be driven to
// empty by a stage that merely disagrees with an established set.
func narrow(cur candidateSet, found []catalog.Language) candidateSet {
	add := setOf(found)
	if add == nil {
		return cur
	}
	if cur == nil {
		return add
	}
	next := make(candidateSet)
	for name := range cur {
		if add[name] {
			next[name] = true
		}
	}
	if len(next) == 0 {
		return cur
	}
	return next
}

func singleton(s candidateSet) (string, bool) {
	if len(s) != 1 {
		return "", false
	}
	for name := range s {
		return name, true
	}
	return "", false
}

// Detect performs staged detection for path, reading its content from disk
// only if the filename and extension stages do not already resolve it
// (§4.C: "the pipeline may short-circuit without reading the file").
func (p *Pipeline) Detect(filePath string) (catalog.Detection, bool, error) {
	d, ok, candidates := p.resolvePathOnly(filePath)
	if ok {
		return d, true, nil
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return catalog.Detection{}, false, &ReadError{Path: filePath, Err: err}
	}

	d, ok = p.resolveWithContent(filePath, content, candidates)
	return d, ok, nil
}

// DetectWithContent is the pure variant: given a path and its bytes, it
// never performs I/O and always returns the same answer for the same
// input (P4 determinism), including classifier tie-breaks.
func (p *Pipeline) DetectWithContent(filePath string, content []byte) (catalog.Detection, bool) {
	if d, ok, candidates := p.resolvePathOnly(filePath); ok {
		return d, true
	} else {
		return p.resolveWithContent(filePath, content, candidates)
	}
}

// resolvePathOnly runs the filename and extension stages (§4.C stages 1-2),
// neither of which requires file content.
func (p *Pipeline) resolvePathOnly(filePath string) (catalog.Detection, bool, candidateSet) {
	base := filepath.Base(filePath)
	var candidates candidateSet

	if found := p.cat.ByFilename(base); len(found) > 0 {
		next := narrow(candidates, found)
		if name, ok := singleton(next); ok {
			return catalog.Detection{Language: name, Strategy: catalog.StrategyFilename}, true, nil
		}
		candidates = next
	}

	for _, ext := range catalog.ExtensionCandidates(base) {
		found := p.cat.ByExtension(ext)
		if len(found) == 0 {
			continue
		}
		next := narrow(candidates, found)
		if name, ok := singleton(next); ok {
			return catalog.Detection{Language: name, Strategy: catalog.StrategyExtension}, true, nil
		}
		candidates = next
		break // longest matching compound extension wins; don't also try shorter suffixes
	}

	return catalog.Detection{}, false, candidates
}

// resolveWithContent runs the remaining stages (§4.C stages 3-5), given
// whatever candidate set the path-only stages produced.
func (p *Pipeline) resolveWithContent(filePath string, content []byte, candidates candidateSet) (catalog.Detection, bool) {
	if len(content) == 0 {
		// DetectionOutcome: None means unknowable, e.g. empty content
		// (§3). A path-only resolution already returned before we got
		// here, so an empty file can still only be resolved by
		// content-dependent stages -- which have nothing to work with.
		return catalog.Detection{}, false
	}

	if interp, ok := parseShebang(content); ok {
		if found := p.cat.ByInterpreter(interp); len(found) > 0 {
			next := narrow(candidates, found)
			if name, ok := singleton(next); ok {
				return catalog.Detection{Language: name, Strategy: catalog.StrategyInterpreter}, true
			}
			candidates = next
		}
	}

	if len(candidates) >= 2 {
		ext := filepath.Ext(filePath)
		if rules := p.cat.Heuristics(ext); len(rules) > 0 {
			for _, rule := range rules {
				if !rule.Match(content) {
					continue
				}
				bound := make([]catalog.Language, 0, len(rule.Languages))
				for _, name := range rule.Languages {
					bound = append(bound, catalog.Language{Name: name})
				}
				next := narrow(candidates, bound)
				if name, ok := singleton(next); ok {
					return catalog.Detection{Language: name, Strategy: catalog.StrategyHeuristics}, true
				}
				if len(next) < len(candidates) {
					candidates = next
				}
				break // first matching rule within the extension wins
			}
		}
	}

	if len(candidates) >= 2 {
		return p.classify(candidates, content)
	}

	return catalog.Detection{}, false
}

// classify runs the tokenizer over content and scores the remaining
// candidates (§4.C stage 5). Ties are broken lexicographically by
// language name for determinism (P4).
func (p *Pipeline) classify(candidates candidateSet, content []byte) (catalog.Detection, bool) {
	model := p.cat.Classifier()
	scores := make(map[string]float64, len(candidates))
	for name := range candidates {
		scores[name] = 0
	}

	stream := token.Tokenize(content)
	for {
		tok, ok := stream.Next()
		if !ok {
			break
		}
		model.Score(string(tok.Text(content)), candidates, scores)
	}

	names := make([]string, 0, len(candidates))
	for name := range candidates {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	for _, name := range names[1:] {
		if scores[name] > scores[best] {
			best = name
		}
	}
	return catalog.Detection{Language: best, Strategy: catalog.StrategyClassifier}, true
}

// parseShebang extracts the interpreter basename from a "#!" line,
// handling the "env <name>" indirection form (§4.C stage 3).
func parseShebang(content []byte) (string, bool) {
	if !bytes.HasPrefix(content, []byte("#!")) {
		return "", false
	}
	line := content[2:]
	if idx := bytes.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	fields := bytes.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	base := path.Base(string(fields[0]))
	if base == "env" {
		if len(fields) < 2 {
			return "", false
		}
		return string(fields[1]), true
	}
	return base, true
}
