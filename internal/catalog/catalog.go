// SPDX-License-Identifier: BSD-2-Clause
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/languages.yaml data/heuristics.yaml data/ignore.yaml data/classifier.json
var embedded embed.FS

// Catalog is the frozen, queryable form of the static knowledge tables
// (§4.B). All lookups are hashed (O(1) average) except heuristic rule
// application, which is O(rules-for-that-extension) by construction.
type Catalog struct {
	languages []Language
	byName    map[string]Language

	byFilename    map[string][]Language
	byExtension   map[string][]Language
	byInterpreter map[string][]Language

	heuristics map[string][]HeuristicRule

	classifier *ClassifierModel

	ignoreGlobs []string
}

type heuristicsFile struct {
	Extension string `yaml:"extension"`
	Rules     []struct {
		Pattern   string   `yaml:"pattern"`
		Languages []string `yaml:"languages"`
	} `yaml:"rules"`
}

type classifierFile struct {
	Tokens map[string]map[string]float64 `json:"tokens"`
	Totals map[string]float64            `json:"totals"`
}

// Load parses the embedded data blobs into a frozen Catalog. It is
// intended to be called once at process start (e.g. into a package-level
// variable via sync.Once, or directly in main); the result is immutable
// and safe to share across goroutines without synchronization (§5 "Shared
// resources").
func Load() (*Catalog, error) {
	langBytes, err := embedded.ReadFile("data/languages.yaml")
	if err != nil {
		return nil, fmt.Errorf("catalog: reading languages table: %w", err)
	}
	var languages []Language
	if err := yaml.Unmarshal(langBytes, &languages); err != nil {
		return nil, fmt.Errorf("catalog: parsing languages table: %w", err)
	}

	heurBytes, err := embedded.ReadFile("data/heuristics.yaml")
	if err != nil {
		return nil, fmt.Errorf("catalog: reading heuristics table: %w", err)
	}
	var heurFiles []heuristicsFile
	if err := yaml.Unmarshal(heurBytes, &heurFiles); err != nil {
		return nil, fmt.Errorf("catalog: parsing heuristics table: %w", err)
	}

	ignoreBytes, err := embedded.ReadFile("data/ignore.yaml")
	if err != nil {
		return nil, fmt.Errorf("catalog: reading ignore globs: %w", err)
	}
	var ignoreGlobs []string
	if err := yaml.Unmarshal(ignoreBytes, &ignoreGlobs); err != nil {
		return nil, fmt.Errorf("catalog: parsing ignore globs: %w", err)
	}

	classBytes, err := embedded.ReadFile("data/classifier.json")
	if err != nil {
		return nil, fmt.Errorf("catalog: reading classifier weights: %w", err)
	}
	var cf classifierFile
	if err := json.Unmarshal(classBytes, &cf); err != nil {
		return nil, fmt.Errorf("catalog: parsing classifier weights: %w", err)
	}

	c := &Catalog{
		languages:     languages,
		byName:        make(map[string]Language, len(languages)),
		byFilename:    make(map[string][]Language),
		byExtension:   make(map[string][]Language),
		byInterpreter: make(map[string][]Language),
		heuristics:    make(map[string][]HeuristicRule, len(heurFiles)),
		classifier:    newClassifierModel(cf.Tokens, cf.Totals),
		ignoreGlobs:   ignoreGlobs,
	}

	for _, lang := range languages {
		c.byName[lang.Name] = lang
		for _, name := range lang.Filenames {
			c.byFilename[name] = append(c.byFilename[name], lang)
		}
		for _, ext := range lang.Extensions {
			c.byExtension[ext] = append(c.byExtension[ext], lang)
		}
		for _, interp := range lang.Interpreters {
			c.byInterpreter[interp] = append(c.byInterpreter[interp], lang)
		}
	}

	for _, hf := range heurFiles {
		rules := make([]HeuristicRule, 0, len(hf.Rules))
		for _, r := range hf.Rules {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("catalog: compiling heuristic %q for %s: %w", r.Pattern, hf.Extension, err)
			}
			rules = append(rules, HeuristicRule{Pattern: r.Pattern, Languages: r.Languages, re: re})
		}
		c.heuristics[hf.Extension] = rules
	}

	return c, nil
}

// ByFilename returns the languages whose exact filename table holds name.
func (c *Catalog) ByFilename(name string) []Language { return c.byFilename[name] }

// ByExtension returns the languages registered for ext (which must
// include the leading dot).
func (c *Catalog) ByExtension(ext string) []Language { return c.byExtension[ext] }

// ByInterpreter returns the languages registered for an interpreter
// basename (e.g. "python3").
func (c *Catalog) ByInterpreter(basename string) []Language { return c.byInterpreter[basename] }

// Heuristics returns the ordered heuristic rules for ext, or nil if none
// are registered.
func (c *Catalog) Heuristics(ext string) []HeuristicRule { return c.heuristics[ext] }

// Classifier returns the shared, read-only classifier model.
func (c *Catalog) Classifier() *ClassifierModel { return c.classifier }

// IgnoreGlobs returns the configured ignore-glob patterns.
func (c *Catalog) IgnoreGlobs() []string { return c.ignoreGlobs }

// Languages returns every known language, sorted by name.
func (c *Catalog) Languages() []Language {
	out := make([]Language, len(c.languages))
	copy(out, c.languages)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Has reports whether name is a known language (I2: the pipeline may
// never return a language absent from this table).
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// ExtensionCandidates returns the candidate extensions for basename, the
// longest compound extension first (".tar.gz" before ".gz"), per §4.C
// stage 2. Returns nil if basename has no extension.
func ExtensionCandidates(basename string) []string {
	idx := strings.IndexByte(basename, '.')
	if idx < 0 {
		return nil
	}
	if idx == 0 {
		// Dotfile: ".gitignore" has no extension of its own, but
		// ".env.local" does ("local" off of a dotfile base).
		rest := strings.IndexByte(basename[1:], '.')
		if rest < 0 {
			return nil
		}
		idx = rest + 1
	}

	parts := strings.Split(basename[idx+1:], ".")
	out := make([]string, 0, len(parts))
	for i := range parts {
		out = append(out, "."+strings.Join(parts[i:], "."))
	}
	return out
}
