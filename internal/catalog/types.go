// SPDX-License-Identifier: BSD-2-Clause
// Package catalog is the static knowledge tables component (§4.B): the
// Languages list, heuristics rules, classifier weights, and ignore globs,
// loaded once from embedded data and frozen.
//
// Loading the on-disk representation of these tables is explicitly out of
// the detection core's scope (spec §1); this package is that boundary --
// everything downstream of Load sees only the parsed, in-memory structures
// defined by §3.
package catalog

import "regexp"

// Strategy tags which pipeline stage produced a Detection.
type Strategy int

const (
	StrategyFilename Strategy = iota
	StrategyExtension
	StrategyInterpreter
	StrategyHeuristics
	StrategyClassifier
)

func (s Strategy) String() string {
	switch s {
	case StrategyFilename:
		return "Filename"
	case StrategyExtension:
		return "Extension"
	case StrategyInterpreter:
		return "Interpreter"
	case StrategyHeuristics:
		return "Heuristics"
	case StrategyClassifier:
		return "Classifier"
	default:
		return "Unknown"
	}
}

// Detection pairs a resolved language name with the strategy that
// resolved it. The tag is provenance, not a confidence score, though
// callers may reasonably treat StrategyClassifier as lower confidence
// (§3 Detection).
type Detection struct {
	Language string
	Strategy Strategy
}

// Language is a named catalog entry (§3).
type Language struct {
	Name         string   `yaml:"name"`
	Group        string   `yaml:"group,omitempty"`
	Type         string   `yaml:"type"`
	Extensions   []string `yaml:"extensions,omitempty"`
	Interpreters []string `yaml:"interpreters,omitempty"`
	Filenames    []string `yaml:"filenames,omitempty"`
	Color        string   `yaml:"color,omitempty"`
}

// HeuristicRule binds a compiled regex to one or more candidate languages
// for one extension. Rules are evaluated in declared order; the first
// whose pattern matches wins (§3, §4.C stage 4).
type HeuristicRule struct {
	Pattern   string
	Languages []string
	re        *regexp.Regexp
}

// Match reports whether the rule's pattern matches anywhere in data. The
// detection pipeline passes the whole file content it has read.
func (r HeuristicRule) Match(data []byte) bool {
	return r.re.Match(data)
}
