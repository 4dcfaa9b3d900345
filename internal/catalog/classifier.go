// SPDX-License-Identifier: BSD-2-Clause
package catalog

// ClassifierModel is a read-only Naive-Bayes-style scorer over token
// frequencies (§3). Token text and language name are interned to small
// integers at load time (§9 "Language/token interning") and the weight
// table is indexed by those ids; Score still does one string lookup per
// token text, and keys the candidate and score maps by language name.
type ClassifierModel struct {
	langNames []string
	langID    map[string]int
	tokenID   map[string]int
	// weights[tokenID] is a sparse list of (langID, weight) pairs, the
	// "interned token id -> base offset, then (language id, weight) pairs"
	// layout §9 recommends for cache behavior.
	weights [][]weightEntry
	// totals holds each language's normalization total from the trained
	// model. The scorer does not need it to rank candidates (the spec
	// only requires accumulation, §4.C stage 5); it is retained because
	// it's part of the on-disk data model (§3 ClassifierModel) and a
	// natural extension point (e.g. length-normalized scoring).
	totals []float64
}

type weightEntry struct {
	lang   int
	weight float64
}

func newClassifierModel(tokens map[string]map[string]float64, totals map[string]float64) *ClassifierModel {
	m := &ClassifierModel{
		langID:  make(map[string]int),
		tokenID: make(map[string]int),
	}

	langOf := func(name string) int {
		if id, ok := m.langID[name]; ok {
			return id
		}
		id := len(m.langNames)
		m.langID[name] = id
		m.langNames = append(m.langNames, name)
		return id
	}
	for name := range totals {
		langOf(name)
	}

	m.weights = make([][]weightEntry, 0, len(tokens))
	for text, perLang := range tokens {
		id := len(m.tokenID)
		m.tokenID[text] = id
		entries := make([]weightEntry, 0, len(perLang))
		for lang, w := range perLang {
			entries = append(entries, weightEntry{lang: langOf(lang), weight: w})
		}
		m.weights = append(m.weights, entries)
	}

	m.totals = make([]float64, len(m.langNames))
	for name, total := range totals {
		m.totals[m.langID[name]] = total
	}
	return m
}

// Score accumulates per-language weight over tokenText, restricted to
// candidates, into scores (keyed by language name). Unknown token text
// contributes nothing, matching a Naive-Bayes model that simply ignores
// out-of-vocabulary terms rather than erroring.
func (m *ClassifierModel) Score(tokenText string, candidates map[string]bool, scores map[string]float64) {
	id, ok := m.tokenID[tokenText]
	if !ok {
		return
	}
	for _, e := range m.weights[id] {
		name := m.langNames[e.lang]
		if !candidates[name] {
			continue
		}
		scores[name] += e.weight
	}
}

// Total returns the per-language normalization total recorded in the
// trained model, or 0 if the language is unknown to the classifier.
func (m *ClassifierModel) Total(lang string) float64 {
	id, ok := m.langID[lang]
	if !ok {
		return 0
	}
	return m.totals[id]
}
