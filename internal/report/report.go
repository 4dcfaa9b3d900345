// SPDX-License-Identifier: BSD-2-Clause
// Package report turns per-language file counts (as read off a
// breakdown.Breakdown) into percentage-ranked rows
// ready for terminal rendering (§6 CLI surface). It is deliberately split
// from cmd/hyply's lipgloss/termenv rendering so the arithmetic --
// file-count / total-classified-files * 100, descending by share, summing
// to 100.00 modulo rounding -- is unit-testable without a terminal.
package report

import "sort"

// Row is one ranked line of a breakdown report.
type Row struct {
	Language   string
	FileCount  int
	Percentage float64
}

// Rank produces percentage-ranked rows from counts, a language -> file
// count map. Rows are sorted by descending file count, ties broken
// lexicographically by language name for determinism (mirrors the
// classifier's own tie-break rule in internal/detect).
func Rank(counts map[string]int) []Row {
	total := 0
	for _, n := range counts {
		total += n
	}

	rows := make([]Row, 0, len(counts))
	for lang, n := range counts {
		var pct float64
		if total > 0 {
			pct = float64(n) * 100.0 / float64(total)
		}
		rows = append(rows, Row{Language: lang, FileCount: n, Percentage: pct})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].FileCount != rows[j].FileCount {
			return rows[i].FileCount > rows[j].FileCount
		}
		return rows[i].Language < rows[j].Language
	})

	roundToTotal(rows)
	return rows
}

// roundToTotal rounds each row's percentage to two decimal places and
// nudges the largest row so the column still sums to exactly 100.00,
// rather than letting independent rounding drift a few hundredths off
// (§6 scenario 6: "summing to 100.00 ± rounding").
func roundToTotal(rows []Row) {
	if len(rows) == 0 {
		return
	}
	sum := 0.0
	for i := range rows {
		rows[i].Percentage = round2(rows[i].Percentage)
		sum += rows[i].Percentage
	}
	drift := round2(100.0 - sum)
	if drift != 0 {
		rows[0].Percentage = round2(rows[0].Percentage + drift)
	}
}

func round2(f float64) float64 {
	const scale = 100.0
	if f < 0 {
		return -round2(-f)
	}
	return float64(int64(f*scale+0.5)) / scale
}
