// SPDX-License-Identifier: BSD-2-Clause
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/hyply-dev/hyply"
	"github.com/hyply-dev/hyply/internal/report"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// styles returns the palette used across the CLI's table output, matching
// the teacher-adjacent go-token-counter's purple/dim scheme.
func styles() (section, label lipgloss.Style) {
	purple := lipgloss.Color("99")
	dim := lipgloss.Color("245")
	section = lipgloss.NewStyle().Bold(true).Foreground(purple)
	label = lipgloss.NewStyle().Foreground(dim)
	return
}

func renderBreakdown(bd *hyply.Breakdown) {
	sectionStyle, labelStyle := styles()

	counts := make(map[string]int, len(bd.Languages()))
	for _, lang := range bd.Languages() {
		counts[lang] = len(bd.Files(lang))
	}

	if len(counts) == 0 {
		fmt.Println(labelStyle.Render("no recognized source files found"))
		return
	}

	rows := report.Rank(counts)

	purple := lipgloss.Color("99")
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(purple).Align(lipgloss.Center)
	cellStyle := lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
	numericStyle := cellStyle.Align(lipgloss.Right)

	body := make([][]string, 0, len(rows))
	for _, r := range rows {
		body = append(body, []string{
			r.Language,
			fmt.Sprintf("%d", r.FileCount),
			fmt.Sprintf("%.2f%%", r.Percentage),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		Headers("Language", "Files", "Percentage").
		Rows(body...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 || col == 2 {
				return numericStyle
			}
			return cellStyle
		})

	fmt.Println(sectionStyle.Render(fmt.Sprintf("Language Breakdown (%d files)", bd.TotalFiles())))
	fmt.Println(t)

	if skipped := bd.Skipped(); len(skipped) > 0 {
		fmt.Println()
		fmt.Println(labelStyle.Render(fmt.Sprintf("%d file(s) skipped (unreadable or unclassifiable)", len(skipped))))
	}
}

func renderLanguageList(w io.Writer, langs []hyply.Language) {
	sectionStyle, _ := styles()
	fmt.Fprintln(w, sectionStyle.Render(fmt.Sprintf("Known Languages (%d)", len(langs))))
	for _, l := range langs {
		fmt.Fprintf(w, "  %s\n", l.Name)
	}
}
