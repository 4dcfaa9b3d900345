// SPDX-License-Identifier: BSD-2-Clause
package catalog

import "testing"

func TestLoad(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cat.Languages()) == 0 {
		t.Fatal("expected at least one language")
	}
	if !cat.Has("Go") {
		t.Fatal("expected Go to be a known language")
	}
}

func TestByFilenameMakefile(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	langs := cat.ByFilename("Makefile")
	if len(langs) != 1 || langs[0].Name != "Makefile" {
		t.Fatalf("got %v", langs)
	}
}

func TestByExtensionAmbiguousHeader(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	langs := cat.ByExtension(".h")
	if len(langs) < 2 {
		t.Fatalf(".h should be ambiguous across C family, got %v", langs)
	}
}

func TestExtensionCandidatesLongestFirst(t *testing.T) {
	got := ExtensionCandidates("archive.tar.gz")
	want := []string{".tar.gz", ".gz"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestExtensionCandidatesDotfile(t *testing.T) {
	if got := ExtensionCandidates(".gitignore"); got != nil {
		t.Fatalf("pure dotfile should have no extension candidates, got %v", got)
	}
	got := ExtensionCandidates(".env.local")
	if len(got) != 1 || got[0] != ".local" {
		t.Fatalf("got %v", got)
	}
}

func TestHeuristicsForHeader(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	rules := cat.Heuristics(".h")
	if len(rules) == 0 {
		t.Fatal("expected .h heuristics")
	}
	if !rules[1].Match([]byte("#include <vector>\nclass Foo {};\n")) {
		t.Fatal("expected the C++ rule to match a class/vector header")
	}
}

func TestClassifierScorePerlVsProlog(t *testing.T) {
	cat, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	model := cat.Classifier()
	scores := map[string]float64{"Perl": 0, "Prolog": 0}
	candidates := map[string]bool{"Perl": true, "Prolog": true}
	for _, text := range []string{"use", "strict", ";", "my", "$", "x", "=", "1", ";"} {
		model.Score(text, candidates, scores)
	}
	if scores["Perl"] <= scores["Prolog"] {
		t.Fatalf("expected Perl to outscore Prolog: %v", scores)
	}
}
