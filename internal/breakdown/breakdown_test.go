// SPDX-License-Identifier: BSD-2-Clause
package breakdown

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/hyply-dev/hyply/internal/catalog"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func sampleTree(t *testing.T) string {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.rs"), "fn main() {}\n")
	writeFile(t, filepath.Join(root, "b.rs"), "fn helper() {}\n")
	writeFile(t, filepath.Join(root, "c.rs"), "mod foo;\n")
	writeFile(t, filepath.Join(root, "Makefile"), "all:\n\techo hi\n")
	return root
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	return cat
}

func run(t *testing.T, root string, workers int) *Breakdown {
	t.Helper()
	cat := testCatalog(t)
	eng := New(cat, WithWorkers(workers))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	bd, err := eng.Run(ctx, root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return bd
}

func TestBreakdownScenarioSixPercentages(t *testing.T) {
	root := sampleTree(t)
	bd := run(t, root, 4)

	if bd.TotalFiles() != 4 {
		t.Fatalf("expected 4 files, got %d", bd.TotalFiles())
	}
	pct := bd.Percentages()
	if got := pct["Rust"]; got < 74.9 || got > 75.1 {
		t.Fatalf("expected Rust ~75%%, got %v", got)
	}
	if got := pct["Makefile"]; got < 24.9 || got > 25.1 {
		t.Fatalf("expected Makefile ~25%%, got %v", got)
	}

	sum := 0.0
	for _, v := range pct {
		sum += v
	}
	if sum < 99.99 || sum > 100.01 {
		t.Fatalf("percentages should sum to ~100, got %v", sum)
	}
}

func TestBreakdownParallelEquivalence(t *testing.T) {
	root := sampleTree(t)

	normalize := func(bd *Breakdown) map[string][]string {
		out := make(map[string][]string)
		for _, lang := range bd.Languages() {
			var files []string
			for _, fd := range bd.Files(lang) {
				files = append(files, fd.Path)
			}
			sort.Strings(files)
			out[lang] = files
		}
		return out
	}

	base := normalize(run(t, root, 1))
	for _, workers := range []int{2, 8, 32} {
		got := normalize(run(t, root, workers))
		if len(got) != len(base) {
			t.Fatalf("workers=%d: language set mismatch: %v vs %v", workers, got, base)
		}
		for lang, files := range base {
			gotFiles, ok := got[lang]
			if !ok {
				t.Fatalf("workers=%d: missing language %q", workers, lang)
			}
			if len(gotFiles) != len(files) {
				t.Fatalf("workers=%d: %q file count mismatch: %v vs %v", workers, lang, gotFiles, files)
			}
			for i := range files {
				if gotFiles[i] != files[i] {
					t.Fatalf("workers=%d: %q file mismatch: %v vs %v", workers, lang, gotFiles, files)
				}
			}
		}
	}
}

func TestBreakdownSkipsUnreadableFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.rs"), "fn main() {}\n")
	// .h is ambiguous by extension, so detection has to read the file.
	badPath := filepath.Join(root, "noperm.h")
	writeFile(t, badPath, "int x(void);\n")
	if err := os.Chmod(badPath, 0o000); err != nil {
		t.Skipf("cannot drop permissions: %v", err)
	}
	defer os.Chmod(badPath, 0o644)

	if os.Geteuid() == 0 {
		t.Skip("running as root, permission bits are not enforced")
	}

	bd := run(t, root, 4)
	if bd.TotalFiles() != 1 {
		t.Fatalf("expected 1 resolved file, got %d (skipped=%v)", bd.TotalFiles(), bd.Skipped())
	}
	if len(bd.Skipped()) != 1 {
		t.Fatalf("expected 1 skipped file, got %v", bd.Skipped())
	}
}

func TestBreakdownWithExtraIgnoreGlobs(t *testing.T) {
	root := sampleTree(t)
	writeFile(t, filepath.Join(root, "scratch", "throwaway.rs"), "fn scratch() {}\n")

	cat := testCatalog(t)
	eng := New(cat, WithExtraIgnoreGlobs([]string{"**/scratch/**"}))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	bd, err := eng.Run(ctx, root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if bd.TotalFiles() != 4 {
		t.Fatalf("expected scratch/throwaway.rs to be ignored, got %d files: %v", bd.TotalFiles(), bd.Files("Rust"))
	}
}

func TestBreakdownEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	bd := run(t, root, 4)
	if bd.TotalFiles() != 0 {
		t.Fatalf("expected 0 files, got %d", bd.TotalFiles())
	}
	if len(bd.Percentages()) != 0 {
		t.Fatalf("expected no percentages, got %v", bd.Percentages())
	}
}
