// SPDX-License-Identifier: BSD-2-Clause
package walk

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// gitignoreSet is the compiled pattern list from one .gitignore file, plus
// the directory it was found in (patterns are rooted there). The spec
// allows collapsing full gitignore semantics to "respect the nearest
// ancestor .gitignore" (§4.D.3); negation ("!pattern") is not supported --
// see DESIGN.md for why.
type gitignoreSet struct {
	dir      string
	patterns []string
}

// loadGitignore parses dir/.gitignore, if present, into glob patterns
// matched with doublestar. Blank lines and comments are skipped.
func loadGitignore(dir string) *gitignoreSet {
	f, err := os.Open(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		line = strings.TrimSuffix(line, "/")
		patterns = append(patterns, line)
	}
	if len(patterns) == 0 {
		return nil
	}
	return &gitignoreSet{dir: dir, patterns: patterns}
}

// matches reports whether relPath (relative to g.dir, forward-slash
// separated) is ignored by g's patterns.
func (g *gitignoreSet) matches(relPath string) bool {
	if g == nil {
		return false
	}
	base := filepath.Base(relPath)
	for _, pat := range g.patterns {
		if strings.ContainsAny(pat, "/*?[") {
			if ok, _ := doublestar.Match(pat, relPath); ok {
				return true
			}
			if ok, _ := doublestar.Match("**/"+pat, relPath); ok {
				return true
			}
			continue
		}
		if pat == base {
			return true
		}
		if ok, _ := doublestar.Match("**/"+pat, relPath); ok {
			return true
		}
	}
	return false
}
