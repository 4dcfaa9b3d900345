// SPDX-License-Identifier: BSD-2-Clause
// Package walk implements the directory walker & filter (§4.D): a
// parallel tree walk that yields candidate file paths, pruning symlink
// cycles, ignore-glob matches, and files covered by the nearest ancestor
// .gitignore.
//
// The walk itself is a generalization of the teacher's hand-rolled
// parallel Walk in loccount.go (itself adapted from Michael T. Jones's
// "walk" package): a bounded channel of pending directories drained by a
// fixed pool of goroutines, with a WaitGroup standing in for "is there
// still work in flight". What changed is what counts as "interesting" --
// ignore globs and .gitignore replace the teacher's suffix/basename
// denylists, and binary/generated files are deliberately NOT filtered
// here (§1 non-goals: that's a divergence from Linguist this module keeps
// on purpose).
package walk

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hyply-dev/hyply/internal/catalog"
)

// Walker yields candidate paths under a root directory.
type Walker struct {
	ignoreGlobs []string
	workers     int
}

// New builds a Walker using the ignore globs from cat.
func New(cat *catalog.Catalog) *Walker {
	return &Walker{ignoreGlobs: cat.IgnoreGlobs(), workers: 16}
}

// WithWorkers overrides the walker's internal goroutine pool size.
func (w *Walker) WithWorkers(n int) *Walker {
	if n > 0 {
		w.workers = n
	}
	return w
}

// WithExtraIgnoreGlobs appends globs to the catalog's built-in ignore
// list, e.g. from a CLI --config override.
func (w *Walker) WithExtraIgnoreGlobs(globs []string) *Walker {
	w.ignoreGlobs = append(append([]string{}, w.ignoreGlobs...), globs...)
	return w
}

type visitEntry struct {
	path string
	info os.FileInfo
}

// state is the walk's shared, synchronized bookkeeping: a bounded queue of
// pending directories/files, the count of outstanding work, and the first
// error seen (which halts the walk).
type state struct {
	ctx    context.Context
	root   string
	walker *Walker
	out    chan<- string

	queue  chan visitEntry
	active sync.WaitGroup

	mu       sync.RWMutex
	firstErr error

	gimu  sync.Mutex
	gicache map[string]*gitignoreSet // directory -> its own .gitignore, or nil
}

// Walk streams absolute file paths under root on the returned channel,
// honoring ignore rules (§4.D). The channel is closed when the walk
// completes or ctx is cancelled. Output order is unspecified (§5:
// "Across files in a breakdown, no ordering is guaranteed").
func (w *Walker) Walk(ctx context.Context, root string) (<-chan string, <-chan error) {
	out := make(chan string, 256)
	errc := make(chan error, 1)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		errc <- err
		close(out)
		close(errc)
		return out, errc
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		errc <- err
		close(out)
		close(errc)
		return out, errc
	}

	st := &state{
		ctx:     ctx,
		root:    absRoot,
		walker:  w,
		out:     out,
		queue:   make(chan visitEntry, 1024),
		gicache: make(map[string]*gitignoreSet),
	}

	st.active.Add(1)
	st.queue <- visitEntry{path: absRoot, info: info}

	go func() {
		var wg sync.WaitGroup
		for i := 0; i < w.workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				st.drain()
			}()
		}
		st.active.Wait()
		close(st.queue)
		wg.Wait()
		close(out)
		if e := st.err(); e != nil {
			errc <- e
		}
		close(errc)
	}()

	return out, errc
}

func (s *state) err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.firstErr
}

func (s *state) setErr(err error) {
	s.mu.Lock()
	if s.firstErr == nil {
		s.firstErr = err
	}
	s.mu.Unlock()
}

func (s *state) cancelled() bool {
	select {
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}

func (s *state) drain() {
	for entry := range s.queue {
		s.visit(entry)
	}
}

func (s *state) visit(entry visitEntry) {
	defer s.active.Done()

	if s.cancelled() || s.err() != nil {
		return
	}

	if entry.info.Mode()&os.ModeSymlink != 0 {
		if s.symlinkEscapesRoot(entry.path) {
			return
		}
		resolved, err := filepath.EvalSymlinks(entry.path)
		if err != nil {
			return
		}
		info, err := os.Stat(resolved)
		if err != nil {
			return
		}
		if info.IsDir() {
			// A directory link back to the link's own directory or one of
			// its ancestors would re-walk that subtree over and over.
			if parent, err := filepath.EvalSymlinks(filepath.Dir(entry.path)); err == nil {
				if rel, err := filepath.Rel(resolved, parent); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
					return
				}
			}
		}
		entry.info = info
	}

	if entry.info.IsDir() {
		s.visitDir(entry.path)
		return
	}

	if s.ignored(entry.path, false) {
		return
	}

	select {
	case s.out <- entry.path:
	case <-s.ctx.Done():
	}
}

func (s *state) visitDir(dir string) {
	if s.ignored(dir, true) {
		return
	}

	names, err := readDirNames(dir)
	if err != nil {
		// Only an unreadable root fails the walk; an unreadable
		// subdirectory is dropped like any other unreadable entry.
		if dir == s.root {
			s.setErr(err)
		}
		return
	}

	for _, name := range names {
		full := filepath.Join(dir, name)
		info, err := os.Lstat(full)
		if err != nil {
			continue
		}
		s.active.Add(1)
		select {
		case s.queue <- visitEntry{path: full, info: info}:
		default:
			// Queue briefly full: process inline rather than block the
			// producer, mirroring the teacher's fallback in loccount.go.
			s.visit(visitEntry{path: full, info: info})
		}
	}
}

func readDirNames(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// symlinkEscapesRoot reports whether path's symlink target resolves
// outside the walk root (§4.D.1). It makes one filepath.EvalSymlinks call,
// which follows the whole link chain to its final target; a link that
// cannot be resolved counts as escaping.
func (s *state) symlinkEscapesRoot(path string) bool {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return true
	}
	rel, err := filepath.Rel(s.root, resolved)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ignored applies the §4.D.2/3 filter chain: static ignore globs, then the
// nearest ancestor .gitignore.
func (s *state) ignored(path string, isDir bool) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, glob := range s.walker.ignoreGlobs {
		if ok, _ := doublestar.Match(glob, rel); ok {
			return true
		}
	}

	dir := filepath.Dir(path)
	if isDir {
		dir = filepath.Dir(path) // .gitignore governing an entry lives in its parent
	}
	gi := s.nearestGitignore(dir)
	if gi == nil {
		return false
	}
	giRel, err := filepath.Rel(gi.dir, path)
	if err != nil {
		return false
	}
	return gi.matches(filepath.ToSlash(giRel))
}

// nearestGitignore walks up from dir to the root looking for a
// .gitignore, caching per-directory results so repeated lookups along a
// deep tree stay O(1) amortized.
func (s *state) nearestGitignore(dir string) *gitignoreSet {
	s.gimu.Lock()
	defer s.gimu.Unlock()

	if rel, err := filepath.Rel(s.root, dir); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil // dir lies above the walk root
	}

	var chain []string
	cur := dir
	for {
		if gi, ok := s.gicache[cur]; ok {
			for _, d := range chain {
				s.gicache[d] = gi
			}
			return gi
		}
		chain = append(chain, cur)
		if gi := loadGitignore(cur); gi != nil {
			for _, d := range chain {
				s.gicache[d] = gi
			}
			return gi
		}
		if cur == s.root || cur == filepath.Dir(cur) {
			break
		}
		cur = filepath.Dir(cur)
	}
	for _, d := range chain {
		s.gicache[d] = nil
	}
	return nil
}
