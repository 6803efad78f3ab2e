// Package project implements the Project model: an absolute root path
// paired with the ignore rules active at that root, plus relative-path
// resolution against it.
package project

import (
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aman-cerp/syncd/internal/ignore"
	"github.com/aman-cerp/syncd/internal/syncerrs"
)

// matcherCache memoizes compiled ignore matchers across rapid
// watch/unwatch cycles on the same root — e.g. an engine tearing down
// and immediately re-establishing a root under subsumption rule 3.
// Small and fixed-size: this is a hint, never a correctness dependency.
var matcherCache, _ = lru.New[string, *ignore.Matcher](32)

// Project pairs an absolute root with the ignore matcher active there.
type Project struct {
	Root    string
	matcher *ignore.Matcher
}

// New builds a Project rooted at root. It reads root/.gitignore — absence
// is not an error — and always appends a rule ignoring ".git". A matcher
// construction failure (e.g. a permission error reading the file, as
// opposed to the file simply not existing) downgrades to "no matcher":
// every path under the root is then accepted.
func New(root string) (*Project, error) {
	return NewWithExtra(root, nil)
}

// NewWithExtra is New plus a caller-supplied set of additional
// gitignore-syntax patterns applied on top of root's own .gitignore and
// the unconditional ".git" rule — e.g. daemon-wide patterns from
// internal/config.Config.ExtraIgnore.
func NewWithExtra(root string, extra []string) (*Project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, syncerrs.ProjectInitError("resolve absolute root", err).WithDetail(root)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, syncerrs.ProjectInitError("root is not a directory", err).WithDetail(abs)
	}

	giPath := filepath.Join(abs, ".gitignore")
	giStat, statErr := os.Stat(giPath)

	cacheKey := abs + "@" + strings.Join(extra, ",")
	if statErr == nil {
		cacheKey += "@" + giStat.ModTime().String()
	}
	if cached, ok := matcherCache.Get(cacheKey); ok {
		return &Project{Root: abs, matcher: cached}, nil
	}

	m := ignore.New()
	m.AddPattern(".git/")
	for _, pattern := range extra {
		m.AddPattern(pattern)
	}
	if statErr == nil {
		if loadErr := m.AddFromFile(giPath); loadErr != nil {
			// Degrade to no matcher: every path is accepted.
			matcherCache.Add(cacheKey, nil)
			return &Project{Root: abs, matcher: nil}, nil
		}
	}

	matcherCache.Add(cacheKey, m)
	return &Project{Root: abs, matcher: m}, nil
}

// Resolve returns the path stripped of the root prefix, and true, if and
// only if absPath is under the root and is not rejected by the ignore
// matcher. It does not inspect any ancestor directory.
func (p *Project) Resolve(absPath string, isDir bool) (string, bool) {
	rel, ok := p.stripRoot(absPath)
	if !ok {
		return "", false
	}
	if p.matcher.Match(rel, isDir) {
		return "", false
	}
	return rel, true
}

// ResolveWithParents is the stricter variant required for paths reported
// by an OS-level watcher: it additionally rejects absPath if any
// ancestor directory between it and the root is ignored.
func (p *Project) ResolveWithParents(absPath string, isDir bool) (string, bool) {
	rel, ok := p.stripRoot(absPath)
	if !ok {
		return "", false
	}
	if rel == "" {
		return rel, true
	}

	parts := strings.Split(rel, "/")
	for i := 0; i < len(parts)-1; i++ {
		ancestor := strings.Join(parts[:i+1], "/")
		if p.matcher.Match(ancestor, true) {
			return "", false
		}
	}
	if p.matcher.Match(rel, isDir) {
		return "", false
	}
	return rel, true
}

// stripRoot returns the slash-separated path relative to the root, and
// true, iff absPath is the root itself or a descendant of it.
func (p *Project) stripRoot(absPath string) (string, bool) {
	absPath = filepath.Clean(absPath)
	root := filepath.Clean(p.Root)

	if absPath == root {
		return "", true
	}

	prefix := root + string(os.PathSeparator)
	if !strings.HasPrefix(absPath, prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(absPath, prefix)
	return filepath.ToSlash(rel), true
}
