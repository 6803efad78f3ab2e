// Package objects implements the content-hash object snapshot: a map
// from project-relative path to FileFingerprint, built by walking a
// Project's root, and the diff/patch algorithm that turns two snapshots
// into a set of changes.
package objects

import (
	"os"
	"path/filepath"
	"time"

	"github.com/aman-cerp/syncd/internal/hash"
	"github.com/aman-cerp/syncd/internal/project"
	"github.com/aman-cerp/syncd/internal/syncerrs"
)

// FileFingerprint is the 64-bit content hash of one file's bytes.
type FileFingerprint uint64

// ObjectSnapshot maps project-relative paths to the fingerprint of their
// content at the moment the snapshot was built or last updated.
type ObjectSnapshot struct {
	root    *project.Project
	entries map[string]FileFingerprint
	pool    *hash.Pool
}

// ObjectsDelta is the three-way, pairwise-disjoint difference between two
// snapshots.
type ObjectsDelta struct {
	Added    map[string]FileFingerprint
	Removed  map[string]FileFingerprint
	Modified map[string]FileFingerprint
}

func newDelta() ObjectsDelta {
	return ObjectsDelta{
		Added:    make(map[string]FileFingerprint),
		Removed:  make(map[string]FileFingerprint),
		Modified: make(map[string]FileFingerprint),
	}
}

// IsEmpty reports whether the delta carries no changes at all.
func (d ObjectsDelta) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0
}

// FromDirectory builds a snapshot by an iterative depth-first traversal of
// p.Root using an explicit work list of directories: files accepted by
// the project are hashed and inserted; accepted directories are pushed
// for further traversal; everything else is skipped. Any I/O error on a
// single file is fatal to the build.
func FromDirectory(p *project.Project) (*ObjectSnapshot, error) {
	s := &ObjectSnapshot{
		root:    p,
		entries: make(map[string]FileFingerprint),
		pool:    hash.NewPool(),
	}
	if err := s.scanFull(); err != nil {
		return nil, err
	}
	return s, nil
}

// scanFull performs one complete walk of the root, replacing every entry.
func (s *ObjectSnapshot) scanFull() error {
	info, err := os.Stat(s.root.Root)
	if err != nil {
		return syncerrs.ScanError("stat root", err).WithDetail(s.root.Root)
	}
	if !info.IsDir() {
		return syncerrs.ScanError("root is not a directory", nil).WithDetail(s.root.Root)
	}

	fresh := make(map[string]FileFingerprint)
	worklist := []string{s.root.Root}

	for len(worklist) > 0 {
		n := len(worklist) - 1
		dir := worklist[n]
		worklist = worklist[:n]

		dirInfo, statErr := os.Stat(dir)
		if statErr != nil || !dirInfo.IsDir() {
			return syncerrs.ScanError("visited path is not a directory", statErr).WithDetail(dir)
		}

		dirEntries, readErr := os.ReadDir(dir)
		if readErr != nil {
			return syncerrs.ScanError("read directory", readErr).WithDetail(dir)
		}

		for _, entry := range dirEntries {
			abs := filepath.Join(dir, entry.Name())
			isDir := entry.IsDir()

			rel, ok := s.root.Resolve(abs, isDir)
			if !ok {
				continue
			}
			if isDir {
				worklist = append(worklist, abs)
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}

			fp, hashErr := s.hashFile(abs)
			if hashErr != nil {
				return syncerrs.ScanError("hash file", hashErr).WithDetail(abs)
			}
			fresh[rel] = fp
		}
	}

	s.entries = fresh
	return nil
}

func (s *ObjectSnapshot) hashFile(abs string) (FileFingerprint, error) {
	f, err := os.Open(abs)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	h := s.pool.Get()
	defer s.pool.Put(h)

	sum, err := hash.SumReader(h, f)
	if err != nil {
		return 0, err
	}
	return FileFingerprint(sum), nil
}

// Update rescans the tree, rehashing only files whose modification time
// is strictly greater than since; unchanged files pay only a stat. Files
// no longer present (or no longer accepted) are removed. It returns the
// greatest modification time observed during the scan, so the caller can
// advance the watermark for the next call.
func (s *ObjectSnapshot) Update(since time.Time) (time.Time, error) {
	watermark := since
	seen := make(map[string]bool, len(s.entries))

	info, err := os.Stat(s.root.Root)
	if err != nil || !info.IsDir() {
		return watermark, syncerrs.ScanError("root missing or not a directory", err).WithDetail(s.root.Root)
	}

	worklist := []string{s.root.Root}
	for len(worklist) > 0 {
		n := len(worklist) - 1
		dir := worklist[n]
		worklist = worklist[:n]

		dirEntries, readErr := os.ReadDir(dir)
		if readErr != nil {
			return watermark, syncerrs.ScanError("read directory", readErr).WithDetail(dir)
		}

		for _, entry := range dirEntries {
			abs := filepath.Join(dir, entry.Name())
			isDir := entry.IsDir()

			rel, ok := s.root.Resolve(abs, isDir)
			if !ok {
				continue
			}
			if isDir {
				worklist = append(worklist, abs)
				continue
			}
			if !entry.Type().IsRegular() {
				continue
			}

			seen[rel] = true

			fileInfo, statErr := entry.Info()
			if statErr != nil {
				return watermark, syncerrs.ScanError("stat file", statErr).WithDetail(abs)
			}
			mtime := fileInfo.ModTime()
			if mtime.After(watermark) {
				watermark = mtime
			}

			if mtime.After(since) {
				fp, hashErr := s.hashFile(abs)
				if hashErr != nil {
					return watermark, syncerrs.ScanError("hash file", hashErr).WithDetail(abs)
				}
				s.entries[rel] = fp
			}
		}
	}

	for rel := range s.entries {
		if !seen[rel] {
			delete(s.entries, rel)
		}
	}

	return watermark, nil
}

// Diff computes the ObjectsDelta between s (the older snapshot) and other
// (the newer one). Modified entries carry the fingerprint from other.
func (s *ObjectSnapshot) Diff(other *ObjectSnapshot) ObjectsDelta {
	d := newDelta()

	for path, fp := range s.entries {
		otherFP, ok := other.entries[path]
		if !ok {
			d.Removed[path] = fp
		} else if otherFP != fp {
			d.Modified[path] = otherFP
		}
	}
	for path, fp := range other.entries {
		if _, ok := s.entries[path]; !ok {
			d.Added[path] = fp
		}
	}

	return d
}

// Patch applies delta in place: added entries are inserted, removed
// entries are deleted, modified entries are overwritten. This is the
// idempotent operation satisfying A.Patch(A.Diff(B)) == B.
func (s *ObjectSnapshot) Patch(d ObjectsDelta) {
	for path, fp := range d.Added {
		s.entries[path] = fp
	}
	for path := range d.Removed {
		delete(s.entries, path)
	}
	for path, fp := range d.Modified {
		s.entries[path] = fp
	}
}

// Clone returns a deep copy of s, sharing no mutable state with the
// original — used by callers (such as tests) that need to preserve a
// snapshot across a Patch call.
func (s *ObjectSnapshot) Clone() *ObjectSnapshot {
	entries := make(map[string]FileFingerprint, len(s.entries))
	for k, v := range s.entries {
		entries[k] = v
	}
	return &ObjectSnapshot{root: s.root, entries: entries, pool: s.pool}
}

// Equal reports whether two snapshots contain exactly the same paths and
// fingerprints.
func (s *ObjectSnapshot) Equal(other *ObjectSnapshot) bool {
	if len(s.entries) != len(other.entries) {
		return false
	}
	for path, fp := range s.entries {
		otherFP, ok := other.entries[path]
		if !ok || otherFP != fp {
			return false
		}
	}
	return true
}

// Paths returns the set of project-relative paths currently present,
// primarily useful for tests and diagnostics.
func (s *ObjectSnapshot) Paths() []string {
	paths := make([]string, 0, len(s.entries))
	for p := range s.entries {
		paths = append(paths, p)
	}
	return paths
}
