package objects

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-cerp/syncd/internal/project"
)

func newProject(t *testing.T, root string) *project.Project {
	t.Helper()
	p, err := project.New(root)
	require.NoError(t, err)
	return p
}

func TestDiffPatch_RoundTrip(t *testing.T) {
	// Given: root with a.txt=hello, then mutated to a.txt=goodbye, b.txt=new
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))

	p := newProject(t, root)
	before, err := FromDirectory(p)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("goodbye"), 0o644))

	after, err := FromDirectory(p)
	require.NoError(t, err)

	// When: before is patched with before.Diff(after)
	clone := before.Clone()
	delta := before.Diff(after)
	clone.Patch(delta)

	// Then: clone now equals after — the diff/patch round trip holds
	assert.True(t, clone.Equal(after))
}

func TestDiff_KeysArePairwiseDisjoint(t *testing.T) {
	// Given: a snapshot transitioning through additions, removals, and
	// modifications simultaneously
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("v1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "gone.txt"), []byte("bye"), 0o644))

	p := newProject(t, root)
	before, err := FromDirectory(p)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "gone.txt")))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("v2"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "new.txt"), []byte("fresh"), 0o644))

	after, err := FromDirectory(p)
	require.NoError(t, err)

	delta := before.Diff(after)

	// Then: no path appears in more than one of the three maps
	for path := range delta.Added {
		_, inRemoved := delta.Removed[path]
		_, inModified := delta.Modified[path]
		assert.False(t, inRemoved)
		assert.False(t, inModified)
	}
	for path := range delta.Removed {
		_, inModified := delta.Modified[path]
		assert.False(t, inModified)
	}

	assert.Contains(t, delta.Added, "new.txt")
	assert.Contains(t, delta.Removed, "gone.txt")
	assert.Contains(t, delta.Modified, "keep.txt")
}

func TestDiff_ModifiedCarriesNewFingerprint(t *testing.T) {
	// Given: a file modified between two snapshots
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))
	p := newProject(t, root)
	before, err := FromDirectory(p)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("world"), 0o644))
	after, err := FromDirectory(p)
	require.NoError(t, err)

	delta := before.Diff(after)

	// Then: the modified fingerprint matches the *new* snapshot's value.
	assert.Equal(t, after.entries["a.txt"], delta.Modified["a.txt"])
	assert.NotEqual(t, before.entries["a.txt"], delta.Modified["a.txt"])
}

func TestFromDirectory_HonorsIgnoreRules(t *testing.T) {
	// build/ is ignored via .gitignore, src/ is not.
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "build", "x.o"), []byte("obj"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "x.rs"), []byte("fn main(){}"), 0o644))

	p := newProject(t, root)
	snap, err := FromDirectory(p)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"src/x.rs"}, snap.Paths())
}

func TestUpdate_OnlyRehashesFilesNewerThanWatermark(t *testing.T) {
	// Given: a snapshot and an old watermark
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))
	p := newProject(t, root)
	snap, err := FromDirectory(p)
	require.NoError(t, err)

	watermark, err := snap.Update(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, watermark.IsZero())

	// When: idle between calls (re-updating with the new
	// watermark changes nothing)
	clone := snap.Clone()
	watermark2, err := snap.Update(watermark)
	require.NoError(t, err)
	assert.True(t, snap.Equal(clone))
	assert.False(t, watermark2.Before(watermark))
}
