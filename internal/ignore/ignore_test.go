package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_DirOnlyPatternIgnoresContents(t *testing.T) {
	// Given: a matcher with a single "build/" rule
	m := New()
	m.AddPattern("build/")

	// Then: the directory and everything under it is ignored
	assert.True(t, m.Match("build", true))
	assert.True(t, m.Match("build/x.o", false))
	// And: a sibling path is not
	assert.False(t, m.Match("src/x.rs", false))
}

func TestMatcher_NegationUnignores(t *testing.T) {
	// Given: a matcher that ignores all .log files except keep.log
	m := New()
	m.AddPattern("*.log")
	m.AddPattern("!keep.log")

	assert.True(t, m.Match("debug.log", false))
	assert.False(t, m.Match("keep.log", false))
}

func TestMatcher_NilMatcherAcceptsEverything(t *testing.T) {
	// Given: no matcher at all
	var m *Matcher

	assert.False(t, m.Match("anything/at/all.txt", false))
}

func TestMatcher_AddFromFile(t *testing.T) {
	// Given: a .gitignore on disk
	dir := t.TempDir()
	giPath := filepath.Join(dir, ".gitignore")
	require.NoError(t, os.WriteFile(giPath, []byte("build/\n# comment\n\n*.tmp\n"), 0o644))

	m := New()
	require.NoError(t, m.AddFromFile(giPath))

	assert.True(t, m.Match("build/out.o", false))
	assert.True(t, m.Match("scratch.tmp", false))
	assert.False(t, m.Match("main.go", false))
}
