package hash

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumReader_DeterministicPerContent(t *testing.T) {
	// Given: two readers with identical content and one with different content
	h := New()

	// When: hashing identical content twice
	a, err := SumReader(h, bytes.NewBufferString("hello world"))
	require.NoError(t, err)
	b, err := SumReader(h, bytes.NewBufferString("hello world"))
	require.NoError(t, err)

	// Then: the fingerprints match
	assert.Equal(t, a, b)

	// And: different content hashes differently
	c, err := SumReader(h, bytes.NewBufferString("goodbye world"))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestPool_ReusesAndResets(t *testing.T) {
	// Given: a pool
	p := NewPool()

	// When: a hasher is used, returned, then fetched again
	h1 := p.Get()
	_, err := h1.Write([]byte("some content"))
	require.NoError(t, err)
	p.Put(h1)

	h2 := p.Get()

	// Then: the reused hasher starts from a clean state
	sum, err := SumReader(h2, bytes.NewBufferString(""))
	require.NoError(t, err)
	empty, err := SumReader(New(), bytes.NewBufferString(""))
	require.NoError(t, err)
	assert.Equal(t, empty, sum)
}
