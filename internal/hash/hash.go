// Package hash defines the pluggable content-hashing abstraction used to
// build object snapshots. The default implementation is non-cryptographic
// and optimized for throughput, not collision resistance against an
// adversary.
package hash

import (
	"io"

	"github.com/cespare/xxhash/v2"
)

// Hasher is a resettable streaming hash. Implementations must be safe to
// Reset and reused across many files; FromDirectory resets and rehashes
// one Hasher per file rather than allocating a fresh one each time.
type Hasher interface {
	io.Writer
	Sum64() uint64
	Reset()
}

// New returns the default Hasher implementation.
func New() Hasher {
	return xxhash.New()
}

// Pool hands out Hashers for reuse across a directory walk, avoiding an
// allocation per file. Not safe for concurrent use: callers that Clone
// an ObjectSnapshot and walk the clone on another goroutine must give
// it its own Pool rather than sharing the parent's.
type Pool struct {
	new  func() Hasher
	free []Hasher
}

// NewPool builds a Pool backed by the default Hasher constructor.
func NewPool() *Pool {
	return &Pool{new: New}
}

// Get returns a reset Hasher, reusing one from the pool when available.
func (p *Pool) Get() Hasher {
	if n := len(p.free); n > 0 {
		h := p.free[n-1]
		p.free = p.free[:n-1]
		h.Reset()
		return h
	}
	return p.new()
}

// Put returns h to the pool for later reuse.
func (p *Pool) Put(h Hasher) {
	p.free = append(p.free, h)
}

// SumReader hashes all of r's content with h and returns the resulting
// fingerprint. h is reset before use.
func SumReader(h Hasher, r io.Reader) (uint64, error) {
	h.Reset()
	if _, err := io.Copy(h, r); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
