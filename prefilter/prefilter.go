// Package prefilter rejects inputs that cannot match a pattern before the
// NFA runs.
//
// A prefilter is built from the literal sets of package literal. It never
// reports a match on its own: a false answer proves the pattern cannot
// match, a true answer proves nothing and the caller runs the full engine.
//
// Strategy selection:
//   - single byte → memchr (bytes.IndexByte)
//   - single substring → memmem (bytes.Contains)
//   - several literals → Aho-Corasick automaton
//   - exact literal set → membership test for full matches, wrapping one
//     of the above for substring checks
//
// Example usage:
//
//	re, _ := syntax.Parse("(hello|world)", 0)
//	ex := literal.New(literal.DefaultConfig())
//	pf := prefilter.NewBuilder(ex.Required(re), ex.Exact(re)).Build()
//	if pf != nil && !pf.IsMatch(haystack) {
//	    return nil // no match possible
//	}
package prefilter

import (
	"bytes"

	"github.com/coregx/ahocorasick"

	"github.com/coregx/rematch/literal"
)

// Prefilter is a fast necessary-condition test for a pattern.
type Prefilter interface {
	// IsMatch reports whether haystack contains one of the prefilter's
	// literals. When it returns false no substring of haystack matches.
	IsMatch(haystack []byte) bool

	// MayFullMatch reports whether input can be a full match of the
	// pattern. When it returns false the whole input does not match.
	MayFullMatch(input []byte) bool

	// HeapBytes returns the approximate heap memory held by the prefilter.
	HeapBytes() int
}

// Builder selects a prefilter strategy from extracted literal sets.
type Builder struct {
	required *literal.Seq
	exact    *literal.Seq
}

// NewBuilder creates a builder from a required set (one member occurs in
// every match) and an exact set (the pattern's whole language). Either may
// be nil.
func NewBuilder(required, exact *literal.Seq) *Builder {
	return &Builder{required: required, exact: exact}
}

// Build returns the prefilter for the builder's literals, or nil when no
// useful prefilter exists.
func (b *Builder) Build() Prefilter {
	return selectPrefilter(b.required, b.exact)
}

func selectPrefilter(required, exact *literal.Seq) Prefilter {
	seq := required
	if seq.IsEmpty() {
		seq = exact
	}

	var inner Prefilter
	if !seq.IsEmpty() && !seq.HasEmpty() {
		switch {
		case seq.Len() == 1 && seq.Get(0).Len() == 1:
			inner = newMemchrPrefilter(seq.Get(0).Bytes[0])
		case seq.Len() == 1:
			inner = newMemmemPrefilter(seq.Get(0).Bytes)
		default:
			if pf := newAhoCorasickPrefilter(seq); pf != nil {
				inner = pf
			}
		}
	}

	if exact.IsEmpty() {
		return inner
	}
	return newExactPrefilter(exact, inner)
}

// memchrPrefilter looks for a single byte.
type memchrPrefilter struct {
	needle byte
}

func newMemchrPrefilter(needle byte) *memchrPrefilter {
	return &memchrPrefilter{needle: needle}
}

func (p *memchrPrefilter) IsMatch(haystack []byte) bool {
	return bytes.IndexByte(haystack, p.needle) >= 0
}

func (p *memchrPrefilter) MayFullMatch(input []byte) bool {
	return p.IsMatch(input)
}

func (p *memchrPrefilter) HeapBytes() int {
	return 0
}

// memmemPrefilter looks for a single substring. The needle is copied.
type memmemPrefilter struct {
	needle []byte
}

func newMemmemPrefilter(needle []byte) *memmemPrefilter {
	return &memmemPrefilter{needle: append([]byte(nil), needle...)}
}

func (p *memmemPrefilter) IsMatch(haystack []byte) bool {
	return bytes.Contains(haystack, p.needle)
}

func (p *memmemPrefilter) MayFullMatch(input []byte) bool {
	return len(input) >= len(p.needle) && p.IsMatch(input)
}

func (p *memmemPrefilter) HeapBytes() int {
	return len(p.needle)
}

// ahoCorasickPrefilter looks for any of several literals in one pass.
type ahoCorasickPrefilter struct {
	auto      *ahocorasick.Automaton
	minLen    int
	heapBytes int
}

// newAhoCorasickPrefilter returns nil when the automaton cannot be built.
func newAhoCorasickPrefilter(seq *literal.Seq) *ahoCorasickPrefilter {
	builder := ahocorasick.NewBuilder()
	heap := 0
	for i := 0; i < seq.Len(); i++ {
		lit := seq.Get(i)
		builder.AddPattern(lit.Bytes)
		heap += lit.Len()
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &ahoCorasickPrefilter{auto: auto, minLen: seq.MinLen(), heapBytes: heap}
}

func (p *ahoCorasickPrefilter) IsMatch(haystack []byte) bool {
	return len(haystack) >= p.minLen && p.auto.IsMatch(haystack)
}

func (p *ahoCorasickPrefilter) MayFullMatch(input []byte) bool {
	return p.IsMatch(input)
}

func (p *ahoCorasickPrefilter) HeapBytes() int {
	return p.heapBytes
}

// exactPrefilter holds a pattern's complete language. Full matches reduce
// to set membership; substring checks go to inner, which may be nil when
// the set contains the empty string.
type exactPrefilter struct {
	set   map[string]struct{}
	inner Prefilter
	heap  int
}

func newExactPrefilter(exact *literal.Seq, inner Prefilter) *exactPrefilter {
	p := &exactPrefilter{set: make(map[string]struct{}, exact.Len()), inner: inner}
	for _, lit := range exact.Literals() {
		p.set[string(lit.Bytes)] = struct{}{}
		p.heap += lit.Len()
	}
	if inner != nil {
		p.heap += inner.HeapBytes()
	}
	return p
}

func (p *exactPrefilter) IsMatch(haystack []byte) bool {
	if p.inner == nil {
		return true
	}
	return p.inner.IsMatch(haystack)
}

func (p *exactPrefilter) MayFullMatch(input []byte) bool {
	_, ok := p.set[string(input)]
	return ok
}

func (p *exactPrefilter) HeapBytes() int {
	return p.heap
}
