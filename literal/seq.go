// Package literal extracts literal byte strings from a parsed pattern.
//
// Two kinds of sets are produced:
//   - an exact set, when the pattern's language is a small finite set of
//     strings (e.g. `foo|bar`);
//   - a required set, when every match must contain at least one member
//     (e.g. "hello" for `\w+hello\d*`).
//
// Both feed the prefilter package, which rejects inputs before the NFA runs.
package literal

import (
	"bytes"
	"sort"
)

// Literal is a byte string extracted from a pattern.
//
// Complete is true when the literal is a whole member of the pattern's
// language, and false when it is only a substring that a match must contain.
type Literal struct {
	Bytes    []byte
	Complete bool
}

// NewLiteral creates a Literal from b and its completeness flag.
func NewLiteral(b []byte, complete bool) Literal {
	return Literal{Bytes: b, Complete: complete}
}

// Len returns the length of the literal in bytes.
func (l Literal) Len() int {
	return len(l.Bytes)
}

// String returns a debug representation: literal{bytes, complete=bool}.
func (l Literal) String() string {
	complete := "false"
	if l.Complete {
		complete = "true"
	}
	return "literal{" + string(l.Bytes) + ", complete=" + complete + "}"
}

// Seq is a set of alternative literals.
//
// A nil *Seq means "unknown": nothing could be extracted. Methods accept a
// nil receiver.
type Seq struct {
	literals []Literal
}

// NewSeq creates a sequence from the given literals.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{literals: lits}
}

// Len returns the number of literals in the sequence.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns the i-th literal. It panics if i is out of range.
func (s *Seq) Get(i int) Literal {
	return s.literals[i]
}

// IsEmpty reports whether the sequence has no literals.
func (s *Seq) IsEmpty() bool {
	return s == nil || len(s.literals) == 0
}

// Literals returns the literals of the sequence. The slice must not be
// modified.
func (s *Seq) Literals() []Literal {
	if s == nil {
		return nil
	}
	return s.literals
}

// Bytes returns the byte strings of the sequence in order.
func (s *Seq) Bytes() [][]byte {
	out := make([][]byte, s.Len())
	for i := range out {
		out[i] = s.literals[i].Bytes
	}
	return out
}

// Clone returns a deep copy of the sequence.
func (s *Seq) Clone() *Seq {
	if s == nil {
		return nil
	}
	cloned := make([]Literal, len(s.literals))
	for i, lit := range s.literals {
		cloned[i] = Literal{Bytes: append([]byte(nil), lit.Bytes...), Complete: lit.Complete}
	}
	return &Seq{literals: cloned}
}

// MinLen returns the length of the shortest literal, or 0 for an empty
// sequence.
func (s *Seq) MinLen() int {
	if s.IsEmpty() {
		return 0
	}
	n := s.literals[0].Len()
	for _, lit := range s.literals[1:] {
		if lit.Len() < n {
			n = lit.Len()
		}
	}
	return n
}

// HasEmpty reports whether the sequence contains the empty string.
func (s *Seq) HasEmpty() bool {
	for _, lit := range s.Literals() {
		if lit.Len() == 0 {
			return true
		}
	}
	return false
}

// Dedup sorts the literals and removes duplicates in place. A literal that
// appears both complete and incomplete keeps the incomplete flag.
func (s *Seq) Dedup() {
	if s.Len() < 2 {
		return
	}
	sort.SliceStable(s.literals, func(i, j int) bool {
		return bytes.Compare(s.literals[i].Bytes, s.literals[j].Bytes) < 0
	})
	out := s.literals[:1]
	for _, lit := range s.literals[1:] {
		last := &out[len(out)-1]
		if bytes.Equal(last.Bytes, lit.Bytes) {
			last.Complete = last.Complete && lit.Complete
			continue
		}
		out = append(out, lit)
	}
	s.literals = out
}

// MakeInexact clears the Complete flag of every literal.
func (s *Seq) MakeInexact() {
	for i := range s.Literals() {
		s.literals[i].Complete = false
	}
}

// union returns the literals of a followed by those of b.
func union(a, b *Seq) *Seq {
	lits := make([]Literal, 0, a.Len()+b.Len())
	lits = append(lits, a.Literals()...)
	lits = append(lits, b.Literals()...)
	return &Seq{literals: lits}
}

// cross returns every concatenation x+y with x from a and y from b, or nil
// when the product would exceed maxLiterals entries or maxLen bytes.
func cross(a, b *Seq, maxLiterals, maxLen int) *Seq {
	if a.Len()*b.Len() > maxLiterals {
		return nil
	}
	lits := make([]Literal, 0, a.Len()*b.Len())
	for _, x := range a.Literals() {
		for _, y := range b.Literals() {
			if x.Len()+y.Len() > maxLen {
				return nil
			}
			buf := make([]byte, 0, x.Len()+y.Len())
			buf = append(buf, x.Bytes...)
			buf = append(buf, y.Bytes...)
			lits = append(lits, Literal{Bytes: buf, Complete: x.Complete && y.Complete})
		}
	}
	return &Seq{literals: lits}
}
