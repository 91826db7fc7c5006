package nfa

import (
	"sort"
	"unicode/utf8"
)

const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

// utf8Range is an inclusive byte range at one position of a UTF-8 sequence.
type utf8Range struct {
	lo, hi byte
}

// utf8Sequence matches every encoding whose i-th byte falls in the i-th range.
type utf8Sequence []utf8Range

// utf8Sequences converts sorted [lo, hi] rune pairs into byte-range
// sequences of equal encoded length, in ascending code point order.
// Surrogates are skipped since they have no valid encoding.
func utf8Sequences(ranges []rune) []utf8Sequence {
	var out []utf8Sequence
	for i := 0; i+1 < len(ranges); i += 2 {
		out = appendUTF8Sequences(out, ranges[i], ranges[i+1])
	}
	return out
}

type runeSpan struct {
	lo, hi rune
}

func appendUTF8Sequences(out []utf8Sequence, lo, hi rune) []utf8Sequence {
	stack := []runeSpan{{lo, hi}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
	split:
		for s.lo <= s.hi {
			if s.lo <= surrogateMax && s.hi >= surrogateMin {
				if s.hi > surrogateMax {
					stack = append(stack, runeSpan{surrogateMax + 1, s.hi})
				}
				s.hi = surrogateMin - 1
				continue
			}
			for _, top := range [...]rune{0x7F, 0x7FF, 0xFFFF} {
				if s.lo <= top && top < s.hi {
					stack = append(stack, runeSpan{top + 1, s.hi})
					s.hi = top
					continue split
				}
			}
			if s.hi < utf8.RuneSelf {
				out = append(out, utf8Sequence{{byte(s.lo), byte(s.hi)}})
				break
			}
			for n := 1; n < utf8.UTFMax; n++ {
				m := rune(1)<<(6*n) - 1
				if s.lo&^m == s.hi&^m {
					continue
				}
				if s.lo&m != 0 {
					stack = append(stack, runeSpan{(s.lo | m) + 1, s.hi})
					s.hi = s.lo | m
					continue split
				}
				if s.hi&m != m {
					stack = append(stack, runeSpan{s.hi &^ m, s.hi})
					s.hi = (s.hi &^ m) - 1
					continue split
				}
			}
			var a, b [utf8.UTFMax]byte
			n := utf8.EncodeRune(a[:], s.lo)
			utf8.EncodeRune(b[:], s.hi)
			seq := make(utf8Sequence, n)
			for i := range seq {
				seq[i] = utf8Range{a[i], b[i]}
			}
			out = append(out, seq)
			break
		}
	}
	return out
}

// reverseSequences reverses the byte order of every sequence and re-sorts
// them so sequences sharing a leading range are adjacent.
func reverseSequences(seqs []utf8Sequence) {
	for _, seq := range seqs {
		for i, j := 0, len(seq)-1; i < j; i, j = i+1, j-1 {
			seq[i], seq[j] = seq[j], seq[i]
		}
	}
	sort.Slice(seqs, func(i, j int) bool {
		a, b := seqs[i], seqs[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				if a[k].lo != b[k].lo {
					return a[k].lo < b[k].lo
				}
				return a[k].hi < b[k].hi
			}
		}
		return len(a) < len(b)
	})
}

// utf8SuffixCache shares ByteRange states with identical range and target
// within one class, so sequences with common tails reuse states.
type utf8SuffixCache map[utf8SuffixKey]StateID

type utf8SuffixKey struct {
	r    utf8Range
	next StateID
}

func (c utf8SuffixCache) getOrCreate(b *Builder, r utf8Range, next StateID) StateID {
	key := utf8SuffixKey{r: r, next: next}
	if id, ok := c[key]; ok {
		return id
	}
	id := b.AddByteRange(r.lo, r.hi, next)
	c[key] = id
	return id
}

// compileSequences builds a byte automaton for sorted sequences that ends
// in join. Sequences with the same leading range share one transition;
// disjoint leading ranges collapse into a single Sparse state, and
// overlapping ones (possible after reversal) become ordered alternatives.
func (c *Compiler) compileSequences(seqs []utf8Sequence, join StateID, cache utf8SuffixCache) StateID {
	type group struct {
		r     utf8Range
		tails []utf8Sequence
		final bool
	}
	var groups []group
	for _, seq := range seqs {
		head, tail := seq[0], seq[1:]
		if n := len(groups); n == 0 || groups[n-1].r != head {
			groups = append(groups, group{r: head})
		}
		g := &groups[len(groups)-1]
		if len(tail) == 0 {
			g.final = true
		} else {
			g.tails = append(g.tails, tail)
		}
	}

	targets := make([]StateID, len(groups))
	for i, g := range groups {
		next := join
		if len(g.tails) > 0 {
			next = c.compileSequences(g.tails, join, cache)
			if g.final {
				next = c.builder.AddSplit(join, next)
			}
		}
		targets[i] = next
	}

	disjoint := true
	for i := 1; i < len(groups); i++ {
		if groups[i].r.lo <= groups[i-1].r.hi {
			disjoint = false
			break
		}
	}
	if disjoint {
		if len(groups) == 1 {
			return cache.getOrCreate(c.builder, groups[0].r, targets[0])
		}
		trans := make([]Transition, len(groups))
		for i, g := range groups {
			trans[i] = Transition{Lo: g.r.lo, Hi: g.r.hi, Next: targets[i]}
		}
		return c.builder.AddSparse(trans)
	}

	alts := make([]StateID, len(groups))
	for i, g := range groups {
		alts[i] = cache.getOrCreate(c.builder, g.r, targets[i])
	}
	return c.buildSplitChain(alts)
}

// sequenceStates returns an upper bound on the states compileSequences
// creates for seqs, join included.
func sequenceStates(seqs []utf8Sequence) int {
	n := 1
	for _, seq := range seqs {
		n += 2 * len(seq)
	}
	return n
}
