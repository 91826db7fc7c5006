package syntax

import (
	"sort"
	"unicode"
)

const (
	// MaxRune is the largest code point a class can contain.
	MaxRune = unicode.MaxRune

	// maxFoldRune bounds the code points that have simple case folds, so
	// folding a wide range does not walk the whole code space.
	maxFoldRune = 0x1E943
)

// classBuilder accumulates [lo, hi] pairs for a character class.
type classBuilder struct {
	ranges []rune
}

func (c *classBuilder) addRange(lo, hi rune) {
	c.ranges = append(c.ranges, lo, hi)
}

func (c *classBuilder) addRanges(ranges []rune) {
	c.ranges = append(c.ranges, ranges...)
}

func (c *classBuilder) addNegatedRanges(ranges []rune) {
	c.ranges = append(c.ranges, negateClass(cleanClass(append([]rune(nil), ranges...)))...)
}

// addFoldedRange adds lo-hi together with every simple case fold of the
// code points inside it.
func (c *classBuilder) addFoldedRange(lo, hi rune) {
	c.addRange(lo, hi)
	top := hi
	if top > maxFoldRune {
		top = maxFoldRune
	}
	for r := lo; r <= top; r++ {
		for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
			c.addRange(f, f)
		}
	}
}

// cleanClass sorts the pairs in ranges and merges overlapping or adjacent
// ones in place.
func cleanClass(ranges []rune) []rune {
	if len(ranges) <= 2 {
		return ranges
	}
	sort.Sort(rangeSort(ranges))
	w := 2
	for i := 2; i < len(ranges); i += 2 {
		lo, hi := ranges[i], ranges[i+1]
		if lo <= ranges[w-1]+1 {
			if hi > ranges[w-1] {
				ranges[w-1] = hi
			}
			continue
		}
		ranges[w] = lo
		ranges[w+1] = hi
		w += 2
	}
	return ranges[:w]
}

// negateClass returns the complement of a clean class over [0, MaxRune].
func negateClass(ranges []rune) []rune {
	out := make([]rune, 0, len(ranges)+2)
	next := rune(0)
	for i := 0; i < len(ranges); i += 2 {
		if ranges[i] > next {
			out = append(out, next, ranges[i]-1)
		}
		next = ranges[i+1] + 1
	}
	if next <= MaxRune {
		out = append(out, next, MaxRune)
	}
	return out
}

type rangeSort []rune

func (r rangeSort) Len() int { return len(r) / 2 }

func (r rangeSort) Less(i, j int) bool {
	i, j = i*2, j*2
	if r[i] != r[j] {
		return r[i] < r[j]
	}
	return r[i+1] > r[j+1]
}

func (r rangeSort) Swap(i, j int) {
	i, j = i*2, j*2
	r[i], r[i+1], r[j], r[j+1] = r[j], r[j+1], r[i], r[i+1]
}

var (
	perlDigit = []rune{'0', '9'}
	perlSpace = []rune{'\t', '\n', '\f', '\r', ' ', ' '}
	perlWord  = []rune{'0', '9', 'A', 'Z', '_', '_', 'a', 'z'}
)

// perlClasses maps the letter of \d, \s, \w to its ranges.
var perlClasses = map[byte][]rune{
	'd': perlDigit,
	's': perlSpace,
	'w': perlWord,
}

// posixClasses maps [:name:] to its ASCII ranges.
var posixClasses = map[string][]rune{
	"alnum":  {'0', '9', 'A', 'Z', 'a', 'z'},
	"alpha":  {'A', 'Z', 'a', 'z'},
	"ascii":  {0, 0x7F},
	"blank":  {'\t', '\t', ' ', ' '},
	"cntrl":  {0, 0x1F, 0x7F, 0x7F},
	"digit":  {'0', '9'},
	"graph":  {'!', '~'},
	"lower":  {'a', 'z'},
	"print":  {' ', '~'},
	"punct":  {'!', '/', ':', '@', '[', '`', '{', '~'},
	"space":  {'\t', '\r', ' ', ' '},
	"upper":  {'A', 'Z'},
	"word":   {'0', '9', 'A', 'Z', '_', '_', 'a', 'z'},
	"xdigit": {'0', '9', 'A', 'F', 'a', 'f'},
}
