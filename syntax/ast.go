// Package syntax parses regular expressions into an abstract syntax tree.
//
// The accepted syntax is the RE2 subset used by the rest of the engine:
// literals, '.', character classes (bracketed, Perl and POSIX), anchors,
// word boundaries, greedy and non-greedy repetition including bounded
// {n,m} forms, alternation, capturing, named and non-capturing groups, and
// flag groups (?imsU).
//
// Parsing never consults input text and has no side effects. Errors report
// the byte offset of the first offending token.
package syntax

import (
	"strconv"
	"strings"
	"unicode"
)

// Op identifies the operator of a Regexp node.
type Op uint8

const (
	// OpNoMatch matches nothing (an empty character class).
	OpNoMatch Op = iota + 1
	// OpEmptyMatch matches the empty string.
	OpEmptyMatch
	// OpLiteral matches the code points in Runes, in order.
	OpLiteral
	// OpCharClass matches one code point in the sorted [lo, hi] pairs of Runes.
	OpCharClass
	// OpAnyCharNotNL matches any code point except '\n'.
	OpAnyCharNotNL
	// OpAnyChar matches any code point.
	OpAnyChar
	// OpBeginLine matches at the start of input or after '\n'.
	OpBeginLine
	// OpEndLine matches at the end of input or before '\n'.
	OpEndLine
	// OpBeginText matches at the start of input.
	OpBeginText
	// OpEndText matches at the end of input.
	OpEndText
	// OpWordBoundary matches at an ASCII word boundary.
	OpWordBoundary
	// OpNoWordBoundary matches where OpWordBoundary does not.
	OpNoWordBoundary
	// OpCapture records the match of Sub[0] as group Cap.
	OpCapture
	// OpStar matches Sub[0] zero or more times.
	OpStar
	// OpPlus matches Sub[0] one or more times.
	OpPlus
	// OpQuest matches Sub[0] zero or one time.
	OpQuest
	// OpRepeat matches Sub[0] between Min and Max times; Max == -1 is unbounded.
	OpRepeat
	// OpConcat matches the concatenation of Sub.
	OpConcat
	// OpAlternate matches any of Sub, preferring earlier branches.
	OpAlternate
)

var opNames = [...]string{
	OpNoMatch:        "NoMatch",
	OpEmptyMatch:     "EmptyMatch",
	OpLiteral:        "Literal",
	OpCharClass:      "CharClass",
	OpAnyCharNotNL:   "AnyCharNotNL",
	OpAnyChar:        "AnyChar",
	OpBeginLine:      "BeginLine",
	OpEndLine:        "EndLine",
	OpBeginText:      "BeginText",
	OpEndText:        "EndText",
	OpWordBoundary:   "WordBoundary",
	OpNoWordBoundary: "NoWordBoundary",
	OpCapture:        "Capture",
	OpStar:           "Star",
	OpPlus:           "Plus",
	OpQuest:          "Quest",
	OpRepeat:         "Repeat",
	OpConcat:         "Concat",
	OpAlternate:      "Alternate",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// Flags control parsing and are recorded on the nodes they affect.
type Flags uint16

const (
	// FoldCase makes literals and classes match case-insensitively.
	FoldCase Flags = 1 << iota
	// Literal treats the whole pattern as literal text.
	Literal
	// DotNL lets '.' match '\n'.
	DotNL
	// MultiLine makes '^' and '$' match at line boundaries.
	MultiLine
	// NonGreedy reverses the greediness of repetition operators.
	NonGreedy
	// NeverCapture turns every capturing group into a non-capturing one.
	NeverCapture
)

// Regexp is a node in the syntax tree.
type Regexp struct {
	Op    Op
	Flags Flags
	Sub   []*Regexp
	Runes []rune // literal runes, or [lo, hi] pairs for OpCharClass
	Min   int    // OpRepeat
	Max   int    // OpRepeat
	Cap   int    // OpCapture group index
	Name  string // OpCapture group name
}

// Greedy reports whether a repetition node prefers more iterations.
func (re *Regexp) Greedy() bool {
	return re.Flags&NonGreedy == 0
}

// MaxCap returns the largest capture group index in the tree.
func (re *Regexp) MaxCap() int {
	m := 0
	if re.Op == OpCapture {
		m = re.Cap
	}
	for _, sub := range re.Sub {
		if n := sub.MaxCap(); n > m {
			m = n
		}
	}
	return m
}

// CapNames returns the names of the capture groups, indexed by group number.
// Index 0 and unnamed groups have the empty name.
func (re *Regexp) CapNames() []string {
	names := make([]string, re.MaxCap()+1)
	re.capNames(names)
	return names
}

func (re *Regexp) capNames(names []string) {
	if re.Op == OpCapture {
		names[re.Cap] = re.Name
	}
	for _, sub := range re.Sub {
		sub.capNames(names)
	}
}

// Walk calls fn for re and each descendant in depth-first, left-to-right
// order. Children are skipped when fn returns false.
func Walk(re *Regexp, fn func(*Regexp) bool) {
	if !fn(re) {
		return
	}
	for _, sub := range re.Sub {
		Walk(sub, fn)
	}
}

// String renders re in a canonical syntax that parses back to an
// equivalent tree.
func (re *Regexp) String() string {
	var b strings.Builder
	writeRegexp(&b, re)
	return b.String()
}

func writeRegexp(b *strings.Builder, re *Regexp) {
	switch re.Op {
	case OpNoMatch:
		b.WriteString(`[^\x00-\x{10FFFF}]`)
	case OpEmptyMatch:
		b.WriteString(`(?:)`)
	case OpLiteral:
		for _, r := range re.Runes {
			writeLiteralRune(b, r)
		}
	case OpCharClass:
		writeClass(b, re.Runes)
	case OpAnyCharNotNL:
		b.WriteString(`(?-s:.)`)
	case OpAnyChar:
		b.WriteString(`(?s:.)`)
	case OpBeginLine:
		b.WriteString(`(?m:^)`)
	case OpEndLine:
		b.WriteString(`(?m:$)`)
	case OpBeginText:
		b.WriteString(`\A`)
	case OpEndText:
		b.WriteString(`\z`)
	case OpWordBoundary:
		b.WriteString(`\b`)
	case OpNoWordBoundary:
		b.WriteString(`\B`)
	case OpCapture:
		if re.Name != "" {
			b.WriteString(`(?P<` + re.Name + `>`)
		} else {
			b.WriteByte('(')
		}
		writeRegexp(b, re.Sub[0])
		b.WriteByte(')')
	case OpStar, OpPlus, OpQuest, OpRepeat:
		writeRepeated(b, re.Sub[0])
		switch re.Op {
		case OpStar:
			b.WriteByte('*')
		case OpPlus:
			b.WriteByte('+')
		case OpQuest:
			b.WriteByte('?')
		default:
			b.WriteByte('{')
			b.WriteString(strconv.Itoa(re.Min))
			if re.Max != re.Min {
				b.WriteByte(',')
				if re.Max >= 0 {
					b.WriteString(strconv.Itoa(re.Max))
				}
			}
			b.WriteByte('}')
		}
		if !re.Greedy() {
			b.WriteByte('?')
		}
	case OpConcat:
		for _, sub := range re.Sub {
			if sub.Op == OpAlternate {
				b.WriteString(`(?:`)
				writeRegexp(b, sub)
				b.WriteByte(')')
				continue
			}
			writeRegexp(b, sub)
		}
	case OpAlternate:
		for i, sub := range re.Sub {
			if i > 0 {
				b.WriteByte('|')
			}
			writeRegexp(b, sub)
		}
	}
}

// writeRepeated wraps sub in a group when a postfix operator would
// otherwise bind to only part of it.
func writeRepeated(b *strings.Builder, sub *Regexp) {
	simple := false
	switch sub.Op {
	case OpCharClass, OpAnyChar, OpAnyCharNotNL, OpCapture, OpEmptyMatch, OpNoMatch:
		simple = true
	case OpLiteral:
		simple = len(sub.Runes) == 1
	}
	if simple {
		writeRegexp(b, sub)
		return
	}
	b.WriteString(`(?:`)
	writeRegexp(b, sub)
	b.WriteByte(')')
}

func writeLiteralRune(b *strings.Builder, r rune) {
	if r < utf8RuneSelf && strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
		b.WriteByte('\\')
		b.WriteRune(r)
		return
	}
	if unicode.IsPrint(r) {
		b.WriteRune(r)
		return
	}
	writeHexRune(b, r)
}

func writeClassRune(b *strings.Builder, r rune) {
	if r < utf8RuneSelf && strings.ContainsRune(`\-[]^`, r) {
		b.WriteByte('\\')
		b.WriteRune(r)
		return
	}
	if unicode.IsPrint(r) && r != ' ' {
		b.WriteRune(r)
		return
	}
	writeHexRune(b, r)
}

func writeHexRune(b *strings.Builder, r rune) {
	b.WriteString(`\x{`)
	b.WriteString(strconv.FormatInt(int64(r), 16))
	b.WriteByte('}')
}

func writeClass(b *strings.Builder, ranges []rune) {
	b.WriteByte('[')
	for i := 0; i+1 < len(ranges); i += 2 {
		lo, hi := ranges[i], ranges[i+1]
		writeClassRune(b, lo)
		if hi != lo {
			b.WriteByte('-')
			writeClassRune(b, hi)
		}
	}
	b.WriteByte(']')
}

const utf8RuneSelf = 0x80
