package literal

import (
	"unicode/utf8"

	"github.com/coregx/rematch/syntax"
)

// ExtractorConfig bounds how much literal extraction may expand a pattern.
//
// Example:
//
//	config := literal.ExtractorConfig{
//	    MaxLiterals:   64,
//	    MaxLiteralLen: 64,
//	    MaxClassSize:  10,
//	}
//	extractor := literal.New(config)
type ExtractorConfig struct {
	// MaxLiterals limits the size of any extracted set. Default: 64.
	MaxLiterals int

	// MaxLiteralLen limits the length of each literal in bytes. Longer
	// required literals are truncated; longer exact literals make the set
	// inexact. Default: 64.
	MaxLiteralLen int

	// MaxClassSize is the largest character class that is expanded into
	// one literal per code point. Default: 10.
	MaxClassSize int
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 64,
		MaxClassSize:  10,
	}
}

// maxDepth bounds recursion over the AST. Deeper subtrees yield nothing.
const maxDepth = 100

// Extractor computes literal sets from a syntax tree.
//
// Example:
//
//	re, _ := syntax.Parse(`(\d+)-hello(world|there)`, 0)
//	req := literal.New(literal.DefaultConfig()).Required(re)
//	// req = ["-hellothere", "-helloworld"]
type Extractor struct {
	config ExtractorConfig
}

// New creates an Extractor. Zero fields of config take their defaults.
func New(config ExtractorConfig) *Extractor {
	def := DefaultConfig()
	if config.MaxLiterals <= 0 {
		config.MaxLiterals = def.MaxLiterals
	}
	if config.MaxLiteralLen <= 0 {
		config.MaxLiteralLen = def.MaxLiteralLen
	}
	if config.MaxClassSize <= 0 {
		config.MaxClassSize = def.MaxClassSize
	}
	return &Extractor{config: config}
}

// Exact returns the pattern's whole language when it is a finite set of at
// most MaxLiterals strings, sorted and deduplicated, or nil. Patterns with
// anchors or word boundaries are never exact.
func (e *Extractor) Exact(re *syntax.Regexp) *Seq {
	f := e.analyze(re, 0)
	if f.exact == nil {
		return nil
	}
	s := f.exact.Clone()
	s.Dedup()
	return s
}

// Required returns a set of literals one of which occurs in every match of
// the pattern, or nil when no such non-empty set was found. The literals
// are marked incomplete.
//
// Examples:
//
//	"hello"          → ["hello"]
//	"foo|bar"        → ["bar", "foo"]
//	`\w+@\w+\.com`   → [".com"]
//	"a*"             → nil
func (e *Extractor) Required(re *syntax.Regexp) *Seq {
	s := e.analyze(re, 0).best()
	if s == nil {
		return nil
	}
	s = s.Clone()
	for i := range s.literals {
		if s.literals[i].Len() > e.config.MaxLiteralLen {
			s.literals[i].Bytes = s.literals[i].Bytes[:e.config.MaxLiteralLen]
		}
	}
	s.MakeInexact()
	s.Dedup()
	return s
}

// facts describes one subexpression. exact is its whole language, if
// finite and small; required holds literals one of which every match of
// the subexpression contains.
type facts struct {
	exact    *Seq
	required *Seq
}

func (f facts) best() *Seq {
	return better(f.exact, f.required)
}

// useless reports whether s gives no information: unknown, empty, or
// satisfied by the empty string.
func useless(s *Seq) bool {
	return s.IsEmpty() || s.HasEmpty()
}

// better picks the more selective of two required sets: the longer
// shortest literal first, then the smaller set.
func better(a, b *Seq) *Seq {
	switch {
	case useless(a) && useless(b):
		return nil
	case useless(a):
		return b
	case useless(b):
		return a
	}
	if la, lb := a.MinLen(), b.MinLen(); la != lb {
		if la > lb {
			return a
		}
		return b
	}
	if b.Len() < a.Len() {
		return b
	}
	return a
}

func emptySeq() *Seq {
	return NewSeq(NewLiteral([]byte{}, true))
}

func (e *Extractor) analyze(re *syntax.Regexp, depth int) facts {
	if depth > maxDepth {
		return facts{}
	}

	switch re.Op {
	case syntax.OpEmptyMatch:
		return facts{exact: emptySeq()}

	case syntax.OpLiteral:
		b := encodeRunes(re.Runes)
		if len(b) > e.config.MaxLiteralLen {
			return facts{required: NewSeq(NewLiteral(b, false))}
		}
		return facts{exact: NewSeq(NewLiteral(b, true))}

	case syntax.OpCharClass:
		return facts{exact: e.expandClass(re.Runes)}

	case syntax.OpCapture:
		return e.analyze(re.Sub[0], depth+1)

	case syntax.OpQuest:
		f := e.analyze(re.Sub[0], depth+1)
		if f.exact != nil && f.exact.Len()+1 <= e.config.MaxLiterals {
			return facts{exact: union(f.exact, emptySeq())}
		}
		return facts{}

	case syntax.OpPlus:
		return facts{required: e.analyze(re.Sub[0], depth+1).best()}

	case syntax.OpRepeat:
		if re.Max == 0 {
			return facts{exact: emptySeq()}
		}
		if re.Min == 0 {
			return facts{}
		}
		f := e.analyze(re.Sub[0], depth+1)
		if re.Min == re.Max && f.exact != nil {
			p := emptySeq()
			for i := 0; i < re.Min && p != nil; i++ {
				p = cross(p, f.exact, e.config.MaxLiterals, e.config.MaxLiteralLen)
			}
			if p != nil {
				return facts{exact: p}
			}
		}
		return facts{required: f.best()}

	case syntax.OpConcat:
		return e.concat(re.Sub, depth)

	case syntax.OpAlternate:
		return e.alternate(re.Sub, depth)
	}

	// Assertions, unbounded stars, '.' and large classes carry nothing.
	return facts{}
}

// concat multiplies out runs of consecutive exact subexpressions and keeps
// the most selective run or sub requirement.
func (e *Extractor) concat(subs []*syntax.Regexp, depth int) facts {
	var req *Seq
	run := emptySeq()
	exact := true
	for _, sub := range subs {
		f := e.analyze(sub, depth+1)
		req = better(req, f.required)
		if f.exact == nil {
			req = better(req, run)
			run = emptySeq()
			exact = false
			continue
		}
		if p := cross(run, f.exact, e.config.MaxLiterals, e.config.MaxLiteralLen); p != nil {
			run = p
			continue
		}
		req = better(req, run)
		run = f.exact
		exact = false
	}
	if exact {
		return facts{exact: run}
	}
	return facts{required: better(req, run)}
}

func (e *Extractor) alternate(subs []*syntax.Regexp, depth int) facts {
	exact, req := NewSeq(), NewSeq()
	for _, sub := range subs {
		f := e.analyze(sub, depth+1)
		if exact != nil {
			if f.exact != nil && exact.Len()+f.exact.Len() <= e.config.MaxLiterals {
				exact = union(exact, f.exact)
			} else {
				exact = nil
			}
		}
		if req != nil {
			b := f.best()
			if b == nil || req.Len()+b.Len() > e.config.MaxLiterals {
				req = nil
			} else {
				req = union(req, b)
			}
		}
	}
	return facts{exact: exact, required: req}
}

// expandClass returns one literal per code point of a class, or nil when
// the class is larger than MaxClassSize.
func (e *Extractor) expandClass(ranges []rune) *Seq {
	n := 0
	for i := 0; i+1 < len(ranges); i += 2 {
		n += int(ranges[i+1]-ranges[i]) + 1
		if n > e.config.MaxClassSize {
			return nil
		}
	}
	lits := make([]Literal, 0, n)
	for i := 0; i+1 < len(ranges); i += 2 {
		for r := ranges[i]; r <= ranges[i+1]; r++ {
			lits = append(lits, NewLiteral(utf8.AppendRune(nil, r), true))
		}
	}
	return NewSeq(lits...)
}

func encodeRunes(runes []rune) []byte {
	b := make([]byte, 0, len(runes))
	for _, r := range runes {
		b = utf8.AppendRune(b, r)
	}
	return b
}
