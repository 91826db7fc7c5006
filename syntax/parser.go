package syntax

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxRepeat is the largest count accepted in {n,m}. Larger bounds are
	// syntax errors; products of nested bounds are left to the compiler's
	// program size limit.
	MaxRepeat = 100000

	// DefaultMaxDepth is the group nesting limit used by Parse.
	DefaultMaxDepth = 1000
)

// ErrInvalidUTF8 reports a pattern that is not valid UTF-8.
const ErrInvalidUTF8 ErrorCode = "invalid UTF-8"

// Parse parses a pattern with the given flags.
func Parse(s string, flags Flags) (*Regexp, error) {
	return ParseWithMaxDepth(s, flags, DefaultMaxDepth)
}

// ParseWithMaxDepth parses a pattern, failing with ErrNestingDepth when
// groups nest deeper than maxDepth.
func ParseWithMaxDepth(s string, flags Flags, maxDepth int) (*Regexp, error) {
	if flags&Literal != 0 {
		return parseLiteral(s, flags)
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := &parser{
		src:      s,
		flags:    flags,
		names:    make(map[string]bool),
		maxDepth: maxDepth,
	}
	re, err := p.parseAlternate()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.src) {
		// parseConcat only stops early at ')'.
		return nil, &Error{Code: ErrUnexpectedParen, Pos: p.pos, Expr: p.src}
	}
	return re, nil
}

func parseLiteral(s string, flags Flags) (*Regexp, error) {
	if !utf8.ValidString(s) {
		return nil, &Error{Code: ErrInvalidUTF8, Pos: firstInvalid(s), Expr: s}
	}
	p := &parser{src: s, flags: flags}
	items := make([]*Regexp, 0, len(s))
	for _, r := range s {
		items = append(items, p.literal(r))
	}
	return concat(items, flags), nil
}

type parser struct {
	src      string
	pos      int
	flags    Flags
	ncap     int
	names    map[string]bool
	depth    int
	maxDepth int
}

func (p *parser) errorAt(code ErrorCode, start, end int) *Error {
	if end > len(p.src) {
		end = len(p.src)
	}
	return &Error{Code: code, Pos: start, Expr: p.src[start:end]}
}

func (p *parser) more() bool {
	return p.pos < len(p.src)
}

func (p *parser) peekByte() byte {
	return p.src[p.pos]
}

// parseAlternate parses branch('|' branch)* up to ')' or end of input.
func (p *parser) parseAlternate() (*Regexp, error) {
	var branches []*Regexp
	for {
		br, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		branches = append(branches, br)
		if p.more() && p.peekByte() == '|' {
			p.pos++
			continue
		}
		break
	}
	if len(branches) == 1 {
		return branches[0], nil
	}
	return &Regexp{Op: OpAlternate, Flags: p.flags, Sub: branches}, nil
}

// parseConcat parses a sequence of repeated atoms.
func (p *parser) parseConcat() (*Regexp, error) {
	var items []*Regexp
	lastRepeat := -1
	for p.more() {
		start := p.pos
		c := p.peekByte()
		if c == '|' || c == ')' {
			break
		}
		switch c {
		case '*', '+', '?':
			p.pos++
			op := OpQuest
			switch c {
			case '*':
				op = OpStar
			case '+':
				op = OpPlus
			}
			if err := p.repeat(items, lastRepeat, start, op, 0, 0); err != nil {
				return nil, err
			}
			lastRepeat = start
			continue
		case '{':
			lo, hi, ok, err := p.parseRepeatBounds()
			if err != nil {
				return nil, err
			}
			if ok {
				if err := p.repeat(items, lastRepeat, start, OpRepeat, lo, hi); err != nil {
					return nil, err
				}
				lastRepeat = start
				continue
			}
			// Not a valid bound: '{' is a literal.
			p.pos++
			items = append(items, p.literal('{'))
			lastRepeat = -1
			continue
		}

		atom, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		lastRepeat = -1
		if atom == nil {
			// Flag group: nothing to repeat until the next atom.
			items = append(items, nil)
			continue
		}
		items = append(items, atom)
	}

	kept := items[:0]
	for _, it := range items {
		if it != nil {
			kept = append(kept, it)
		}
	}
	return concat(kept, p.flags), nil
}

// repeat wraps the last item in a repetition operator whose text starts at
// start; p.pos is just past the operator.
func (p *parser) repeat(items []*Regexp, lastRepeat, start int, op Op, lo, hi int) error {
	nonGreedy := p.flags&NonGreedy != 0
	if p.more() && p.peekByte() == '?' {
		p.pos++
		nonGreedy = !nonGreedy
	}
	if lastRepeat >= 0 {
		return p.errorAt(ErrInvalidRepeatOp, lastRepeat, p.pos)
	}
	if len(items) == 0 || items[len(items)-1] == nil {
		return p.errorAt(ErrMissingRepeatArgument, start, p.pos)
	}
	flags := p.flags &^ NonGreedy
	if nonGreedy {
		flags |= NonGreedy
	}
	sub := items[len(items)-1]
	re := &Regexp{Op: op, Flags: flags, Sub: []*Regexp{sub}}
	if op == OpRepeat {
		re.Min, re.Max = lo, hi
	}
	items[len(items)-1] = re
	return nil
}

// parseRepeatBounds parses {n}, {n,} or {n,m} at p.pos. It reports ok=false
// and leaves p.pos unchanged when the text is not a repetition.
func (p *parser) parseRepeatBounds() (lo, hi int, ok bool, err error) {
	start := p.pos
	i := start + 1
	lo, i, ok = scanInt(p.src, i)
	if !ok || i >= len(p.src) {
		return 0, 0, false, nil
	}
	hi = lo
	if p.src[i] == ',' {
		i++
		if i < len(p.src) && p.src[i] == '}' {
			hi = -1
		} else {
			hi, i, ok = scanInt(p.src, i)
			if !ok {
				return 0, 0, false, nil
			}
		}
	}
	if i >= len(p.src) || p.src[i] != '}' {
		return 0, 0, false, nil
	}
	i++
	if lo > MaxRepeat || hi > MaxRepeat || (hi >= 0 && hi < lo) {
		return 0, 0, false, p.errorAt(ErrInvalidRepeatSize, start, i)
	}
	p.pos = i
	return lo, hi, true, nil
}

// scanInt reads decimal digits from s[i:]. Values past MaxRepeat are
// clamped to MaxRepeat+1 so callers can reject them without overflow.
func scanInt(s string, i int) (n, end int, ok bool) {
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		if n <= MaxRepeat {
			n = n*10 + int(s[i]-'0')
		}
		i++
	}
	if i == start {
		return 0, i, false
	}
	if n > MaxRepeat {
		n = MaxRepeat + 1
	}
	return n, i, true
}

// parseAtom parses one atom. It returns nil for a flag-only group such as (?i).
func (p *parser) parseAtom() (*Regexp, error) {
	switch c := p.peekByte(); c {
	case '(':
		return p.parseGroup()
	case '[':
		return p.parseClass()
	case '.':
		p.pos++
		if p.flags&DotNL != 0 {
			return &Regexp{Op: OpAnyChar, Flags: p.flags}, nil
		}
		return &Regexp{Op: OpAnyCharNotNL, Flags: p.flags}, nil
	case '^':
		p.pos++
		if p.flags&MultiLine != 0 {
			return &Regexp{Op: OpBeginLine, Flags: p.flags}, nil
		}
		return &Regexp{Op: OpBeginText, Flags: p.flags}, nil
	case '$':
		p.pos++
		if p.flags&MultiLine != 0 {
			return &Regexp{Op: OpEndLine, Flags: p.flags}, nil
		}
		return &Regexp{Op: OpEndText, Flags: p.flags}, nil
	case '\\':
		return p.parseEscapeAtom()
	}
	r, w := utf8.DecodeRuneInString(p.src[p.pos:])
	if r == utf8.RuneError && w == 1 {
		return nil, p.errorAt(ErrInvalidUTF8, p.pos, p.pos+1)
	}
	p.pos += w
	return p.literal(r), nil
}

func (p *parser) parseGroup() (*Regexp, error) {
	start := p.pos
	p.pos++
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		return nil, p.errorAt(ErrNestingDepth, start, len(p.src))
	}

	name := ""
	rest := p.src[p.pos:]
	switch {
	case strings.HasPrefix(rest, "?P<"), strings.HasPrefix(rest, "?<") && !strings.HasPrefix(rest, "?<=") && !strings.HasPrefix(rest, "?<!"):
		var err error
		if name, err = p.parseGroupName(start); err != nil {
			return nil, err
		}
	case strings.HasPrefix(rest, "?P"):
		return nil, p.errorAt(ErrInvalidNamedCapture, start, p.pos+3)
	case strings.HasPrefix(rest, "?"):
		flags, body, err := p.parseFlags(start)
		if err != nil {
			return nil, err
		}
		if !body {
			// (?flags) applies to the rest of the enclosing group.
			p.flags = flags
			return nil, nil
		}
		saved := p.flags
		p.flags = flags
		sub, err := p.parseGroupBody(start)
		p.flags = saved
		return sub, err
	}

	group := 0
	if p.flags&NeverCapture == 0 {
		p.ncap++
		group = p.ncap
	}
	saved := p.flags
	sub, err := p.parseGroupBody(start)
	p.flags = saved
	if err != nil {
		return nil, err
	}
	if group == 0 {
		return sub, nil
	}
	return &Regexp{Op: OpCapture, Flags: p.flags, Cap: group, Name: name, Sub: []*Regexp{sub}}, nil
}

// parseGroupBody parses up to and including the closing ')'. An unclosed
// group is reported at its '(' at start.
func (p *parser) parseGroupBody(start int) (*Regexp, error) {
	sub, err := p.parseAlternate()
	if err != nil {
		return nil, err
	}
	if !p.more() || p.peekByte() != ')' {
		return nil, p.errorAt(ErrMissingParen, start, len(p.src))
	}
	p.pos++
	return sub, nil
}

// parseGroupName parses the name of (?P<name> or (?<name>, leaving p.pos
// after the '>'.
func (p *parser) parseGroupName(start int) (string, error) {
	open := strings.IndexByte(p.src[p.pos:], '<') + p.pos
	end := strings.IndexByte(p.src[open:], '>')
	if end < 0 {
		return "", p.errorAt(ErrInvalidNamedCapture, start, len(p.src))
	}
	end += open
	name := p.src[open+1 : end]
	if !isValidCaptureName(name) || (p.flags&NeverCapture == 0 && p.names[name]) {
		return "", p.errorAt(ErrInvalidNamedCapture, start, end+1)
	}
	if p.flags&NeverCapture == 0 {
		p.names[name] = true
	} else {
		name = ""
	}
	p.pos = end + 1
	return name, nil
}

func isValidCaptureName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isWordByte(name[i]) {
			return false
		}
	}
	return true
}

// parseFlags parses (?flags) or (?flags: at p.pos, which is at '?'. It
// reports whether a group body follows.
func (p *parser) parseFlags(start int) (flags Flags, body bool, err error) {
	flags = p.flags
	negated := false
	sawFlag := false // since the last '-'
	empty := true
	for i := p.pos + 1; i < len(p.src); i++ {
		var f Flags
		switch c := p.src[i]; c {
		case 'i':
			f = FoldCase
		case 'm':
			f = MultiLine
		case 's':
			f = DotNL
		case 'U':
			f = NonGreedy
		case '-':
			if negated {
				return 0, false, p.errorAt(ErrInvalidPerlOp, start, i+1)
			}
			negated = true
			sawFlag = false
			empty = false
			continue
		case ':', ')':
			// (?: is a plain group; (?) and a dangling '-' are errors.
			if (negated && !sawFlag) || (c == ')' && empty) {
				return 0, false, p.errorAt(ErrInvalidPerlOp, start, i+1)
			}
			p.pos = i + 1
			return flags, c == ':', nil
		default:
			_, w := utf8.DecodeRuneInString(p.src[i:])
			return 0, false, p.errorAt(ErrInvalidPerlOp, start, i+w)
		}
		sawFlag = true
		empty = false
		if negated {
			flags &^= f
		} else {
			flags |= f
		}
	}
	return 0, false, p.errorAt(ErrMissingParen, start, len(p.src))
}

func (p *parser) parseEscapeAtom() (*Regexp, error) {
	start := p.pos
	if start+1 >= len(p.src) {
		return nil, p.errorAt(ErrTrailingBackslash, start, len(p.src))
	}
	switch c := p.src[start+1]; c {
	case 'A':
		p.pos += 2
		return &Regexp{Op: OpBeginText, Flags: p.flags}, nil
	case 'z':
		p.pos += 2
		return &Regexp{Op: OpEndText, Flags: p.flags}, nil
	case 'b':
		p.pos += 2
		return &Regexp{Op: OpWordBoundary, Flags: p.flags}, nil
	case 'B':
		p.pos += 2
		return &Regexp{Op: OpNoWordBoundary, Flags: p.flags}, nil
	case 'd', 'D', 's', 'S', 'w', 'W':
		p.pos += 2
		var cb classBuilder
		p.addPerlClass(&cb, c)
		return classNode(cleanClass(cb.ranges), p.flags), nil
	case 'p', 'P':
		var cb classBuilder
		if err := p.parseUnicodeClass(&cb); err != nil {
			return nil, err
		}
		return classNode(cleanClass(cb.ranges), p.flags), nil
	}
	r, err := p.parseEscapeRune()
	if err != nil {
		return nil, err
	}
	return p.literal(r), nil
}

// parseEscapeRune parses an escape that denotes a single code point.
func (p *parser) parseEscapeRune() (rune, error) {
	start := p.pos
	if start+1 >= len(p.src) {
		return 0, p.errorAt(ErrTrailingBackslash, start, len(p.src))
	}
	c, w := utf8.DecodeRuneInString(p.src[start+1:])
	p.pos = start + 1 + w
	switch {
	case c == 'a':
		return '\a', nil
	case c == 'f':
		return '\f', nil
	case c == 'n':
		return '\n', nil
	case c == 'r':
		return '\r', nil
	case c == 't':
		return '\t', nil
	case c == 'v':
		return '\v', nil
	case c >= '1' && c <= '7':
		// Octal needs a second digit; a lone \1 would be a backreference.
		if p.pos >= len(p.src) || p.src[p.pos] < '0' || p.src[p.pos] > '7' {
			break
		}
		fallthrough
	case c == '0':
		r := c - '0'
		for i := 1; i < 3 && p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '7'; i++ {
			r = r*8 + rune(p.src[p.pos]-'0')
			p.pos++
		}
		return r, nil
	case c == 'x':
		return p.parseHexEscape(start)
	case c < utf8RuneSelf && !isWordByte(byte(c)):
		return c, nil
	}
	return 0, p.errorAt(ErrInvalidEscape, start, p.pos)
}

// parseHexEscape parses the digits of \xHH or \x{H...}; p.pos is just past 'x'.
func (p *parser) parseHexEscape(start int) (rune, error) {
	if p.more() && p.peekByte() == '{' {
		end := strings.IndexByte(p.src[p.pos:], '}')
		if end < 0 {
			return 0, p.errorAt(ErrInvalidEscape, start, len(p.src))
		}
		end += p.pos
		digits := p.src[p.pos+1 : end]
		p.pos = end + 1
		if digits == "" || len(digits) > 8 {
			return 0, p.errorAt(ErrInvalidEscape, start, p.pos)
		}
		r := rune(0)
		for i := 0; i < len(digits); i++ {
			v, ok := unhex(digits[i])
			if !ok {
				return 0, p.errorAt(ErrInvalidEscape, start, p.pos)
			}
			r = r*16 + v
			if r > MaxRune {
				return 0, p.errorAt(ErrInvalidEscape, start, p.pos)
			}
		}
		return r, nil
	}
	if p.pos+2 > len(p.src) {
		return 0, p.errorAt(ErrInvalidEscape, start, len(p.src))
	}
	hi, ok1 := unhex(p.src[p.pos])
	lo, ok2 := unhex(p.src[p.pos+1])
	p.pos += 2
	if !ok1 || !ok2 {
		return 0, p.errorAt(ErrInvalidEscape, start, p.pos)
	}
	return hi*16 + lo, nil
}

func unhex(c byte) (rune, bool) {
	switch {
	case c >= '0' && c <= '9':
		return rune(c - '0'), true
	case c >= 'a' && c <= 'f':
		return rune(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return rune(c-'A') + 10, true
	}
	return 0, false
}

func (p *parser) addPerlClass(cb *classBuilder, c byte) {
	ranges := perlClasses[c|0x20]
	if c >= 'A' && c <= 'Z' {
		cb.addNegatedRanges(ranges)
		return
	}
	cb.addRanges(ranges)
}

// parseUnicodeClass parses \pX, \p{Name}, \PX or \P{Name} at p.pos.
func (p *parser) parseUnicodeClass(cb *classBuilder) error {
	start := p.pos
	negated := p.src[start+1] == 'P'
	p.pos += 2
	if !p.more() {
		return p.errorAt(ErrInvalidCharRange, start, len(p.src))
	}
	var name string
	if p.peekByte() == '{' {
		end := strings.IndexByte(p.src[p.pos:], '}')
		if end < 0 {
			return p.errorAt(ErrInvalidCharRange, start, len(p.src))
		}
		name = p.src[p.pos+1 : p.pos+end]
		p.pos += end + 1
	} else {
		_, w := utf8.DecodeRuneInString(p.src[p.pos:])
		name = p.src[p.pos : p.pos+w]
		p.pos += w
	}
	if strings.HasPrefix(name, "^") {
		negated = !negated
		name = name[1:]
	}

	var ranges []rune
	if name == "Any" {
		ranges = []rune{0, MaxRune}
	} else {
		table := unicode.Categories[name]
		if table == nil {
			table = unicode.Scripts[name]
		}
		if table == nil {
			return p.errorAt(ErrInvalidCharRange, start, p.pos)
		}
		ranges = tableRanges(table)
	}
	if p.flags&FoldCase != 0 {
		var folded classBuilder
		for i := 0; i < len(ranges); i += 2 {
			folded.addFoldedRange(ranges[i], ranges[i+1])
		}
		ranges = cleanClass(folded.ranges)
	}
	if negated {
		cb.addNegatedRanges(ranges)
		return nil
	}
	cb.addRanges(ranges)
	return nil
}

func tableRanges(t *unicode.RangeTable) []rune {
	var out []rune
	for _, r := range t.R16 {
		out = appendStrided(out, rune(r.Lo), rune(r.Hi), rune(r.Stride))
	}
	for _, r := range t.R32 {
		out = appendStrided(out, rune(r.Lo), rune(r.Hi), rune(r.Stride))
	}
	return out
}

func appendStrided(out []rune, lo, hi, stride rune) []rune {
	if stride == 1 {
		return append(out, lo, hi)
	}
	for r := lo; r <= hi; r += stride {
		out = append(out, r, r)
	}
	return out
}

// parseClass parses a bracketed class at p.pos.
func (p *parser) parseClass() (*Regexp, error) {
	start := p.pos
	p.pos++
	negated := false
	if p.more() && p.peekByte() == '^' {
		negated = true
		p.pos++
	}

	var cb classBuilder
	first := true
	for {
		if !p.more() {
			return nil, p.errorAt(ErrMissingBracket, start, len(p.src))
		}
		c := p.peekByte()
		if c == ']' && !first {
			p.pos++
			break
		}
		first = false

		if c == '[' && strings.HasPrefix(p.src[p.pos:], "[:") {
			ok, err := p.parsePosixClass(&cb)
			if err != nil {
				return nil, err
			}
			if ok {
				continue
			}
		}
		if c == '\\' && p.pos+1 < len(p.src) {
			switch e := p.src[p.pos+1]; e {
			case 'd', 'D', 's', 'S', 'w', 'W':
				p.pos += 2
				p.addPerlClass(&cb, e)
				continue
			case 'p', 'P':
				if err := p.parseUnicodeClass(&cb); err != nil {
					return nil, err
				}
				continue
			}
		}

		rangeStart := p.pos
		lo, err := p.parseClassChar(start)
		if err != nil {
			return nil, err
		}
		hi := lo
		if p.pos+1 < len(p.src) && p.peekByte() == '-' && p.src[p.pos+1] != ']' {
			p.pos++
			if end := p.classSetEnd(); end > 0 {
				// A range cannot end in a class such as \d or \pL.
				return nil, p.errorAt(ErrInvalidCharClass, rangeStart, end)
			}
			if hi, err = p.parseClassChar(start); err != nil {
				return nil, err
			}
			if hi < lo {
				return nil, p.errorAt(ErrInvalidCharRange, rangeStart, p.pos)
			}
		}
		if p.flags&FoldCase != 0 {
			cb.addFoldedRange(lo, hi)
		} else {
			cb.addRange(lo, hi)
		}
	}

	ranges := cleanClass(cb.ranges)
	if negated {
		ranges = negateClass(ranges)
	}
	return classNode(ranges, p.flags), nil
}

// classSetEnd returns the end offset of the Perl or Unicode class escape
// at p.pos, or 0 when p.pos starts a single character.
func (p *parser) classSetEnd() int {
	rest := p.src[p.pos:]
	switch {
	case len(rest) >= 2 && rest[0] == '\\' && strings.IndexByte("dDsSwW", rest[1]) >= 0:
		return p.pos + 2
	case len(rest) >= 2 && rest[0] == '\\' && (rest[1] == 'p' || rest[1] == 'P'):
		if strings.HasPrefix(rest[2:], "{") {
			if end := strings.IndexByte(rest, '}'); end > 0 {
				return p.pos + end + 1
			}
			return len(p.src)
		}
		return p.pos + 3
	}
	return 0
}

// parsePosixClass parses [:name:] or [:^name:]. It reports ok=false, with
// p.pos unchanged, when the text is not a POSIX class.
func (p *parser) parsePosixClass(cb *classBuilder) (bool, error) {
	end := strings.Index(p.src[p.pos+2:], ":]")
	if end < 0 {
		return false, nil
	}
	start := p.pos
	name := p.src[p.pos+2 : p.pos+2+end]
	negated := strings.HasPrefix(name, "^")
	if negated {
		name = name[1:]
	}
	ranges, ok := posixClasses[name]
	if !ok {
		return false, p.errorAt(ErrInvalidCharRange, start, start+2+end+2)
	}
	p.pos = start + 2 + end + 2
	if negated {
		cb.addNegatedRanges(ranges)
	} else if p.flags&FoldCase != 0 {
		for i := 0; i < len(ranges); i += 2 {
			cb.addFoldedRange(ranges[i], ranges[i+1])
		}
	} else {
		cb.addRanges(ranges)
	}
	return true, nil
}

// parseClassChar parses one possibly escaped code point inside a class.
func (p *parser) parseClassChar(classStart int) (rune, error) {
	if !p.more() {
		return 0, p.errorAt(ErrMissingBracket, classStart, len(p.src))
	}
	if p.peekByte() == '\\' {
		return p.parseEscapeRune()
	}
	r, w := utf8.DecodeRuneInString(p.src[p.pos:])
	if r == utf8.RuneError && w == 1 {
		return 0, p.errorAt(ErrInvalidUTF8, p.pos, p.pos+1)
	}
	p.pos += w
	return r, nil
}

// literal returns the node matching r under the current flags. Under
// FoldCase a code point with case variants becomes a class of its fold orbit.
func (p *parser) literal(r rune) *Regexp {
	if p.flags&FoldCase != 0 {
		if f := unicode.SimpleFold(r); f != r {
			var cb classBuilder
			cb.addRange(r, r)
			for ; f != r; f = unicode.SimpleFold(f) {
				cb.addRange(f, f)
			}
			return &Regexp{Op: OpCharClass, Flags: p.flags, Runes: cleanClass(cb.ranges)}
		}
	}
	return &Regexp{Op: OpLiteral, Flags: p.flags &^ FoldCase, Runes: []rune{r}}
}

// classNode builds the node for a clean class.
func classNode(ranges []rune, flags Flags) *Regexp {
	switch {
	case len(ranges) == 0:
		return &Regexp{Op: OpNoMatch, Flags: flags}
	case len(ranges) == 2 && ranges[0] == ranges[1]:
		return &Regexp{Op: OpLiteral, Flags: flags &^ FoldCase, Runes: []rune{ranges[0]}}
	}
	return &Regexp{Op: OpCharClass, Flags: flags, Runes: ranges}
}

// concat joins items, merging runs of adjacent literals.
func concat(items []*Regexp, flags Flags) *Regexp {
	merged := make([]*Regexp, 0, len(items))
	for _, it := range items {
		if n := len(merged); n > 0 && it.Op == OpLiteral && merged[n-1].Op == OpLiteral {
			prev := merged[n-1]
			merged[n-1] = &Regexp{
				Op:    OpLiteral,
				Flags: prev.Flags,
				Runes: append(append([]rune(nil), prev.Runes...), it.Runes...),
			}
			continue
		}
		merged = append(merged, it)
	}
	switch len(merged) {
	case 0:
		return &Regexp{Op: OpEmptyMatch, Flags: flags}
	case 1:
		return merged[0]
	}
	return &Regexp{Op: OpConcat, Flags: flags, Sub: merged}
}

func isWordByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_'
}

func firstInvalid(s string) int {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, w := utf8.DecodeRuneInString(s[i:]); w == 1 {
				return i
			}
		}
	}
	return len(s)
}
