// Package rematch is a full-match regular expression engine.
//
// A pattern is compiled into two Thompson NFA programs: a forward program
// that decides whether an entire input matches and where each capture group
// lies, and a reverse program that reads input backwards and locates the
// leftmost start of a match for unanchored search. Both are run by a PikeVM,
// so matching takes O(len(input) * ProgramSize()) time for any pattern.
//
// Captured text can be converted into typed Go values:
//
//	var name string
//	var port int
//	ok, err := rematch.FullMatch(`([^:]+):(\d+)`, "localhost:8080", &name, &port)
//	// ok == true, name == "localhost", port == 8080
//
// Ambiguous patterns resolve leftmost-first, as Perl and RE2 do: earlier
// alternatives win, greedy repetitions prefer more iterations and lazy ones
// fewer. `(a|ab)(c|bcd)` on "abcd" always captures "a" and "bcd".
//
// A compiled Pattern is immutable and safe for concurrent use.
package rematch

import (
	"github.com/coregx/rematch/literal"
	"github.com/coregx/rematch/nfa"
	"github.com/coregx/rematch/prefilter"
	"github.com/coregx/rematch/syntax"
)

// Pattern is a compiled regular expression.
//
// Example:
//
//	p := rematch.MustCompile(`(?P<key>\w+)=(?P<value>\w*)`)
//	m := p.FullMatchString("lang=go")
//	fmt.Println(m.GroupString(1), m.GroupString(2)) // lang go
type Pattern struct {
	source string
	config Config

	forward     *nfa.NFA
	reverse     *nfa.NFA
	forwardSize int
	reverseSize int

	groups []GroupInfo
	names  []string
	pf     prefilter.Prefilter
	states *searchStatePool
}

// GroupInfo describes one capture group.
type GroupInfo struct {
	// Index is the group number: 0 is the whole match, then groups in
	// order of their opening parenthesis.
	Index int
	// Name is the group's name, or "" for unnamed groups.
	Name string
	// Parent is the index of the innermost enclosing group: 0 for a top
	// level group, -1 for group 0.
	Parent int
	// Depth is the group's nesting depth: 0 for group 0, 1 at top level.
	Depth int
}

// Compile parses a pattern and compiles it with the default configuration.
//
// Example:
//
//	p, err := rematch.Compile(`(\d{4})-(\d{2})-(\d{2})`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Pattern, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// MustCompile is like Compile but panics if the pattern cannot be
// compiled.
//
// Example:
//
//	var datePattern = rematch.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic("regexp: Compile(`" + pattern + "`): " + err.Error())
	}
	return p
}

// CompileWithConfig compiles a pattern with a custom configuration.
//
// Errors are a *ConfigError for an invalid config, a *syntax.Error for a
// malformed pattern, or a *nfa.CompileError wrapping ErrResourceLimit when
// a program would be too large.
func CompileWithConfig(pattern string, config Config) (*Pattern, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	re, err := syntax.ParseWithMaxDepth(pattern, config.flags(), config.MaxNestingDepth)
	if err != nil {
		return nil, err
	}

	forward, err := nfa.NewCompiler(nfa.CompilerConfig{
		MaxStates: config.MaxProgramSize,
	}).Compile(re)
	if err != nil {
		return nil, err
	}
	reverse, err := nfa.NewCompiler(nfa.CompilerConfig{
		Reverse:   true,
		MaxStates: config.MaxProgramSize,
	}).Compile(re)
	if err != nil {
		return nil, err
	}

	p := &Pattern{
		source:      pattern,
		config:      config,
		forward:     forward,
		reverse:     reverse,
		forwardSize: forward.Size(),
		reverseSize: reverse.Size(),
		groups:      groupInfo(re, forward.CaptureCount()),
		names:       forward.SubexpNames(),
		states:      newSearchStatePool(forward, reverse),
	}
	if config.EnablePrefilter {
		ex := literal.New(literal.DefaultConfig())
		p.pf = prefilter.NewBuilder(ex.Required(re), ex.Exact(re)).Build()
	}
	return p, nil
}

// groupInfo lists the capture groups of re in index order.
func groupInfo(re *syntax.Regexp, count int) []GroupInfo {
	groups := make([]GroupInfo, count)
	groups[0] = GroupInfo{Index: 0, Parent: -1}
	var walk func(re *syntax.Regexp, parent, depth int)
	walk = func(re *syntax.Regexp, parent, depth int) {
		if re.Op == syntax.OpCapture {
			groups[re.Cap] = GroupInfo{Index: re.Cap, Name: re.Name, Parent: parent, Depth: depth + 1}
			parent, depth = re.Cap, depth+1
		}
		for _, sub := range re.Sub {
			walk(sub, parent, depth)
		}
	}
	walk(re, 0, 0)
	return groups
}

// String returns the source text used to compile the pattern.
func (p *Pattern) String() string {
	return p.source
}

// Config returns the configuration the pattern was compiled with.
func (p *Pattern) Config() Config {
	return p.config
}

// ProgramSize returns the number of states in the forward program.
func (p *Pattern) ProgramSize() int {
	return p.forwardSize
}

// ReverseProgramSize returns the number of states in the reverse program.
func (p *Pattern) ReverseProgramSize() int {
	return p.reverseSize
}

// NumberOfCapturingGroups returns the number of capture groups, not
// counting group 0.
func (p *Pattern) NumberOfCapturingGroups() int {
	return len(p.groups) - 1
}

// SubexpNames returns the group names indexed by group number. Entry 0 and
// unnamed groups are "". The slice is a copy.
func (p *Pattern) SubexpNames() []string {
	return append([]string(nil), p.names...)
}

// SubexpIndex returns the index of the group with the given name, or -1.
func (p *Pattern) SubexpIndex(name string) int {
	if name == "" {
		return -1
	}
	for i, n := range p.names {
		if n == name {
			return i
		}
	}
	return -1
}

// NamedGroups returns a map from group name to group index.
func (p *Pattern) NamedGroups() map[string]int {
	m := make(map[string]int)
	for i, n := range p.names {
		if n != "" {
			m[n] = i
		}
	}
	return m
}

// Groups returns the descriptors of all groups, group 0 first.
func (p *Pattern) Groups() []GroupInfo {
	return append([]GroupInfo(nil), p.groups...)
}

// FullMatch matches the pattern against the whole input and returns the
// result. The returned Match is never nil; it reports Matched() == false
// with every group unset when the input does not match.
func (p *Pattern) FullMatch(input []byte) *Match {
	m := newMatch(p, input)
	if p.pf != nil && !p.pf.MayFullMatch(input) {
		return m
	}
	s := p.states.get()
	m.matched = s.forward.FullMatch(input, m.slots)
	p.states.put(s)
	return m
}

// FullMatchString is like FullMatch on a string.
func (p *Pattern) FullMatchString(s string) *Match {
	return p.FullMatch([]byte(s))
}

// Matches reports whether the whole input matches. Captures are not
// tracked, so it is faster than FullMatch.
func (p *Pattern) Matches(input []byte) bool {
	if p.pf != nil && !p.pf.MayFullMatch(input) {
		return false
	}
	s := p.states.get()
	ok := s.forward.IsFullMatch(input)
	p.states.put(s)
	return ok
}

// MatchesString is like Matches on a string.
func (p *Pattern) MatchesString(s string) bool {
	return p.Matches([]byte(s))
}

// Find returns the leftmost-first match of the pattern anywhere in input,
// or nil if there is none.
//
// The reverse program scans input backwards to find the leftmost position
// where a match starts; the forward program then runs anchored there to
// pick the end and the captures.
func (p *Pattern) Find(input []byte) *Match {
	if p.pf != nil && !p.pf.IsMatch(input) {
		return nil
	}
	s := p.states.get()
	defer p.states.put(s)

	start := p.states.reverseVM(s).LeftmostStart(input)
	if start < 0 {
		return nil
	}
	m := newMatch(p, input)
	m.matched = s.forward.SearchAt(input, start, m.slots)
	if !m.matched {
		return nil
	}
	return m
}

// FindString is like Find on a string.
func (p *Pattern) FindString(s string) *Match {
	return p.Find([]byte(s))
}

// FullMatchBind matches the whole input and binds the captures to dst as
// (*Match).Bind does. It returns (false, nil) when the input does not
// match and (false, err) when binding fails, leaving dst unmodified in
// both cases.
func (p *Pattern) FullMatchBind(input []byte, dst ...any) (bool, error) {
	m := p.FullMatch(input)
	if !m.Matched() {
		return false, nil
	}
	if err := m.Bind(dst...); err != nil {
		return false, err
	}
	return true, nil
}

// FullMatch compiles pattern, matches it against the whole input and binds
// groups 1..len(dst) to dst. A compile error is returned as (false, err).
//
// Example:
//
//	var s string
//	var i int
//	ok, err := rematch.FullMatch(`([^:]+):(\d+)`, "ルビー:1234", &s, &i)
//	// ok == true, s == "ルビー", i == 1234
func FullMatch(pattern, input string, dst ...any) (bool, error) {
	return FullMatchBytes(pattern, []byte(input), dst...)
}

// FullMatchBytes is like FullMatch on a byte slice.
func FullMatchBytes(pattern string, input []byte, dst ...any) (bool, error) {
	p, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return p.FullMatchBind(input, dst...)
}

// QuoteMeta returns a string that escapes all regular expression
// metacharacters inside s; the result is a pattern matching s literally.
//
// Example:
//
//	rematch.QuoteMeta("1.5+2") // `1\.5\+2`
func QuoteMeta(s string) string {
	const special = `\.+*?()|[]{}^$`

	n := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, 0, len(s)+n)
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			buf = append(buf, '\\')
		}
		buf = append(buf, s[i])
	}
	return string(buf)
}

func isSpecial(c byte, special string) bool {
	for i := 0; i < len(special); i++ {
		if c == special[i] {
			return true
		}
	}
	return false
}
