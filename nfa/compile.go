package nfa

import (
	"fmt"
	"unicode/utf8"

	"github.com/coregx/rematch/internal/conv"
	"github.com/coregx/rematch/syntax"
)

const (
	// DefaultMaxStates is the default program size limit.
	DefaultMaxStates = 100000

	// DefaultMaxRecursionDepth is the default AST depth limit.
	DefaultMaxRecursionDepth = 10000
)

// CompilerConfig configures NFA compilation behavior
type CompilerConfig struct {
	// Reverse compiles a program that accepts the reversed strings of the
	// pattern's language.
	Reverse bool

	// MaxStates limits the number of states in the compiled program.
	// Default: DefaultMaxStates
	MaxStates int

	// MaxRecursionDepth limits recursion during compilation to prevent stack overflow
	// Default: DefaultMaxRecursionDepth
	MaxRecursionDepth int
}

// DefaultCompilerConfig returns a compiler configuration with sensible defaults
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		MaxStates:         DefaultMaxStates,
		MaxRecursionDepth: DefaultMaxRecursionDepth,
	}
}

// Compiler compiles syntax.Regexp trees into Thompson NFAs
type Compiler struct {
	config  CompilerConfig
	builder *Builder
	depth   int // current recursion depth
}

// NewCompiler creates a new NFA compiler with the given configuration
func NewCompiler(config CompilerConfig) *Compiler {
	if config.MaxStates <= 0 {
		config.MaxStates = DefaultMaxStates
	}
	if config.MaxRecursionDepth <= 0 {
		config.MaxRecursionDepth = DefaultMaxRecursionDepth
	}
	return &Compiler{config: config}
}

// Compile compiles a parsed pattern into an NFA. The whole pattern is
// wrapped in capture group 0.
//
// Patterns whose expansion would exceed MaxStates fail with a
// *CompileError wrapping ErrTooComplex before any state is emitted.
func (c *Compiler) Compile(re *syntax.Regexp) (*NFA, error) {
	limit := c.config.MaxStates
	if est := EstimateSize(re, limit); est > limit {
		return nil, &CompileError{
			Pattern: re.String(),
			Err:     fmt.Errorf("%w: program would have more than %d states", ErrTooComplex, limit),
		}
	}

	c.builder = NewBuilderWithCapacity(16)
	c.builder.SetLimit(limit)
	c.depth = 0

	start, end, err := c.compileCapture(0, re)
	if err == nil {
		matchID := c.builder.AddMatch()
		err = c.patch(end, matchID)
	}
	if err == nil {
		c.builder.SetStart(start)
	}

	var nfa *NFA
	if err == nil {
		nfa, err = c.builder.Build(
			WithReverse(c.config.Reverse),
			WithCaptureCount(re.MaxCap()+1),
			WithCaptureNames(re.CapNames()),
		)
	}
	if err != nil {
		if berr := c.builder.Err(); berr != nil {
			err = fmt.Errorf("%w: program would have more than %d states", berr, limit)
		}
		return nil, &CompileError{Pattern: re.String(), Err: err}
	}
	return nfa, nil
}

// patch connects a fragment end to target, failing if the builder
// refused a state.
func (c *Compiler) patch(end, target StateID) error {
	if err := c.builder.Err(); err != nil {
		return err
	}
	return c.builder.Patch(end, target)
}

// compileRegexp recursively compiles a syntax.Regexp node.
// Returns (start, end) state IDs for the compiled fragment.
// The 'end' state always has a single patchable target.
func (c *Compiler) compileRegexp(re *syntax.Regexp) (start, end StateID, err error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.config.MaxRecursionDepth {
		return InvalidState, InvalidState, fmt.Errorf("%w: nesting deeper than %d", ErrTooComplex, c.config.MaxRecursionDepth)
	}
	if err := c.builder.Err(); err != nil {
		return InvalidState, InvalidState, err
	}

	switch re.Op {
	case syntax.OpNoMatch:
		return c.compileNoMatch()
	case syntax.OpEmptyMatch:
		return c.compileEmptyMatch()
	case syntax.OpLiteral:
		return c.compileLiteral(re.Runes)
	case syntax.OpCharClass:
		return c.compileCharClass(re.Runes)
	case syntax.OpAnyChar:
		return c.compileCharClass(anyChar)
	case syntax.OpAnyCharNotNL:
		return c.compileCharClass(anyCharNotNL)
	case syntax.OpBeginLine:
		return c.compileLook(LookStartLine)
	case syntax.OpEndLine:
		return c.compileLook(LookEndLine)
	case syntax.OpBeginText:
		return c.compileLook(LookStartText)
	case syntax.OpEndText:
		return c.compileLook(LookEndText)
	case syntax.OpWordBoundary:
		return c.compileLook(LookWordBoundary)
	case syntax.OpNoWordBoundary:
		return c.compileLook(LookNoWordBoundary)
	case syntax.OpCapture:
		return c.compileCapture(re.Cap, re.Sub[0])
	case syntax.OpConcat:
		return c.compileConcat(re.Sub)
	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)
	case syntax.OpStar:
		return c.compileStar(re.Sub[0], re.Greedy())
	case syntax.OpPlus:
		return c.compilePlus(re.Sub[0], re.Greedy())
	case syntax.OpQuest:
		return c.compileQuest(re.Sub[0], re.Greedy())
	case syntax.OpRepeat:
		return c.compileRepeat(re)
	default:
		return InvalidState, InvalidState, fmt.Errorf("%w %s", ErrUnsupportedOp, re.Op)
	}
}

var (
	anyChar      = []rune{0, syntax.MaxRune}
	anyCharNotNL = []rune{0, '\n' - 1, '\n' + 1, syntax.MaxRune}
)

// compileLiteral compiles a literal string as a chain of single-byte
// transitions. The reverse program reads the encoded bytes back to front.
func (c *Compiler) compileLiteral(runes []rune) (start, end StateID, err error) {
	if len(runes) == 0 {
		return c.compileEmptyMatch()
	}
	buf := make([]byte, 0, len(runes)*utf8.UTFMax)
	for _, r := range runes {
		buf = utf8.AppendRune(buf, r)
	}
	if c.config.Reverse {
		for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
			buf[i], buf[j] = buf[j], buf[i]
		}
	}

	start, end = InvalidState, InvalidState
	for _, b := range buf {
		id := c.builder.AddByteRange(b, b, InvalidState)
		if start == InvalidState {
			start = id
		} else if err := c.patch(end, id); err != nil {
			return InvalidState, InvalidState, err
		}
		end = id
	}
	return start, end, c.builder.Err()
}

// compileCharClass compiles sorted [lo, hi] rune pairs to a UTF-8 byte
// automaton.
func (c *Compiler) compileCharClass(ranges []rune) (start, end StateID, err error) {
	if len(ranges) == 0 {
		return c.compileNoMatch()
	}
	seqs := utf8Sequences(ranges)
	if len(seqs) == 1 && len(seqs[0]) == 1 {
		r := seqs[0][0]
		id := c.builder.AddByteRange(r.lo, r.hi, InvalidState)
		return id, id, c.builder.Err()
	}
	if c.config.Reverse {
		reverseSequences(seqs)
	}
	join := c.builder.AddEpsilon(InvalidState)
	start = c.compileSequences(seqs, join, make(utf8SuffixCache))
	return start, join, c.builder.Err()
}

func (c *Compiler) compileLook(look Look) (start, end StateID, err error) {
	if c.config.Reverse {
		look = look.Reversed()
	}
	id := c.builder.AddLook(look, InvalidState)
	return id, id, c.builder.Err()
}

// compileCapture wraps sub in the start and end slots of group. Running
// backwards, the end slot is reached first.
func (c *Compiler) compileCapture(group int, sub *syntax.Regexp) (start, end StateID, err error) {
	first, last := conv.IntToUint32(2*group), conv.IntToUint32(2*group+1)
	if c.config.Reverse {
		first, last = last, first
	}
	open := c.builder.AddCapture(first, InvalidState)
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	closeID := c.builder.AddCapture(last, InvalidState)
	if err := c.patch(open, subStart); err != nil {
		return InvalidState, InvalidState, err
	}
	if err := c.patch(subEnd, closeID); err != nil {
		return InvalidState, InvalidState, err
	}
	return open, closeID, nil
}

// compileConcat compiles concatenation (e.g., "abc"). The reverse program
// matches the parts last to first.
func (c *Compiler) compileConcat(subs []*syntax.Regexp) (start, end StateID, err error) {
	if len(subs) == 0 {
		return c.compileEmptyMatch()
	}

	start, end = InvalidState, InvalidState
	for i := range subs {
		sub := subs[i]
		if c.config.Reverse {
			sub = subs[len(subs)-1-i]
		}
		nextStart, nextEnd, err := c.compileRegexp(sub)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		if start == InvalidState {
			start = nextStart
		} else if err := c.patch(end, nextStart); err != nil {
			return InvalidState, InvalidState, err
		}
		end = nextEnd
	}
	return start, end, nil
}

// compileAlternate compiles alternation (e.g., "a|b|c"). Earlier branches
// have priority.
func (c *Compiler) compileAlternate(subs []*syntax.Regexp) (start, end StateID, err error) {
	if len(subs) == 0 {
		return c.compileNoMatch()
	}
	if len(subs) == 1 {
		return c.compileRegexp(subs[0])
	}

	starts := make([]StateID, 0, len(subs))
	ends := make([]StateID, 0, len(subs))
	for _, sub := range subs {
		s, e, err := c.compileRegexp(sub)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		starts = append(starts, s)
		ends = append(ends, e)
	}

	split := c.buildSplitChain(starts)
	join := c.builder.AddEpsilon(InvalidState)
	for _, e := range ends {
		if err := c.patch(e, join); err != nil {
			return InvalidState, InvalidState, err
		}
	}
	return split, join, c.builder.Err()
}

// buildSplitChain builds a right-leaning chain of split states so that
// targets are tried in order: Split(t1, Split(t2, Split(t3, ...))).
func (c *Compiler) buildSplitChain(targets []StateID) StateID {
	if len(targets) == 1 {
		return targets[0]
	}
	right := c.buildSplitChain(targets[1:])
	return c.builder.AddSplit(targets[0], right)
}

// split adds a Split whose preferred branch is sub when greedy and exit
// otherwise.
func (c *Compiler) split(sub, exit StateID, greedy bool) StateID {
	if greedy {
		return c.builder.AddSplit(sub, exit)
	}
	return c.builder.AddSplit(exit, sub)
}

// compileStar compiles a* (zero or more). When a can match empty it is
// compiled as (a+)? so that an empty iteration still records its captures:
// the loop-back of a plain star would reach the already-visited split and
// lose the preferred path.
func (c *Compiler) compileStar(sub *syntax.Regexp, greedy bool) (start, end StateID, err error) {
	if canMatchEmpty(sub) {
		plusStart, plusEnd, err := c.compilePlus(sub, greedy)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		end = c.builder.AddEpsilon(InvalidState)
		split := c.split(plusStart, end, greedy)
		if err := c.patch(plusEnd, end); err != nil {
			return InvalidState, InvalidState, err
		}
		return split, end, nil
	}
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	end = c.builder.AddEpsilon(InvalidState)
	split := c.split(subStart, end, greedy)
	if err := c.patch(subEnd, split); err != nil {
		return InvalidState, InvalidState, err
	}
	return split, end, nil
}

// compilePlus compiles a+ (one or more)
func (c *Compiler) compilePlus(sub *syntax.Regexp, greedy bool) (start, end StateID, err error) {
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	end = c.builder.AddEpsilon(InvalidState)
	split := c.split(subStart, end, greedy)
	if err := c.patch(subEnd, split); err != nil {
		return InvalidState, InvalidState, err
	}
	return subStart, end, nil
}

// compileQuest compiles a? (zero or one)
func (c *Compiler) compileQuest(sub *syntax.Regexp, greedy bool) (start, end StateID, err error) {
	subStart, subEnd, err := c.compileRegexp(sub)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	end = c.builder.AddEpsilon(InvalidState)
	split := c.split(subStart, end, greedy)
	if err := c.patch(subEnd, end); err != nil {
		return InvalidState, InvalidState, err
	}
	return split, end, nil
}

// compileRepeat unrolls x{n,m} into n copies of x followed by m-n nested
// optionals, x{n,} into n copies followed by x*.
func (c *Compiler) compileRepeat(re *syntax.Regexp) (start, end StateID, err error) {
	sub := re.Sub[0]
	minCount, maxCount := re.Min, re.Max

	subs := make([]*syntax.Regexp, 0, minCount+1)
	for i := 0; i < minCount; i++ {
		subs = append(subs, sub)
	}
	if maxCount < 0 {
		subs = append(subs, &syntax.Regexp{Op: syntax.OpStar, Flags: re.Flags, Sub: []*syntax.Regexp{sub}})
	}
	if maxCount <= minCount {
		switch len(subs) {
		case 0:
			return c.compileEmptyMatch()
		case 1:
			return c.compileRegexp(subs[0])
		}
		return c.compileConcat(subs)
	}

	optStart, optEnd, err := c.compileNestedOptional(sub, maxCount-minCount, re.Greedy())
	if err != nil || len(subs) == 0 {
		return optStart, optEnd, err
	}
	reqStart, reqEnd, err := c.compileConcat(subs)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	if c.config.Reverse {
		return optStart, reqEnd, c.patch(optEnd, reqStart)
	}
	return reqStart, optEnd, c.patch(reqEnd, optStart)
}

// compileNestedOptional compiles (x(x(x)?)?)? with count copies of x,
// building from the innermost optional outwards.
func (c *Compiler) compileNestedOptional(sub *syntax.Regexp, count int, greedy bool) (start, end StateID, err error) {
	start, end, err = c.compileQuest(sub, greedy)
	if err != nil {
		return InvalidState, InvalidState, err
	}
	for i := 1; i < count; i++ {
		xs, xe, err := c.compileRegexp(sub)
		if err != nil {
			return InvalidState, InvalidState, err
		}
		// The body is x followed by the inner optional, or the reverse.
		bodyStart, bodyEnd := xs, end
		link, target := xe, start
		if c.config.Reverse {
			bodyStart, bodyEnd = start, xe
			link, target = end, xs
		}
		if err := c.patch(link, target); err != nil {
			return InvalidState, InvalidState, err
		}
		exit := c.builder.AddEpsilon(InvalidState)
		split := c.split(bodyStart, exit, greedy)
		if err := c.patch(bodyEnd, exit); err != nil {
			return InvalidState, InvalidState, err
		}
		start, end = split, exit
	}
	return start, end, nil
}

// compileEmptyMatch compiles an epsilon transition (matches without consuming input)
func (c *Compiler) compileEmptyMatch() (start, end StateID, err error) {
	id := c.builder.AddEpsilon(InvalidState)
	return id, id, c.builder.Err()
}

// compileNoMatch compiles a dead state. The returned end is an unreachable
// epsilon so the fragment can still be patched.
func (c *Compiler) compileNoMatch() (start, end StateID, err error) {
	start = c.builder.AddFail()
	end = c.builder.AddEpsilon(InvalidState)
	return start, end, c.builder.Err()
}

// canMatchEmpty reports whether re may match the empty string. Assertions
// count as nullable since they consume nothing.
func canMatchEmpty(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpNoMatch, syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return false
	case syntax.OpLiteral:
		return len(re.Runes) == 0
	case syntax.OpCapture, syntax.OpPlus:
		return canMatchEmpty(re.Sub[0])
	case syntax.OpStar, syntax.OpQuest:
		return true
	case syntax.OpRepeat:
		return re.Min == 0 || canMatchEmpty(re.Sub[0])
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if !canMatchEmpty(sub) {
				return false
			}
		}
		return true
	case syntax.OpAlternate:
		for _, sub := range re.Sub {
			if canMatchEmpty(sub) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// starOverhead is the number of states compileStar adds around its body.
func starOverhead(sub *syntax.Regexp) int {
	if canMatchEmpty(sub) {
		return 4
	}
	return 2
}

// EstimateSize returns the number of states Compile would emit for re,
// saturating at limit+1 so that huge nested repetitions are rejected
// without being expanded.
func EstimateSize(re *syntax.Regexp, limit int) int {
	// Capture 0 markers and the match state.
	return conv.SaturatingAdd(estimate(re, limit), 3, limit)
}

func estimate(re *syntax.Regexp, limit int) int {
	switch re.Op {
	case syntax.OpNoMatch:
		return 2
	case syntax.OpLiteral:
		n := 0
		for _, r := range re.Runes {
			n += utf8.RuneLen(r)
		}
		return conv.SaturatingAdd(n, 0, limit)
	case syntax.OpCharClass:
		return sequenceStates(utf8Sequences(re.Runes))
	case syntax.OpAnyChar:
		return sequenceStates(utf8Sequences(anyChar))
	case syntax.OpAnyCharNotNL:
		return sequenceStates(utf8Sequences(anyCharNotNL))
	case syntax.OpCapture:
		return conv.SaturatingAdd(estimate(re.Sub[0], limit), 2, limit)
	case syntax.OpStar:
		return conv.SaturatingAdd(estimate(re.Sub[0], limit), starOverhead(re.Sub[0]), limit)
	case syntax.OpPlus, syntax.OpQuest:
		return conv.SaturatingAdd(estimate(re.Sub[0], limit), 2, limit)
	case syntax.OpRepeat:
		sub := estimate(re.Sub[0], limit)
		n := conv.SaturatingMul(sub, re.Min, limit)
		switch {
		case re.Max < 0:
			n = conv.SaturatingAdd(n, conv.SaturatingAdd(sub, starOverhead(re.Sub[0]), limit), limit)
		case re.Max > re.Min:
			opt := conv.SaturatingMul(sub+2, re.Max-re.Min, limit)
			n = conv.SaturatingAdd(n, opt, limit)
		}
		if n == 0 {
			n = 1
		}
		return n
	case syntax.OpConcat:
		n := 0
		for _, sub := range re.Sub {
			n = conv.SaturatingAdd(n, estimate(sub, limit), limit)
		}
		if n == 0 {
			n = 1
		}
		return n
	case syntax.OpAlternate:
		n := len(re.Sub)
		for _, sub := range re.Sub {
			n = conv.SaturatingAdd(n, estimate(sub, limit), limit)
		}
		return n
	default:
		return 1
	}
}
