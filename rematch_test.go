package rematch

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/rematch/syntax"
)

// compareWithStdlib checks FullMatch and Find against the standard library
// for one pattern and input.
func compareWithStdlib(t *testing.T, pattern, input string) {
	t.Helper()

	p := MustCompile(pattern)
	full := regexp.MustCompile(`\A(?:` + pattern + `)\z`)
	std := regexp.MustCompile(pattern)

	want := full.FindStringSubmatchIndex(input)
	got := p.FullMatchString(input).Indices()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FullMatch(%q, %q) mismatch (-stdlib +got):\n%s", pattern, input, diff)
	}
	if ok := p.MatchesString(input); ok != (want != nil) {
		t.Errorf("Matches(%q, %q) = %v, want %v", pattern, input, ok, want != nil)
	}

	want = std.FindStringSubmatchIndex(input)
	var found []int
	if m := p.FindString(input); m != nil {
		found = m.Indices()
	}
	if diff := cmp.Diff(want, found); diff != "" {
		t.Errorf("Find(%q, %q) mismatch (-stdlib +got):\n%s", pattern, input, diff)
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"simple literal", "hello", false},
		{"digit", `\d`, false},
		{"word", `\w+`, false},
		{"alternation", "foo|bar", false},
		{"named group", `(?P<year>\d{4})`, false},
		{"empty", "", false},
		{"unclosed group", "(", true},
		{"unopened group", "a)", true},
		{"unclosed class", "[a", true},
		{"trailing backslash", `a\`, true},
		{"backreference", `(a)\1`, true},
		{"bad repeat", "a{2,1}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compile(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
			if err != nil {
				var serr *syntax.Error
				if !errors.As(err, &serr) {
					t.Errorf("Compile(%q) error %T is not a *syntax.Error", tt.pattern, err)
				}
				return
			}
			if p.String() != tt.pattern {
				t.Errorf("String() = %q, want %q", p.String(), tt.pattern)
			}
		})
	}
}

func TestCompileErrorCodes(t *testing.T) {
	tests := []struct {
		pattern string
		code    syntax.ErrorCode
	}{
		{"(abc", syntax.ErrMissingParen},
		{"abc)", syntax.ErrUnexpectedParen},
		{"[abc", syntax.ErrMissingBracket},
		{"*a", syntax.ErrMissingRepeatArgument},
		{`\q`, syntax.ErrInvalidEscape},
	}
	for _, tt := range tests {
		_, err := Compile(tt.pattern)
		if !errors.Is(err, tt.code) {
			t.Errorf("Compile(%q) error = %v, want %v", tt.pattern, err, tt.code)
		}
	}
}

func TestMustCompilePanicFormat(t *testing.T) {
	const pattern = "[invalid"
	var msg string
	func() {
		defer func() {
			if r := recover(); r != nil {
				msg, _ = r.(string)
			}
		}()
		MustCompile(pattern)
	}()

	if !strings.HasPrefix(msg, "regexp: Compile(`"+pattern+"`): ") {
		t.Errorf("MustCompile panic = %q, want prefix with pattern in backticks", msg)
	}
}

func TestFullMatchLiteral(t *testing.T) {
	p := MustCompile("hello")
	tests := []struct {
		input string
		want  bool
	}{
		{"hello", true},
		{"hello!", false},
		{"xhello", false},
		{"hell", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := p.FullMatchString(tt.input).Matched(); got != tt.want {
			t.Errorf("FullMatch(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if got := p.MatchesString(tt.input); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestProgramSize(t *testing.T) {
	for _, pattern := range []string{"", "a", "h.*o", `(\d+)-(\d+)`, `\p{Greek}+`} {
		a, b := MustCompile(pattern), MustCompile(pattern)
		if a.ProgramSize() < 1 || a.ReverseProgramSize() < 1 {
			t.Errorf("%q: sizes %d/%d, want >= 1", pattern, a.ProgramSize(), a.ReverseProgramSize())
		}
		if a.ProgramSize() != b.ProgramSize() || a.ReverseProgramSize() != b.ReverseProgramSize() {
			t.Errorf("%q: sizes differ between compilations", pattern)
		}
	}

	if small, big := MustCompile("h.*o"), MustCompile("h.*o.*o.*o"); small.ProgramSize() >= big.ProgramSize() {
		t.Errorf("ProgramSize(h.*o) = %d, want less than %d", small.ProgramSize(), big.ProgramSize())
	}
}

func TestGroupZeroSpansInput(t *testing.T) {
	for _, tt := range []struct{ pattern, input string }{
		{"h.*o", "hello"},
		{`(\w+)@(\w+)`, "user@host"},
		{"", ""},
		{"ルビー", "ルビー"},
	} {
		m := MustCompile(tt.pattern).FullMatchString(tt.input)
		if !m.Matched() || m.Start(0) != 0 || m.End(0) != len(tt.input) {
			t.Errorf("FullMatch(%q, %q) group 0 = [%d,%d], want [0,%d]",
				tt.pattern, tt.input, m.Start(0), m.End(0), len(tt.input))
		}
	}
}

func TestLeftmostFirst(t *testing.T) {
	m := MustCompile(`(a|ab)(c|bcd)`).FullMatchString("abcd")
	if diff := cmp.Diff([]int{0, 4, 0, 1, 1, 4}, m.Indices()); diff != "" {
		t.Errorf("Indices() mismatch (-want +got):\n%s", diff)
	}
	if m.GroupString(1) != "a" || m.GroupString(2) != "bcd" {
		t.Errorf("groups = %q %q, want \"a\" \"bcd\"", m.GroupString(1), m.GroupString(2))
	}

	f := MustCompile(`(a|ab)(c|bcd)`).FindString("xabcd")
	if f == nil {
		t.Fatal("Find returned nil")
	}
	if diff := cmp.Diff([]int{1, 5, 1, 2, 2, 5}, f.Indices()); diff != "" {
		t.Errorf("Find Indices() mismatch (-want +got):\n%s", diff)
	}
}

func TestFailedMatchUnsetsGroups(t *testing.T) {
	m := MustCompile(`(\d+)`).FullMatchString("abc")
	if m == nil {
		t.Fatal("FullMatch returned nil")
	}
	if m.Matched() {
		t.Fatal("Matched() = true, want false")
	}
	for i := 0; i < m.NumGroups(); i++ {
		if m.IsSet(i) || m.Start(i) != -1 || m.End(i) != -1 || m.GroupBytes(i) != nil {
			t.Errorf("group %d is set on a failed match", i)
		}
	}
	if m.Indices() != nil {
		t.Errorf("Indices() = %v, want nil", m.Indices())
	}
}

func TestMultibyteGroups(t *testing.T) {
	m := MustCompile(`([^:]+):(\d+)`).FullMatchString("ルビー:1234")
	if !m.Matched() {
		t.Fatal("no match")
	}
	start, end, ok := m.Range(1)
	if !ok || start != 0 || end != 9 {
		t.Errorf("Range(1) = %d, %d, %v, want 0, 9, true", start, end, ok)
	}
	if got := m.GroupString(2); got != "1234" {
		t.Errorf("GroupString(2) = %q, want \"1234\"", got)
	}
}

func TestUnsetAlternativeGroup(t *testing.T) {
	m := MustCompile(`(a)|(b)`).FullMatchString("b")
	if diff := cmp.Diff([]int{0, 1, -1, -1, 0, 1}, m.Indices()); diff != "" {
		t.Errorf("Indices() mismatch (-want +got):\n%s", diff)
	}
	if m.IsSet(1) || !m.IsSet(2) {
		t.Errorf("IsSet(1), IsSet(2) = %v, %v, want false, true", m.IsSet(1), m.IsSet(2))
	}
}

func TestOutOfRangeGroup(t *testing.T) {
	m := MustCompile(`(a)`).FullMatchString("a")
	for _, i := range []int{-1, 2, 100} {
		if m.IsSet(i) || m.Start(i) != -1 || m.GroupString(i) != "" {
			t.Errorf("group %d reported as set", i)
		}
	}
}

func TestNamedGroups(t *testing.T) {
	p := MustCompile(`(?P<key>\w+)=(?P<value>\w*)(x)?`)

	if diff := cmp.Diff([]string{"", "key", "value", ""}, p.SubexpNames()); diff != "" {
		t.Errorf("SubexpNames() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"key": 1, "value": 2}, p.NamedGroups()); diff != "" {
		t.Errorf("NamedGroups() mismatch (-want +got):\n%s", diff)
	}
	if p.NumberOfCapturingGroups() != 3 {
		t.Errorf("NumberOfCapturingGroups() = %d, want 3", p.NumberOfCapturingGroups())
	}
	for name, want := range map[string]int{"key": 1, "value": 2, "missing": -1, "": -1} {
		if got := p.SubexpIndex(name); got != want {
			t.Errorf("SubexpIndex(%q) = %d, want %d", name, got, want)
		}
	}

	m := p.FullMatchString("lang=go")
	if v, ok := m.NamedString("key"); !ok || v != "lang" {
		t.Errorf("NamedString(key) = %q, %v", v, ok)
	}
	if v, ok := m.NamedString("value"); !ok || v != "go" {
		t.Errorf("NamedString(value) = %q, %v", v, ok)
	}
	if _, ok := m.NamedString("missing"); ok {
		t.Error("NamedString(missing) reported set")
	}

	names := p.SubexpNames()
	names[1] = "changed"
	if p.SubexpNames()[1] != "key" {
		t.Error("SubexpNames() exposes internal state")
	}
}

func TestGroups(t *testing.T) {
	p := MustCompile(`(a(?P<n>b)(c))(d)`)
	want := []GroupInfo{
		{Index: 0, Parent: -1, Depth: 0},
		{Index: 1, Parent: 0, Depth: 1},
		{Index: 2, Name: "n", Parent: 1, Depth: 2},
		{Index: 3, Parent: 1, Depth: 2},
		{Index: 4, Parent: 0, Depth: 1},
	}
	if diff := cmp.Diff(want, p.Groups()); diff != "" {
		t.Errorf("Groups() mismatch (-want +got):\n%s", diff)
	}
}

func TestResourceLimit(t *testing.T) {
	_, err := Compile(`((a{1,50000}){1,50000})`)
	if !errors.Is(err, ErrResourceLimit) {
		t.Fatalf("Compile error = %v, want ErrResourceLimit", err)
	}

	config := DefaultConfig()
	config.MaxProgramSize = 10
	if _, err := CompileWithConfig(`a{20}`, config); !errors.Is(err, ErrResourceLimit) {
		t.Errorf("CompileWithConfig error = %v, want ErrResourceLimit", err)
	}
	if _, err := CompileWithConfig(`a`, config); err != nil {
		t.Errorf("CompileWithConfig(a) error = %v", err)
	}
}

func TestFullMatchAgainstStdlib(t *testing.T) {
	tests := []struct {
		pattern string
		inputs  []string
	}{
		{`h.*o`, []string{"hello", "ho", "h", "hello!", "hxoxo"}},
		{`(\d+)-(\d+)`, []string{"12-34", "12-", "-34", "1-2-3"}},
		{`(a+)(a*)`, []string{"a", "aaa", ""}},
		{`(a+?)(a*)`, []string{"a", "aaa"}},
		{`(a|b)*c`, []string{"c", "ababc", "abab"}},
		{`(?:(a)|b)+`, []string{"ab", "ba", "bab"}},
		{`x(y)?z`, []string{"xz", "xyz", "xyyz"}},
		{`[a-c]{2,3}`, []string{"ab", "abc", "abca", "a"}},
		{`(?i)hello`, []string{"HELLO", "hElLo", "help"}},
		{`(?s)a.b`, []string{"a\nb", "axb"}},
		{`a.b`, []string{"a\nb", "a€b"}},
		{`\bfoo\b`, []string{"foo", "foob"}},
		{`^abc$`, []string{"abc", "abc\n"}},
		{`(?m)^a$\n^b$`, []string{"a\nb", "a\nc"}},
		{`\p{Greek}+(\d)`, []string{"αβγ1", "abc1"}},
		{`[^a-z]+`, []string{"ABC", "AbC", "日本"}},
		{`(foo|foobar)(bar)?`, []string{"foobar", "foo"}},
		{`((a)|(b))+`, []string{"ab", "ba"}},
		{`a{0}b`, []string{"b", "ab"}},
		{``, []string{"", "a"}},
	}
	for _, tt := range tests {
		for _, input := range tt.inputs {
			compareWithStdlib(t, tt.pattern, input)
		}
	}
}

func TestFindAgainstStdlib(t *testing.T) {
	tests := []struct {
		pattern string
		inputs  []string
	}{
		{`\d+`, []string{"age: 42 years", "no digits", "7"}},
		{`h.*o`, []string{"say hello world", "oh"}},
		{`(\w+)@(\w+)\.com`, []string{"mail bob@example.com now", "bob@example"}},
		{`foo|bar`, []string{"xxbarxfoo", "fo ba"}},
		{`a+b`, []string{"caaab", "aaa"}},
		{`\bgo\b`, []string{"let's go now", "gopher"}},
		{`^x`, []string{"xy", "yx"}},
		{`(?m)^b`, []string{"a\nb", "ab"}},
		{`x*`, []string{"aaa", "axx"}},
		{`|b`, []string{"abc", ""}},
		{`b|`, []string{"abc", "b"}},
		{`[α-ω]+`, []string{"abc αβγ def", "abc"}},
		{`(a|ab)(c|bcd)(d*)`, []string{"xabcd", "abcd"}},
		{`\B`, []string{"1ì", "ìì", "ab"}},
		{`\b`, []string{"ì1", "ì"}},
		{`(a*)*`, []string{"", "baa"}},
		{`(a|b?)*`, []string{"", "cab"}},
		{`(a*)*b`, []string{"b", "xaab"}},
		{`(?i)[^a]($*?){0,}\b`, []string{"1", "a1"}},
	}
	for _, tt := range tests {
		for _, input := range tt.inputs {
			compareWithStdlib(t, tt.pattern, input)
		}
	}
}

func TestConfigModes(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		setup   func(*Config)
		input   string
		want    bool
	}{
		{"literal", "a.b", func(c *Config) { c.Literal = true }, "a.b", true},
		{"literal rejects meta use", "a.b", func(c *Config) { c.Literal = true }, "axb", false},
		{"literal parens", "(x)", func(c *Config) { c.Literal = true }, "(x)", true},
		{"case insensitive", "hello", func(c *Config) { c.CaseInsensitive = true }, "HeLLo", true},
		{"case sensitive", "hello", func(c *Config) {}, "HeLLo", false},
		{"dot nl", "a.b", func(c *Config) { c.DotNL = true }, "a\nb", true},
		{"dot no nl", "a.b", func(c *Config) {}, "a\nb", false},
		{"multi line", "a$\n^b", func(c *Config) { c.MultiLine = true }, "a\nb", true},
		{"single line", "a$\n^b", func(c *Config) {}, "a\nb", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.setup(&config)
			p, err := CompileWithConfig(tt.pattern, config)
			if err != nil {
				t.Fatalf("CompileWithConfig error = %v", err)
			}
			if got := p.MatchesString(tt.input); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if p.Config() != config {
				t.Errorf("Config() = %+v, want %+v", p.Config(), config)
			}
		})
	}
}

func TestNeverCapture(t *testing.T) {
	config := DefaultConfig()
	config.NeverCapture = true
	p, err := CompileWithConfig(`(a)(?P<x>b)`, config)
	if err != nil {
		t.Fatal(err)
	}
	if p.NumberOfCapturingGroups() != 0 {
		t.Errorf("NumberOfCapturingGroups() = %d, want 0", p.NumberOfCapturingGroups())
	}
	m := p.FullMatchString("ab")
	if diff := cmp.Diff([]int{0, 2}, m.Indices()); diff != "" {
		t.Errorf("Indices() mismatch (-want +got):\n%s", diff)
	}
}

func TestNestingDepth(t *testing.T) {
	config := DefaultConfig()
	config.MaxNestingDepth = 2
	if _, err := CompileWithConfig(`(((a)))`, config); !errors.Is(err, syntax.ErrNestingDepth) {
		t.Errorf("CompileWithConfig error = %v, want ErrNestingDepth", err)
	}
	if _, err := Compile(`(((a)))`); err != nil {
		t.Errorf("Compile error = %v", err)
	}
}

func TestPrefilterAgreement(t *testing.T) {
	patterns := []string{
		`hello`,
		`foo|bar|baz`,
		`(\w+)@example\.com`,
		`a[bc]d`,
		`x+y`,
		`(?i)needle`,
		`(abc|abd)\d*`,
		`\d+`,
		`q`,
	}
	inputs := []string{
		"", "hello", "say hello", "bar", "xbaz", "bob@example.com", "bob@example.org",
		"abd", "acd", "xxy", "NEEDLE", "abc123", "123", "q", "Q",
	}

	off := DefaultConfig()
	off.EnablePrefilter = false
	for _, pattern := range patterns {
		with := MustCompile(pattern)
		without, err := CompileWithConfig(pattern, off)
		if err != nil {
			t.Fatal(err)
		}
		for _, input := range inputs {
			if a, b := with.MatchesString(input), without.MatchesString(input); a != b {
				t.Errorf("%q on %q: Matches %v with prefilter, %v without", pattern, input, a, b)
			}
			if diff := cmp.Diff(without.FullMatchString(input).Indices(), with.FullMatchString(input).Indices()); diff != "" {
				t.Errorf("%q on %q: FullMatch mismatch (-without +with):\n%s", pattern, input, diff)
			}
			var a, b []int
			if m := with.FindString(input); m != nil {
				a = m.Indices()
			}
			if m := without.FindString(input); m != nil {
				b = m.Indices()
			}
			if diff := cmp.Diff(b, a); diff != "" {
				t.Errorf("%q on %q: Find mismatch (-without +with):\n%s", pattern, input, diff)
			}
		}
	}
}

func TestConcurrentUse(t *testing.T) {
	p := MustCompile(`(\w+)-(\d+)`)
	inputs := []struct {
		input string
		want  []int
	}{
		{"abc-123", []int{0, 7, 0, 3, 4, 7}},
		{"x-1", []int{0, 3, 0, 1, 2, 3}},
		{"nope", nil},
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				tt := inputs[(g+i)%len(inputs)]
				if diff := cmp.Diff(tt.want, p.FullMatchString(tt.input).Indices()); diff != "" {
					t.Errorf("FullMatch(%q) mismatch (-want +got):\n%s", tt.input, diff)
					return
				}
				if m := p.FindString("  " + tt.input); (m != nil) != (tt.want != nil) {
					t.Errorf("Find(%q) = %v", tt.input, m)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestMatchAliasesInput(t *testing.T) {
	input := []byte("key=value")
	m := MustCompile(`(\w+)=(\w+)`).FullMatch(input)
	g := m.GroupBytes(1)
	if string(g) != "key" {
		t.Fatalf("GroupBytes(1) = %q", g)
	}
	if cap(g) != len(g) {
		t.Errorf("GroupBytes(1) cap = %d, want %d", cap(g), len(g))
	}

	idx := m.Indices()
	idx[0] = 42
	if m.Start(0) != 0 {
		t.Error("Indices() exposes internal state")
	}
}

func TestQuoteMeta(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"plain", "plain"},
		{"1.5+2", `1\.5\+2`},
		{`[a-z]*\d`, `\[a-z\]\*\\d`},
		{"(x|y){2}^$?", `\(x\|y\)\{2\}\^\$\?`},
		{"ルビー.", `ルビー\.`},
	}
	for _, tt := range tests {
		got := QuoteMeta(tt.input)
		if got != tt.want {
			t.Errorf("QuoteMeta(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if std := regexp.QuoteMeta(tt.input); got != std {
			t.Errorf("QuoteMeta(%q) = %q, stdlib %q", tt.input, got, std)
		}
		if !MustCompile(got).MatchesString(tt.input) {
			t.Errorf("QuoteMeta(%q) does not match its input", tt.input)
		}
	}
}
