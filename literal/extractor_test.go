package literal

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/rematch/syntax"
)

func strs(s *Seq) []string {
	if s == nil {
		return nil
	}
	out := make([]string, s.Len())
	for i := range out {
		out[i] = string(s.Get(i).Bytes)
	}
	return out
}

func mustParse(t *testing.T, pattern string) *syntax.Regexp {
	t.Helper()
	re, err := syntax.Parse(pattern, 0)
	if err != nil {
		t.Fatalf("Parse(%q): %v", pattern, err)
	}
	return re
}

func TestRequired(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{`hello`, []string{"hello"}},
		{`foo|bar`, []string{"bar", "foo"}},
		{`\w+@\w+\.com`, []string{".com"}},
		{`(\d+)-hello(world|there)`, []string{"-hellothere", "-helloworld"}},
		{`[ab]cd`, []string{"acd", "bcd"}},
		{`(?i)ab`, []string{"AB", "Ab", "aB", "ab"}},
		{`x(abc)+y`, []string{"abc"}},
		{`a{3}`, []string{"aaa"}},
		{`(ab){2,5}`, []string{"ab"}},
		{`^abc$`, []string{"abc"}},
		{`.*needle.*`, []string{"needle"}},
		{`(foo|\d+bar)baz`, []string{"baz"}},
		{`(foo|\d+bar)z`, []string{"bar", "foo"}},
		{`a*`, nil},
		{`a?b?`, nil},
		{`foo|.*`, nil},
		{`\w+`, nil},
		{`(ab)?`, nil},
		{`a{0,3}`, nil},
		{``, nil},
	}
	e := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got := e.Required(mustParse(t, tt.pattern))
			if diff := cmp.Diff(tt.want, strs(got)); diff != "" {
				t.Errorf("Required(%q) mismatch (-want +got):\n%s", tt.pattern, diff)
			}
			for _, lit := range got.Literals() {
				if lit.Complete {
					t.Errorf("required literal %v is marked complete", lit)
				}
			}
		})
	}
}

func TestExact(t *testing.T) {
	tests := []struct {
		pattern string
		want    []string
	}{
		{`hello`, []string{"hello"}},
		{`foo|bar|foo`, []string{"bar", "foo"}},
		{`colou?r`, []string{"color", "colour"}},
		{`[0-2]x`, []string{"0x", "1x", "2x"}},
		{`(a|b){2}`, []string{"aa", "ab", "ba", "bb"}},
		{``, []string{""}},
		{`^foo`, nil},
		{`\bfoo`, nil},
		{`a+`, nil},
		{`[a-z]`, nil},
	}
	e := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			got := e.Exact(mustParse(t, tt.pattern))
			if diff := cmp.Diff(tt.want, strs(got)); diff != "" {
				t.Errorf("Exact(%q) mismatch (-want +got):\n%s", tt.pattern, diff)
			}
			for _, lit := range got.Literals() {
				if !lit.Complete {
					t.Errorf("exact literal %v is marked incomplete", lit)
				}
			}
		})
	}
}

func TestLimits(t *testing.T) {
	e := New(ExtractorConfig{MaxLiterals: 4, MaxLiteralLen: 8, MaxClassSize: 3})

	// 3 * 3 alternatives exceed MaxLiterals, so the product restarts at [def].
	got := strs(e.Required(mustParse(t, `[abc][def]xyz`)))
	if diff := cmp.Diff([]string{"dxyz", "exyz", "fxyz"}, got); diff != "" {
		t.Errorf("Required over MaxLiterals mismatch (-want +got):\n%s", diff)
	}
	if got := e.Exact(mustParse(t, `[abc][def]`)); got != nil {
		t.Errorf("Exact over MaxLiterals = %q, want nil", strs(got))
	}

	long := strings.Repeat("k", 20)
	if got := strs(e.Required(mustParse(t, long))); !cmp.Equal(got, []string{long[:8]}) {
		t.Errorf("Required of long literal = %q, want truncated to 8 bytes", got)
	}
	if got := e.Exact(mustParse(t, long)); got != nil {
		t.Errorf("Exact of long literal = %q, want nil", strs(got))
	}

	if got := e.Required(mustParse(t, `[a-d]`)); got != nil {
		t.Errorf("class larger than MaxClassSize expanded to %q", strs(got))
	}
}

func TestNewDefaults(t *testing.T) {
	e := New(ExtractorConfig{})
	if diff := cmp.Diff(DefaultConfig(), e.config); diff != "" {
		t.Errorf("zero config not defaulted (-want +got):\n%s", diff)
	}
}

func TestUnicodeLiterals(t *testing.T) {
	e := New(DefaultConfig())
	got := strs(e.Required(mustParse(t, `\d+日本語`)))
	if diff := cmp.Diff([]string{"日本語"}, got); diff != "" {
		t.Errorf("Required mismatch (-want +got):\n%s", diff)
	}
}

func TestSeqOps(t *testing.T) {
	s := NewSeq(
		NewLiteral([]byte("foo"), true),
		NewLiteral([]byte("ab"), true),
		NewLiteral([]byte("foo"), false),
	)
	if s.MinLen() != 2 {
		t.Errorf("MinLen() = %d, want 2", s.MinLen())
	}
	c := s.Clone()
	c.Get(0).Bytes[0] = 'X'
	if string(s.Get(0).Bytes) != "foo" {
		t.Error("Clone shares byte slices with the original")
	}

	s.Dedup()
	if diff := cmp.Diff([]string{"ab", "foo"}, strs(s)); diff != "" {
		t.Errorf("Dedup mismatch (-want +got):\n%s", diff)
	}
	if s.Get(1).Complete {
		t.Error("merged duplicate should keep the incomplete flag")
	}
	if s.HasEmpty() {
		t.Error("HasEmpty() = true without an empty literal")
	}

	var nilSeq *Seq
	if nilSeq.Len() != 0 || !nilSeq.IsEmpty() || nilSeq.Clone() != nil {
		t.Error("nil Seq methods misbehave")
	}
	if got := NewLiteral([]byte("x"), true).String(); got != "literal{x, complete=true}" {
		t.Errorf("String() = %q", got)
	}
}

func TestCross(t *testing.T) {
	a := NewSeq(NewLiteral([]byte("a"), true), NewLiteral([]byte("b"), false))
	b := NewSeq(NewLiteral([]byte("1"), true), NewLiteral([]byte("2"), true))
	got := cross(a, b, 10, 10)
	if diff := cmp.Diff([]string{"a1", "a2", "b1", "b2"}, strs(got)); diff != "" {
		t.Errorf("cross mismatch (-want +got):\n%s", diff)
	}
	if got.Get(2).Complete {
		t.Error("product with an incomplete literal should be incomplete")
	}
	if cross(a, b, 3, 10) != nil {
		t.Error("cross over maxLiterals should be nil")
	}
	if cross(a, b, 10, 1) != nil {
		t.Error("cross over maxLen should be nil")
	}
}
