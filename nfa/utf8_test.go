package nfa

import (
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func seq(pairs ...byte) utf8Sequence {
	s := make(utf8Sequence, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		s = append(s, utf8Range{pairs[i], pairs[i+1]})
	}
	return s
}

func TestUTF8SequencesTwoByte(t *testing.T) {
	got := utf8Sequences([]rune{0x80, 0x7FF})
	want := []utf8Sequence{seq(0xC2, 0xDF, 0x80, 0xBF)}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(utf8Range{})); diff != "" {
		t.Errorf("utf8Sequences mismatch (-want +got):\n%s", diff)
	}
}

func TestUTF8SequencesAllScalars(t *testing.T) {
	got := utf8Sequences([]rune{0, unicode.MaxRune})
	want := []utf8Sequence{
		seq(0x00, 0x7F),
		seq(0xC2, 0xDF, 0x80, 0xBF),
		seq(0xE0, 0xE0, 0xA0, 0xBF, 0x80, 0xBF),
		seq(0xE1, 0xEC, 0x80, 0xBF, 0x80, 0xBF),
		seq(0xED, 0xED, 0x80, 0x9F, 0x80, 0xBF),
		seq(0xEE, 0xEF, 0x80, 0xBF, 0x80, 0xBF),
		seq(0xF0, 0xF0, 0x90, 0xBF, 0x80, 0xBF, 0x80, 0xBF),
		seq(0xF1, 0xF3, 0x80, 0xBF, 0x80, 0xBF, 0x80, 0xBF),
		seq(0xF4, 0xF4, 0x80, 0x8F, 0x80, 0xBF, 0x80, 0xBF),
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(utf8Range{})); diff != "" {
		t.Errorf("utf8Sequences mismatch (-want +got):\n%s", diff)
	}
}

func (s utf8Sequence) matches(b []byte) bool {
	if len(b) != len(s) {
		return false
	}
	for i, r := range s {
		if b[i] < r.lo || b[i] > r.hi {
			return false
		}
	}
	return true
}

func TestUTF8SequencesExactlyOnce(t *testing.T) {
	ranges := []rune{0x41, 0x5A, 0x3B1, 0x3C9, 0x7F0, 0x1000, 0xD000, 0xE100, 0xFFF0, 0x10400, 0x10FFF0, 0x10FFFF}
	seqs := utf8Sequences(ranges)
	in := func(r rune) bool {
		for i := 0; i < len(ranges); i += 2 {
			if ranges[i] <= r && r <= ranges[i+1] {
				return true
			}
		}
		return false
	}

	step := rune(1)
	if testing.Short() {
		step = 97
	}
	var buf [utf8.UTFMax]byte
	for r := rune(0); r <= unicode.MaxRune; r += step {
		if r >= surrogateMin && r <= surrogateMax {
			continue
		}
		b := buf[:utf8.EncodeRune(buf[:], r)]
		n := 0
		for _, s := range seqs {
			if s.matches(b) {
				n++
			}
		}
		want := 0
		if in(r) {
			want = 1
		}
		if n != want {
			t.Fatalf("rune %U matched %d sequences, want %d", r, n, want)
		}
	}

	// Surrogate halves encoded as three bytes are never accepted.
	for r := rune(surrogateMin); r <= surrogateMax; r++ {
		b := []byte{0xE0 | byte(r>>12), 0x80 | byte(r>>6)&0x3F, 0x80 | byte(r)&0x3F}
		for _, s := range seqs {
			if s.matches(b) {
				t.Fatalf("surrogate %U encoding % x matched %v", r, b, s)
			}
		}
	}
}

func TestClassAutomaton(t *testing.T) {
	const pattern = `[\x{7f}-\x{800}\x{d000}-\x{10000}\p{Greek}]`
	in := func(r rune) bool {
		return r >= 0x7F && r <= 0x800 || r >= 0xD000 && r <= 0x10000 || unicode.Is(unicode.Greek, r)
	}
	fwd, rev := compileBoth(t, pattern)
	fvm, rvm := NewPikeVM(fwd), NewPikeVM(rev)

	var buf [utf8.UTFMax]byte
	for r := rune(0); r <= 0x20000; r += 13 {
		if r >= surrogateMin && r <= surrogateMax {
			continue
		}
		b := buf[:utf8.EncodeRune(buf[:], r)]
		want := in(r)
		if got := fvm.IsFullMatch(b); got != want {
			t.Errorf("forward match of %U = %v, want %v", r, got, want)
		}
		rb := make([]byte, len(b))
		for i := range b {
			rb[len(b)-1-i] = b[i]
		}
		if got := rvm.IsFullMatch(rb); got != want {
			t.Errorf("reverse match of %U = %v, want %v", r, got, want)
		}
	}
}

func TestDotRejectsInvalidUTF8(t *testing.T) {
	fwd, rev := compileBoth(t, `(?s).`)
	for _, in := range []string{"\xff", "\xed\xa0\x80", "\xc0\x80", "\xf4\x90\x80\x80", "\xe2\x82"} {
		if NewPikeVM(fwd).IsFullMatch([]byte(in)) {
			t.Errorf("forward `.` matched % x", in)
		}
		if NewPikeVM(rev).IsFullMatch([]byte(in)) {
			t.Errorf("reverse `.` matched % x", in)
		}
	}
}
