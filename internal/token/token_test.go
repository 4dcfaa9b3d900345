// SPDX-License-Identifier: BSD-2-Clause
package token

import (
	"bytes"
	"testing"
)

// coverage checks P1: token spans, concatenated in order, cover src exactly.
func coverage(t *testing.T, src []byte, toks []Token) {
	t.Helper()
	pos := 0
	for _, tok := range toks {
		if tok.Start != pos {
			t.Fatalf("gap/overlap: expected token to start at %d, got %d (%v)", pos, tok.Start, tok)
		}
		if tok.End < tok.Start {
			t.Fatalf("inverted span: %v", tok)
		}
		pos = tok.End
	}
	if pos != len(src) {
		t.Fatalf("tokens cover [0,%d), want [0,%d)", pos, len(src))
	}
}

func TestCoverageVariousInputs(t *testing.T) {
	cases := [][]byte{
		[]byte(""),
		[]byte("   \t\n  "),
		[]byte(`fn main() { println!("hi"); }`),
		[]byte("# a comment\nident_1 + 2.5e-3"),
		[]byte("/* block */ // line\n-- sql style\nx"),
		[]byte(`"unterminated`),
		[]byte("/* unterminated"),
		[]byte("<!-- html comment -->"),
		[]byte("<!-- unterminated"),
		[]byte("0xFF 0o17 0b101 1.5 1e10 1.5e-10 42"),
		[]byte("a\"b\\\"c\"d"),
		[]byte{0xff, 0xfe, 'x'},
	}
	for _, src := range cases {
		toks := scan(src)
		coverage(t, src, toks)
	}
}

func TestIdentifier(t *testing.T) {
	toks := scan([]byte("_foo1 bar"))
	if len(toks) != 2 || toks[0].Kind != Ident || toks[1].Kind != Ident {
		t.Fatalf("got %v", toks)
	}
}

func TestNumberForms(t *testing.T) {
	src := []byte("0xFF 0o17 0b101 1.5 1e10 1.5e-10 42")
	toks := scan(src)
	var got []string
	for _, tok := range toks {
		if tok.Kind == Number {
			got = append(got, string(tok.Text(src)))
		}
	}
	want := []string{"0xFF", "0o17", "0b101", "1.5", "1e10", "1.5e-10", "42"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestLeadingSignNotPartOfNumber(t *testing.T) {
	src := []byte("-5")
	toks := scan(src)
	if len(toks) != 2 || toks[0].Kind != Symbol || toks[1].Kind != Number {
		t.Fatalf("got %v", toks)
	}
}

func TestStringEscape(t *testing.T) {
	src := []byte(`"a\"b"`)
	toks := scan(src)
	if len(toks) != 1 || toks[0].Kind != String || toks[0].End != len(src) {
		t.Fatalf("got %v", toks)
	}
}

func TestUnterminatedStringIsError(t *testing.T) {
	src := []byte(`"never closes`)
	toks := scan(src)
	if len(toks) != 1 || toks[0].Kind != Error || toks[0].Start != 0 || toks[0].End != len(src) {
		t.Fatalf("got %v", toks)
	}
}

func TestUnterminatedBlockCommentIsError(t *testing.T) {
	src := []byte("/* never closes")
	toks := scan(src)
	if len(toks) != 1 || toks[0].Kind != Error {
		t.Fatalf("got %v", toks)
	}
}

func TestLineCommentVariants(t *testing.T) {
	for _, leader := range []string{"//", "#", "--"} {
		src := []byte(leader + " comment\nident")
		toks := scan(src)
		if len(toks) != 2 || toks[0].Kind != LineComment || toks[1].Kind != Ident {
			t.Fatalf("leader %q: got %v", leader, toks)
		}
	}
}

func TestDashSymbolWhenNotDoubled(t *testing.T) {
	toks := scan([]byte("a-b"))
	if len(toks) != 3 || toks[1].Kind != Symbol {
		t.Fatalf("got %v", toks)
	}
}

func TestBlockCommentSlashStar(t *testing.T) {
	src := []byte("/* a */x")
	toks := scan(src)
	if len(toks) != 2 || toks[0].Kind != BlockComment || toks[1].Kind != Ident {
		t.Fatalf("got %v", toks)
	}
	if !bytes.Equal(toks[0].Text(src), []byte("/* a */")) {
		t.Fatalf("bad span text: %q", toks[0].Text(src))
	}
}

func TestHTMLBlockComment(t *testing.T) {
	src := []byte("<!-- a --> x")
	toks := scan(src)
	if toks[0].Kind != BlockComment {
		t.Fatalf("got %v", toks)
	}
}

func TestStreamRestartable(t *testing.T) {
	s := Tokenize([]byte("a b c"))
	var first []Kind
	for {
		tok, ok := s.Next()
		if !ok {
			break
		}
		first = append(first, tok.Kind)
	}
	s.Reset()
	var second []Kind
	for {
		tok, ok := s.Next()
		if !ok {
			break
		}
		second = append(second, tok.Kind)
	}
	if len(first) != len(second) || len(first) != 3 {
		t.Fatalf("reset mismatch: %v vs %v", first, second)
	}
}

func TestInvalidUTF8PassesThroughAsSymbols(t *testing.T) {
	src := []byte{0xff, 0xfe}
	toks := scan(src)
	if len(toks) != 2 || toks[0].Kind != Symbol || toks[1].Kind != Symbol {
		t.Fatalf("got %v", toks)
	}
}
