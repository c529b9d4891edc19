package internal

import (
	"bufio"
	"io"
	"strings"
	"testing"
)

func lexAll(text string) []token {
	ch := make(chan token)
	go lex(bufio.NewReader(strings.NewReader(text)), ch)
	var r []token
	for tok := range ch {
		r = append(r, tok)
	}
	return r
}

// TestLexSingles tests that individual tokens have the correct kinds and
// values.
func TestLexSingles(t *testing.T) {
	cases := map[string]struct {
		text string
		kind tokenKind
		val  string
	}{
		"Ident":         {"abcd", identToken, "abcd"},
		"Ident-alnum":   {"a123", identToken, "a123"},
		"Ident-under":   {"_a_b", identToken, "_a_b"},
		"Keyword":       {"at:", keywordToken, "at:"},
		"Param":         {":x", paramToken, "x"},
		"Assign":        {":=", assignToken, ":="},
		"Binop+":        {"+", binopToken, "+"},
		"Binop<=":       {"<=", binopToken, "<="},
		"Binop,":        {",", binopToken, ","},
		"Binop->":       {"->", binopToken, "->"},
		"Binop\\\\":     {`\\`, binopToken, `\\`},
		"Number":        {"123", numberToken, "123"},
		"Number-frac":   {"1.5", numberToken, "1.5"},
		"Number-exp":    {"1e3", numberToken, "1e3"},
		"Number-negexp": {"25e-1", numberToken, "25e-1"},
		"Number-radix":  {"16rFF", numberToken, "16rFF"},
		"String":        {"'abc'", stringToken, "abc"},
		"String-quote":  {"'it''s'", stringToken, "it's"},
		"String-empty":  {"''", stringToken, ""},
		"Symbol":        {"#foo", symbolToken, "foo"},
		"Symbol-kw":     {"#at:put:", symbolToken, "at:put:"},
		"Symbol-bin":    {"#+", symbolToken, "+"},
		"Symbol-quoted": {"#'a b'", symbolToken, "a b"},
		"Char":          {"$a", charToken, "a"},
		"Char-space":    {"$ ", charToken, " "},
		"Array":         {"#(", arrayToken, "#("},
		"Punct(":        {"(", punctToken, "("},
		"Punct]":        {"]", punctToken, "]"},
		"Punct.":        {".", punctToken, "."},
		"Punct;":        {";", punctToken, ";"},
		"Comment":       {`"note"`, commentToken, "note"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			toks := lexAll(c.text)
			if len(toks) != 2 {
				t.Fatalf("%q lexed to %d tokens, want 2: %v", c.text, len(toks), toks)
			}
			if toks[0].Kind != c.kind {
				t.Errorf("%q has kind %v, want %v", c.text, toks[0].Kind, c.kind)
			}
			if toks[0].Value != c.val {
				t.Errorf("%q has value %q, want %q", c.text, toks[0].Value, c.val)
			}
			if toks[1].Kind != eofToken {
				t.Errorf("%q ends with %v, want EOF", c.text, toks[1].Kind)
			}
		})
	}
}

// TestLexSequences tests that tokens split where they should.
func TestLexSequences(t *testing.T) {
	cases := map[string]struct {
		text  string
		kinds []tokenKind
	}{
		"Statement":   {"a := 3 + 4.", []tokenKind{identToken, assignToken, numberToken, binopToken, numberToken, punctToken, eofToken}},
		"PeriodEnds":  {"3.", []tokenKind{numberToken, punctToken, eofToken}},
		"Unary":       {"3 e", []tokenKind{numberToken, identToken, eofToken}},
		"Keywords":    {"a at: 1 put: 2", []tokenKind{identToken, keywordToken, numberToken, keywordToken, numberToken, eofToken}},
		"IdentAssign": {"a:=1", []tokenKind{identToken, assignToken, numberToken, eofToken}},
		"Block":       {"[:x | x]", []tokenKind{punctToken, paramToken, binopToken, identToken, punctToken, eofToken}},
		"Temps":       {"| a b |", []tokenKind{binopToken, identToken, identToken, binopToken, eofToken}},
		"Brace":       {"{1. 2}", []tokenKind{punctToken, numberToken, punctToken, numberToken, punctToken, eofToken}},
		"Primitive":   {"<print: a>", []tokenKind{binopToken, keywordToken, identToken, binopToken, eofToken}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			toks := lexAll(c.text)
			if len(toks) != len(c.kinds) {
				t.Fatalf("%q lexed to %v, want kinds %v", c.text, toks, c.kinds)
			}
			for i, tok := range toks {
				if tok.Kind != c.kinds[i] {
					t.Errorf("%q token %d is %v, want %v", c.text, i, tok.Kind, c.kinds[i])
				}
			}
		})
	}
}

// TestLexPositions tests that tokens record their line and column.
func TestLexPositions(t *testing.T) {
	toks := lexAll("a\n  bc := 'x'")
	want := [][2]int{{1, 1}, {2, 3}, {2, 6}, {2, 9}}
	for i, w := range want {
		if toks[i].Line != w[0] || toks[i].Col != w[1] {
			t.Errorf("token %d %q at %d:%d, want %d:%d", i, toks[i].Value, toks[i].Line, toks[i].Col, w[0], w[1])
		}
	}
}

// TestLexErrors tests that bad input ends the token stream with an error.
func TestLexErrors(t *testing.T) {
	cases := map[string]struct {
		text string
		eof  bool
	}{
		"UnclosedString":  {"'abc", true},
		"UnclosedComment": {`"abc`, true},
		"BareHash":        {"# ", false},
		"BareColon":       {": x", false},
		"Unknown":         {"`", false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			toks := lexAll(c.text)
			last := toks[len(toks)-1]
			if last.Kind != badToken {
				t.Fatalf("%q ended with %v, want BAD", c.text, last.Kind)
			}
			if (last.Err == io.ErrUnexpectedEOF) != c.eof {
				t.Errorf("%q: wrong error %v", c.text, last.Err)
			}
		})
	}
}
