package internal

import (
	"strings"
	"testing"
)

func outline(t *testing.T, src string) string {
	t.Helper()
	n, err := Parse("test", src)
	if err != nil {
		t.Fatalf("could not parse %q: %v", src, err)
	}
	var b strings.Builder
	if err := DumpTree(&b, n); err != nil {
		t.Fatal(err)
	}
	return b.String()
}

// TestParseShapes tests that source produces the expected tree outlines.
func TestParseShapes(t *testing.T) {
	cases := map[string]struct {
		src  string
		tree string
	}{
		"Empty": {"", "body\n"},
		"Binary": {"3 + 4", `body
  statement
    chain
      receiver
        number
          NUMBER "3"
      message
        binaryMessage
          BINOP "+"
          argument
            chain
              receiver
                number
                  NUMBER "4"
`},
		"Assignment": {"a := 1", `body
  statement
    assignment
      ref
        reference
          IDENT "a"
      expr
        chain
          receiver
            number
              NUMBER "1"
`},
		"Keyword": {"a at: 1 put: b", `body
  statement
    chain
      receiver
        reference
          IDENT "a"
      message
        keywordMessage
          keywordPart
            KEYWORD "at:"
            argument
              chain
                receiver
                  number
                    NUMBER "1"
          keywordPart
            KEYWORD "put:"
            argument
              chain
                receiver
                  reference
                    IDENT "b"
`},
		"Block": {"[:x | x]", `body
  statement
    chain
      receiver
        block
          blockParam
            PARAM "x"
          statement
            chain
              receiver
                reference
                  IDENT "x"
`},
		"Temporaries": {"| t | t", `body
  temporaries
    temp
      IDENT "t"
  statement
    chain
      receiver
        reference
          IDENT "t"
`},
		"Comment": {`"hi" 1`, `body
  comment
    COMMENT "hi"
  statement
    chain
      receiver
        number
          NUMBER "1"
`},
		"Negative": {"-2", `body
  statement
    chain
      receiver
        number
          NUMBER "-2"
`},
		"LiteralArray": {"#(1 foo)", `body
  statement
    chain
      receiver
        literalArray
          element
            number
              NUMBER "1"
          element
            symbol
              IDENT "foo"
`},
		"Primitive": {"<print: a>", `body
  statement
    chain
      receiver
        primitive
          KEYWORD "print:"
          argument
            chain
              receiver
                reference
                  IDENT "a"
`},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := outline(t, c.src); got != c.tree {
				t.Errorf("%q parsed to\n%s\nwant\n%s", c.src, got, c.tree)
			}
		})
	}
}

// TestParseCascade tests that a cascade splits the last message of the first
// chain off from its receiver.
func TestParseCascade(t *testing.T) {
	got := outline(t, "a b; c")
	want := `body
  statement
    cascade
      receiver
        chain
          receiver
            reference
              IDENT "a"
      message
        unaryMessage
          IDENT "b"
      message
        unaryMessage
          IDENT "c"
`
	if got != want {
		t.Errorf("cascade parsed to\n%s\nwant\n%s", got, want)
	}
}

// TestParseErrors tests that bad source produces positioned syntax failures,
// and that failures caused by early ends are incomplete.
func TestParseErrors(t *testing.T) {
	cases := map[string]struct {
		src        string
		line, col  int
		incomplete bool
	}{
		"UnclosedGroup":   {"(1 + 2", 1, 7, true},
		"UnclosedBlock":   {"[:x | x", 1, 8, true},
		"UnclosedString":  {"'abc", 1, 1, true},
		"MissingArgument": {"3 + ", 1, 5, true},
		"MissingValue":    {"a := ", 1, 6, true},
		"UnclosedArray":   {"#(1 2", 1, 6, true},
		"ExtraClose":      {"3 )", 1, 3, false},
		"Return":          {"^ 3", 1, 1, false},
		"SecondLine":      {"a.\nb c: )", 2, 6, false},
		"BadPrimitive":    {"< 3 >", 1, 3, false},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("test", c.src)
			if err == nil {
				t.Fatalf("%q parsed without error", c.src)
			}
			e, ok := err.(*Error)
			if !ok {
				t.Fatalf("%q gave %T, not *Error", c.src, err)
			}
			if e.Kind != SyntaxFailure {
				t.Errorf("%q gave kind %v", c.src, e.Kind)
			}
			if e.Line != c.line || e.Col != c.col {
				t.Errorf("%q failed at %d:%d, want %d:%d (%v)", c.src, e.Line, e.Col, c.line, c.col, e)
			}
			if IsIncomplete(err) != c.incomplete {
				t.Errorf("%q incomplete is %t, want %t", c.src, IsIncomplete(err), c.incomplete)
			}
			if e.Label != "test" {
				t.Errorf("%q has label %q", c.src, e.Label)
			}
		})
	}
}

// TestDiagnosticCaret tests that diagnostics point at the failing column.
func TestDiagnosticCaret(t *testing.T) {
	_, err := Parse("snippet", "a := 1.\nb := 2 )")
	e, ok := err.(*Error)
	if !ok {
		t.Fatalf("wrong error %v", err)
	}
	d := e.Diagnostic()
	want := "SYNTAX FAILURE in snippet at 2:8:"
	if !strings.HasPrefix(d, want) {
		t.Errorf("diagnostic starts %q, want %q", d, want)
	}
	if !strings.Contains(d, "   2 | b := 2 )\n     |        ^\n") {
		t.Errorf("diagnostic has no caret under column 8:\n%s", d)
	}
}
