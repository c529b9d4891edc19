package internal

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// A token is a single lexical element.
type token struct {
	Kind  tokenKind
	Value string
	Err   error

	Line, Col int
}

type tokenKind int

const (
	badToken tokenKind = iota

	eofToken
	identToken   // identifier
	keywordToken // identifier followed by a colon: at:
	paramToken   // block parameter, value excludes the colon: :x
	assignToken  // :=
	binopToken   // binary operator characters: + - <= , |
	numberToken  // number: 12 3.5 1e3 16rFF
	stringToken  // 'string', value is unescaped
	symbolToken  // #sym #at:put: #+ #'quoted', value excludes the hash
	charToken    // $c, value is the character
	arrayToken   // #(
	punctToken   // ( ) [ ] { } . ; ^
	commentToken // "comment", value excludes the quotes
)

var tokenNames = [...]string{
	badToken:     "BAD",
	eofToken:     "EOF",
	identToken:   "IDENT",
	keywordToken: "KEYWORD",
	paramToken:   "PARAM",
	assignToken:  "ASSIGN",
	binopToken:   "BINOP",
	numberToken:  "NUMBER",
	stringToken:  "STRING",
	symbolToken:  "SYMBOL",
	charToken:    "CHAR",
	arrayToken:   "ARRAY",
	punctToken:   "PUNCT",
	commentToken: "COMMENT",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return fmt.Sprintf("tokenKind(%d)", int(k))
	}
	return tokenNames[k]
}

// binaryChars are the characters that make up binary selectors.
const binaryChars = "+-*/\\<>=~@%|&?,"

// lexFn is a lexer state function. Each lexFn lexes a token, sends it on the
// supplied channel, and returns the next lexFn to use.
type lexFn func(src *bufio.Reader, tokens chan<- token, line, col int) (lexFn, int, int)

// lex converts a source into a stream of tokens. The last token is always an
// eofToken or a badToken.
func lex(src *bufio.Reader, tokens chan<- token) {
	state := eatSpace
	line, col := 1, 1
	for state != nil {
		state, line, col = state(src, tokens, line, col)
	}
	close(tokens)
}

// accept appends the next run of characters in src which satisfy the predicate
// to b. Returns b after appending, the first rune which did not satisfy the
// predicate, and any error that occurred. If there was no such error, the
// last rune is unread.
func accept(src *bufio.Reader, predicate func(rune) bool, b []byte) ([]byte, rune, error) {
	r, _, err := src.ReadRune()
	for {
		if err != nil {
			return b, r, err
		}
		if !predicate(r) {
			break
		}
		b = append(b, string(r)...)
		r, _, err = src.ReadRune()
	}
	src.UnreadRune()
	return b, r, nil
}

// peekRune returns the next rune without consuming it.
func peekRune(src *bufio.Reader) rune {
	r, _, err := src.ReadRune()
	if err != nil {
		return -1
	}
	src.UnreadRune()
	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isBinary(r rune) bool {
	return strings.ContainsRune(binaryChars, r)
}

func lexError(tokens chan<- token, line, col int, err error) (lexFn, int, int) {
	tokens <- token{Kind: badToken, Err: err, Line: line, Col: col}
	return nil, line, col
}

// eatSpace consumes space and decides the next lexFn to use.
func eatSpace(src *bufio.Reader, tokens chan<- token, line, col int) (lexFn, int, int) {
	for {
		r, _, err := src.ReadRune()
		if err != nil {
			if err != io.EOF {
				return lexError(tokens, line, col, err)
			}
			tokens <- token{Kind: eofToken, Line: line, Col: col}
			return nil, line, col
		}
		switch {
		case r == '\n':
			line++
			col = 1
			continue
		case unicode.IsSpace(r):
			col++
			continue
		}
		src.UnreadRune()
		switch {
		case isIdentStart(r):
			return lexIdent, line, col
		case isDigit(r):
			return lexNumber, line, col
		case r == '\'':
			return lexString, line, col
		case r == '"':
			return lexComment, line, col
		case r == '#':
			return lexSymbol, line, col
		case r == '$':
			return lexChar, line, col
		case r == ':':
			return lexColon, line, col
		case isBinary(r):
			return lexBinary, line, col
		case strings.ContainsRune("()[]{}.;^", r):
			src.ReadRune()
			tokens <- token{Kind: punctToken, Value: string(r), Line: line, Col: col}
			return eatSpace, line, col + 1
		}
		return lexError(tokens, line, col, fmt.Errorf("unexpected character %q", r))
	}
}

// lexIdent lexes an identifier or keyword.
func lexIdent(src *bufio.Reader, tokens chan<- token, line, col int) (lexFn, int, int) {
	b, _, err := accept(src, isIdentPart, nil)
	if err != nil && err != io.EOF {
		return lexError(tokens, line, col, err)
	}
	name := normalize(string(b))
	n := len([]rune(string(b)))
	// name := is an identifier followed by assignment.
	if p, _ := src.Peek(2); len(p) > 0 && p[0] == ':' && (len(p) == 1 || p[1] != '=') {
		src.ReadRune()
		tokens <- token{Kind: keywordToken, Value: name + ":", Line: line, Col: col}
		return eatSpace, line, col + n + 1
	}
	tokens <- token{Kind: identToken, Value: name, Line: line, Col: col}
	return eatSpace, line, col + n
}

// lexColon lexes an assignment or a block parameter.
func lexColon(src *bufio.Reader, tokens chan<- token, line, col int) (lexFn, int, int) {
	src.ReadRune()
	r := peekRune(src)
	if r == '=' {
		src.ReadRune()
		tokens <- token{Kind: assignToken, Value: ":=", Line: line, Col: col}
		return eatSpace, line, col + 2
	}
	if !isIdentStart(r) {
		return lexError(tokens, line, col, fmt.Errorf("expected parameter name after ':'"))
	}
	b, _, err := accept(src, isIdentPart, nil)
	if err != nil && err != io.EOF {
		return lexError(tokens, line, col, err)
	}
	tokens <- token{Kind: paramToken, Value: normalize(string(b)), Line: line, Col: col}
	return eatSpace, line, col + 1 + len([]rune(string(b)))
}

// lexNumber lexes a number: digits, an optional fraction, an optional
// exponent, or a radix form like 16rFF.
func lexNumber(src *bufio.Reader, tokens chan<- token, line, col int) (lexFn, int, int) {
	b, r, err := accept(src, isDigit, nil)
	switch {
	case err != nil:
	case r == 'r':
		src.ReadRune()
		b = append(b, 'r')
		b, _, err = accept(src, func(r rune) bool { return isDigit(r) || 'A' <= r && r <= 'Z' }, b)
	default:
		// A period is only a decimal point if a digit follows; otherwise it
		// ends a statement.
		if p, _ := src.Peek(2); len(p) == 2 && p[0] == '.' && isDigit(rune(p[1])) {
			src.ReadRune()
			b = append(b, '.')
			b, _, err = accept(src, isDigit, b)
		}
		if err != nil {
			break
		}
		p, _ := src.Peek(3)
		switch {
		case len(p) >= 2 && p[0] == 'e' && isDigit(rune(p[1])):
			src.ReadRune()
			b = append(b, 'e')
			b, _, err = accept(src, isDigit, b)
		case len(p) == 3 && p[0] == 'e' && p[1] == '-' && isDigit(rune(p[2])):
			src.ReadRune()
			src.ReadRune()
			b = append(b, 'e', '-')
			b, _, err = accept(src, isDigit, b)
		}
	}
	if err != nil && err != io.EOF {
		return lexError(tokens, line, col, err)
	}
	tokens <- token{Kind: numberToken, Value: string(b), Line: line, Col: col}
	return eatSpace, line, col + len(b)
}

// lexQuoted reads text up to a closing quote, where a doubled quote stands for
// one quote. It returns the text and the updated position.
func lexQuoted(src *bufio.Reader, q rune, line, col int) (string, int, int, error) {
	src.ReadRune()
	col++
	var b strings.Builder
	for {
		r, _, err := src.ReadRune()
		if err != nil {
			if err == io.EOF {
				return b.String(), line, col, io.ErrUnexpectedEOF
			}
			return b.String(), line, col, err
		}
		if r == q {
			col++
			if peekRune(src) != q || q == '"' {
				return b.String(), line, col, nil
			}
			src.ReadRune()
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		b.WriteRune(r)
	}
}

// lexString lexes a single-quoted string.
func lexString(src *bufio.Reader, tokens chan<- token, line, col int) (lexFn, int, int) {
	s, nl, nc, err := lexQuoted(src, '\'', line, col)
	if err != nil {
		tokens <- token{Kind: badToken, Value: s, Err: err, Line: line, Col: col}
		return nil, nl, nc
	}
	tokens <- token{Kind: stringToken, Value: s, Line: line, Col: col}
	return eatSpace, nl, nc
}

// lexComment lexes a double-quoted comment.
func lexComment(src *bufio.Reader, tokens chan<- token, line, col int) (lexFn, int, int) {
	s, nl, nc, err := lexQuoted(src, '"', line, col)
	if err != nil {
		tokens <- token{Kind: badToken, Value: s, Err: err, Line: line, Col: col}
		return nil, nl, nc
	}
	tokens <- token{Kind: commentToken, Value: s, Line: line, Col: col}
	return eatSpace, nl, nc
}

// lexSymbol lexes a symbol or the opening of a literal array.
func lexSymbol(src *bufio.Reader, tokens chan<- token, line, col int) (lexFn, int, int) {
	src.ReadRune()
	r := peekRune(src)
	switch {
	case r == '(':
		src.ReadRune()
		tokens <- token{Kind: arrayToken, Value: "#(", Line: line, Col: col}
		return eatSpace, line, col + 2
	case r == '\'':
		s, nl, nc, err := lexQuoted(src, '\'', line, col+1)
		if err != nil {
			tokens <- token{Kind: badToken, Value: s, Err: err, Line: line, Col: col}
			return nil, nl, nc
		}
		tokens <- token{Kind: symbolToken, Value: s, Line: line, Col: col}
		return eatSpace, nl, nc
	case isIdentStart(r):
		b, _, err := accept(src, func(r rune) bool { return isIdentPart(r) || r == ':' }, nil)
		if err != nil && err != io.EOF {
			return lexError(tokens, line, col, err)
		}
		tokens <- token{Kind: symbolToken, Value: normalize(string(b)), Line: line, Col: col}
		return eatSpace, line, col + 1 + len([]rune(string(b)))
	case isBinary(r):
		b, _, err := accept(src, isBinary, nil)
		if err != nil && err != io.EOF {
			return lexError(tokens, line, col, err)
		}
		tokens <- token{Kind: symbolToken, Value: string(b), Line: line, Col: col}
		return eatSpace, line, col + 1 + len(b)
	}
	return lexError(tokens, line, col, fmt.Errorf("expected symbol after '#'"))
}

// lexChar lexes a character literal.
func lexChar(src *bufio.Reader, tokens chan<- token, line, col int) (lexFn, int, int) {
	src.ReadRune()
	r, _, err := src.ReadRune()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return lexError(tokens, line, col, err)
	}
	tokens <- token{Kind: charToken, Value: string(r), Line: line, Col: col}
	if r == '\n' {
		return eatSpace, line + 1, 1
	}
	return eatSpace, line, col + 2
}

// lexBinary lexes a binary operator.
func lexBinary(src *bufio.Reader, tokens chan<- token, line, col int) (lexFn, int, int) {
	b, _, err := accept(src, isBinary, nil)
	if err != nil && err != io.EOF {
		return lexError(tokens, line, col, err)
	}
	tokens <- token{Kind: binopToken, Value: string(b), Line: line, Col: col}
	return eatSpace, line, col + len(b)
}
