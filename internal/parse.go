package internal

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Parse parses source text into a tree rooted at a body node. The label names
// the source in diagnostics.
func Parse(label, src string) (*Node, error) {
	tokens := make(chan token)
	go lex(bufio.NewReader(strings.NewReader(src)), tokens)
	p := parser{tokens: tokens, label: label, src: src}
	defer p.drain()
	root := NewNode("body", 1, 1)
	if err := p.body(root, ""); err != nil {
		return nil, err
	}
	return root, nil
}

// ParseReader reads all of r and parses it.
func ParseReader(label string, r io.Reader) (*Node, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(label, string(b))
}

type parser struct {
	tokens <-chan token
	ahead  []token
	// comments holds comment tokens not yet attached to the tree.
	comments []token
	label    string
	src      string
	// end is the last token the lexer sent.
	end token
	// inCall is set while parsing call arguments, where a comma separates
	// arguments instead of being a binary selector.
	inCall bool
}

// drain consumes the rest of the token stream so the lexer goroutine exits.
func (p *parser) drain() {
	for range p.tokens {
	}
}

// fill reads tokens until n non-comment tokens are buffered. Once the lexer
// is done, the final token repeats.
func (p *parser) fill(n int) {
	for len(p.ahead) < n {
		tok, ok := <-p.tokens
		if !ok {
			p.ahead = append(p.ahead, p.end)
			continue
		}
		switch tok.Kind {
		case commentToken:
			p.comments = append(p.comments, tok)
			continue
		case eofToken, badToken:
			p.end = tok
		}
		p.ahead = append(p.ahead, tok)
	}
}

func (p *parser) peek() token {
	p.fill(1)
	return p.ahead[0]
}

func (p *parser) peek2() token {
	p.fill(2)
	return p.ahead[1]
}

func (p *parser) next() token {
	p.fill(1)
	t := p.ahead[0]
	p.ahead = p.ahead[1:]
	return t
}

func (p *parser) is(t token, kind tokenKind, val string) bool {
	return t.Kind == kind && t.Value == val
}

func (p *parser) errorf(t token, format string, args ...interface{}) *Error {
	if t.Kind == badToken && t.Err != nil {
		return &Error{
			Kind:       SyntaxFailure,
			Msg:        t.Err.Error(),
			Label:      p.label,
			Line:       t.Line,
			Col:        t.Col,
			Source:     p.src,
			incomplete: t.Err == io.ErrUnexpectedEOF,
		}
	}
	return &Error{
		Kind:       SyntaxFailure,
		Msg:        fmt.Sprintf(format, args...),
		Label:      p.label,
		Line:       t.Line,
		Col:        t.Col,
		Source:     p.src,
		incomplete: t.Kind == eofToken,
	}
}

func describe(t token) string {
	switch t.Kind {
	case eofToken:
		return "end of input"
	case badToken:
		return "invalid token"
	}
	return fmt.Sprintf("%q", t.Value)
}

func leaf(t token) *Node {
	return NewLeaf(t.Kind.String(), t.Value, t.Line, t.Col)
}

// flushComments attaches pending comments to n.
func (p *parser) flushComments(n *Node) {
	for _, c := range p.comments {
		n.add(NewNode("comment", c.Line, c.Col, leaf(c)))
	}
	p.comments = p.comments[:0]
}

// atCloser reports whether the next token ends a statement list.
func (p *parser) atCloser(closer string) bool {
	t := p.peek()
	if closer == "" {
		return t.Kind == eofToken
	}
	return p.is(t, punctToken, closer)
}

// body parses optional temporaries followed by period-separated statements
// into n, stopping before closer.
func (p *parser) body(n *Node, closer string) error {
	if t := p.peek(); t.Kind == binopToken && (t.Value == "|" || t.Value == "||") {
		tmp, err := p.temporaries()
		if err != nil {
			return err
		}
		n.add(tmp)
	}
	for {
		p.peek()
		p.flushComments(n)
		if p.atCloser(closer) {
			return nil
		}
		t := p.peek()
		if t.Kind == badToken {
			return p.errorf(t, "")
		}
		if p.is(t, punctToken, ".") {
			p.next()
			continue
		}
		stmt, err := p.statement()
		if err != nil {
			return err
		}
		n.add(stmt)
		t = p.peek()
		p.flushComments(n)
		switch {
		case p.is(t, punctToken, "."):
			p.next()
		case p.atCloser(closer):
			return nil
		default:
			if closer == "" {
				return p.errorf(t, "expected '.' or end of input, found %s", describe(t))
			}
			return p.errorf(t, "expected '.' or %q, found %s", closer, describe(t))
		}
	}
}

// temporaries parses | a b c |.
func (p *parser) temporaries() (*Node, error) {
	open := p.next()
	n := NewNode("temporaries", open.Line, open.Col)
	if open.Value == "||" {
		return n, nil
	}
	for {
		t := p.next()
		switch {
		case t.Kind == identToken:
			n.add(NewNode("temp", t.Line, t.Col, leaf(t)))
		case p.is(t, binopToken, "|"):
			return n, nil
		default:
			return nil, p.errorf(t, "expected temporary name or '|', found %s", describe(t))
		}
	}
}

func (p *parser) statement() (*Node, error) {
	t := p.peek()
	if p.is(t, punctToken, "^") {
		return nil, p.errorf(t, "non-local return is not supported")
	}
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	return NewNode("statement", t.Line, t.Col, e), nil
}

func (p *parser) expression() (*Node, error) {
	t := p.peek()
	if t.Kind == identToken && p.peek2().Kind == assignToken {
		p.next()
		p.next()
		ref := NewNode("ref", t.Line, t.Col, NewNode("reference", t.Line, t.Col, leaf(t)))
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		line, col := v.Pos()
		return NewNode("assignment", t.Line, t.Col, ref, NewNode("expr", line, col, v)), nil
	}
	c, err := p.chain(keywordLevel)
	if err != nil {
		return nil, err
	}
	if !p.is(p.peek(), punctToken, ";") {
		return c.node(), nil
	}
	if len(c.msgs) == 0 {
		return nil, p.errorf(p.peek(), "cascade needs a message before ';'")
	}
	casc := NewNode("cascade", c.line, c.col)
	recv := chainOf{recv: c.recv, msgs: c.msgs[:len(c.msgs)-1], line: c.line, col: c.col}
	casc.add(NewNode("receiver", c.line, c.col, recv.node()))
	casc.add(wrapMessage(c.msgs[len(c.msgs)-1]))
	for p.is(p.peek(), punctToken, ";") {
		p.next()
		m, err := p.cascadePart()
		if err != nil {
			return nil, err
		}
		casc.add(wrapMessage(m))
	}
	return casc, nil
}

// Message precedence levels.
const (
	// primaryLevel takes no messages at all, for primitive arguments.
	primaryLevel = iota
	unaryLevel
	binaryLevel
	keywordLevel
)

// chainOf is a receiver with messages, kept unassembled so a cascade can
// split off its last message.
type chainOf struct {
	recv      *Node
	msgs      []*Node
	line, col int
}

func wrapMessage(m *Node) *Node {
	line, col := m.Pos()
	return NewNode("message", line, col, m)
}

func (c chainOf) node() *Node {
	n := NewNode("chain", c.line, c.col, NewNode("receiver", c.line, c.col, c.recv))
	for _, m := range c.msgs {
		n.add(wrapMessage(m))
	}
	return n
}

// chain parses a primary followed by messages up to the given level.
func (p *parser) chain(level int) (chainOf, error) {
	t := p.peek()
	recv, err := p.primary()
	if err != nil {
		return chainOf{}, err
	}
	c := chainOf{recv: recv, line: t.Line, col: t.Col}
	for {
		t := p.peek()
		var m *Node
		switch {
		case t.Kind == identToken && level >= unaryLevel:
			p.next()
			m = NewNode("unaryMessage", t.Line, t.Col, leaf(t))
		case p.is(t, punctToken, "(") && level >= unaryLevel:
			m, err = p.call()
		case t.Kind == binopToken && p.inCall && t.Value == ",":
			return c, nil
		case t.Kind == binopToken && level >= binaryLevel:
			m, err = p.binary()
		case t.Kind == keywordToken && level >= keywordLevel:
			m, err = p.keyword()
		default:
			return c, nil
		}
		if err != nil {
			return chainOf{}, err
		}
		c.msgs = append(c.msgs, m)
		if m.Rule() == "keywordMessage" {
			return c, nil
		}
	}
}

func (p *parser) argument(level int) (*Node, error) {
	t := p.peek()
	c, err := p.chain(level)
	if err != nil {
		return nil, err
	}
	return NewNode("argument", t.Line, t.Col, c.node()), nil
}

func (p *parser) binary() (*Node, error) {
	op := p.next()
	arg, err := p.argument(unaryLevel)
	if err != nil {
		return nil, err
	}
	return NewNode("binaryMessage", op.Line, op.Col, leaf(op), arg), nil
}

func (p *parser) keyword() (*Node, error) {
	first := p.peek()
	n := NewNode("keywordMessage", first.Line, first.Col)
	for p.peek().Kind == keywordToken {
		kw := p.next()
		arg, err := p.argument(binaryLevel)
		if err != nil {
			return nil, err
		}
		n.add(NewNode("keywordPart", kw.Line, kw.Col, leaf(kw), arg))
	}
	return n, nil
}

// nest sets whether commas separate call arguments and returns a function
// restoring the previous setting.
func (p *parser) nest(inCall bool) func() {
	old := p.inCall
	p.inCall = inCall
	return func() { p.inCall = old }
}

// call parses a parenthesized, comma-separated argument list.
func (p *parser) call() (*Node, error) {
	open := p.next()
	n := NewNode("callMessage", open.Line, open.Col)
	defer p.nest(true)()
	if p.is(p.peek(), punctToken, ")") {
		p.next()
		return n, nil
	}
	for {
		t := p.peek()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		n.add(NewNode("argument", t.Line, t.Col, e))
		t = p.next()
		switch {
		case p.is(t, punctToken, ")"):
			return n, nil
		case p.is(t, binopToken, ","):
		default:
			return nil, p.errorf(t, "expected ',' or ')' in call, found %s", describe(t))
		}
	}
}

func (p *parser) cascadePart() (*Node, error) {
	t := p.peek()
	switch {
	case t.Kind == identToken:
		p.next()
		return NewNode("unaryMessage", t.Line, t.Col, leaf(t)), nil
	case t.Kind == binopToken:
		return p.binary()
	case t.Kind == keywordToken:
		return p.keyword()
	case p.is(t, punctToken, "("):
		return p.call()
	}
	return nil, p.errorf(t, "expected message after ';', found %s", describe(t))
}

func (p *parser) primary() (*Node, error) {
	t := p.peek()
	switch t.Kind {
	case identToken:
		p.next()
		return NewNode("reference", t.Line, t.Col, leaf(t)), nil
	case numberToken:
		p.next()
		return NewNode("number", t.Line, t.Col, leaf(t)), nil
	case stringToken:
		p.next()
		return NewNode("string", t.Line, t.Col, leaf(t)), nil
	case symbolToken:
		p.next()
		return NewNode("symbol", t.Line, t.Col, leaf(t)), nil
	case charToken:
		p.next()
		return NewNode("character", t.Line, t.Col, leaf(t)), nil
	case arrayToken:
		p.next()
		return p.literalArray(t)
	case binopToken:
		if n, ok := p.negative(); ok {
			return n, nil
		}
		if t.Value == "<" {
			p.next()
			return p.primitive(t)
		}
	case punctToken:
		switch t.Value {
		case "(":
			p.next()
			defer p.nest(false)()
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			if c := p.next(); !p.is(c, punctToken, ")") {
				return nil, p.errorf(c, "expected ')', found %s", describe(c))
			}
			return NewNode("group", t.Line, t.Col, e), nil
		case "[":
			p.next()
			defer p.nest(false)()
			return p.block(t)
		case "{":
			p.next()
			defer p.nest(false)()
			return p.dynamicArray(t)
		}
	case badToken:
		return nil, p.errorf(t, "")
	}
	return nil, p.errorf(t, "expected expression, found %s", describe(t))
}

// negative parses a minus sign immediately followed by a number as a negative
// number literal.
func (p *parser) negative() (*Node, bool) {
	t := p.peek()
	if !p.is(t, binopToken, "-") {
		return nil, false
	}
	n := p.peek2()
	if n.Kind != numberToken || n.Line != t.Line || n.Col != t.Col+1 {
		return nil, false
	}
	p.next()
	p.next()
	n.Value = "-" + n.Value
	n.Col = t.Col
	return NewNode("number", t.Line, t.Col, leaf(n)), true
}

func (p *parser) literalArray(open token) (*Node, error) {
	n := NewNode("literalArray", open.Line, open.Col)
	for {
		t := p.peek()
		var e *Node
		switch t.Kind {
		case numberToken:
			p.next()
			e = NewNode("number", t.Line, t.Col, leaf(t))
		case stringToken:
			p.next()
			e = NewNode("string", t.Line, t.Col, leaf(t))
		case symbolToken, keywordToken:
			p.next()
			e = NewNode("symbol", t.Line, t.Col, leaf(t))
		case charToken:
			p.next()
			e = NewNode("character", t.Line, t.Col, leaf(t))
		case identToken:
			p.next()
			switch t.Value {
			case "nil", "true", "false":
				e = NewNode("constant", t.Line, t.Col, leaf(t))
			default:
				e = NewNode("symbol", t.Line, t.Col, leaf(t))
			}
		case arrayToken:
			p.next()
			sub, err := p.literalArray(t)
			if err != nil {
				return nil, err
			}
			e = sub
		case binopToken:
			if neg, ok := p.negative(); ok {
				e = neg
				break
			}
			p.next()
			e = NewNode("symbol", t.Line, t.Col, leaf(t))
		case punctToken:
			switch t.Value {
			case ")":
				p.next()
				return n, nil
			case "(":
				p.next()
				sub, err := p.literalArray(t)
				if err != nil {
					return nil, err
				}
				e = sub
			}
		}
		if e == nil {
			return nil, p.errorf(t, "expected literal array element, found %s", describe(t))
		}
		n.add(NewNode("element", t.Line, t.Col, e))
	}
}

func (p *parser) dynamicArray(open token) (*Node, error) {
	n := NewNode("dynamicArray", open.Line, open.Col)
	for {
		t := p.peek()
		switch {
		case p.is(t, punctToken, "}"):
			p.next()
			return n, nil
		case p.is(t, punctToken, "."):
			p.next()
			continue
		}
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		n.add(NewNode("element", t.Line, t.Col, e))
		t = p.peek()
		if !p.is(t, punctToken, ".") && !p.is(t, punctToken, "}") {
			return nil, p.errorf(t, "expected '.' or '}', found %s", describe(t))
		}
	}
}

func (p *parser) block(open token) (*Node, error) {
	n := NewNode("block", open.Line, open.Col)
	if p.peek().Kind == paramToken {
		for p.peek().Kind == paramToken {
			t := p.next()
			n.add(NewNode("blockParam", t.Line, t.Col, leaf(t)))
		}
		t := p.peek()
		switch {
		case p.is(t, binopToken, "|"):
			p.next()
		case p.is(t, binopToken, "||"):
			// [:x || t | ...] closes the parameters and opens temporaries.
			p.ahead[0].Value = "|"
			p.ahead[0].Col++
		case p.is(t, punctToken, "]"):
		default:
			return nil, p.errorf(t, "expected '|' after block parameters, found %s", describe(t))
		}
	}
	if err := p.body(n, "]"); err != nil {
		return nil, err
	}
	p.next()
	return n, nil
}

// primitive parses <print: a b>, <printf: 'fmt' a>, or <'lowered text'>.
func (p *parser) primitive(open token) (*Node, error) {
	n := NewNode("primitive", open.Line, open.Col)
	t := p.next()
	switch t.Kind {
	case stringToken:
		n.add(leaf(t))
	case keywordToken:
		n.add(leaf(t))
		for {
			a := p.peek()
			if p.is(a, binopToken, ">") {
				break
			}
			arg, err := p.argument(primaryLevel)
			if err != nil {
				return nil, err
			}
			n.add(arg)
		}
	default:
		return nil, p.errorf(t, "expected primitive name or text, found %s", describe(t))
	}
	if c := p.next(); !p.is(c, binopToken, ">") {
		return nil, p.errorf(c, "expected '>' to close primitive, found %s", describe(c))
	}
	return n, nil
}
