package internal

import (
	"fmt"
	"strconv"
	"strings"
)

// preserved rules always produce their own step, even with a single child.
var preserved = map[string]bool{
	"body":           true,
	"assignment":     true,
	"reference":      true,
	"number":         true,
	"string":         true,
	"symbol":         true,
	"character":      true,
	"constant":       true,
	"primitive":      true,
	"literalArray":   true,
	"dynamicArray":   true,
	"block":          true,
	"blockParam":     true,
	"temporaries":    true,
	"temp":           true,
	"unaryMessage":   true,
	"binaryMessage":  true,
	"keywordMessage": true,
	"keywordPart":    true,
	"callMessage":    true,
	"cascade":        true,
}

// noops are visited but produce nothing.
var noops = map[string]bool{
	"comment":    true,
	"whitespace": true,
}

// capture fills a step from its node's terminals before children are visited.
type capture func(st *Step, t Tree) error

var captures = map[string]capture{
	"reference":     captureName,
	"temp":          captureName,
	"blockParam":    captureName,
	"unaryMessage":  captureName,
	"binaryMessage": captureName,
	"keywordPart":   captureName,
	"number":        captureNumber,
	"string":        captureString,
	"character":     captureString,
	"symbol":        captureSymbol,
	"constant":      captureConstant,
	"primitive":     capturePrimitive,
}

// Precompile converts a parse tree into a step tree. Wrapper nodes with a
// single child collapse into that child, keyed in the parent by the wrapper's
// rule; terminals are captured into their parents; comments vanish. The
// result depends only on the tree, so precompiling the same tree twice gives
// structurally identical steps.
func Precompile(t Tree) (*Step, error) {
	st, err := visit(t, nil)
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = newStep("body", t, nil)
	}
	return st, nil
}

func firstTerminal(t Tree) (Tree, bool) {
	for _, k := range t.Children() {
		if k.Terminal() {
			return k, true
		}
	}
	return nil, false
}

func carriesToken(t Tree) bool {
	_, ok := firstTerminal(t)
	return ok
}

func visit(t Tree, parent *Step) (*Step, error) {
	if t.Terminal() || noops[t.Rule()] {
		return nil, nil
	}
	rule := t.Rule()
	st := newStep(rule, t, parent)
	if c := captures[rule]; c != nil {
		if err := c(st, t); err != nil {
			line, col := t.Pos()
			return nil, &Error{Kind: SyntaxFailure, Msg: err.Error(), Line: line, Col: col}
		}
	}
	for _, k := range t.Children() {
		c, err := visit(k, st)
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		key := k.Rule()
		if k.Rule() == "blockParam" {
			key = c.Name()
		}
		st.addChild(key, c)
		if key == "statement" && (st.Kind == BodyStep || st.Kind == BlockStep) {
			st.Instructions = append(st.Instructions, c)
		}
	}
	switch st.Kind {
	case LiteralStep:
		if rule == "literalArray" {
			finishLiteralArray(st)
		}
	case AssignmentStep:
		// An assignment of a literal has that literal as its value, but the
		// write still happens when it runs.
		if v, ok := st.Child("expr").Final(); ok {
			st.setFinal(v)
		}
	}
	if !preserved[rule] && st.NumChildren() == 1 && !carriesToken(t) {
		c := st.children[st.keys[0]][0]
		c.parent = parent
		return c, nil
	}
	return st, nil
}

func terminalText(t Tree) string {
	if k, ok := firstTerminal(t); ok {
		return k.Text()
	}
	return ""
}

func captureName(st *Step, t Tree) error {
	st.Intermediate = terminalText(t)
	return nil
}

func captureNumber(st *Step, t Tree) error {
	text := terminalText(t)
	v, err := parseNumber(text)
	if err != nil {
		return err
	}
	st.Intermediate = text
	st.setFinal(v)
	return nil
}

func parseNumber(text string) (float64, error) {
	neg := strings.HasPrefix(text, "-")
	s := strings.TrimPrefix(text, "-")
	var v float64
	if i := strings.IndexByte(s, 'r'); i > 0 {
		base, err := strconv.Atoi(s[:i])
		if err != nil || base < 2 || base > 36 {
			return 0, fmt.Errorf("bad radix in %s", text)
		}
		n, err := strconv.ParseInt(s[i+1:], base, 64)
		if err != nil {
			return 0, fmt.Errorf("bad number %s", text)
		}
		v = float64(n)
	} else {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("bad number %s", text)
		}
		v = f
	}
	if neg {
		v = -v
	}
	return v, nil
}

func captureString(st *Step, t Tree) error {
	st.setFinal(terminalText(t))
	return nil
}

func captureSymbol(st *Step, t Tree) error {
	st.setFinal(Symbol(terminalText(t)))
	return nil
}

func captureConstant(st *Step, t Tree) error {
	switch s := terminalText(t); s {
	case "nil":
		st.setFinal(nil)
	case "true":
		st.setFinal(true)
	case "false":
		st.setFinal(false)
	default:
		return fmt.Errorf("unknown constant %s", s)
	}
	return nil
}

func capturePrimitive(st *Step, t Tree) error {
	k, ok := firstTerminal(t)
	if !ok {
		return fmt.Errorf("primitive has no name")
	}
	if k.Rule() == stringToken.String() {
		st.Intermediate = Primitive{Text: k.Text()}
		return nil
	}
	st.Intermediate = Primitive{Name: strings.TrimSuffix(k.Text(), ":")}
	return nil
}

func finishLiteralArray(st *Step) {
	elems := st.Children("element")
	r := make([]interface{}, 0, len(elems))
	for _, e := range elems {
		v, ok := e.Final()
		if !ok {
			return
		}
		r = append(r, v)
	}
	st.setFinal(r)
}
