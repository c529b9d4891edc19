package internal

import (
	"fmt"
	"strconv"
	"strings"
)

// The lowered form is a small s-expression language that the binder turns
// into Go closures. A program is a sequence of units:
//
//	(unit "name" (params "a" "b") (temps "t")
//	  EXPR
//	  EXPR)
//
// The first unit is the entry point. Each block becomes its own unit, named
// after the block's source position, and is referenced by (block "b3_7").
// Expressions are:
//
//	(num 3) (str "x") (sym "x") (nil) (true) (false) (array EXPR...)
//	(ref "a") (set "a" EXPR)
//	(send EXPR "sel" EXPR...) (kw EXPR "at:put:" "at" EXPR...)
//	(call EXPR EXPR...) (cascade EXPR MSG...) (seq EXPR...)
//	(block "unit") (print EXPR...) (printf EXPR EXPR...)
//
// where MSG is (msg "sel" EXPR...), (kwmsg "full" "first" EXPR...), or
// (callmsg EXPR...).

// coder collects the units a lowering needs.
type coder struct {
	units []string
	seen  map[string]bool
}

func newCoder() *coder {
	return &coder{seen: map[string]bool{}}
}

func (c *coder) emit(units ...string) {
	for _, u := range units {
		if !c.seen[u] {
			c.seen[u] = true
			c.units = append(c.units, u)
		}
	}
}

// Lower generates the lowered text for a closure body. A root body with no
// label takes name as its label, so block units are named after it.
func Lower(name string, params, temps []string, body *Step) (string, error) {
	if body != nil && body.parent == nil && body.label == "" {
		body.label = name
	}
	c := newCoder()
	main, err := c.unit(name, params, temps, body)
	if err != nil {
		return "", err
	}
	return strings.Join(append([]string{main}, c.units...), "\n"), nil
}

// lowerPrimitive generates a one-expression program for a primitive step.
func lowerPrimitive(st *Step) (string, error) {
	c := newCoder()
	e, err := c.expr(st)
	if err != nil {
		return "", err
	}
	main := unitText("primitive", nil, nil, []string{e})
	return strings.Join(append([]string{main}, c.units...), "\n"), nil
}

func (c *coder) unit(name string, params, temps []string, body *Step) (string, error) {
	var exprs []string
	if body != nil {
		for _, in := range body.Instructions {
			e, err := c.expr(in)
			if err != nil {
				return "", err
			}
			exprs = append(exprs, e)
		}
	}
	return unitText(name, params, temps, exprs), nil
}

func unitText(name string, params, temps, exprs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(unit %s (params%s) (temps%s)", strconv.Quote(name), quoteAll(params), quoteAll(temps))
	for _, e := range exprs {
		b.WriteString("\n  ")
		b.WriteString(e)
	}
	b.WriteString(")\n")
	return b.String()
}

func quoteAll(names []string) string {
	var b strings.Builder
	for _, n := range names {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(n))
	}
	return b.String()
}

// expr lowers a step to an expression. The text and the units it needs are
// memoized on the step.
func (c *coder) expr(st *Step) (string, error) {
	if st.coded {
		c.emit(st.hoisted...)
		return st.code, nil
	}
	sub := newCoder()
	text, err := sub.lower(st)
	if err != nil {
		return "", err
	}
	st.code, st.hoisted, st.coded = text, sub.units, true
	c.emit(sub.units...)
	return text, nil
}

func (c *coder) exprs(steps []*Step) ([]string, error) {
	r := make([]string, 0, len(steps))
	for _, st := range steps {
		e, err := c.expr(st)
		if err != nil {
			return nil, err
		}
		r = append(r, e)
	}
	return r, nil
}

func form(head string, parts ...string) string {
	if len(parts) == 0 {
		return "(" + head + ")"
	}
	return "(" + head + " " + strings.Join(parts, " ") + ")"
}

func (c *coder) lower(st *Step) (string, error) {
	switch st.Kind {
	case LiteralStep:
		v, ok := st.Final()
		if !ok {
			return "", c.errorf(st, "literal %s has no value", st.Rule)
		}
		return literalText(v), nil
	case ReferenceStep:
		return form("ref", strconv.Quote(st.Name())), nil
	case AssignmentStep:
		e, err := c.expr(st.Child("expr"))
		if err != nil {
			return "", err
		}
		return form("set", strconv.Quote(st.Child("ref").Name()), e), nil
	case DynamicArrayStep:
		elems, err := c.exprs(st.Children("element"))
		if err != nil {
			return "", err
		}
		return form("array", elems...), nil
	case ChainStep:
		r, err := c.expr(st.Child("receiver"))
		if err != nil {
			return "", err
		}
		for _, m := range st.Children("message") {
			if r, err = c.message(r, m); err != nil {
				return "", err
			}
		}
		return r, nil
	case CascadeStep:
		r, err := c.expr(st.Child("receiver"))
		if err != nil {
			return "", err
		}
		parts := []string{r}
		for _, m := range st.Children("message") {
			msg, err := c.cascadeMessage(m)
			if err != nil {
				return "", err
			}
			parts = append(parts, msg)
		}
		return form("cascade", parts...), nil
	case BlockStep:
		name := blockUnit(st)
		u, err := c.unit(name, blockParams(st), bodyTemps(st), st)
		if err != nil {
			return "", err
		}
		c.emit(u)
		return form("block", strconv.Quote(name)), nil
	case PrimitiveStep:
		p, _ := st.Intermediate.(Primitive)
		if p.Name == "" {
			return p.Text, nil
		}
		args, err := c.exprs(st.Children("argument"))
		if err != nil {
			return "", err
		}
		return form(p.Name, args...), nil
	}
	return "", c.errorf(st, "cannot lower %s", st.Rule)
}

// message lowers sending m to the already lowered receiver r.
func (c *coder) message(r string, m *Step) (string, error) {
	switch m.Kind {
	case UnaryStep:
		return form("send", r, strconv.Quote(m.Name())), nil
	case BinaryStep:
		a, err := c.expr(m.Child("argument"))
		if err != nil {
			return "", err
		}
		return form("send", r, strconv.Quote(m.Name()), a), nil
	case KeywordStep:
		full, first, args, err := c.keywordParts(m)
		if err != nil {
			return "", err
		}
		return form("kw", append([]string{r, strconv.Quote(full), strconv.Quote(first)}, args...)...), nil
	case CallStep:
		args, err := c.exprs(m.Children("argument"))
		if err != nil {
			return "", err
		}
		return form("call", append([]string{r}, args...)...), nil
	}
	return "", c.errorf(m, "cannot lower message %s", m.Rule)
}

func (c *coder) cascadeMessage(m *Step) (string, error) {
	switch m.Kind {
	case UnaryStep:
		return form("msg", strconv.Quote(m.Name())), nil
	case BinaryStep:
		a, err := c.expr(m.Child("argument"))
		if err != nil {
			return "", err
		}
		return form("msg", strconv.Quote(m.Name()), a), nil
	case KeywordStep:
		full, first, args, err := c.keywordParts(m)
		if err != nil {
			return "", err
		}
		return form("kwmsg", append([]string{strconv.Quote(full), strconv.Quote(first)}, args...)...), nil
	case CallStep:
		args, err := c.exprs(m.Children("argument"))
		if err != nil {
			return "", err
		}
		return form("callmsg", args...), nil
	}
	return "", c.errorf(m, "cannot lower message %s", m.Rule)
}

func (c *coder) keywordParts(m *Step) (full, first string, args []string, err error) {
	parts := m.Children("keywordPart")
	sels := make([]string, len(parts))
	args = make([]string, len(parts))
	for i, p := range parts {
		sels[i] = p.Name()
		if args[i], err = c.expr(p.Child("argument")); err != nil {
			return "", "", nil, err
		}
	}
	full, first = KeywordSelector(sels)
	return full, first, args, nil
}

func literalText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "(nil)"
	case bool:
		if x {
			return "(true)"
		}
		return "(false)"
	case float64:
		return form("num", strconv.FormatFloat(x, 'g', -1, 64))
	case string:
		return form("str", strconv.Quote(x))
	case Symbol:
		return form("sym", strconv.Quote(string(x)))
	case []interface{}:
		elems := make([]string, len(x))
		for i, e := range x {
			elems[i] = literalText(e)
		}
		return form("array", elems...)
	}
	return form("str", strconv.Quote(fmt.Sprint(v)))
}

func (c *coder) errorf(st *Step, format string, args ...interface{}) *Error {
	line, col := st.Node.Pos()
	return &Error{Kind: GenerationFailure, Msg: fmt.Sprintf(format, args...), Line: line, Col: col}
}
