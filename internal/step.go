package internal

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// StepKind tags the variants of Step that execution treats specially.
type StepKind int

const (
	// GenericStep is any step without special handling.
	GenericStep StepKind = iota
	BodyStep
	BlockStep
	AssignmentStep
	ReferenceStep
	LiteralStep
	DynamicArrayStep
	ChainStep
	CascadeStep
	UnaryStep
	BinaryStep
	KeywordStep
	KeywordPartStep
	CallStep
	PrimitiveStep
	TemporariesStep
	TempStep
	ParamStep
)

var stepKinds = map[string]StepKind{
	"body":           BodyStep,
	"block":          BlockStep,
	"assignment":     AssignmentStep,
	"reference":      ReferenceStep,
	"number":         LiteralStep,
	"string":         LiteralStep,
	"symbol":         LiteralStep,
	"character":      LiteralStep,
	"constant":       LiteralStep,
	"literalArray":   LiteralStep,
	"dynamicArray":   DynamicArrayStep,
	"chain":          ChainStep,
	"cascade":        CascadeStep,
	"unaryMessage":   UnaryStep,
	"binaryMessage":  BinaryStep,
	"keywordMessage": KeywordStep,
	"keywordPart":    KeywordPartStep,
	"callMessage":    CallStep,
	"primitive":      PrimitiveStep,
	"temporaries":    TemporariesStep,
	"temp":           TempStep,
	"blockParam":     ParamStep,
}

// Step is a node of the precompiled tree. Steps keep their children by name
// in the order the names were first seen; a name may hold several steps for
// repeated constructs.
type Step struct {
	// Rule is the grammar rule the step came from.
	Rule string
	// Kind tags the step's variant.
	Kind StepKind
	// Intermediate holds text captured from terminals, such as selectors and
	// reference names.
	Intermediate interface{}
	// Node is the parse tree node the step came from.
	Node Tree
	// Instructions lists the top-level statements of bodies and blocks in
	// execution order.
	Instructions []*Step

	keys     []string
	children map[string][]*Step
	final    interface{}
	isFinal  bool
	parent   *Step
	// label names the closure a root step belongs to.
	label string

	// code is the memoized lowered text of the step.
	code  string
	coded bool
	// hoisted holds lowered units a block step needs alongside its code.
	hoisted []string
	// runtime memoizes per-step execution state: literal objects for literal
	// steps, closures for block steps, bound code for primitives.
	runtime interface{}
}

func newStep(rule string, node Tree, parent *Step) *Step {
	return &Step{
		Rule:     rule,
		Kind:     stepKinds[rule],
		Node:     node,
		parent:   parent,
		children: map[string][]*Step{},
	}
}

func (s *Step) addChild(key string, c *Step) {
	if _, ok := s.children[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.children[key] = append(s.children[key], c)
}

// Keys returns the child names in first-seen order.
func (s *Step) Keys() []string {
	return s.keys
}

// Child returns the first child with the given name, or nil.
func (s *Step) Child(key string) *Step {
	if l := s.children[key]; len(l) > 0 {
		return l[0]
	}
	return nil
}

// Children returns all children with the given name.
func (s *Step) Children(key string) []*Step {
	return s.children[key]
}

// NumChildren returns the total number of child steps.
func (s *Step) NumChildren() int {
	n := 0
	for _, l := range s.children {
		n += len(l)
	}
	return n
}

// Final returns the step's literal value, if it has one.
func (s *Step) Final() (interface{}, bool) {
	return s.final, s.isFinal
}

func (s *Step) setFinal(v interface{}) {
	s.final = v
	s.isFinal = true
}

// root returns the top of the tree the step belongs to.
func (s *Step) root() *Step {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// Parent returns the enclosing step.
func (s *Step) Parent() *Step {
	return s.parent
}

// Name returns the step's intermediate text as a string.
func (s *Step) Name() string {
	if x, ok := s.Intermediate.(string); ok {
		return x
	}
	return ""
}

// Dump writes the step tree as an s-expression.
func (s *Step) Dump(w io.Writer) error {
	var b strings.Builder
	s.dump(&b, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func (s *Step) String() string {
	var b strings.Builder
	s.dump(&b, 0)
	return b.String()
}

func (s *Step) dump(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteByte('(')
	b.WriteString(s.Rule)
	switch x := s.Intermediate.(type) {
	case string:
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(x))
	case Primitive:
		fmt.Fprintf(b, " %s %q", x.Name, x.Text)
	}
	if s.isFinal {
		b.WriteString(" = ")
		b.WriteString(dumpFinal(s.final))
	}
	if len(s.Instructions) > 0 {
		fmt.Fprintf(b, " [%d]", len(s.Instructions))
	}
	for _, k := range s.keys {
		for _, c := range s.children[k] {
			b.WriteByte('\n')
			b.WriteString(strings.Repeat("  ", depth+1))
			b.WriteString(k)
			b.WriteString(":\n")
			c.dump(b, depth+2)
		}
	}
	b.WriteByte(')')
}

func dumpFinal(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case float64:
		return FormatNumber(x)
	case string:
		return strconv.Quote(x)
	case Symbol:
		return "#" + string(x)
	case []interface{}:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = dumpFinal(e)
		}
		return "#(" + strings.Join(parts, " ") + ")"
	}
	return fmt.Sprint(v)
}

// Primitive is the intermediate value of a primitive step. Name is the host
// form, such as print or printf; it is empty for verbatim text.
type Primitive struct {
	Name string
	Text string
}
