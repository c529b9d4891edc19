package internal

import (
	"fmt"
	"io"
	"strings"
)

// Tree is the parse tree shape consumed by the precompiler. A node has a rule
// name and ordered children; terminals carry literal token text instead.
type Tree interface {
	Rule() string
	Children() []Tree
	Text() string
	Terminal() bool
	Pos() (line, col int)
}

// Node is the parse tree node produced by Parse.
type Node struct {
	rule      string
	kids      []Tree
	text      string
	term      bool
	line, col int
}

// NewNode creates a nonterminal node.
func NewNode(rule string, line, col int, kids ...Tree) *Node {
	return &Node{rule: rule, kids: kids, line: line, col: col}
}

// NewLeaf creates a terminal node.
func NewLeaf(rule, text string, line, col int) *Node {
	return &Node{rule: rule, text: text, term: true, line: line, col: col}
}

func (n *Node) add(kids ...Tree) *Node {
	n.kids = append(n.kids, kids...)
	return n
}

// Rule returns the node's grammar rule. For terminals, it is the token kind.
func (n *Node) Rule() string { return n.rule }

// Children returns the node's children in source order.
func (n *Node) Children() []Tree { return n.kids }

// Text returns a terminal's token text.
func (n *Node) Text() string { return n.text }

// Terminal returns true if the node is a token.
func (n *Node) Terminal() bool { return n.term }

// Pos returns the 1-based position of the node's first token.
func (n *Node) Pos() (line, col int) { return n.line, n.col }

// DumpTree writes an indented outline of a tree.
func DumpTree(w io.Writer, t Tree) error {
	return dumpTree(w, t, 0)
}

func dumpTree(w io.Writer, t Tree, depth int) error {
	pad := strings.Repeat("  ", depth)
	if t.Terminal() {
		_, err := fmt.Fprintf(w, "%s%s %q\n", pad, t.Rule(), t.Text())
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%s\n", pad, t.Rule()); err != nil {
		return err
	}
	for _, k := range t.Children() {
		if err := dumpTree(w, k, depth+1); err != nil {
			return err
		}
	}
	return nil
}
