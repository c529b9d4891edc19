/*
Package steplang implements a small Smalltalk-style language with two
execution modes.

Source text is parsed into a tree, and the tree is precompiled into a step
tree: single-child wrapper nodes collapse away, literals are evaluated, and the
statements of every body and block are collected into instruction lists. A
Closure holding a step tree runs by walking it. Compiling a closure lowers the
step tree to a small s-expression form and binds that into Go closures; if the
lowered form cannot be bound, the closure keeps running interpreted and
reports a diagnostic instead. Both modes give the same results.

To embed the language, create a VM with NewVM, make a Closure with
VM.NewClosure, give it source with Interpret, optionally Compile it, and Call
it with a Scope. VM.DoString does all of that in one step.

# Language Primer

Statements are separated by periods. The value of a body is the value of its
last statement:

	a := 1.
	a := a + 1.
	a

Messages are unary (3 factorial), binary (3 + 4), or keyword
(arr at: 1 put: 5), with unary binding tightest and keyword loosest.
Parentheses group, and a cascade sends several messages to the same receiver:

	Array new; yourself

Blocks are closures over the scope where they appear:

	adder := [:x | [:y | x + y]].
	(adder value: 3) value: 5

Blocks can also be called with parentheses and comma-separated arguments,
as in adder(3)(5). Missing arguments are nil and extra arguments are
ignored.

Literal arrays are written #(1 #(2 3) foo 'bar'), and brace arrays evaluate
their elements: {1 + 1. 2 * 3}. Primitives reach host behavior directly:
<print: a b> writes its arguments, <printf: '%d items' a> formats them, and
<'(num 1)'> splices lowered text verbatim. Primitive arguments are single
literals, names, or parenthesized expressions.

# Object Model

Every object has a metaclass. Metaclasses hold named holders, which are
either methods or attributes, and list parent metaclasses by name. Resolution
looks at the object's own storage first and then walks the parents depth
first, so the first parent's whole chain wins over the second parent. Holders
are declared for instances or for the class itself; class-side holders are
shared by every instance and are the only holders visible on the class object.

A method can reach the holders of its defining class's parent through super,
which is a masquerade: a view of the same object that resolves from the
parent class instead of the object's own class. Classes are defined from the
language as well:

	Object subclass: #Point attributes: #(x y).
	Point define: #x:y: as: [:ax :ay | x := ax. y := ay. self].
	Point define: #+ as: [:p | Point new x: x + p x y: y + p y].

# Faults

A name that resolves to nothing is a miss: it is logged and produces nil.
Native failures and excessive nesting are faults, and the VM's Config decides
whether each kind is absorbed (logged, producing nil) or propagated (ending
the outermost Call with an error).
*/
package steplang
