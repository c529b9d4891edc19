package internal

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// code is a bound expression.
type code func(s *Scope) *Object

// unit is a bound lowered unit.
type unit struct {
	name    string
	params  []string
	temps   []string
	body    []code
	closure *Closure
}

// exec runs the unit's expressions in s. Parameters must already be bound.
func (u *unit) exec(vm *VM, s *Scope) *Object {
	r := vm.Nil
	for _, c := range u.body {
		r = c(s)
	}
	return r
}

// sexp is a node of lowered text.
type sexp struct {
	list   []*sexp
	atom   string
	isList bool
	quoted bool

	line, col int
}

func (e *sexp) describe() string {
	switch {
	case e.isList:
		return "list"
	case e.quoted:
		return strconv.Quote(e.atom)
	}
	return e.atom
}

// reader reads s-expressions from lowered text.
type reader struct {
	src       string
	pos       int
	line, col int
}

func (r *reader) errorf(line, col int, format string, args ...interface{}) *Error {
	return &Error{Kind: GenerationFailure, Msg: fmt.Sprintf(format, args...), Line: line, Col: col, Source: r.src}
}

func (r *reader) advance(n int) {
	for _, c := range r.src[r.pos : r.pos+n] {
		if c == '\n' {
			r.line++
			r.col = 1
		} else {
			r.col++
		}
	}
	r.pos += n
}

func (r *reader) skipSpace() {
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		if c == ';' {
			for r.pos < len(r.src) && r.src[r.pos] != '\n' {
				r.advance(1)
			}
			continue
		}
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return
		}
		r.advance(1)
	}
}

// readAll reads every top-level expression in src.
func readAll(src string) ([]*sexp, error) {
	r := &reader{src: src, line: 1, col: 1}
	var out []*sexp
	for {
		r.skipSpace()
		if r.pos >= len(r.src) {
			return out, nil
		}
		e, err := r.read()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}

func (r *reader) read() (*sexp, error) {
	r.skipSpace()
	if r.pos >= len(r.src) {
		return nil, r.errorf(r.line, r.col, "unexpected end of lowered text")
	}
	line, col := r.line, r.col
	switch c := r.src[r.pos]; c {
	case '(':
		r.advance(1)
		e := &sexp{isList: true, line: line, col: col}
		for {
			r.skipSpace()
			if r.pos >= len(r.src) {
				return nil, r.errorf(line, col, "unclosed '('")
			}
			if r.src[r.pos] == ')' {
				r.advance(1)
				return e, nil
			}
			k, err := r.read()
			if err != nil {
				return nil, err
			}
			e.list = append(e.list, k)
		}
	case ')':
		return nil, r.errorf(line, col, "unexpected ')'")
	case '"':
		end := r.pos + 1
		for end < len(r.src) && r.src[end] != '"' {
			if r.src[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(r.src) {
			return nil, r.errorf(line, col, "unterminated string")
		}
		s, err := strconv.Unquote(r.src[r.pos : end+1])
		if err != nil {
			return nil, r.errorf(line, col, "bad string: %v", err)
		}
		r.advance(end + 1 - r.pos)
		return &sexp{atom: s, quoted: true, line: line, col: col}, nil
	}
	end := r.pos
	for end < len(r.src) && !unicode.IsSpace(rune(r.src[end])) && !strings.ContainsRune("()\";", rune(r.src[end])) {
		end++
	}
	e := &sexp{atom: r.src[r.pos:end], line: line, col: col}
	r.advance(end - r.pos)
	return e, nil
}

// binder assembles lowered text into executable units.
type binder struct {
	vm    *VM
	src   string
	units map[string]*unit
}

func (b *binder) errorf(e *sexp, format string, args ...interface{}) *Error {
	return &Error{Kind: GenerationFailure, Msg: fmt.Sprintf(format, args...), Line: e.line, Col: e.col, Source: b.src}
}

// bind assembles lowered text and returns its first unit. Failures are
// GenerationFailure errors positioned in the text. If the VM has a scratch
// directory, the text is written there for the duration of the bind so that
// diagnostics can name a real file.
func (vm *VM) bind(name, src string) (u *unit, err error) {
	label := name
	if dir := vm.Config.ScratchDir; dir != "" {
		f, ferr := os.CreateTemp(dir, scratchName(name)+"-*.lowered")
		if ferr != nil {
			vm.Log.Warn("could not create scratch file", "dir", dir, "err", ferr)
		} else {
			defer os.Remove(f.Name())
			_, werr := f.WriteString(src)
			if cerr := f.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				vm.Log.Warn("could not write scratch file", "file", f.Name(), "err", werr)
			}
			label = f.Name()
		}
	}
	defer func() {
		if e, ok := err.(*Error); ok && e.Label == "" {
			e.Label = label
		}
	}()
	exprs, err := readAll(src)
	if err != nil {
		return nil, err
	}
	if len(exprs) == 0 {
		return nil, &Error{Kind: GenerationFailure, Msg: "no units", Source: src}
	}
	b := &binder{vm: vm, src: src, units: map[string]*unit{}}
	order := make([]*unit, 0, len(exprs))
	for _, e := range exprs {
		u, err := b.declare(e)
		if err != nil {
			return nil, err
		}
		order = append(order, u)
	}
	for i, e := range exprs {
		u := order[i]
		for _, f := range e.list[4:] {
			c, err := b.form(f)
			if err != nil {
				return nil, err
			}
			u.body = append(u.body, c)
		}
	}
	return order[0], nil
}

func scratchName(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return r
		}
		return '_'
	}, name)
}

// declare creates the unit for a (unit "name" (params ...) (temps ...) ...)
// expression without binding its body.
func (b *binder) declare(e *sexp) (*unit, error) {
	if !e.isList || len(e.list) < 4 || b.head(e) != "unit" {
		return nil, b.errorf(e, "expected (unit \"name\" (params ...) (temps ...) ...)")
	}
	name, err := b.quoted(e.list[1])
	if err != nil {
		return nil, err
	}
	if _, ok := b.units[name]; ok {
		return nil, b.errorf(e.list[1], "duplicate unit %q", name)
	}
	params, err := b.names(e.list[2], "params")
	if err != nil {
		return nil, err
	}
	temps, err := b.names(e.list[3], "temps")
	if err != nil {
		return nil, err
	}
	u := &unit{name: name, params: params, temps: temps}
	u.closure = &Closure{vm: b.vm, name: name, params: params, temps: temps, unit: u, state: Compiled}
	b.units[name] = u
	return u, nil
}

func (b *binder) head(e *sexp) string {
	if !e.isList || len(e.list) == 0 || e.list[0].isList || e.list[0].quoted {
		return ""
	}
	return e.list[0].atom
}

func (b *binder) quoted(e *sexp) (string, error) {
	if e.isList || !e.quoted {
		return "", b.errorf(e, "expected quoted name, found %s", e.describe())
	}
	return e.atom, nil
}

func (b *binder) names(e *sexp, head string) ([]string, error) {
	if b.head(e) != head {
		return nil, b.errorf(e, "expected (%s ...)", head)
	}
	var r []string
	for _, k := range e.list[1:] {
		n, err := b.quoted(k)
		if err != nil {
			return nil, err
		}
		r = append(r, n)
	}
	return r, nil
}

func (b *binder) forms(es []*sexp) ([]code, error) {
	r := make([]code, len(es))
	for i, e := range es {
		c, err := b.form(e)
		if err != nil {
			return nil, err
		}
		r[i] = c
	}
	return r, nil
}

func (b *binder) arity(e *sexp, min int) error {
	if len(e.list)-1 < min {
		return b.errorf(e, "%s needs at least %d arguments", b.head(e), min)
	}
	return nil
}

func evalAll(s *Scope, cs []code) []*Object {
	if len(cs) == 0 {
		return nil
	}
	r := make([]*Object, len(cs))
	for i, c := range cs {
		r[i] = c(s)
	}
	return r
}

// form binds one expression.
func (b *binder) form(e *sexp) (code, error) {
	vm := b.vm
	head := b.head(e)
	switch head {
	case "num":
		if err := b.arity(e, 1); err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(e.list[1].atom, 64)
		if err != nil || e.list[1].quoted {
			return nil, b.errorf(e.list[1], "bad number %s", e.list[1].describe())
		}
		o := vm.NewNumber(v)
		return func(*Scope) *Object { return o }, nil
	case "str", "sym":
		if err := b.arity(e, 1); err != nil {
			return nil, err
		}
		s, err := b.quoted(e.list[1])
		if err != nil {
			return nil, err
		}
		var o *Object
		if head == "str" {
			o = vm.NewString(s)
		} else {
			o = vm.NewSymbol(s)
		}
		return func(*Scope) *Object { return o }, nil
	case "nil":
		return func(*Scope) *Object { return vm.Nil }, nil
	case "true":
		return func(*Scope) *Object { return vm.True }, nil
	case "false":
		return func(*Scope) *Object { return vm.False }, nil
	case "array":
		elems, err := b.forms(e.list[1:])
		if err != nil {
			return nil, err
		}
		return func(s *Scope) *Object {
			items := evalAll(s, elems)
			if items == nil {
				items = []*Object{}
			}
			return vm.NewArray(items)
		}, nil
	case "ref":
		if err := b.arity(e, 1); err != nil {
			return nil, err
		}
		name, err := b.quoted(e.list[1])
		if err != nil {
			return nil, err
		}
		return func(s *Scope) *Object { return vm.lookup(s, name) }, nil
	case "set":
		if err := b.arity(e, 2); err != nil {
			return nil, err
		}
		name, err := b.quoted(e.list[1])
		if err != nil {
			return nil, err
		}
		v, err := b.form(e.list[2])
		if err != nil {
			return nil, err
		}
		return func(s *Scope) *Object {
			x := v(s)
			s.Assign(name, x)
			return x
		}, nil
	case "send":
		if err := b.arity(e, 2); err != nil {
			return nil, err
		}
		recv, err := b.form(e.list[1])
		if err != nil {
			return nil, err
		}
		sel, err := b.quoted(e.list[2])
		if err != nil {
			return nil, err
		}
		args, err := b.forms(e.list[3:])
		if err != nil {
			return nil, err
		}
		return func(s *Scope) *Object {
			r := recv(s)
			return vm.Send(r, sel, evalAll(s, args)...)
		}, nil
	case "kw":
		if err := b.arity(e, 3); err != nil {
			return nil, err
		}
		recv, err := b.form(e.list[1])
		if err != nil {
			return nil, err
		}
		full, err := b.quoted(e.list[2])
		if err != nil {
			return nil, err
		}
		first, err := b.quoted(e.list[3])
		if err != nil {
			return nil, err
		}
		args, err := b.forms(e.list[4:])
		if err != nil {
			return nil, err
		}
		return func(s *Scope) *Object {
			r := recv(s)
			return vm.SendKeyword(r, full, first, evalAll(s, args)...)
		}, nil
	case "call":
		if err := b.arity(e, 1); err != nil {
			return nil, err
		}
		recv, err := b.form(e.list[1])
		if err != nil {
			return nil, err
		}
		args, err := b.forms(e.list[2:])
		if err != nil {
			return nil, err
		}
		return func(s *Scope) *Object {
			r := recv(s)
			return vm.Call(r, evalAll(s, args)...)
		}, nil
	case "cascade":
		if err := b.arity(e, 2); err != nil {
			return nil, err
		}
		recv, err := b.form(e.list[1])
		if err != nil {
			return nil, err
		}
		msgs := make([]func(s *Scope, r *Object) *Object, 0, len(e.list)-2)
		for _, m := range e.list[2:] {
			f, err := b.cascadeMessage(m)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, f)
		}
		return func(s *Scope) *Object {
			r := recv(s)
			x := r
			for _, m := range msgs {
				x = m(s, r)
			}
			return x
		}, nil
	case "seq":
		body, err := b.forms(e.list[1:])
		if err != nil {
			return nil, err
		}
		return func(s *Scope) *Object {
			r := vm.Nil
			for _, c := range body {
				r = c(s)
			}
			return r
		}, nil
	case "block":
		if err := b.arity(e, 1); err != nil {
			return nil, err
		}
		name, err := b.quoted(e.list[1])
		if err != nil {
			return nil, err
		}
		u, ok := b.units[name]
		if !ok {
			return nil, b.errorf(e.list[1], "no unit named %q", name)
		}
		return func(s *Scope) *Object { return vm.NewBlock(u.closure, s) }, nil
	case "print":
		args, err := b.forms(e.list[1:])
		if err != nil {
			return nil, err
		}
		return func(s *Scope) *Object {
			vals := evalAll(s, args)
			texts := make([]string, len(vals))
			for i, v := range vals {
				texts[i] = vm.AsString(v)
			}
			if _, err := fmt.Fprintln(vm.Out, strings.Join(texts, " ")); err != nil {
				vm.Log.Warn("print failed", "err", err)
			}
			if len(vals) == 0 {
				return vm.Nil
			}
			return vals[len(vals)-1]
		}, nil
	case "printf":
		if err := b.arity(e, 1); err != nil {
			return nil, err
		}
		args, err := b.forms(e.list[1:])
		if err != nil {
			return nil, err
		}
		return func(s *Scope) *Object {
			vals := evalAll(s, args)
			out := vm.Sprintf(vm.AsString(vals[0]), vals[1:])
			if _, err := fmt.Fprint(vm.Out, out); err != nil {
				vm.Log.Warn("printf failed", "err", err)
			}
			return vm.NewString(out)
		}, nil
	case "":
		return nil, b.errorf(e, "expected form, found %s", e.describe())
	}
	return nil, b.errorf(e, "unknown form %s", head)
}

func (b *binder) cascadeMessage(e *sexp) (func(s *Scope, r *Object) *Object, error) {
	vm := b.vm
	switch b.head(e) {
	case "msg":
		if err := b.arity(e, 1); err != nil {
			return nil, err
		}
		sel, err := b.quoted(e.list[1])
		if err != nil {
			return nil, err
		}
		args, err := b.forms(e.list[2:])
		if err != nil {
			return nil, err
		}
		return func(s *Scope, r *Object) *Object {
			return vm.Send(r, sel, evalAll(s, args)...)
		}, nil
	case "kwmsg":
		if err := b.arity(e, 2); err != nil {
			return nil, err
		}
		full, err := b.quoted(e.list[1])
		if err != nil {
			return nil, err
		}
		first, err := b.quoted(e.list[2])
		if err != nil {
			return nil, err
		}
		args, err := b.forms(e.list[3:])
		if err != nil {
			return nil, err
		}
		return func(s *Scope, r *Object) *Object {
			return vm.SendKeyword(r, full, first, evalAll(s, args)...)
		}, nil
	case "callmsg":
		args, err := b.forms(e.list[1:])
		if err != nil {
			return nil, err
		}
		return func(s *Scope, r *Object) *Object {
			return vm.Call(r, evalAll(s, args)...)
		}, nil
	}
	return nil, b.errorf(e, "expected cascade message, found %s", e.describe())
}
