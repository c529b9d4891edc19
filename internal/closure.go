package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// ClosureState is the progress of a closure from source text to code.
type ClosureState int

const (
	// Empty closures have no code. Calling one answers nil.
	Empty ClosureState = iota
	// Interpreted closures run by walking their step tree.
	Interpreted
	// Compiled closures run bound lowered code.
	Compiled
)

func (s ClosureState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Interpreted:
		return "interpreted"
	case Compiled:
		return "compiled"
	}
	return "unknown"
}

// Closure is a named unit of executable code with parameters. A closure
// starts empty, becomes interpreted when given source text, and becomes
// compiled when its lowered form binds successfully. If binding fails, the
// closure stays interpreted and keeps the failure as a diagnostic.
type Closure struct {
	vm     *VM
	name   string
	params []string
	temps  []string

	src     string
	step    *Step
	lowered string
	unit    *unit
	diag    *Error
	state   ClosureState
}

// NewClosure creates an empty closure. If name is empty, a unique name is
// generated.
func (vm *VM) NewClosure(name string, params ...string) *Closure {
	if name == "" {
		name = "anon-" + uuid.Must(uuid.NewV7()).String()
	}
	ps := make([]string, len(params))
	for i, p := range params {
		ps[i] = normalize(p)
	}
	return &Closure{vm: vm, name: name, params: ps}
}

// Name returns the closure's name.
func (c *Closure) Name() string {
	return c.name
}

// Params returns the closure's parameter names.
func (c *Closure) Params() []string {
	return c.params
}

// State returns the closure's state.
func (c *Closure) State() ClosureState {
	return c.state
}

// Source returns the source text given to Interpret.
func (c *Closure) Source() string {
	return c.src
}

// Lowered returns the text generated by the last Compile, if any.
func (c *Closure) Lowered() string {
	return c.lowered
}

// Step returns the closure's precompiled step tree.
func (c *Closure) Step() *Step {
	return c.step
}

// Diagnostic returns the failure from the last Compile, or nil if it
// succeeded or has not happened.
func (c *Closure) Diagnostic() *Error {
	return c.diag
}

// Interpret parses and precompiles src as the closure's body, replacing any
// previous code. On a syntax failure the closure is unchanged.
func (c *Closure) Interpret(src string) (*Closure, error) {
	tree, err := Parse(c.name, src)
	if err != nil {
		return c, err
	}
	st, err := Precompile(tree)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.Label, e.Source = c.name, src
		}
		return c, err
	}
	st.label = c.name
	c.src, c.step = src, st
	c.temps = bodyTemps(st)
	c.lowered, c.unit, c.diag = "", nil, nil
	c.state = Interpreted
	return c, nil
}

// Compile generates and binds the closure's lowered form. A closure that is
// already compiled is unchanged. Generation failures do not return an error;
// the closure stays interpreted, and the failure is available from
// Diagnostic.
func (c *Closure) Compile() (*Closure, error) {
	switch c.state {
	case Empty:
		return c, &Error{Kind: GenerationFailure, Msg: "closure " + c.name + " has no source", Label: c.name}
	case Compiled:
		return c, nil
	}
	vm := c.vm
	key := c.cacheKey()
	text, hit := c.cached(key)
	if !hit {
		var err error
		text, err = Lower(c.name, c.params, c.temps, c.step)
		if err != nil {
			c.fail(err, c.src)
			return c, nil
		}
	}
	u, err := vm.bind(c.name, text)
	if err != nil {
		c.lowered = text
		c.fail(err, text)
		return c, nil
	}
	u.closure = c
	c.lowered, c.unit, c.diag = text, u, nil
	c.state = Compiled
	if !hit && vm.Cache != nil {
		if err := vm.Cache.Put(key, text); err != nil {
			vm.Log.Warn("could not cache generated source", "closure", c.name, "err", err)
		}
	}
	return c, nil
}

// CompileSource interprets src and then compiles it.
func (c *Closure) CompileSource(src string) (*Closure, error) {
	if _, err := c.Interpret(src); err != nil {
		return c, err
	}
	return c.Compile()
}

func (c *Closure) fail(err error, src string) {
	e, ok := err.(*Error)
	if !ok {
		e = &Error{Kind: GenerationFailure, Msg: err.Error(), Err: err}
	}
	if e.Label == "" {
		e.Label = c.name
	}
	if e.Source == "" {
		e.Source = src
	}
	c.diag = e
	c.vm.Log.Warn("compile failed, falling back to interpretation", "closure", c.name, "err", e.Error())
}

func (c *Closure) cacheKey() string {
	h := sha256.New()
	h.Write([]byte(Version))
	h.Write([]byte{0})
	h.Write([]byte(c.name))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(c.params, " ")))
	h.Write([]byte{0})
	h.Write([]byte(c.src))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Closure) cached(key string) (string, bool) {
	if c.vm.Cache == nil {
		return "", false
	}
	text, ok, err := c.vm.Cache.Get(key)
	if err != nil {
		c.vm.Log.Warn("source cache lookup failed", "closure", c.name, "err", err)
		return "", false
	}
	return text, ok
}

// Call runs the closure in s with args. Parameters are declared in s; missing
// arguments are nil and extra arguments are ignored. If s is nil, a new
// top-level scope is used. A fault whose policy is to propagate stops the
// call and is returned as an error.
func (c *Closure) Call(s *Scope, args ...*Object) (result *Object, err error) {
	vm := c.vm
	if s == nil {
		s = vm.NewScope(nil)
	}
	depth := vm.depth
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		prop, ok := p.(propagation)
		if !ok {
			panic(p)
		}
		vm.depth = depth
		result, err = vm.Nil, prop.err
	}()
	return c.run(s, args), nil
}

// run binds parameters and temporaries in s and executes the closure's code.
func (c *Closure) run(s *Scope, args []*Object) *Object {
	vm := c.vm
	for i, p := range c.params {
		v := vm.Nil
		if i < len(args) {
			v = args[i]
		}
		s.Declare(p, v)
	}
	for _, t := range c.temps {
		s.Declare(t, vm.Nil)
	}
	switch {
	case c.unit != nil:
		return c.unit.exec(vm, s)
	case c.step != nil:
		return vm.evalBody(c.step, s)
	}
	return vm.Nil
}

// DoString interprets src as a closure named label and calls it in s. If
// compile is true, the closure is compiled before the call.
func (vm *VM) DoString(s *Scope, label, src string, compile bool) (*Object, error) {
	c, err := vm.NewClosure(label).Interpret(src)
	if err != nil {
		return vm.Nil, err
	}
	if compile {
		if _, err := c.Compile(); err != nil {
			return vm.Nil, err
		}
	}
	return c.Call(s)
}
