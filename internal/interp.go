package internal

import (
	"fmt"
)

// evalBody runs the instructions of a body or block step in s and returns the
// value of the last one.
func (vm *VM) evalBody(st *Step, s *Scope) *Object {
	r := vm.Nil
	for _, in := range st.Instructions {
		r = vm.eval(in, s)
	}
	return r
}

// eval evaluates a single step in s.
func (vm *VM) eval(st *Step, s *Scope) *Object {
	switch st.Kind {
	case AssignmentStep:
		v := vm.eval(st.Child("expr"), s)
		s.Assign(st.Child("ref").Name(), v)
		return v
	case ReferenceStep:
		return vm.lookup(s, st.Name())
	case LiteralStep:
		return vm.literalStep(st)
	case DynamicArrayStep:
		elems := st.Children("element")
		items := make([]*Object, len(elems))
		for i, e := range elems {
			items[i] = vm.eval(e, s)
		}
		return vm.NewArray(items)
	case ChainStep:
		r := vm.eval(st.Child("receiver"), s)
		for _, m := range st.Children("message") {
			r = vm.apply(r, m, s)
		}
		return r
	case CascadeStep:
		recv := vm.eval(st.Child("receiver"), s)
		r := recv
		for _, m := range st.Children("message") {
			r = vm.apply(recv, m, s)
		}
		return r
	case BlockStep:
		return vm.NewBlock(vm.blockClosure(st), s)
	case PrimitiveStep:
		return vm.evalPrimitive(st, s)
	case BodyStep:
		return vm.evalBody(st, s)
	}
	line, col := st.Node.Pos()
	vm.Log.Warn("cannot evaluate step", "rule", st.Rule, "line", line, "col", col)
	return vm.Nil
}

// lookup resolves a name in s. Unknown names are misses.
func (vm *VM) lookup(s *Scope, name string) *Object {
	if v, ok := s.Lookup(name); ok {
		return v
	}
	vm.Log.Debug("undefined name", "name", name)
	return vm.Nil
}

// literalStep returns the object for a literal. Immutable literals are created
// once per step; arrays are fresh on each evaluation.
func (vm *VM) literalStep(st *Step) *Object {
	v, _ := st.Final()
	if _, ok := v.([]interface{}); ok {
		return vm.Literal(v)
	}
	if o, ok := st.runtime.(*Object); ok {
		return o
	}
	o := vm.Literal(v)
	st.runtime = o
	return o
}

// apply sends the message described by m to recv.
func (vm *VM) apply(recv *Object, m *Step, s *Scope) *Object {
	switch m.Kind {
	case UnaryStep:
		return vm.Send(recv, m.Name())
	case BinaryStep:
		return vm.Send(recv, m.Name(), vm.eval(m.Child("argument"), s))
	case KeywordStep:
		parts := m.Children("keywordPart")
		sels := make([]string, len(parts))
		args := make([]*Object, len(parts))
		for i, p := range parts {
			sels[i] = p.Name()
			args[i] = vm.eval(p.Child("argument"), s)
		}
		full, first := KeywordSelector(sels)
		return vm.SendKeyword(recv, full, first, args...)
	case CallStep:
		exprs := m.Children("argument")
		args := make([]*Object, len(exprs))
		for i, e := range exprs {
			args[i] = vm.eval(e, s)
		}
		return vm.Call(recv, args...)
	}
	line, col := m.Node.Pos()
	vm.Log.Warn("cannot send step", "rule", m.Rule, "line", line, "col", col)
	return vm.Nil
}

// blockUnit names the unit a block step becomes. The name extends the label of
// the closure owning the tree, so it never equals that closure's own unit.
func blockUnit(st *Step) string {
	line, col := st.Node.Pos()
	return fmt.Sprintf("%s.b%d_%d", st.root().label, line, col)
}

// blockParams lists a block step's parameter names in order.
func blockParams(st *Step) []string {
	var r []string
	for _, k := range st.Keys() {
		for _, c := range st.Children(k) {
			if c.Kind == ParamStep {
				r = append(r, c.Name())
			}
		}
	}
	return r
}

// bodyTemps lists the temporaries declared by a body or block step.
func bodyTemps(st *Step) []string {
	t := st.Child("temporaries")
	if t == nil {
		return nil
	}
	var r []string
	for _, c := range t.Children("temp") {
		r = append(r, c.Name())
	}
	return r
}

// blockClosure returns the interpreted closure for a block step, creating it
// on first use.
func (vm *VM) blockClosure(st *Step) *Closure {
	if c, ok := st.runtime.(*Closure); ok {
		return c
	}
	c := &Closure{
		vm:     vm,
		name:   blockUnit(st),
		params: blockParams(st),
		temps:  bodyTemps(st),
		step:   st,
		state:  Interpreted,
	}
	st.runtime = c
	return c
}

// evalPrimitive lowers a primitive step, binds it on first use, and runs it.
func (vm *VM) evalPrimitive(st *Step, s *Scope) *Object {
	u, ok := st.runtime.(*unit)
	if !ok {
		src, err := lowerPrimitive(st)
		if err == nil {
			u, err = vm.bind("primitive", src)
		}
		if err != nil {
			e, ok := err.(*Error)
			if !ok {
				e = &Error{Kind: GenerationFailure, Msg: err.Error()}
			}
			return vm.fault(e)
		}
		st.runtime = u
	}
	return u.exec(vm, s)
}
