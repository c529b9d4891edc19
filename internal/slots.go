package internal

/*
This file contains the implementation of name resolution. Every message send
and every implicit-receiver reference comes through Resolve, so it is the hot
path of both execution modes.

Resolution of a name against an instance proceeds in order:

	1. The instance's own storage, if the name has been set there.
	2. Holders, walking the metaclass graph depth-first starting at the
	   object's resolution root. Parents are visited in declaration order, and
	   the first holder found wins. A set of visited classes guards against
	   cycles and diamonds.
	3. The first Undefined handler found along the same walk.
	4. Nothing; the caller decides whether a miss is an error.

Masquerades (super views) share storage with the instance they view but start
the walk at a parent class. A stored value is only visible through a
masquerade if the name is declared somewhere the masquerade can see, or if it
is not declared anywhere in the real class chain, so attributes added by
subclasses stay hidden.

Class objects resolve class-scoped holders of the class they describe first,
then the instance holders of Class.
*/

import "fmt"

// Binding is the result of resolving a name.
type Binding struct {
	// Name is the resolved name.
	Name string
	// Holder is the holder that declared the name, or nil if the value came
	// from storage or an Undefined handler.
	Holder *Holder
	// Value is the attribute value. It is nil for callable bindings.
	Value *Object
}

// Callable returns true if the binding is a method.
func (b Binding) Callable() bool {
	return b.Holder != nil && b.Holder.Callable() && b.Value == nil
}

// walk visits the metaclass graph depth-first from root, calling f on each
// class until it returns true. It returns the class at which f returned true.
func (vm *VM) walk(root ClassID, f func(mc *Metaclass) bool) *Metaclass {
	if root < 0 || int(root) >= len(vm.classes) {
		return nil
	}
	vm.classSet.Reset()
	vm.classStack = append(vm.classStack[:0], root)
	vm.classSet.Add(uintptr(root))
	for len(vm.classStack) > 0 {
		c := vm.classes[vm.classStack[len(vm.classStack)-1]]
		vm.classStack = vm.classStack[:len(vm.classStack)-1]
		if f(c) {
			return c
		}
		// Push parents in reverse so the first parent is visited next.
		for i := len(c.Parents) - 1; i >= 0; i-- {
			id, ok := vm.byName[c.Parents[i]]
			if !ok {
				vm.Log.Debug("unknown parent class", "class", c.Name, "parent", c.Parents[i])
				continue
			}
			if vm.classSet.Add(uintptr(id)) {
				vm.classStack = append(vm.classStack, id)
			}
		}
	}
	return nil
}

// findHolder finds the first holder named name visible from root which
// satisfies ok, or nil if there is none.
func (vm *VM) findHolder(root ClassID, name string, ok func(h *Holder) bool) *Holder {
	var r *Holder
	vm.walk(root, func(mc *Metaclass) bool {
		if h, found := mc.holders[name]; found && (ok == nil || ok(h)) {
			r = h
			return true
		}
		return false
	})
	return r
}

// undefined consults the first Undefined handler visible from root.
func (vm *VM) undefined(root ClassID, o *Object, name string) (*Object, bool) {
	mc := vm.walk(root, func(mc *Metaclass) bool { return mc.Undefined != nil })
	if mc == nil {
		return nil, false
	}
	return mc.Undefined(vm, o, name)
}

func classSide(h *Holder) bool {
	return h.Scope == ClassScope
}

// Resolve finds the binding for name on o. The second return value is false
// if nothing answers to the name.
func (vm *VM) Resolve(o *Object, name string) (Binding, bool) {
	if mc, ok := vm.DescribedClass(o); ok {
		return vm.resolveClassSide(o, mc, name)
	}
	h := vm.findHolder(o.root, name, nil)
	if v, ok := o.store.get(name); ok {
		if o.real == nil || h != nil || vm.findHolder(o.class, name, nil) == nil {
			return Binding{Name: name, Value: v}, true
		}
	}
	if h != nil {
		return vm.bindHolder(h), true
	}
	if v, ok := vm.undefined(o.root, o, name); ok {
		return Binding{Name: name, Value: v}, true
	}
	return Binding{Name: name}, false
}

func (vm *VM) resolveClassSide(o *Object, mc *Metaclass, name string) (Binding, bool) {
	if h := vm.findHolder(mc.id, name, classSide); h != nil {
		return vm.bindHolder(h), true
	}
	if h := vm.findHolder(o.class, name, nil); h != nil {
		return vm.bindHolder(h), true
	}
	if v, ok := vm.undefined(mc.id, o, name); ok {
		return Binding{Name: name, Value: v}, true
	}
	return Binding{Name: name}, false
}

func (vm *VM) bindHolder(h *Holder) Binding {
	switch {
	case h.Callable():
		return Binding{Name: h.Name, Holder: h}
	case h.Scope == ClassScope:
		v := h.owner.attrs[h.Name]
		if v == nil {
			v = vm.Nil
		}
		return Binding{Name: h.Name, Holder: h, Value: v}
	default:
		// Declared but never set.
		return Binding{Name: h.Name, Holder: h, Value: vm.Nil}
	}
}

// Get returns the value of an attribute of o. If the name resolves to a
// method, the method is invoked with no arguments.
func (vm *VM) Get(o *Object, name string) (*Object, error) {
	b, ok := vm.Resolve(o, name)
	if !ok {
		return nil, vm.missError(o, name)
	}
	if b.Callable() {
		return vm.invoke(b, o, name, nil), nil
	}
	return b.Value, nil
}

// Set assigns an attribute of o. Class-scoped attributes are written to the
// declaring metaclass. It returns false if the write is refused, which happens
// for frozen objects and for names that resolve to methods.
func (vm *VM) Set(o *Object, name string, v *Object) bool {
	if mc, ok := vm.DescribedClass(o); ok {
		h := vm.findHolder(mc.id, name, classSide)
		if h == nil || h.Callable() {
			vm.Log.Debug("refused class attribute write", "class", mc.Name, "name", name)
			return false
		}
		h.owner.attrs[name] = v
		return true
	}
	h := vm.findHolder(o.root, name, nil)
	if h != nil {
		if h.Callable() {
			vm.Log.Debug("refused write over method", "class", vm.classes[o.class].Name, "name", name)
			return false
		}
		if h.Scope == ClassScope {
			h.owner.attrs[name] = v
			return true
		}
	}
	if o.Frozen() {
		vm.Log.Debug("refused write to frozen object", "class", vm.classes[o.class].Name, "name", name)
		return false
	}
	o.store.slots[name] = v
	return true
}

// Masquerade returns a view of o which resolves names starting at the named
// parent class while reading and writing o's own storage.
func (vm *VM) Masquerade(o *Object, parent string) (*Object, error) {
	mc, ok := vm.ResolveMetaclass(parent)
	if !ok {
		return nil, &Error{Kind: ResolutionMiss, Msg: fmt.Sprintf("no class named %s", parent)}
	}
	return vm.masquerade(o, mc.id), nil
}

func (vm *VM) masquerade(o *Object, root ClassID) *Object {
	r := o.Real()
	return &Object{
		class: r.class,
		root:  root,
		store: r.store,
		real:  r,
		Value: r.Value,
		id:    r.id,
	}
}

// Super returns the masquerade of o used for super sends from a method
// declared on owner: resolution starts at owner's first parent. If owner is
// nil, the class of o is used.
func (vm *VM) Super(o *Object, owner *Metaclass) *Object {
	if owner == nil {
		owner = vm.classes[o.Real().class]
	}
	for _, p := range owner.Parents {
		if id, ok := vm.byName[p]; ok {
			return vm.masquerade(o, id)
		}
	}
	return vm.masquerade(o, noClass)
}
