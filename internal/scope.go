package internal

import "sort"

// Scope is a lexical scope: a set of local bindings, the scope enclosing it,
// the implicit receivers of its code, and the VM it belongs to.
//
// Lookup checks, in order, the local bindings of each scope up the chain, the
// receivers of each scope up the chain, and the VM's globals. Assignment
// writes to the nearest scope that already binds the name, then to an
// attribute of a receiver that answers to the name, and otherwise creates a
// local in the scope where the assignment happens.
type Scope struct {
	vm        *VM
	parent    *Scope
	vars      map[string]*Object
	receivers []*Object
	// owner is the metaclass declaring the method running in this scope.
	owner *Metaclass
}

// NewScope creates a scope enclosed by parent, which may be nil.
func (vm *VM) NewScope(parent *Scope, receivers ...*Object) *Scope {
	return &Scope{
		vm:        vm,
		parent:    parent,
		vars:      map[string]*Object{},
		receivers: receivers,
	}
}

// VM returns the scope's VM.
func (s *Scope) VM() *VM {
	return s.vm
}

// Parent returns the enclosing scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Declare binds a name in this scope.
func (s *Scope) Declare(name string, v *Object) {
	s.vars[name] = v
}

// Local returns a binding of this scope alone.
func (s *Scope) Local(name string) (*Object, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Names returns the names bound in this scope alone, sorted.
func (s *Scope) Names() []string {
	r := make([]string, 0, len(s.vars))
	for k := range s.vars {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// Self returns the nearest receiver, or nil.
func (s *Scope) Self() *Object {
	for c := s; c != nil; c = c.parent {
		if len(c.receivers) > 0 {
			return c.receivers[0]
		}
	}
	return s.vm.Nil
}

func (s *Scope) methodOwner() *Metaclass {
	for c := s; c != nil; c = c.parent {
		if c.owner != nil {
			return c.owner
		}
	}
	return nil
}

// Lookup resolves a name.
func (s *Scope) Lookup(name string) (*Object, bool) {
	switch name {
	case "self":
		return s.Self(), true
	case "super":
		return s.vm.Super(s.Self(), s.methodOwner()), true
	}
	for c := s; c != nil; c = c.parent {
		if v, ok := c.vars[name]; ok {
			return v, true
		}
	}
	for c := s; c != nil; c = c.parent {
		for _, r := range c.receivers {
			if b, ok := s.vm.Resolve(r, name); ok && !b.Callable() {
				return b.Value, true
			}
		}
	}
	return s.vm.Global(name)
}

// Assign writes a name.
func (s *Scope) Assign(name string, v *Object) {
	switch name {
	case "self", "super", "nil", "true", "false":
		s.vm.Log.Warn("assignment to pseudo-variable ignored", "name", name)
		return
	}
	for c := s; c != nil; c = c.parent {
		if _, ok := c.vars[name]; ok {
			c.vars[name] = v
			return
		}
	}
	for c := s; c != nil; c = c.parent {
		for _, r := range c.receivers {
			if b, ok := s.vm.Resolve(r, name); ok && !b.Callable() && s.vm.Set(r, name, v) {
				return
			}
		}
	}
	s.vars[name] = v
}
