package internal

import (
	"fmt"
	"sort"
)

// ClassID is a handle to a metaclass in a VM's class arena.
type ClassID int

// noClass is the resolution root of masquerades over classes with no parents.
const noClass ClassID = -1

// Fn is the signature of native holders. Returning a non-nil error is a
// native fault.
type Fn func(vm *VM, self *Object, args ...*Object) (*Object, error)

// UndefinedFn is a handler consulted when resolution finds no holder. It
// reports whether it produced a value.
type UndefinedFn func(vm *VM, self *Object, name string) (*Object, bool)

// Factory creates the raw instance for a metaclass.
type Factory func(vm *VM, mc *Metaclass) *Object

// HolderScope selects where an attribute's value is stored.
type HolderScope int

const (
	// InstanceScope attributes live in each instance's own storage.
	InstanceScope HolderScope = iota
	// ClassScope attributes live once on the declaring metaclass and are
	// shared by all of its instances and subclass instances.
	ClassScope
)

func (s HolderScope) String() string {
	switch s {
	case InstanceScope:
		return "instance"
	case ClassScope:
		return "class"
	}
	return fmt.Sprintf("HolderScope(%d)", int(s))
}

// Holder is an attribute or method descriptor declared on a metaclass.
type Holder struct {
	// Name is the name the holder answers to. Keyword selectors include
	// their colons, e.g. "at:put:".
	Name string
	// Type is the declared type name of an attribute. It is informational.
	Type string
	// Scope is the attribute's storage scope. For methods, ClassScope makes
	// the method answer on the class object rather than on instances.
	Scope HolderScope
	// Fn is a native implementation.
	Fn Fn
	// Method is a language-defined implementation.
	Method *Closure

	owner *Metaclass
	// env is the scope enclosing a language-defined method, if any.
	env *Scope
}

// NewMethod creates an instance-scoped native method holder.
func NewMethod(name string, fn Fn) Holder {
	return Holder{Name: name, Fn: fn}
}

// NewClassMethod creates a native method holder answering on the class
// object.
func NewClassMethod(name string, fn Fn) Holder {
	return Holder{Name: name, Scope: ClassScope, Fn: fn}
}

// NewAttribute creates an attribute holder.
func NewAttribute(name, typ string, scope HolderScope) Holder {
	return Holder{Name: name, Type: typ, Scope: scope}
}

// Callable returns true if the holder describes a method.
func (h *Holder) Callable() bool {
	return h.Fn != nil || h.Method != nil
}

// Owner returns the metaclass that declares the holder.
func (h *Holder) Owner() *Metaclass {
	return h.owner
}

// Metaclass is a class descriptor. Metaclasses live in an arena owned by a
// VM; parents are referenced by name and resolved through the same arena, so
// a parent may be defined after its children.
type Metaclass struct {
	// Name is the class name, unique within a VM.
	Name string
	// Parents lists parent class names in resolution order.
	Parents []string
	// Undefined, if not nil, is consulted when a name resolves to nothing.
	Undefined UndefinedFn
	// Factory, if not nil, creates instances instead of the default.
	Factory Factory

	holders map[string]*Holder
	// attrs holds the values of class-scoped attributes.
	attrs map[string]*Object
	id    ClassID
}

// ID returns the metaclass's handle in its VM's arena.
func (mc *Metaclass) ID() ClassID {
	return mc.id
}

// Add declares holders on the metaclass, replacing any of the same name.
func (mc *Metaclass) Add(holders ...Holder) *Metaclass {
	for _, h := range holders {
		h := h
		h.owner = mc
		mc.holders[h.Name] = &h
	}
	return mc
}

// AddMethod declares a language-defined method. The closure's parameters
// receive the message arguments, and its implicit receiver is the object the
// message was sent to.
func (mc *Metaclass) AddMethod(name string, c *Closure) *Metaclass {
	return mc.Add(Holder{Name: name, Method: c})
}

// Holder returns the holder declared directly on mc with the given name.
func (mc *Metaclass) Holder(name string) (*Holder, bool) {
	h, ok := mc.holders[name]
	return h, ok
}

// HolderNames returns the names of holders declared directly on mc, sorted.
func (mc *Metaclass) HolderNames() []string {
	r := make([]string, 0, len(mc.holders))
	for k := range mc.holders {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// ClassAttr returns the stored value of a class-scoped attribute declared on
// mc.
func (mc *Metaclass) ClassAttr(name string) (*Object, bool) {
	v, ok := mc.attrs[name]
	return v, ok
}

// Define registers a new metaclass. Holders are declared on it in order.
func (vm *VM) Define(name string, parents []string, holders ...Holder) (*Metaclass, error) {
	if name == "" {
		return nil, fmt.Errorf("cannot define a class with no name")
	}
	name = normalize(name)
	if _, ok := vm.byName[name]; ok {
		return nil, fmt.Errorf("class %s is already defined", name)
	}
	mc := &Metaclass{
		Name:    name,
		Parents: append([]string(nil), parents...),
		holders: make(map[string]*Holder, len(holders)),
		attrs:   map[string]*Object{},
		id:      ClassID(len(vm.classes)),
	}
	vm.classes = append(vm.classes, mc)
	vm.byName[name] = mc.id
	mc.Add(holders...)
	return mc, nil
}

// mustDefine defines a kernel class. Kernel names are fixed, so failure is a
// programming error.
func (vm *VM) mustDefine(name string, parents []string, holders ...Holder) *Metaclass {
	mc, err := vm.Define(name, parents, holders...)
	if err != nil {
		panic(fmt.Errorf("steplang: defining kernel class: %w", err))
	}
	return mc
}

// ResolveMetaclass finds a metaclass by name.
func (vm *VM) ResolveMetaclass(name string) (*Metaclass, bool) {
	id, ok := vm.byName[normalize(name)]
	if !ok {
		return nil, false
	}
	return vm.classes[id], true
}

// Class returns the metaclass with the given handle.
func (vm *VM) Class(id ClassID) *Metaclass {
	if id < 0 || int(id) >= len(vm.classes) {
		return nil
	}
	return vm.classes[id]
}

// NewInstance creates an instance of the named metaclass. If the new object
// responds to initialize, it is sent.
func (vm *VM) NewInstance(name string) (*Object, error) {
	mc, ok := vm.ResolveMetaclass(name)
	if !ok {
		return nil, &Error{Kind: ResolutionMiss, Msg: fmt.Sprintf("no class named %s", name)}
	}
	return vm.instantiate(mc), nil
}

func (vm *VM) instantiate(mc *Metaclass) *Object {
	var o *Object
	if mc.Factory != nil {
		o = mc.Factory(vm, mc)
	} else {
		o = &Object{
			class: mc.id,
			root:  mc.id,
			store: newStorage(),
			id:    nextObject(),
		}
	}
	if b, ok := vm.Resolve(o, "initialize"); ok && b.Callable() {
		vm.invoke(b, o, "initialize", nil)
	}
	return o
}

// ClassObject returns the object representing mc itself. Class objects answer
// class-scoped holders of mc and the instance holders of Class.
func (vm *VM) ClassObject(mc *Metaclass) *Object {
	if o, ok := vm.classObjects[mc.id]; ok {
		return o
	}
	o := vm.ObjectWith(vm.kernel.class, mc.id)
	vm.classObjects[mc.id] = o
	return o
}

// DescribedClass returns the metaclass a class object represents.
func (vm *VM) DescribedClass(o *Object) (*Metaclass, bool) {
	if o.class != vm.kernel.class {
		return nil, false
	}
	id, ok := o.Value.(ClassID)
	if !ok {
		return nil, false
	}
	return vm.classes[id], true
}

// initClass sets up Class, the metaclass of class objects.
func (vm *VM) initClass() {
	mc := vm.mustDefine("Class", []string{"Object"})
	mc.Add(
		NewMethod("new", ClassNew),
		NewMethod("name", ClassName),
		NewMethod("parents", ClassParents),
		NewMethod("includesSelector:", ClassIncludesSelector),
		NewMethod("subclass:", ClassSubclass),
		NewMethod("subclass:attributes:", ClassSubclass),
		NewMethod("subclass:parents:attributes:", ClassSubclassParents),
		NewMethod("attributes:", ClassAttributes),
		NewMethod("classAttributes:", ClassClassAttributes),
		NewMethod("define:as:", ClassDefine),
		NewMethod("classDefine:as:", ClassClassDefine),
	)
	vm.kernel.class = mc.id
}

// ClassNew is a Class method.
//
// new creates an instance of the receiver class.
func ClassNew(vm *VM, self *Object, args ...*Object) (*Object, error) {
	mc, ok := vm.DescribedClass(self)
	if !ok {
		return nil, fmt.Errorf("new sent to a non-class")
	}
	return vm.instantiate(mc), nil
}

// ClassName is a Class method.
func ClassName(vm *VM, self *Object, args ...*Object) (*Object, error) {
	mc, ok := vm.DescribedClass(self)
	if !ok {
		return vm.Nil, nil
	}
	return vm.NewString(mc.Name), nil
}

// ClassParents is a Class method.
//
// parents returns the receiver's parent classes in resolution order.
func ClassParents(vm *VM, self *Object, args ...*Object) (*Object, error) {
	mc, ok := vm.DescribedClass(self)
	if !ok {
		return vm.NewArray(nil), nil
	}
	r := make([]*Object, 0, len(mc.Parents))
	for _, p := range mc.Parents {
		if pc, ok := vm.ResolveMetaclass(p); ok {
			r = append(r, vm.ClassObject(pc))
		}
	}
	return vm.NewArray(r), nil
}

// ClassIncludesSelector is a Class method.
//
// includesSelector: returns true if the class itself declares a holder with
// the given name.
func ClassIncludesSelector(vm *VM, self *Object, args ...*Object) (*Object, error) {
	mc, ok := vm.DescribedClass(self)
	if !ok {
		return vm.False, nil
	}
	sel, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	_, ok = mc.holders[sel]
	return vm.NewBool(ok), nil
}

// ClassSubclass is a Class method.
//
// subclass: defines a new class whose only parent is the receiver. The
// subclass:attributes: form also declares instance attributes.
func ClassSubclass(vm *VM, self *Object, args ...*Object) (*Object, error) {
	mc, ok := vm.DescribedClass(self)
	if !ok {
		return nil, fmt.Errorf("subclass: sent to a non-class")
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("subclass: needs a name")
	}
	return vm.defineFrom(args[0], []string{mc.Name}, args[1:])
}

// ClassSubclassParents is a Class method.
//
// subclass:parents:attributes: defines a new class with the receiver as its
// first parent followed by the classes in the parents array.
func ClassSubclassParents(vm *VM, self *Object, args ...*Object) (*Object, error) {
	mc, ok := vm.DescribedClass(self)
	if !ok {
		return nil, fmt.Errorf("subclass: sent to a non-class")
	}
	ps, err := vm.ArrayArgAt(args, 1)
	if err != nil {
		return nil, err
	}
	if len(args) < 3 {
		return nil, fmt.Errorf("subclass:parents:attributes: needs three arguments")
	}
	parents := []string{mc.Name}
	for _, p := range ps {
		if pc, ok := vm.DescribedClass(p); ok {
			parents = append(parents, pc.Name)
			continue
		}
		s, ok := p.Value.(string)
		if !ok {
			return nil, fmt.Errorf("parent must be a class or a name, not %s", vm.classes[p.class].Name)
		}
		parents = append(parents, s)
	}
	return vm.defineFrom(args[0], parents, args[2:])
}

func (vm *VM) defineFrom(name *Object, parents []string, attrs []*Object) (*Object, error) {
	n, err := vm.StringArgAt([]*Object{name}, 0)
	if err != nil {
		return nil, err
	}
	mc, err := vm.Define(n, parents)
	if err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		if err := vm.declare(mc, attrs[0], InstanceScope); err != nil {
			return nil, err
		}
	}
	return vm.ClassObject(mc), nil
}

func (vm *VM) declare(mc *Metaclass, names *Object, scope HolderScope) error {
	l, err := vm.ArrayArgAt([]*Object{names}, 0)
	if err != nil {
		return err
	}
	for _, x := range l {
		s, ok := x.Value.(string)
		if !ok {
			return fmt.Errorf("attribute names must be strings or symbols")
		}
		mc.Add(NewAttribute(s, "", scope))
	}
	return nil
}

// ClassAttributes is a Class method.
//
// attributes: declares instance attributes on the receiver class.
func ClassAttributes(vm *VM, self *Object, args ...*Object) (*Object, error) {
	mc, ok := vm.DescribedClass(self)
	if !ok {
		return nil, fmt.Errorf("attributes: sent to a non-class")
	}
	return self, vm.declare(mc, argAt(vm, args, 0), InstanceScope)
}

// ClassClassAttributes is a Class method.
//
// classAttributes: declares class-scoped attributes on the receiver class.
func ClassClassAttributes(vm *VM, self *Object, args ...*Object) (*Object, error) {
	mc, ok := vm.DescribedClass(self)
	if !ok {
		return nil, fmt.Errorf("classAttributes: sent to a non-class")
	}
	return self, vm.declare(mc, argAt(vm, args, 0), ClassScope)
}

// ClassDefine is a Class method.
//
// define:as: declares a method on the receiver class whose body is a block.
// The block's parameters receive the message arguments, and self inside it is
// the receiver of the message.
func ClassDefine(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.defineMethod(self, InstanceScope, args)
}

// ClassClassDefine is a Class method.
//
// classDefine:as: is like define:as:, but the method answers on the class
// object instead of on instances.
func ClassClassDefine(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.defineMethod(self, ClassScope, args)
}

func (vm *VM) defineMethod(self *Object, scope HolderScope, args []*Object) (*Object, error) {
	mc, ok := vm.DescribedClass(self)
	if !ok {
		return nil, fmt.Errorf("define:as: sent to a non-class")
	}
	sel, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	blk, err := vm.BlockArgAt(args, 1)
	if err != nil {
		return nil, err
	}
	mc.Add(Holder{Name: sel, Scope: scope, Method: blk.closure, env: blk.env})
	return self, nil
}
