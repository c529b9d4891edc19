package internal

import (
	"sync/atomic"

	"github.com/zephyrtronium/contains"
)

// Object is the basic type of steplang. Everything is an Object.
//
// Always use NewInstance, ObjectWith, or a type-specific constructor to obtain
// new objects. Creating objects directly will result in arbitrary failures.
type Object struct {
	// class is the metaclass that describes this object.
	class ClassID
	// root is the metaclass at which resolution begins. It is the same as
	// class except for super masquerades.
	root ClassID
	// store holds per-instance attribute values. Masquerades share the store
	// of the instance they view. Frozen objects have no store.
	store *storage
	// real is the instance a masquerade views, or nil.
	real *Object

	// Value is the object's type-specific primitive value.
	Value interface{}

	// id is the object's unique ID. Masquerades share the ID of the instance
	// they view.
	id uintptr
}

// storage is per-instance attribute state.
type storage struct {
	slots map[string]*Object
}

func newStorage() *storage {
	return &storage{slots: map[string]*Object{}}
}

func (s *storage) get(name string) (*Object, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.slots[name]
	return v, ok
}

// objcounter is the global counter for object IDs. All accesses to this must
// be atomic.
var objcounter uintptr

// nextObject increments the object counter and returns its value as a unique
// ID for a new object.
func nextObject() uintptr {
	return atomic.AddUintptr(&objcounter, 1)
}

// ObjectWith creates a new frozen object of the given class holding a
// primitive value.
func (vm *VM) ObjectWith(class ClassID, value interface{}) *Object {
	return &Object{
		class: class,
		root:  class,
		Value: value,
		id:    nextObject(),
	}
}

// UniqueID returns the object's unique ID.
func (o *Object) UniqueID() uintptr {
	return o.id
}

// Frozen returns true if the object refuses per-instance attribute writes.
// Singletons and value wrappers are frozen.
func (o *Object) Frozen() bool {
	return o.store == nil
}

// IsMasquerade returns true if the object is a super view of another object.
func (o *Object) IsMasquerade() bool {
	return o.real != nil
}

// Real returns the instance underlying a masquerade, or o itself.
func (o *Object) Real() *Object {
	if o.real != nil {
		return o.real
	}
	return o
}

// ClassOf returns the metaclass describing o.
func (vm *VM) ClassOf(o *Object) *Metaclass {
	return vm.classes[o.class]
}

// IsKindOf returns true if the object's metaclass is kind or inherits from it.
func (vm *VM) IsKindOf(o *Object, kind *Metaclass) bool {
	if o == nil || kind == nil {
		return false
	}
	// Resolution needs a specific depth-first order, but here any order will
	// do, so we use our own set and stack.
	stack := []ClassID{o.class}
	set := contains.Set{}
	set.Add(uintptr(o.class))
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c == kind.id {
			return true
		}
		for _, p := range vm.classes[c].Parents {
			if id, ok := vm.byName[p]; ok && set.Add(uintptr(id)) {
				stack = append(stack, id)
			}
		}
	}
	return false
}

// Identical returns true if a and b are the same object. Numbers and strings
// of the same kind and value are identical.
func (vm *VM) Identical(a, b *Object) bool {
	if a == b || a.id == b.id {
		return true
	}
	if a.class != b.class || !a.Frozen() || !b.Frozen() {
		return false
	}
	switch x := a.Value.(type) {
	case float64:
		y, ok := b.Value.(float64)
		return ok && x == y
	case string:
		y, ok := b.Value.(string)
		return ok && x == y
	}
	return false
}

// initObject sets up Object, the root of every metaclass chain.
func (vm *VM) initObject() {
	mc := vm.mustDefine("Object", nil)
	mc.Add(
		NewMethod("==", ObjectIdentical),
		NewMethod("~~", ObjectNotIdentical),
		NewMethod("=", ObjectEqual),
		NewMethod("~=", ObjectNotEqual),
		NewMethod("isNil", ObjectIsNil),
		NewMethod("notNil", ObjectNotNil),
		NewMethod("ifNil:", ObjectIfNil),
		NewMethod("ifNotNil:", ObjectIfNotNil),
		NewMethod("ifNil:ifNotNil:", ObjectIfNilIfNotNil),
		NewMethod("ifNotNil:ifNil:", ObjectIfNotNilIfNil),
		NewMethod("yourself", ObjectYourself),
		NewMethod("class", ObjectClass),
		NewMethod("respondsTo:", ObjectRespondsTo),
		NewMethod("isKindOf:", ObjectIsKindOf),
		NewMethod("perform:", ObjectPerform),
		NewMethod("perform:with:", ObjectPerform),
		NewMethod("perform:withArguments:", ObjectPerformWithArguments),
		NewMethod("printString", ObjectPrintString),
		NewMethod("displayString", ObjectDisplayString),
		NewMethod("->", ObjectPair),
	)
}

// ObjectIdentical is an Object method.
//
// == returns true if the argument is the receiver.
func ObjectIdentical(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(vm.Identical(self, argAt(vm, args, 0))), nil
}

// ObjectNotIdentical is an Object method.
//
// ~~ returns true if the argument is not the receiver.
func ObjectNotIdentical(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(!vm.Identical(self, argAt(vm, args, 0))), nil
}

// ObjectEqual is an Object method.
//
// = compares values for numbers, strings, and arrays and identity otherwise.
func ObjectEqual(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(vm.Equal(self, argAt(vm, args, 0))), nil
}

// ObjectNotEqual is an Object method.
//
// ~= is the negation of =.
func ObjectNotEqual(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(!vm.Equal(self, argAt(vm, args, 0))), nil
}

// ObjectIsNil is an Object method.
func ObjectIsNil(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(self == vm.Nil), nil
}

// ObjectNotNil is an Object method.
func ObjectNotNil(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(self != vm.Nil), nil
}

// ObjectIfNil is an Object method.
//
// ifNil: evaluates its block argument if the receiver is nil, otherwise it
// returns the receiver.
func ObjectIfNil(vm *VM, self *Object, args ...*Object) (*Object, error) {
	if self != vm.Nil {
		return self, nil
	}
	return vm.Value(argAt(vm, args, 0)), nil
}

// ObjectIfNotNil is an Object method.
//
// ifNotNil: evaluates its block argument with the receiver if the receiver is
// not nil.
func ObjectIfNotNil(vm *VM, self *Object, args ...*Object) (*Object, error) {
	if self == vm.Nil {
		return vm.Nil, nil
	}
	return vm.Value(argAt(vm, args, 0), self), nil
}

// ObjectIfNilIfNotNil is an Object method.
//
// ifNil:ifNotNil: evaluates its second argument with the receiver. Nil
// overrides it.
func ObjectIfNilIfNotNil(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.Value(argAt(vm, args, 1), self), nil
}

// ObjectIfNotNilIfNil is an Object method.
//
// ifNotNil:ifNil: evaluates its first argument with the receiver.
func ObjectIfNotNilIfNil(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.Value(argAt(vm, args, 0), self), nil
}

// ObjectYourself is an Object method.
func ObjectYourself(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return self, nil
}

// ObjectClass is an Object method.
//
// class returns the class object describing the receiver.
func ObjectClass(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.ClassObject(vm.ClassOf(self)), nil
}

// ObjectRespondsTo is an Object method.
//
// respondsTo: returns true if a selector resolves against the receiver.
func ObjectRespondsTo(vm *VM, self *Object, args ...*Object) (*Object, error) {
	sel, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	_, ok := vm.Resolve(self, sel)
	return vm.NewBool(ok), nil
}

// ObjectIsKindOf is an Object method.
//
// isKindOf: returns true if the receiver's class is the argument class or
// inherits from it.
func ObjectIsKindOf(vm *VM, self *Object, args ...*Object) (*Object, error) {
	mc, ok := vm.DescribedClass(argAt(vm, args, 0))
	if !ok {
		return vm.False, nil
	}
	return vm.NewBool(vm.IsKindOf(self, mc)), nil
}

// ObjectPerform is an Object method.
//
// perform: sends the message named by its first argument to the receiver,
// using any remaining arguments as the message arguments.
func ObjectPerform(vm *VM, self *Object, args ...*Object) (*Object, error) {
	sel, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	return vm.Send(self, sel, args[1:]...), nil
}

// ObjectPerformWithArguments is an Object method.
//
// perform:withArguments: sends a message with arguments taken from an array.
func ObjectPerformWithArguments(vm *VM, self *Object, args ...*Object) (*Object, error) {
	sel, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	l, err := vm.ArrayArgAt(args, 1)
	if err != nil {
		return nil, err
	}
	return vm.Send(self, sel, l...), nil
}

// ObjectPrintString is an Object method.
func ObjectPrintString(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewString(vm.PrintString(self)), nil
}

// ObjectDisplayString is an Object method.
func ObjectDisplayString(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewString(vm.AsString(self)), nil
}

// ObjectPair is an Object method.
//
// -> creates a two-element array of the receiver and the argument.
func ObjectPair(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewArray([]*Object{self, argAt(vm, args, 0)}), nil
}
