package internal

import (
	"fmt"
	"strings"
)

// Send sends a message to recv. If the selector resolves to a method, the
// method is invoked with args; if it resolves to an attribute, the attribute's
// value is the result. A selector that resolves to nothing is logged and
// produces nil.
func (vm *VM) Send(recv *Object, sel string, args ...*Object) *Object {
	b, ok := vm.Resolve(recv, sel)
	if !ok {
		return vm.miss(recv, sel)
	}
	if b.Callable() {
		return vm.invoke(b, recv, sel, args)
	}
	return b.Value
}

// SendKeyword sends a keyword message whose parts are joined into a full
// selector like "at:put:". If nothing answers to the full selector, the
// message falls back to the first part without its colon, called with all
// arguments positionally, so that "x moveBy: 1 and: 2" can reach a
// two-argument method named moveBy. A one-argument fallback that finds an
// attribute assigns it and answers the receiver.
func (vm *VM) SendKeyword(recv *Object, sel, first string, args ...*Object) *Object {
	if b, ok := vm.Resolve(recv, sel); ok {
		if b.Callable() {
			return vm.invoke(b, recv, sel, args)
		}
		return b.Value
	}
	b, ok := vm.Resolve(recv, first)
	if !ok {
		return vm.miss(recv, sel)
	}
	if b.Callable() {
		return vm.invoke(b, recv, first, args)
	}
	if len(args) == 1 && vm.Set(recv, first, args[0]) {
		return recv
	}
	return b.Value
}

// Call invokes a block with arguments. Objects other than blocks evaluate to
// themselves when they are given no arguments; otherwise calling them is a
// miss.
func (vm *VM) Call(recv *Object, args ...*Object) *Object {
	if blk, ok := recv.Value.(*Block); ok && recv.class == vm.kernel.block {
		return blk.call(vm, args)
	}
	if len(args) == 0 {
		return recv
	}
	return vm.miss(recv, "()")
}

// Value evaluates o as a block with arguments. Non-blocks are their own value.
func (vm *VM) Value(o *Object, args ...*Object) *Object {
	if blk, ok := o.Value.(*Block); ok && o.class == vm.kernel.block {
		return blk.call(vm, args)
	}
	return o
}

// KeywordSelector joins keyword parts into a full selector and also returns
// the first part without its colon.
func KeywordSelector(parts []string) (full, first string) {
	full = strings.Join(parts, "")
	if len(parts) > 0 {
		first = strings.TrimSuffix(parts[0], ":")
	}
	return full, first
}

// argAt returns the nth argument, or nil if there are not enough arguments.
func argAt(vm *VM, args []*Object, n int) *Object {
	if n < len(args) {
		return args[n]
	}
	return vm.Nil
}

// NumberArgAt returns the nth argument as a number.
func (vm *VM) NumberArgAt(args []*Object, n int) (float64, error) {
	v := argAt(vm, args, n)
	x, ok := v.Value.(float64)
	if !ok {
		return 0, fmt.Errorf("argument %d must be Number, not %s", n, vm.classes[v.class].Name)
	}
	return x, nil
}

// StringArgAt returns the nth argument as a string. Strings and symbols are
// accepted.
func (vm *VM) StringArgAt(args []*Object, n int) (string, error) {
	v := argAt(vm, args, n)
	x, ok := v.Value.(string)
	if !ok {
		return "", fmt.Errorf("argument %d must be String or Symbol, not %s", n, vm.classes[v.class].Name)
	}
	return x, nil
}

// ArrayArgAt returns the items of the nth argument, which must be an array.
func (vm *VM) ArrayArgAt(args []*Object, n int) ([]*Object, error) {
	v := argAt(vm, args, n)
	x, ok := v.Value.([]*Object)
	if !ok || v.class != vm.kernel.array {
		return nil, fmt.Errorf("argument %d must be Array, not %s", n, vm.classes[v.class].Name)
	}
	return x, nil
}

// BlockArgAt returns the nth argument as a block.
func (vm *VM) BlockArgAt(args []*Object, n int) (*Block, error) {
	v := argAt(vm, args, n)
	x, ok := v.Value.(*Block)
	if !ok {
		return nil, fmt.Errorf("argument %d must be Block, not %s", n, vm.classes[v.class].Name)
	}
	return x, nil
}
