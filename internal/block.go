package internal

import (
	"fmt"
	"strings"
)

// A Block is a reusable, portable unit of code closed over the scope in which
// it was created. Essentially a function.
type Block struct {
	closure *Closure
	env     *Scope
}

// NewBlock creates a Block object running c in a scope enclosed by env.
func (vm *VM) NewBlock(c *Closure, env *Scope) *Object {
	return vm.ObjectWith(vm.kernel.block, &Block{closure: c, env: env})
}

// Closure returns the code the block runs.
func (b *Block) Closure() *Closure {
	return b.closure
}

func (b *Block) call(vm *VM, args []*Object) *Object {
	if !vm.enter("block") {
		return vm.Nil
	}
	defer vm.leave()
	return b.closure.run(vm.NewScope(b.env), args)
}

func (vm *VM) initBlock() {
	mc := vm.mustDefine("Block", []string{"Object"})
	mc.Add(
		NewMethod("value", BlockValue),
		NewMethod("value:", BlockValue),
		NewMethod("value:value:", BlockValue),
		NewMethod("value:value:value:", BlockValue),
		NewMethod("value:value:value:value:", BlockValue),
		NewMethod("valueWithArguments:", BlockValueWithArguments),
		NewMethod("numArgs", BlockNumArgs),
		NewMethod("whileTrue:", BlockWhileTrue),
		NewMethod("whileFalse:", BlockWhileFalse),
		NewMethod("whileTrue", BlockWhileTrue),
		NewMethod("printString", BlockPrintString),
	)
	vm.kernel.block = mc.id
}

// BlockValue is a Block method.
//
// value, value:, and so on evaluate the block with their arguments.
func BlockValue(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return self.Value.(*Block).call(vm, args), nil
}

// BlockValueWithArguments is a Block method.
//
// valueWithArguments: evaluates the block with arguments from an array.
func BlockValueWithArguments(vm *VM, self *Object, args ...*Object) (*Object, error) {
	l, err := vm.ArrayArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	return self.Value.(*Block).call(vm, l), nil
}

// BlockNumArgs is a Block method.
func BlockNumArgs(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewNumber(float64(len(self.Value.(*Block).closure.params))), nil
}

// BlockWhileTrue is a Block method.
//
// whileTrue: evaluates its argument as long as the receiver evaluates to true.
// It answers nil.
func BlockWhileTrue(vm *VM, self *Object, args ...*Object) (*Object, error) {
	blk := self.Value.(*Block)
	body := argAt(vm, args, 0)
	for blk.call(vm, nil) == vm.True {
		vm.Value(body)
	}
	return vm.Nil, nil
}

// BlockWhileFalse is a Block method.
//
// whileFalse: evaluates its argument as long as the receiver evaluates to
// false. It answers nil.
func BlockWhileFalse(vm *VM, self *Object, args ...*Object) (*Object, error) {
	blk := self.Value.(*Block)
	body := argAt(vm, args, 0)
	for blk.call(vm, nil) == vm.False {
		vm.Value(body)
	}
	return vm.Nil, nil
}

// BlockPrintString is a Block method.
//
// printString describes the block's name and parameters.
func BlockPrintString(vm *VM, self *Object, args ...*Object) (*Object, error) {
	c := self.Value.(*Block).closure
	var b strings.Builder
	fmt.Fprintf(&b, "a Block %s", c.name)
	if len(c.params) > 0 {
		b.WriteString(" (:")
		b.WriteString(strings.Join(c.params, " :"))
		b.WriteByte(')')
	}
	return vm.NewString(b.String()), nil
}
