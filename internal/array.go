package internal

import "fmt"

// initArray sets up Array.
func (vm *VM) initArray() {
	mc := vm.mustDefine("Array", []string{"Object"})
	mc.Add(
		NewMethod("size", ArraySize),
		NewMethod("at:", ArrayAt),
		NewMethod("at:put:", ArrayAtPut),
		NewMethod("first", ArrayFirst),
		NewMethod("last", ArrayLast),
		NewMethod("isEmpty", ArrayIsEmpty),
		NewMethod("includes:", ArrayIncludes),
		NewMethod(",", ArrayConcat),
		NewMethod("do:", ArrayDo),
		NewMethod("collect:", ArrayCollect),
		NewMethod("select:", ArraySelect),
		NewMethod("reject:", ArrayReject),
		NewMethod("detect:ifNone:", ArrayDetectIfNone),
		NewMethod("inject:into:", ArrayInjectInto),
		NewMethod("reversed", ArrayReversed),
	)
	vm.kernel.array = mc.id
}

func arrayIndex(vm *VM, l []*Object, args []*Object) (int, error) {
	n, err := vm.NumberArgAt(args, 0)
	if err != nil {
		return 0, err
	}
	k := int(n)
	if k < 1 || k > len(l) {
		return 0, fmt.Errorf("index %d out of bounds for size %d", k, len(l))
	}
	return k - 1, nil
}

// ArraySize is an Array method.
func ArraySize(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewNumber(float64(len(self.Value.([]*Object)))), nil
}

// ArrayAt is an Array method.
//
// at: returns the item at a 1-based index. Out-of-bounds indices are faults.
func ArrayAt(vm *VM, self *Object, args ...*Object) (*Object, error) {
	l := self.Value.([]*Object)
	k, err := arrayIndex(vm, l, args)
	if err != nil {
		return nil, err
	}
	return l[k], nil
}

// ArrayAtPut is an Array method.
//
// at:put: replaces the item at a 1-based index and answers the new item.
func ArrayAtPut(vm *VM, self *Object, args ...*Object) (*Object, error) {
	l := self.Value.([]*Object)
	k, err := arrayIndex(vm, l, args)
	if err != nil {
		return nil, err
	}
	v := argAt(vm, args, 1)
	l[k] = v
	return v, nil
}

// ArrayFirst is an Array method.
func ArrayFirst(vm *VM, self *Object, args ...*Object) (*Object, error) {
	l := self.Value.([]*Object)
	if len(l) == 0 {
		return vm.Nil, nil
	}
	return l[0], nil
}

// ArrayLast is an Array method.
func ArrayLast(vm *VM, self *Object, args ...*Object) (*Object, error) {
	l := self.Value.([]*Object)
	if len(l) == 0 {
		return vm.Nil, nil
	}
	return l[len(l)-1], nil
}

// ArrayIsEmpty is an Array method.
func ArrayIsEmpty(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(len(self.Value.([]*Object)) == 0), nil
}

// ArrayIncludes is an Array method.
func ArrayIncludes(vm *VM, self *Object, args ...*Object) (*Object, error) {
	x := argAt(vm, args, 0)
	for _, v := range self.Value.([]*Object) {
		if vm.Equal(v, x) {
			return vm.True, nil
		}
	}
	return vm.False, nil
}

// ArrayConcat is an Array method.
//
// , creates a new array with the items of both operands.
func ArrayConcat(vm *VM, self *Object, args ...*Object) (*Object, error) {
	m, err := vm.ArrayArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	l := self.Value.([]*Object)
	r := make([]*Object, 0, len(l)+len(m))
	r = append(r, l...)
	r = append(r, m...)
	return vm.NewArray(r), nil
}

// ArrayDo is an Array method.
//
// do: evaluates a block with each item and answers the receiver.
func ArrayDo(vm *VM, self *Object, args ...*Object) (*Object, error) {
	blk := argAt(vm, args, 0)
	for _, v := range self.Value.([]*Object) {
		vm.Value(blk, v)
	}
	return self, nil
}

// ArrayCollect is an Array method.
//
// collect: creates a new array of the results of a block for each item.
func ArrayCollect(vm *VM, self *Object, args ...*Object) (*Object, error) {
	blk := argAt(vm, args, 0)
	l := self.Value.([]*Object)
	r := make([]*Object, len(l))
	for i, v := range l {
		r[i] = vm.Value(blk, v)
	}
	return vm.NewArray(r), nil
}

func arrayFilter(vm *VM, self *Object, args []*Object, keep *Object) *Object {
	blk := argAt(vm, args, 0)
	var r []*Object
	for _, v := range self.Value.([]*Object) {
		if vm.Value(blk, v) == keep {
			r = append(r, v)
		}
	}
	return vm.NewArray(r)
}

// ArraySelect is an Array method.
//
// select: creates a new array of the items for which a block answers true.
func ArraySelect(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return arrayFilter(vm, self, args, vm.True), nil
}

// ArrayReject is an Array method.
//
// reject: creates a new array of the items for which a block answers false.
func ArrayReject(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return arrayFilter(vm, self, args, vm.False), nil
}

// ArrayDetectIfNone is an Array method.
//
// detect:ifNone: answers the first item for which the first block answers
// true, or the value of the second block if there is none.
func ArrayDetectIfNone(vm *VM, self *Object, args ...*Object) (*Object, error) {
	blk := argAt(vm, args, 0)
	for _, v := range self.Value.([]*Object) {
		if vm.Value(blk, v) == vm.True {
			return v, nil
		}
	}
	return vm.Value(argAt(vm, args, 1)), nil
}

// ArrayInjectInto is an Array method.
//
// inject:into: folds the items with a two-argument block, starting from the
// first argument.
func ArrayInjectInto(vm *VM, self *Object, args ...*Object) (*Object, error) {
	acc := argAt(vm, args, 0)
	blk := argAt(vm, args, 1)
	for _, v := range self.Value.([]*Object) {
		acc = vm.Value(blk, acc, v)
	}
	return acc, nil
}

// ArrayReversed is an Array method.
func ArrayReversed(vm *VM, self *Object, args ...*Object) (*Object, error) {
	l := self.Value.([]*Object)
	r := make([]*Object, len(l))
	for i, v := range l {
		r[len(l)-1-i] = v
	}
	return vm.NewArray(r), nil
}
