package internal

// initNil sets up UndefinedObject and the nil singleton.
func (vm *VM) initNil() {
	mc := vm.mustDefine("UndefinedObject", []string{"Object"})
	mc.Add(
		NewMethod("isNil", ObjectIsNil),
		NewMethod("ifNil:ifNotNil:", NilIfNilIfNotNil),
		NewMethod("ifNotNil:ifNil:", NilIfNotNilIfNil),
	)
	vm.kernel.undefined = mc.id
	vm.Nil = vm.ObjectWith(mc.id, nil)
}

// initBoolean sets up Boolean, True, False, and their singletons.
func (vm *VM) initBoolean() {
	b := vm.mustDefine("Boolean", []string{"Object"})
	b.Add(
		NewMethod("&", BooleanAnd),
		NewMethod("|", BooleanOr),
		NewMethod("xor:", BooleanXor),
	)
	t := vm.mustDefine("True", []string{"Boolean"})
	t.Add(
		NewMethod("not", BooleanNot),
		NewMethod("ifTrue:", TrueIfTrue),
		NewMethod("ifFalse:", BooleanSkip),
		NewMethod("ifTrue:ifFalse:", TrueIfTrue),
		NewMethod("ifFalse:ifTrue:", TrueIfFalseIfTrue),
		NewMethod("and:", TrueIfTrue),
		NewMethod("or:", ObjectYourself),
	)
	f := vm.mustDefine("False", []string{"Boolean"})
	f.Add(
		NewMethod("not", BooleanNot),
		NewMethod("ifTrue:", BooleanSkip),
		NewMethod("ifFalse:", FalseIfFalse),
		NewMethod("ifTrue:ifFalse:", FalseIfTrueIfFalse),
		NewMethod("ifFalse:ifTrue:", FalseIfFalse),
		NewMethod("and:", ObjectYourself),
		NewMethod("or:", FalseIfFalse),
	)
	vm.kernel.boolean = b.id
	vm.kernel.true_ = t.id
	vm.kernel.false_ = f.id
	vm.True = vm.ObjectWith(t.id, true)
	vm.False = vm.ObjectWith(f.id, false)
}

// NilIfNilIfNotNil is an UndefinedObject method.
//
// ifNil:ifNotNil: evaluates its first argument.
func NilIfNilIfNotNil(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.Value(argAt(vm, args, 0)), nil
}

// NilIfNotNilIfNil is an UndefinedObject method.
//
// ifNotNil:ifNil: evaluates its second argument.
func NilIfNotNilIfNil(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.Value(argAt(vm, args, 1)), nil
}

// BooleanNot is a Boolean method.
func BooleanNot(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(self != vm.True), nil
}

// BooleanAnd is a Boolean method.
//
// & is non-short-circuiting conjunction.
func BooleanAnd(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(self == vm.True && argAt(vm, args, 0) == vm.True), nil
}

// BooleanOr is a Boolean method.
//
// | is non-short-circuiting disjunction.
func BooleanOr(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(self == vm.True || argAt(vm, args, 0) == vm.True), nil
}

// BooleanXor is a Boolean method.
func BooleanXor(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool((self == vm.True) != (argAt(vm, args, 0) == vm.True)), nil
}

// TrueIfTrue is a True method.
//
// ifTrue:, ifTrue:ifFalse:, and and: evaluate their first argument.
func TrueIfTrue(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.Value(argAt(vm, args, 0)), nil
}

// TrueIfFalseIfTrue is a True method.
//
// ifFalse:ifTrue: evaluates its second argument.
func TrueIfFalseIfTrue(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.Value(argAt(vm, args, 1)), nil
}

// BooleanSkip is a Boolean method.
//
// It answers nil without evaluating its argument, for ifFalse: on true and
// ifTrue: on false.
func BooleanSkip(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.Nil, nil
}

// FalseIfFalse is a False method.
//
// ifFalse:, ifFalse:ifTrue:, and or: evaluate their first argument.
func FalseIfFalse(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.Value(argAt(vm, args, 0)), nil
}

// FalseIfTrueIfFalse is a False method.
//
// ifTrue:ifFalse: evaluates its second argument.
func FalseIfTrueIfFalse(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.Value(argAt(vm, args, 1)), nil
}
