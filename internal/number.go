package internal

import (
	"errors"
	"math"
)

// initNumber sets up Number.
func (vm *VM) initNumber() {
	mc := vm.mustDefine("Number", []string{"Object"})
	mc.Add(
		NewMethod("+", NumberAdd),
		NewMethod("-", NumberSub),
		NewMethod("*", NumberMul),
		NewMethod("/", NumberDiv),
		NewMethod("//", NumberFloorDiv),
		NewMethod("\\\\", NumberMod),
		NewMethod("<", NumberLess),
		NewMethod(">", NumberGreater),
		NewMethod("<=", NumberLessOrEqual),
		NewMethod(">=", NumberGreaterOrEqual),
		NewMethod("abs", NumberAbs),
		NewMethod("negated", NumberNegated),
		NewMethod("sqrt", NumberSqrt),
		NewMethod("squared", NumberSquared),
		NewMethod("floor", NumberFloor),
		NewMethod("ceiling", NumberCeiling),
		NewMethod("rounded", NumberRounded),
		NewMethod("max:", NumberMax),
		NewMethod("min:", NumberMin),
		NewMethod("between:and:", NumberBetween),
		NewMethod("isZero", NumberIsZero),
		NewMethod("even", NumberEven),
		NewMethod("odd", NumberOdd),
		NewMethod("to:", NumberTo),
		NewMethod("to:do:", NumberToDo),
		NewMethod("timesRepeat:", NumberTimesRepeat),
	)
	vm.kernel.number = mc.id

	for i := -1; i <= 255; i++ {
		vm.NewNumber(float64(i))
	}
}

func numberOp(vm *VM, self *Object, args []*Object, op func(x, y float64) float64) (*Object, error) {
	y, err := vm.NumberArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	return vm.NewNumber(op(self.Value.(float64), y)), nil
}

func numberCmp(vm *VM, self *Object, args []*Object, cmp func(x, y float64) bool) (*Object, error) {
	y, err := vm.NumberArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	return vm.NewBool(cmp(self.Value.(float64), y)), nil
}

var errZeroDivide = errors.New("division by zero")

// NumberAdd is a Number method.
//
// + is an operator which sums two numbers.
func NumberAdd(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return numberOp(vm, self, args, func(x, y float64) float64 { return x + y })
}

// NumberSub is a Number method.
//
// - is an operator which subtracts the argument from the receiver.
func NumberSub(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return numberOp(vm, self, args, func(x, y float64) float64 { return x - y })
}

// NumberMul is a Number method.
//
// * is an operator which multiplies its operands.
func NumberMul(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return numberOp(vm, self, args, func(x, y float64) float64 { return x * y })
}

// NumberDiv is a Number method.
//
// / is an operator which divides the receiver by the argument. Division by
// zero is a fault.
func NumberDiv(vm *VM, self *Object, args ...*Object) (*Object, error) {
	y, err := vm.NumberArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, errZeroDivide
	}
	return vm.NewNumber(self.Value.(float64) / y), nil
}

// NumberFloorDiv is a Number method.
//
// // is integer division rounding toward negative infinity.
func NumberFloorDiv(vm *VM, self *Object, args ...*Object) (*Object, error) {
	y, err := vm.NumberArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, errZeroDivide
	}
	return vm.NewNumber(math.Floor(self.Value.(float64) / y)), nil
}

// NumberMod is a Number method.
//
// \\ is the modulus with the sign of the argument.
func NumberMod(vm *VM, self *Object, args ...*Object) (*Object, error) {
	y, err := vm.NumberArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, errZeroDivide
	}
	x := self.Value.(float64)
	return vm.NewNumber(x - y*math.Floor(x/y)), nil
}

// NumberLess is a Number method.
func NumberLess(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return numberCmp(vm, self, args, func(x, y float64) bool { return x < y })
}

// NumberGreater is a Number method.
func NumberGreater(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return numberCmp(vm, self, args, func(x, y float64) bool { return x > y })
}

// NumberLessOrEqual is a Number method.
func NumberLessOrEqual(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return numberCmp(vm, self, args, func(x, y float64) bool { return x <= y })
}

// NumberGreaterOrEqual is a Number method.
func NumberGreaterOrEqual(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return numberCmp(vm, self, args, func(x, y float64) bool { return x >= y })
}

// NumberAbs is a Number method.
func NumberAbs(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewNumber(math.Abs(self.Value.(float64))), nil
}

// NumberNegated is a Number method.
func NumberNegated(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewNumber(-self.Value.(float64)), nil
}

// NumberSqrt is a Number method.
//
// sqrt of a negative number is a fault.
func NumberSqrt(vm *VM, self *Object, args ...*Object) (*Object, error) {
	x := self.Value.(float64)
	if x < 0 {
		return nil, errors.New("square root of a negative number")
	}
	return vm.NewNumber(math.Sqrt(x)), nil
}

// NumberSquared is a Number method.
func NumberSquared(vm *VM, self *Object, args ...*Object) (*Object, error) {
	x := self.Value.(float64)
	return vm.NewNumber(x * x), nil
}

// NumberFloor is a Number method.
func NumberFloor(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewNumber(math.Floor(self.Value.(float64))), nil
}

// NumberCeiling is a Number method.
func NumberCeiling(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewNumber(math.Ceil(self.Value.(float64))), nil
}

// NumberRounded is a Number method.
func NumberRounded(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewNumber(math.Round(self.Value.(float64))), nil
}

// NumberMax is a Number method.
func NumberMax(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return numberOp(vm, self, args, math.Max)
}

// NumberMin is a Number method.
func NumberMin(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return numberOp(vm, self, args, math.Min)
}

// NumberBetween is a Number method.
//
// between:and: is true if the receiver is within the inclusive range.
func NumberBetween(vm *VM, self *Object, args ...*Object) (*Object, error) {
	lo, err := vm.NumberArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	hi, err := vm.NumberArgAt(args, 1)
	if err != nil {
		return nil, err
	}
	x := self.Value.(float64)
	return vm.NewBool(lo <= x && x <= hi), nil
}

// NumberIsZero is a Number method.
func NumberIsZero(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(self.Value.(float64) == 0), nil
}

// NumberEven is a Number method.
func NumberEven(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(math.Mod(self.Value.(float64), 2) == 0), nil
}

// NumberOdd is a Number method.
func NumberOdd(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(math.Abs(math.Mod(self.Value.(float64), 2)) == 1), nil
}

// NumberTo is a Number method.
//
// to: creates an array of the numbers from the receiver to the argument,
// inclusive.
func NumberTo(vm *VM, self *Object, args ...*Object) (*Object, error) {
	hi, err := vm.NumberArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	var r []*Object
	for x := self.Value.(float64); x <= hi; x++ {
		r = append(r, vm.NewNumber(x))
	}
	return vm.NewArray(r), nil
}

// NumberToDo is a Number method.
//
// to:do: evaluates a block with each number from the receiver to the first
// argument, inclusive. It answers the receiver.
func NumberToDo(vm *VM, self *Object, args ...*Object) (*Object, error) {
	hi, err := vm.NumberArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	blk := argAt(vm, args, 1)
	for x := self.Value.(float64); x <= hi; x++ {
		vm.Value(blk, vm.NewNumber(x))
	}
	return self, nil
}

// NumberTimesRepeat is a Number method.
//
// timesRepeat: evaluates a block the receiver number of times.
func NumberTimesRepeat(vm *VM, self *Object, args ...*Object) (*Object, error) {
	blk := argAt(vm, args, 0)
	for n := self.Value.(float64); n >= 1; n-- {
		vm.Value(blk)
	}
	return self, nil
}
