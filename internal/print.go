package internal

import (
	"math"
	"strconv"
	"strings"
)

// Equal compares objects by value. Numbers, strings, and symbols are equal if
// their values are; arrays are equal if their items are pairwise equal.
// Anything else is equal only to itself.
func (vm *VM) Equal(a, b *Object) bool {
	if vm.Identical(a, b) {
		return true
	}
	switch x := a.Value.(type) {
	case float64:
		y, ok := b.Value.(float64)
		return ok && x == y
	case string:
		y, ok := b.Value.(string)
		return ok && x == y && (a.class == vm.kernel.symbol) == (b.class == vm.kernel.symbol)
	case []*Object:
		y, ok := b.Value.([]*Object)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !vm.Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// FormatNumber formats a number the way printString does. Integral values
// print without a fractional part.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// AsString returns the display form of an object. Strings and symbols display
// as their contents.
func (vm *VM) AsString(o *Object) string {
	if s, ok := o.Value.(string); ok {
		return s
	}
	return vm.PrintString(o)
}

// PrintString returns the printed form of an object, which reads back as a
// literal where the object has one.
func (vm *VM) PrintString(o *Object) string {
	var b strings.Builder
	vm.printTo(&b, o)
	return b.String()
}

func (vm *VM) printTo(b *strings.Builder, o *Object) {
	switch o {
	case vm.Nil:
		b.WriteString("nil")
		return
	case vm.True:
		b.WriteString("true")
		return
	case vm.False:
		b.WriteString("false")
		return
	}
	if mc, ok := vm.DescribedClass(o); ok {
		b.WriteString(mc.Name)
		return
	}
	switch x := o.Value.(type) {
	case float64:
		b.WriteString(FormatNumber(x))
	case string:
		if o.class == vm.kernel.symbol {
			b.WriteByte('#')
			b.WriteString(x)
			return
		}
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(x, "'", "''"))
		b.WriteByte('\'')
	case []*Object:
		b.WriteString("#(")
		for i, e := range x {
			if i > 0 {
				b.WriteByte(' ')
			}
			vm.printTo(b, e)
		}
		b.WriteByte(')')
	default:
		name := vm.classes[o.class].Name
		if strings.ContainsRune("AEIOU", rune(name[0])) {
			b.WriteString("an ")
		} else {
			b.WriteString("a ")
		}
		b.WriteString(name)
	}
}
