package internal

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// normalize puts identifiers and class names in NFC so that names typed with
// different combining sequences resolve the same way.
func normalize(s string) string {
	return norm.NFC.String(s)
}

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// initString sets up String and Symbol.
func (vm *VM) initString() {
	s := vm.mustDefine("String", []string{"Object"})
	s.Add(
		NewMethod("size", StringSize),
		NewMethod(",", StringConcat),
		NewMethod("at:", StringAt),
		NewMethod("<", StringLess),
		NewMethod(">", StringGreater),
		NewMethod("isEmpty", StringIsEmpty),
		NewMethod("includesSubstring:", StringIncludesSubstring),
		NewMethod("asUppercase", StringAsUppercase),
		NewMethod("asLowercase", StringAsLowercase),
		NewMethod("asSymbol", StringAsSymbol),
		NewMethod("asString", StringAsString),
		NewMethod("reversed", StringReversed),
		NewMethod("format:", StringFormat),
	)
	y := vm.mustDefine("Symbol", []string{"String"})
	y.Add(
		NewMethod("numArgs", SymbolNumArgs),
		NewMethod("value:", SymbolValue),
	)
	vm.kernel.str = s.id
	vm.kernel.symbol = y.id
}

// StringSize is a String method.
//
// size returns the number of characters in the string.
func StringSize(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewNumber(float64(utf8.RuneCountInString(self.Value.(string)))), nil
}

// StringConcat is a String method.
//
// , concatenates the display form of its argument.
func StringConcat(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewString(self.Value.(string) + vm.AsString(argAt(vm, args, 0))), nil
}

// StringAt is a String method.
//
// at: returns the character at a 1-based index as a one-character string.
func StringAt(vm *VM, self *Object, args ...*Object) (*Object, error) {
	n, err := vm.NumberArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	r := []rune(self.Value.(string))
	k := int(n)
	if k < 1 || k > len(r) {
		return nil, fmt.Errorf("index %d out of bounds for size %d", k, len(r))
	}
	return vm.NewString(string(r[k-1])), nil
}

// StringLess is a String method.
func StringLess(vm *VM, self *Object, args ...*Object) (*Object, error) {
	y, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	return vm.NewBool(self.Value.(string) < y), nil
}

// StringGreater is a String method.
func StringGreater(vm *VM, self *Object, args ...*Object) (*Object, error) {
	y, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	return vm.NewBool(self.Value.(string) > y), nil
}

// StringIsEmpty is a String method.
func StringIsEmpty(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewBool(self.Value.(string) == ""), nil
}

// StringIncludesSubstring is a String method.
func StringIncludesSubstring(vm *VM, self *Object, args ...*Object) (*Object, error) {
	y, err := vm.StringArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	return vm.NewBool(strings.Contains(self.Value.(string), y)), nil
}

// StringAsUppercase is a String method.
func StringAsUppercase(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewString(upper.String(self.Value.(string))), nil
}

// StringAsLowercase is a String method.
func StringAsLowercase(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewString(lower.String(self.Value.(string))), nil
}

// StringAsSymbol is a String method.
func StringAsSymbol(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.NewSymbol(self.Value.(string)), nil
}

// StringAsString is a String method.
func StringAsString(vm *VM, self *Object, args ...*Object) (*Object, error) {
	if self.class == vm.kernel.str {
		return self, nil
	}
	return vm.NewString(self.Value.(string)), nil
}

// StringReversed is a String method.
func StringReversed(vm *VM, self *Object, args ...*Object) (*Object, error) {
	r := []rune(self.Value.(string))
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return vm.NewString(string(r)), nil
}

// StringFormat is a String method.
//
// format: substitutes the display forms of the items of an array for the
// receiver's Go-style verbs.
func StringFormat(vm *VM, self *Object, args ...*Object) (*Object, error) {
	l, err := vm.ArrayArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	return vm.NewString(vm.Sprintf(self.Value.(string), l)), nil
}

// Sprintf formats objects with a Go format string. Numbers are passed as
// float64 unless the verb needs an integer, and everything else is passed as
// its display string.
func (vm *VM) Sprintf(format string, args []*Object) string {
	xs := make([]interface{}, len(args))
	for i, a := range args {
		switch v := a.Value.(type) {
		case float64:
			if v == float64(int64(v)) {
				xs[i] = numberArg(v)
			} else {
				xs[i] = v
			}
		default:
			xs[i] = vm.AsString(a)
		}
	}
	return fmt.Sprintf(format, xs...)
}

// numberArg formats as an integer for integer verbs and as the printString
// form otherwise.
type numberArg float64

func (n numberArg) Format(f fmt.State, verb rune) {
	switch verb {
	case 'd', 'x', 'X', 'o', 'b', 'c':
		fmt.Fprintf(f, fmt.FormatString(f, verb), int64(n))
	case 'v', 's':
		fmt.Fprint(f, FormatNumber(float64(n)))
	default:
		fmt.Fprintf(f, fmt.FormatString(f, verb), float64(n))
	}
}

// SymbolNumArgs is a Symbol method.
//
// numArgs returns the number of arguments a message with this selector takes.
func SymbolNumArgs(vm *VM, self *Object, args ...*Object) (*Object, error) {
	s := self.Value.(string)
	if n := strings.Count(s, ":"); n > 0 {
		return vm.NewNumber(float64(n)), nil
	}
	if s != "" && strings.ContainsRune(binaryChars, rune(s[0])) {
		return vm.NewNumber(1), nil
	}
	return vm.NewNumber(0), nil
}

// SymbolValue is a Symbol method.
//
// value: sends the receiver as a unary message to the argument.
func SymbolValue(vm *VM, self *Object, args ...*Object) (*Object, error) {
	return vm.Send(argAt(vm, args, 0), self.Value.(string)), nil
}
