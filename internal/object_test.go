package internal_test

import (
	"testing"

	"github.com/zephyrtronium/steplang/internal"
	"github.com/zephyrtronium/steplang/testutils"
)

// TestObjectHolders tests that Object declares the holders we expect.
func TestObjectHolders(t *testing.T) {
	vm := testutils.VM(t)
	mc, ok := vm.ResolveMetaclass("Object")
	if !ok {
		t.Fatal("no Object")
	}
	holders := []string{
		"==", "~~", "=", "~=",
		"isNil", "notNil", "ifNil:", "ifNotNil:", "ifNil:ifNotNil:", "ifNotNil:ifNil:",
		"yourself", "class", "respondsTo:", "isKindOf:",
		"perform:", "perform:with:", "perform:withArguments:",
		"printString", "displayString", "->",
	}
	testutils.CheckHolders(t, mc, holders)
}

// TestObjectMethods tests Object methods by executing steplang source.
func TestObjectMethods(t *testing.T) {
	cases := map[string]map[string]testutils.SourceTestCase{
		"identity": {
			"same":      {Source: `a := Object new. a == a`, Pass: testutils.PassEqual(true)},
			"different": {Source: `Object new == Object new`, Pass: testutils.PassEqual(false)},
			"numbers":   {Source: `(1000 + 1) == 1001`, Pass: testutils.PassEqual(true)},
			"not":       {Source: `Object new ~~ Object new`, Pass: testutils.PassEqual(true)},
			"symbols":   {Source: `#a == 'a' asSymbol`, Pass: testutils.PassEqual(true)},
		},
		"equality": {
			"arrays":   {Source: `#(1 #(2)) = {1. {2}}`, Pass: testutils.PassEqual(true)},
			"strings":  {Source: `'ab' = ('a' , 'b')`, Pass: testutils.PassEqual(true)},
			"symbol":   {Source: `#ab = 'ab'`, Pass: testutils.PassEqual(false)},
			"notEqual": {Source: `3 ~= 3`, Pass: testutils.PassEqual(false)},
		},
		"nil": {
			"isNil":       {Source: `nil isNil`, Pass: testutils.PassEqual(true)},
			"notNil":      {Source: `3 notNil`, Pass: testutils.PassEqual(true)},
			"ifNil":       {Source: `nil ifNil: [4]`, Pass: testutils.PassEqual(4)},
			"ifNilSelf":   {Source: `3 ifNil: [4]`, Pass: testutils.PassEqual(3)},
			"ifNotNil":    {Source: `3 ifNotNil: [:x | x + 1]`, Pass: testutils.PassEqual(4)},
			"ifNotNilNil": {Source: `nil ifNotNil: [:x | 1]`, Pass: testutils.PassEqual(nil)},
			"both":        {Source: `{nil ifNil: [1] ifNotNil: [:x | 2]. 5 ifNil: [1] ifNotNil: [:x | x]}`, Pass: testutils.PassEqual([]interface{}{1, 5})},
			"bothFlipped": {Source: `{nil ifNotNil: [:x | 2] ifNil: [1]. 5 ifNotNil: [:x | x * 2] ifNil: [1]}`, Pass: testutils.PassEqual([]interface{}{1, 10})},
		},
		"reflection": {
			"yourself":      {Source: `3 yourself`, Pass: testutils.PassEqual(3)},
			"class":         {Source: `3 class`, Pass: testutils.PassPrint("Number")},
			"className":     {Source: `'x' class name`, Pass: testutils.PassEqual("String")},
			"respondsTo":    {Source: `3 respondsTo: #+`, Pass: testutils.PassEqual(true)},
			"respondsNot":   {Source: `3 respondsTo: #frob`, Pass: testutils.PassEqual(false)},
			"isKindOf":      {Source: `#a isKindOf: String`, Pass: testutils.PassEqual(true)},
			"isKindOfNot":   {Source: `'a' isKindOf: Symbol`, Pass: testutils.PassEqual(false)},
			"perform":       {Source: `3 perform: #negated`, Pass: testutils.PassEqual(-3)},
			"performWith":   {Source: `3 perform: #+ with: 4`, Pass: testutils.PassEqual(7)},
			"performArgs":   {Source: `#(5 6) perform: #at: withArguments: #(2)`, Pass: testutils.PassEqual(6)},
			"pair":          {Source: `1 -> 2`, Pass: testutils.PassEqual([]interface{}{1, 2})},
			"printString":   {Source: `#(1 'a' #b $c nil) printString`, Pass: testutils.PassEqual("#(1 'a' #b 'c' nil)")},
			"displayString": {Source: `#sym displayString`, Pass: testutils.PassEqual("sym")},
			"instance":      {Source: `Object new printString`, Pass: testutils.PassEqual("an Object")},
		},
		"misses": {
			"unary":     {Source: `3 frobnicate`, Pass: testutils.PassEqual(nil)},
			"keyword":   {Source: `3 frob: 1 nicate: 2`, Pass: testutils.PassEqual(nil)},
			"continues": {Source: `x := 3 frobnicate. x isNil`, Pass: testutils.PassEqual(true)},
			"name":      {Source: `undefinedName`, Pass: testutils.PassEqual(nil)},
			"call":      {Source: `3(4)`, Pass: testutils.PassEqual(nil)},
			"callSelf":  {Source: `3()`, Pass: testutils.PassEqual(3)},
			"onNil":     {Source: `nil foo bar baz`, Pass: testutils.PassSuccess()},
		},
		"cascade": {
			"last":     {Source: `#(1 2 3) size; first; last`, Pass: testutils.PassEqual(3)},
			"receiver": {Source: `{0. 0} at: 1 put: 5; at: 2 put: 6; yourself`, Pass: testutils.PassEqual([]interface{}{5, 6})},
			"inner":    {Source: `(3 + 4) negated; + 1`, Pass: testutils.PassEqual(8)},
		},
		"pseudo": {
			"selfTop":    {Source: `self`, Pass: testutils.PassEqual(nil)},
			"assignTrue": {Source: `true := false. true`, Pass: testutils.PassEqual(true)},
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			for name, s := range c {
				t.Run(name, s.TestFunc("TestObjectMethods"))
			}
		})
	}
}

// TestObjectStorage tests per-instance storage through the Go API.
func TestObjectStorage(t *testing.T) {
	vm := testutils.VM(t)
	if _, err := vm.Define("Cell", []string{"Object"}, internal.NewAttribute("value", "Object", internal.InstanceScope)); err != nil {
		t.Fatal(err)
	}
	a, err := vm.NewInstance("Cell")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := vm.NewInstance("Cell")
	if v, err := vm.Get(a, "value"); err != nil || v != vm.Nil {
		t.Errorf("unset attribute is %v, %v; want nil", v, err)
	}
	if !vm.Set(a, "value", vm.NewNumber(1)) {
		t.Fatal("could not set value")
	}
	if v, _ := vm.Get(a, "value"); !vm.Equal(v, vm.NewNumber(1)) {
		t.Errorf("a value is %s", vm.PrintString(v))
	}
	if v, _ := vm.Get(b, "value"); v != vm.Nil {
		t.Errorf("b value is %s; instances share storage", vm.PrintString(v))
	}
	if _, err := vm.Get(a, "nothing"); !internal.IsKind(err, internal.ResolutionMiss) {
		t.Errorf("missing attribute gave %v", err)
	}
	if vm.Set(vm.NewNumber(3), "value", vm.Nil) {
		t.Error("set succeeded on a frozen number")
	}
	if vm.Set(a, "printString", vm.Nil) {
		t.Error("set succeeded over a method")
	}
	if a.Frozen() || !vm.NewNumber(3).Frozen() {
		t.Error("wrong frozenness")
	}
	if a.UniqueID() == b.UniqueID() {
		t.Error("instances share an ID")
	}
}
