package internal_test

import (
	"testing"

	"github.com/zephyrtronium/steplang/internal"
	"github.com/zephyrtronium/steplang/testutils"
)

// TestBlockMethods tests Block methods by executing steplang source.
func TestBlockMethods(t *testing.T) {
	cases := map[string]map[string]testutils.SourceTestCase{
		"value": {
			"none":  {Source: `[3] value`, Pass: testutils.PassEqual(3)},
			"one":   {Source: `[:x | x * 2] value: 4`, Pass: testutils.PassEqual(8)},
			"two":   {Source: `[:x :y | x - y] value: 5 value: 3`, Pass: testutils.PassEqual(2)},
			"four":  {Source: `[:a :b :c :d | a + b + c + d] value: 1 value: 2 value: 3 value: 4`, Pass: testutils.PassEqual(10)},
			"empty": {Source: `[] value`, Pass: testutils.PassEqual(nil)},
		},
		"arity": {
			"missing":   {Source: `[:x :y | y] value: 1`, Pass: testutils.PassEqual(nil)},
			"missingOk": {Source: `[:x :y | x] value: 1`, Pass: testutils.PassEqual(1)},
			"extra":     {Source: `[:x | x] value: 1 value: 2`, Pass: testutils.PassEqual(1)},
			"noParams":  {Source: `[7] value: 1 value: 2`, Pass: testutils.PassEqual(7)},
			"callExtra": {Source: `[:x | x](1, 2, 3)`, Pass: testutils.PassEqual(1)},
			"callNone":  {Source: `[:x | x]()`, Pass: testutils.PassEqual(nil)},
		},
		"valueWithArguments:": {
			"exact": {Source: `[:x :y | x , y] valueWithArguments: #('a' 'b')`, Pass: testutils.PassEqual("ab")},
			"short": {Source: `[:x :y | y isNil] valueWithArguments: #(1)`, Pass: testutils.PassEqual(true)},
		},
		"numArgs": {
			"zero": {Source: `[] numArgs`, Pass: testutils.PassEqual(0)},
			"two":  {Source: `[:a :b | a] numArgs`, Pass: testutils.PassEqual(2)},
		},
		"whileTrue:": {
			"count": {Source: `n := 0. [n < 5] whileTrue: [n := n + 1]. n`, Pass: testutils.PassEqual(5)},
			"never": {Source: `n := 0. [false] whileTrue: [n := 1]. n`, Pass: testutils.PassEqual(0)},
			"nil":   {Source: `[false] whileTrue: [1]`, Pass: testutils.PassEqual(nil)},
		},
		"whileFalse:": {
			"count": {Source: `n := 10. [n <= 3] whileFalse: [n := n - 2]. n`, Pass: testutils.PassEqual(2)},
		},
		"printString": {
			"params": {Source: `[:x :y | x] printString`, Pass: testutils.PassEqual("a Block TestBlockMethods.b1_1 (:x :y)")},
			"none":   {Source: `b := [1]. b printString`, Pass: testutils.PassEqual("a Block TestBlockMethods.b1_6")},
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			for name, s := range c {
				t.Run(name, s.TestFunc("TestBlockMethods"))
			}
		})
	}
}

// TestBlockCapture tests that blocks close over the scope that created them.
func TestBlockCapture(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"adder": {
			Source: `adder := [:x | [:y | x + y]]. (adder value: 3) value: 5`,
			Pass:   testutils.PassEqual(8),
		},
		"adderCall": {
			Source: `adder := [:x | [:y | x + y]]. adder(3)(5)`,
			Pass:   testutils.PassEqual(8),
		},
		"live": {
			Source: `x := 8. b := [x]. r := b value. x := 13. {r. b value}`,
			Pass:   testutils.PassEqual([]interface{}{8, 13}),
		},
		"write": {
			Source: `x := 1. [x := x + 1] value. [x := x * 10] value. x`,
			Pass:   testutils.PassEqual(20),
		},
		"counter": {
			Source: `make := [| n | n := 0. [n := n + 1]]. c := make value. d := make value. c value. c value. {c value. d value}`,
			Pass:   testutils.PassEqual([]interface{}{3, 1}),
		},
		"paramShadows": {
			Source: `x := 1. [:x | x := 5] value: 2. x`,
			Pass:   testutils.PassEqual(1),
		},
		"localStaysLocal": {
			Source: `[y := 4] value. y`,
			Pass:   testutils.PassEqual(nil),
		},
		"recursion": {
			Source: `fact := nil. fact := [:n | n <= 1 ifTrue: [1] ifFalse: [n * (fact value: n - 1)]]. fact value: 10`,
			Pass:   testutils.PassEqual(3628800),
		},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc(name))
	}
}

// BenchmarkBlockValue benchmarks calling a block in each execution mode.
func BenchmarkBlockValue(b *testing.B) {
	for _, compile := range []bool{false, true} {
		name := "interpreted"
		if compile {
			name = "compiled"
		}
		b.Run(name, func(b *testing.B) {
			vm := testutils.VM(b)
			blk, err := vm.DoString(nil, "bench", `[:x | x + 1]`, compile)
			if err != nil {
				b.Fatal(err)
			}
			arg := vm.NewNumber(1)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				BenchDummy = vm.Value(blk, arg)
			}
		})
	}
}

// BenchDummy is a sink for benchmark results.
var BenchDummy *internal.Object
