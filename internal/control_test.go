package internal_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/steplang/internal"
	"github.com/zephyrtronium/steplang/testutils"
)

// explosive adds methods to Object that fail in native code.
func explosive(vm *internal.VM) {
	mc, _ := vm.ResolveMetaclass("Object")
	mc.Add(
		internal.NewMethod("explode", func(vm *internal.VM, self *internal.Object, args ...*internal.Object) (*internal.Object, error) {
			panic("boom")
		}),
		internal.NewMethod("fail", func(vm *internal.VM, self *internal.Object, args ...*internal.Object) (*internal.Object, error) {
			return nil, errors.New("failed on purpose")
		}),
		internal.NewMethod("quiet", func(vm *internal.VM, self *internal.Object, args ...*internal.Object) (*internal.Object, error) {
			return nil, nil
		}),
	)
}

func policies(native, depth internal.Policy, maxDepth int) *internal.Config {
	cfg := internal.DefaultConfig()
	cfg.Faults.Native = native
	cfg.Faults.Depth = depth
	cfg.MaxDepth = maxDepth
	return &cfg
}

func passTrace(vm *internal.VM, result *internal.Object, err error) bool {
	var e *internal.Error
	return errors.As(err, &e) && e.Kind == internal.NativeFault && strings.Contains(e.Trace, "goroutine") && e.Err != nil && e.Err.Error() == "boom"
}

// TestFaults tests fault policies.
func TestFaults(t *testing.T) {
	const recurse = `f := nil. f := [:n | f value: n + 1]. f value: 0. 7`
	cases := map[string]map[string]testutils.SourceTestCase{
		"misses": {
			"message": {Source: `3 frob. 4`, Config: policies(internal.Propagate, internal.Propagate, 100), Pass: testutils.PassEqual(4)},
			"name":    {Source: `x := nothing. x isNil`, Config: policies(internal.Propagate, internal.Propagate, 100), Pass: testutils.PassEqual(true)},
		},
		"native": {
			"panicAbsorbed":   {Source: `x := 3 explode. {x. 4}`, Setup: explosive, Pass: testutils.PassEqual([]interface{}{nil, 4})},
			"panicPropagated": {Source: `3 explode. 4`, Setup: explosive, Config: policies(internal.Propagate, internal.Propagate, 100), Pass: passTrace},
			"errorAbsorbed":   {Source: `3 fail`, Setup: explosive, Pass: testutils.PassEqual(nil)},
			"errorPropagated": {Source: `3 fail. 4`, Setup: explosive, Config: policies(internal.Propagate, internal.Absorb, 100), Pass: testutils.PassFailure(internal.NativeFault)},
			"nilResult":       {Source: `3 quiet`, Setup: explosive, Pass: testutils.PassEqual(nil)},
			"inBlock":         {Source: `[:x | x explode] value: 1. 2`, Setup: explosive, Config: policies(internal.Propagate, internal.Propagate, 100), Pass: testutils.PassFailure(internal.NativeFault)},
			"inMethod":        {Source: `Object subclass: #A. A define: #go as: [self explode]. A new go. 2`, Setup: explosive, Config: policies(internal.Propagate, internal.Propagate, 100), Pass: testutils.PassFailure(internal.NativeFault)},
			"insideIteration": {Source: `#(1 2) collect: [:x | x explode]`, Setup: explosive, Pass: testutils.PassEqual([]interface{}{nil, nil})},
		},
		"depth": {
			"propagated":  {Source: recurse, Config: policies(internal.Absorb, internal.Propagate, 50), Pass: testutils.PassFailure(internal.DepthExceeded)},
			"absorbed":    {Source: recurse, Config: policies(internal.Propagate, internal.Absorb, 50), Pass: testutils.PassEqual(7)},
			"withinLimit": {Source: `f := nil. f := [:n | n < 40 ifTrue: [f value: n + 1] ifFalse: [n]]. f value: 0`, Config: policies(internal.Absorb, internal.Propagate, 100), Pass: testutils.PassEqual(40)},
			"methods":     {Source: `Object subclass: #R. R define: #down as: [self down]. R new down`, Config: policies(internal.Absorb, internal.Propagate, 50), Pass: testutils.PassFailure(internal.DepthExceeded)},
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			for name, s := range c {
				t.Run(name, s.TestFunc("TestFaults"))
			}
		})
	}
}

// TestDepthRestored tests that a propagated fault leaves the VM usable at its
// full depth.
func TestDepthRestored(t *testing.T) {
	for _, compile := range []bool{false, true} {
		vm := testutils.ConfigVM(t, *policies(internal.Absorb, internal.Propagate, 50))
		s := vm.NewScope(nil)
		_, err := vm.DoString(s, "deep", `f := nil. f := [:n | f value: n + 1]. f value: 0`, compile)
		require.True(t, internal.IsKind(err, internal.DepthExceeded), "compiled=%v: got %v", compile, err)
		r, err := vm.DoString(s, "shallow", `g := nil. g := [:n | n = 0 ifTrue: [0] ifFalse: [g value: n - 1]]. g value: 20`, compile)
		require.NoError(t, err, "compiled=%v", compile)
		assert.True(t, vm.Equal(vm.NewNumber(0), r))
	}
}

// TestPrimitives tests print primitives and verbatim lowered text.
func TestPrimitives(t *testing.T) {
	cases := map[string]testutils.SourceTestCase{
		"print":       {Source: `<print: 'a' 1 #b>`, Pass: testutils.PassEqual(internal.Symbol("b")), Output: "a 1 b\n"},
		"printEmpty":  {Source: `<print:>. 3`, Pass: testutils.PassEqual(3), Output: "\n"},
		"printExprs":  {Source: `x := 2. y := x * 3. <print: x y #(1 $a) (x + y)>`, Pass: testutils.PassSuccess(), Output: "2 6 #(1 'a') 8\n"},
		"printf":      {Source: `<printf: '%d-%s|' 3 'x'>`, Pass: testutils.PassEqual("3-x|"), Output: "3-x|"},
		"printfFloat": {Source: `<printf: '%v %.1f' 2.5 2>`, Pass: testutils.PassSuccess(), Output: "2.5 2.0"},
		"sequence":    {Source: `#(1 2 3) do: [:i | <printf: '%d,' i>]`, Pass: testutils.PassSuccess(), Output: "1,2,3,"},
		"verbatim":    {Source: `<'(send (num 3) "+" (num 4))'>`, Pass: testutils.PassEqual(7)},
		"verbatimRef": {Source: `a := 5. <'(ref "a")'> + 1`, Pass: testutils.PassEqual(6)},
		"method":      {Source: `Object subclass: #P. P define: #show: as: [:v | <print: 'showing' v>]. P new show: 9`, Pass: testutils.PassEqual(9), Output: "showing 9\n"},
	}
	for name, s := range cases {
		t.Run(name, s.TestFunc("TestPrimitives"))
	}
}

// TestPrimitiveFault tests that interpreted primitives which cannot be bound
// are faults.
func TestPrimitiveFault(t *testing.T) {
	vm := testutils.ConfigVM(t, *policies(internal.Propagate, internal.Propagate, 100))
	_, err := vm.DoString(nil, "prim", `<'(frob)'>`, false)
	assert.True(t, internal.IsKind(err, internal.GenerationFailure), "got %v", err)

	vm = testutils.VM(t)
	r, err := vm.DoString(nil, "prim", `x := <'(frob)'>. x isNil`, false)
	require.NoError(t, err)
	assert.Same(t, vm.True, r)
}
