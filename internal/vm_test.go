package internal_test

import (
	"reflect"
	"testing"

	"github.com/zephyrtronium/steplang/internal"
	"github.com/zephyrtronium/steplang/testutils"
)

// TestNewVMAttrs tests that a new VM has the attributes we expect.
func TestNewVMAttrs(t *testing.T) {
	vm := testutils.VM(t)
	attrs := []string{"Nil", "True", "False", "Log", "Out"}
	v := reflect.ValueOf(vm).Elem()
	for _, attr := range attrs {
		t.Run("Attr"+attr, func(t *testing.T) {
			e := v.FieldByName(attr)
			if !e.IsValid() {
				t.Fatal("no VM attribute", attr)
			}
			if e.IsNil() {
				t.Fatal("VM attribute", attr, "is nil")
			}
		})
	}
	if vm.Cache != nil {
		t.Error("new VM has a source cache")
	}
}

// TestNewVMDefaults tests that missing configuration gets defaults.
func TestNewVMDefaults(t *testing.T) {
	vm := testutils.ConfigVM(t, internal.Config{})
	def := internal.DefaultConfig()
	if vm.Config.MaxDepth != def.MaxDepth {
		t.Errorf("wrong max depth: want %d, got %d", def.MaxDepth, vm.Config.MaxDepth)
	}
	if vm.Config.Faults.Native != internal.Absorb {
		t.Errorf("wrong native policy %q", vm.Config.Faults.Native)
	}
	if vm.Config.Faults.Depth != internal.Propagate {
		t.Errorf("wrong depth policy %q", vm.Config.Faults.Depth)
	}
}

// TestKernelClasses tests that a new VM defines the classes we expect with the
// parents we expect.
func TestKernelClasses(t *testing.T) {
	vm := testutils.VM(t)
	classes := map[string][]string{
		"Object":          nil,
		"Class":           {"Object"},
		"UndefinedObject": {"Object"},
		"Boolean":         {"Object"},
		"True":            {"Boolean"},
		"False":           {"Boolean"},
		"Number":          {"Object"},
		"String":          {"Object"},
		"Symbol":          {"String"},
		"Array":           {"Object"},
		"Block":           {"Object"},
	}
	for name, parents := range classes {
		t.Run(name, func(t *testing.T) {
			mc, ok := vm.ResolveMetaclass(name)
			if !ok {
				t.Fatal("no class", name)
			}
			if mc.Name != name {
				t.Errorf("wrong name %q", mc.Name)
			}
			if len(mc.Parents) != len(parents) || (len(parents) > 0 && !reflect.DeepEqual(mc.Parents, parents)) {
				t.Errorf("wrong parents: want %v, got %v", parents, mc.Parents)
			}
			if vm.Class(mc.ID()) != mc {
				t.Error("class handle does not round trip")
			}
		})
	}
}

// TestSingletons tests the classes of the singleton objects.
func TestSingletons(t *testing.T) {
	vm := testutils.VM(t)
	cases := map[string]struct {
		o     *internal.Object
		class string
	}{
		"nil":   {vm.Nil, "UndefinedObject"},
		"true":  {vm.True, "True"},
		"false": {vm.False, "False"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := vm.ClassOf(c.o).Name; got != c.class {
				t.Errorf("wrong class: want %s, got %s", c.class, got)
			}
			if !c.o.Frozen() {
				t.Error("singleton is not frozen")
			}
			if g, ok := vm.Global(name); !ok || g != c.o {
				t.Errorf("global %s is %v", name, g)
			}
		})
	}
}

// TestGlobals tests context-level bindings.
func TestGlobals(t *testing.T) {
	vm := testutils.VM(t)
	if _, ok := vm.Global("nothing"); ok {
		t.Error("unbound global resolved")
	}
	g, ok := vm.Global("Array")
	if !ok {
		t.Fatal("class name did not resolve")
	}
	if mc, ok := vm.DescribedClass(g); !ok || mc.Name != "Array" {
		t.Errorf("Array resolved to %s", vm.PrintString(g))
	}
	// Decomposed é should resolve the same as precomposed.
	vm.SetGlobal("cafe\u0301", vm.NewNumber(1))
	if v, ok := vm.Global("caf\u00e9"); !ok || !vm.Equal(v, vm.NewNumber(1)) {
		t.Error("global name was not normalized")
	}
}

// TestLiteral tests conversion of precompiled literal values.
func TestLiteral(t *testing.T) {
	vm := testutils.VM(t)
	cases := map[string]struct {
		v     interface{}
		print string
	}{
		"nil":    {nil, "nil"},
		"true":   {true, "true"},
		"int":    {3, "3"},
		"float":  {2.5, "2.5"},
		"string": {"it's", "'it''s'"},
		"symbol": {internal.Symbol("at:put:"), "#at:put:"},
		"array":  {[]interface{}{1, []interface{}{"a"}, internal.Symbol("b")}, "#(1 #('a') #b)"},
		"object": {vm.False, "false"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			if got := vm.PrintString(vm.Literal(c.v)); got != c.print {
				t.Errorf("wrong literal: want %s, got %s", c.print, got)
			}
		})
	}
	a := []interface{}{1}
	if vm.Literal(a) == vm.Literal(a) {
		t.Error("array literals are shared")
	}
	if vm.NewSymbol("x") != vm.Literal(internal.Symbol("x")) {
		t.Error("symbols are not interned")
	}
}
