// Package testutils provides utilities for testing steplang code in Go.
package testutils

import (
	"bytes"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/zephyrtronium/steplang/internal"
)

// logWriter sends log lines to a test's log.
type logWriter struct {
	t testing.TB
}

func (w logWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// VM returns a new VM with the default configuration whose log goes to the
// test's log.
func VM(t testing.TB) *internal.VM {
	return ConfigVM(t, internal.DefaultConfig())
}

// ConfigVM returns a new VM with the given configuration whose log goes to
// the test's log.
func ConfigVM(t testing.TB, cfg internal.Config) *internal.VM {
	log := slog.New(slog.NewTextHandler(logWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	vm := internal.NewVMWithLogger(cfg, log)
	vm.Out = new(bytes.Buffer)
	return vm
}

// Output returns what a VM made by VM or ConfigVM has printed.
func Output(vm *internal.VM) string {
	if b, ok := vm.Out.(*bytes.Buffer); ok {
		return b.String()
	}
	return ""
}

// A SourceTestCase is a test case containing steplang source code and a
// predicate to check the result. Each case runs once interpreted and once
// compiled, each time in a fresh VM, and must pass both ways.
type SourceTestCase struct {
	// Source is the steplang source code to execute.
	Source string
	// Setup, if not nil, prepares the VM before Source runs.
	Setup func(vm *internal.VM)
	// Config, if not nil, configures the VM.
	Config *internal.Config
	// Pass is a predicate taking the result of executing Source. If Pass
	// returns false, then the test fails.
	Pass func(vm *internal.VM, result *internal.Object, err error) bool
	// Output, if not empty, is what the source must print.
	Output string
}

// TestFunc returns a test function for the test case.
func (c SourceTestCase) TestFunc(name string) func(*testing.T) {
	return func(t *testing.T) {
		t.Run("interpreted", c.run(name, false))
		t.Run("compiled", c.run(name, true))
	}
}

func (c SourceTestCase) run(name string, compile bool) func(*testing.T) {
	return func(t *testing.T) {
		cfg := internal.DefaultConfig()
		if c.Config != nil {
			cfg = *c.Config
		}
		vm := ConfigVM(t, cfg)
		if c.Setup != nil {
			c.Setup(vm)
		}
		cl, err := vm.NewClosure(name).Interpret(c.Source)
		if err != nil {
			t.Fatalf("could not interpret %q: %v", c.Source, err)
		}
		if compile {
			if _, err := cl.Compile(); err != nil {
				t.Fatalf("could not compile %q: %v", c.Source, err)
			}
			if d := cl.Diagnostic(); d != nil {
				t.Fatalf("%q did not compile:\n%s", c.Source, d.Diagnostic())
			}
		}
		r, err := cl.Call(nil)
		if !c.Pass(vm, r, err) {
			if err != nil {
				t.Errorf("%q produced wrong result; got %s with error %v", c.Source, vm.PrintString(r), err)
			} else {
				t.Errorf("%q produced wrong result; got %s", c.Source, vm.PrintString(r))
			}
		}
		if c.Output != "" {
			if out := Output(vm); out != c.Output {
				t.Errorf("%q printed %q, want %q", c.Source, out, c.Output)
			}
		}
	}
}

// PassEqual returns a Pass function for a SourceTestCase that predicates on
// value equality with a literal. want may be nil, a bool, a number, a string,
// an internal.Symbol, or a []interface{} of those. If err is not nil, then
// the predicate returns false.
func PassEqual(want interface{}) func(*internal.VM, *internal.Object, error) bool {
	return func(vm *internal.VM, result *internal.Object, err error) bool {
		if err != nil {
			return false
		}
		return vm.Equal(vm.Literal(want), result)
	}
}

// PassPrint returns a Pass function for a SourceTestCase that predicates on
// the printString of the result.
func PassPrint(want string) func(*internal.VM, *internal.Object, error) bool {
	return func(vm *internal.VM, result *internal.Object, err error) bool {
		return err == nil && vm.PrintString(result) == want
	}
}

// PassClass returns a Pass function for a SourceTestCase that predicates on
// the name of the result's class.
func PassClass(want string) func(*internal.VM, *internal.Object, error) bool {
	return func(vm *internal.VM, result *internal.Object, err error) bool {
		return err == nil && vm.ClassOf(result).Name == want
	}
}

// PassFailure returns a Pass function for a SourceTestCase that returns true
// iff the call failed with an error of the given kind.
func PassFailure(kind internal.Kind) func(*internal.VM, *internal.Object, error) bool {
	return func(vm *internal.VM, result *internal.Object, err error) bool {
		return internal.IsKind(err, kind)
	}
}

// PassSuccess returns a Pass function for a SourceTestCase that returns true
// iff the call did not fail.
func PassSuccess() func(*internal.VM, *internal.Object, error) bool {
	return func(vm *internal.VM, result *internal.Object, err error) bool {
		return err == nil
	}
}

// CheckHolders checks that a metaclass declares exactly the expected holders.
func CheckHolders(t *testing.T, mc *internal.Metaclass, holders []string) {
	t.Helper()
	want := append([]string(nil), holders...)
	sort.Strings(want)
	have := mc.HolderNames()
	checked := make(map[string]bool, len(want))
	for _, name := range want {
		checked[name] = true
		t.Run("Have"+name, func(t *testing.T) {
			if _, ok := mc.Holder(name); !ok {
				t.Fatal("no holder", name)
			}
		})
	}
	for _, name := range have {
		if !checked[name] {
			t.Run("Extra"+name, func(t *testing.T) {
				t.Error("unexpected holder", name)
			})
		}
	}
}
