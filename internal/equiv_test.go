package internal_test

import (
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/zephyrtronium/steplang/internal"
	"github.com/zephyrtronium/steplang/testutils"
)

// TestEquivalence runs each program in testdata/equiv interpreted and
// compiled. Each archive has a source file, a want file holding the
// printString of the result, optionally an output file holding what the
// program prints, and optionally a bindings file listing the program's
// variables as in scopeBindings. Both modes must agree with the archive and
// leave the same bindings in the scope they ran in.
func TestEquivalence(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "equiv", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no equivalence programs")
	}
	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".txtar")
		t.Run(name, func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatal(err)
			}
			sections := make(map[string]string, len(ar.Files))
			for _, f := range ar.Files {
				sections[f.Name] = string(f.Data)
			}
			src, ok := sections["source"]
			if !ok {
				t.Fatal("no source section")
			}
			want := strings.TrimSpace(sections["want"])
			output := strings.TrimSuffix(sections["output"], "\n")
			wantBindings, checkBindings := sections["bindings"]
			var results, bindings [2]string
			for i, compile := range []bool{false, true} {
				vm := testutils.VM(t)
				cl, err := vm.NewClosure(name).Interpret(src)
				if err != nil {
					t.Fatalf("could not interpret: %v", err)
				}
				if compile {
					if _, err := cl.Compile(); err != nil {
						t.Fatalf("could not compile: %v", err)
					}
					if d := cl.Diagnostic(); d != nil {
						t.Fatalf("did not compile:\n%s", d.Diagnostic())
					}
					if cl.State() != internal.Compiled {
						t.Fatalf("closure is %v after compiling", cl.State())
					}
				}
				s := vm.NewScope(nil)
				r, err := cl.Call(s)
				if err != nil {
					t.Fatalf("compiled=%v: %v", compile, err)
				}
				results[i] = vm.PrintString(r)
				if results[i] != want {
					t.Errorf("compiled=%v: wrong result\nwant %s\ngot  %s", compile, want, results[i])
				}
				bindings[i] = scopeBindings(vm, s)
				if checkBindings && bindings[i] != strings.TrimSpace(wantBindings) {
					t.Errorf("compiled=%v: wrong bindings\nwant %s\ngot  %s", compile, strings.TrimSpace(wantBindings), bindings[i])
				}
				if out := strings.TrimSuffix(testutils.Output(vm), "\n"); out != output {
					t.Errorf("compiled=%v: wrong output\nwant %q\ngot  %q", compile, output, out)
				}
			}
			if results[0] != results[1] {
				t.Errorf("modes disagree: interpreted %s, compiled %s", results[0], results[1])
			}
			if bindings[0] != bindings[1] {
				t.Errorf("modes leave different bindings:\ninterpreted:\n%s\ncompiled:\n%s", bindings[0], bindings[1])
			}
		})
	}
}

// scopeBindings lists the names bound in s with the printString of each value,
// one per line in name order.
func scopeBindings(vm *internal.VM, s *internal.Scope) string {
	var b strings.Builder
	for i, name := range s.Names() {
		if i > 0 {
			b.WriteByte('\n')
		}
		v, _ := s.Local(name)
		b.WriteString(name)
		b.WriteByte(' ')
		b.WriteString(vm.PrintString(v))
	}
	return b.String()
}
