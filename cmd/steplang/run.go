package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/spf13/cobra"
)

type runOptions struct {
	*rootOptions
	Compile    bool
	Print      bool
	CPUProfile string
	MemProfile string
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Run source files in order in one scope",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.Compile, "compile", false, "compile before running")
	cmd.Flags().BoolVarP(&opts.Print, "print", "p", false, "print the value of the last file")
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "write a CPU profile to this file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "write a heap profile to this file")
	return cmd
}

// closureName derives a closure name from a file path.
func closureName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func runFiles(cmd *cobra.Command, opts *runOptions, files []string) (err error) {
	vm, done, err := opts.vm()
	if err != nil {
		return err
	}
	defer done()
	vm.Out = cmd.OutOrStdout()
	if opts.CPUProfile != "" {
		f, err := os.Create(opts.CPUProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}
	if opts.MemProfile != "" {
		defer func() {
			f, ferr := os.Create(opts.MemProfile)
			if ferr != nil {
				if err == nil {
					err = ferr
				}
				return
			}
			defer f.Close()
			runtime.GC()
			if ferr := pprof.WriteHeapProfile(f); ferr != nil && err == nil {
				err = ferr
			}
		}()
	}
	scope := vm.NewScope(nil)
	r := vm.Nil
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		c, err := vm.NewClosure(closureName(file)).Interpret(string(src))
		if err != nil {
			return err
		}
		if opts.Compile {
			if _, err := c.Compile(); err != nil {
				return err
			}
			if d := c.Diagnostic(); d != nil {
				fmt.Fprint(cmd.ErrOrStderr(), d.Diagnostic())
			}
		}
		if r, err = c.Call(scope); err != nil {
			return err
		}
	}
	if opts.Print {
		fmt.Fprintln(cmd.OutOrStdout(), vm.PrintString(r))
	}
	return nil
}
