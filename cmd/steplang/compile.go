package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type compileOptions struct {
	*rootOptions
	Steps bool
}

func newCompileCommand(root *rootOptions) *cobra.Command {
	opts := &compileOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Print the lowered form of a source file",
		Long: `Compile a source file and print the lowered text it generates.

If the lowered text cannot be bound, the diagnostic is printed to standard
error and the command fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return compileFile(cmd, opts, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.Steps, "steps", false, "print the precompiled step tree instead")
	return cmd
}

func compileFile(cmd *cobra.Command, opts *compileOptions, file string) error {
	vm, done, err := opts.vm()
	if err != nil {
		return err
	}
	defer done()
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	c, err := vm.NewClosure(closureName(file)).Interpret(string(src))
	if err != nil {
		return err
	}
	if opts.Steps {
		if err := c.Step().Dump(cmd.OutOrStdout()); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout())
		return err
	}
	if _, err := c.Compile(); err != nil {
		return err
	}
	if d := c.Diagnostic(); d != nil {
		return d
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), c.Lowered())
	return err
}
