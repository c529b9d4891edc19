package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/zephyrtronium/steplang"
)

const (
	historyFile = ".steplang_history"
	promptMain  = "st> "
	promptCont  = "... "
)

type replOptions struct {
	*rootOptions
	Compile bool
}

func newReplCommand(root *rootOptions) *cobra.Command {
	opts := &replOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Evaluate statements interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return repl(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Compile, "compile", false, "compile each entry before running it")
	return cmd
}

func repl(cmd *cobra.Command, opts *replOptions) error {
	vm, done, err := opts.vm()
	if err != nil {
		return err
	}
	defer done()
	out := cmd.OutOrStdout()
	vm.Out = out
	fmt.Fprintf(out, "steplang %s on %s\nCtrl+D exits.\n", steplang.Version, steplang.Platform())

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	home, _ := os.UserHomeDir()
	hist := filepath.Join(home, historyFile)
	if f, err := os.Open(hist); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(hist); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	scope := vm.NewScope(nil)
	for n := 1; ; n++ {
		src, ok := readEntry(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		r, err := vm.DoString(scope, fmt.Sprintf("entry%d", n), src, opts.Compile)
		if err != nil {
			var e *steplang.Error
			if errors.As(err, &e) {
				fmt.Fprint(cmd.ErrOrStderr(), e.Diagnostic())
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			continue
		}
		fmt.Fprintln(out, vm.PrintString(r))
	}
}

// readEntry reads lines until they parse or fail for a reason other than
// ending early.
func readEntry(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C discards the entry.
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if _, err := steplang.Parse("entry", src); err != nil && steplang.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
