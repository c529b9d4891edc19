// Command steplang runs, compiles, and interactively evaluates steplang
// source.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/zephyrtronium/steplang"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		var e *steplang.Error
		if errors.As(err, &e) {
			fmt.Fprint(os.Stderr, e.Diagnostic())
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
