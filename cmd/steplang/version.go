package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/steplang"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the runtime version and host platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "steplang %s on %s\n", steplang.Version, steplang.Platform())
			return err
		},
	}
}
