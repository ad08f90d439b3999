package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the scripthost release, set at build time with -ldflags.
var Version = "0.1.0-dev"

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(a.out, "scripthost v%s\n", Version)
			return err
		},
	}
}
