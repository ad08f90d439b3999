package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proxyscript/script-sdk/go/application/schema"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [name]",
		Short: "Print host function payload schemas",
		Long: `Without arguments, list the host functions that have a payload
schema. With a name, print that function's JSON Schema.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := schema.NewHostFunctionRegistry()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				for _, name := range reg.List() {
					if _, err := fmt.Fprintln(a.out, name); err != nil {
						return err
					}
				}
				return nil
			}

			doc, ok := reg.GetSchema(args[0])
			if !ok {
				return fmt.Errorf("no schema for host function %q", args[0])
			}
			_, err = fmt.Fprintf(a.out, "%s\n", doc)
			return err
		},
	}
}
