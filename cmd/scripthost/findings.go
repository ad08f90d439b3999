package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
	"github.com/proxyscript/script-sdk/go/infrastructure/findingstore"
)

func newFindingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "findings",
		Short: "Inspect saved findings",
	}
	cmd.AddCommand(newFindingsListCmd(a), newFindingsGetCmd(a))
	return cmd
}

func (a *app) openFindings() (ports.FindingStore, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	store, err := findingstore.Open(cfg.Findings.Driver, cfg.Findings.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open findings store: %w", err)
	}
	return store, nil
}

func newFindingsListCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all findings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openFindings()
			if err != nil {
				return err
			}
			defer store.Close()

			findings, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			return findingstore.Export(a.out, findings, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", findingstore.FormatJSON, "Output format (json, yaml)")
	return cmd
}

func newFindingsGetCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one finding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openFindings()
			if err != nil {
				return err
			}
			defer store.Close()

			f, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return findingstore.Export(a.out, []entities.FindingWire{f}, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", findingstore.FormatJSON, "Output format (json, yaml)")
	return cmd
}
