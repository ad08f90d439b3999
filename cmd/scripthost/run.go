package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/host"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		flags     requestFlags
		inputFile string
	)

	cmd := &cobra.Command{
		Use:   "run <script.wasm>",
		Short: "Run a script once",
		Long: `Run a compiled script once.

With --url the request is sent first and the script runs as a passive
script over the exchange. With --input the script runs as a convert
script over the file's bytes and its output is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (flags.url == "") == (inputFile == "") {
				return fmt.Errorf("exactly one of --url or --input is required")
			}

			wasm, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read script: %w", err)
			}

			svc, err := a.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx := cmd.Context()
			exec, err := host.NewExecutor(ctx,
				host.WithHostFunctions(svc.Registry),
				host.WithLogger(svc.Logger),
				host.WithScriptOutput(a.errOut),
			)
			if err != nil {
				return err
			}
			defer exec.Close(ctx)

			name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			inst, err := exec.LoadScript(ctx, wasm, host.WithScriptName(name))
			if err != nil {
				return err
			}
			defer inst.Close(ctx)

			var in entities.RunInput
			if inputFile != "" {
				data, err := os.ReadFile(inputFile)
				if err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				in = host.ConvertInput(data)
			} else {
				resp, err := sendSpec(cmd, svc.Registry, &flags)
				if err != nil {
					return err
				}
				in = host.PassiveInput(resp.Request, resp.Response)
			}

			out, err := inst.Run(ctx, in)
			if err != nil {
				return err
			}
			if out.Error != nil {
				return fmt.Errorf("script failed: %s", out.Error.Message)
			}
			if out.HasData {
				_, err = a.out.Write(out.Data)
			}
			return err
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVar(&inputFile, "input", "", "Run as a convert script over this file")
	return cmd
}
