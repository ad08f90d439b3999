package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/proxyscript/script-sdk/go/host"
)

// app carries the state shared by all subcommands.
type app struct {
	v          *viper.Viper
	out        io.Writer
	errOut     io.Writer
	configPath string
	logLevel   string

	cfg    *host.Config
	logger *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "scripthost",
		Short: "Run proxy scripts against the reference host",
		Long: `scripthost loads scripts compiled to WASM and runs them with the
console, requests and findings host functions. It can also expose those
functions over HTTP for scripts running in another process.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Set logging level (debug, info, warn, error)")
	_ = a.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newServeCmd(a),
		newRunCmd(a),
		newSendCmd(a),
		newSchemaCmd(a),
		newFindingsCmd(a),
		newVersionCmd(a),
	)
	return root
}

// config loads and validates configuration once per invocation.
func (a *app) config() (*host.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := host.LoadConfig(a.v, a.configPath)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(a.errOut)
	return cfg, nil
}

// services wires the host side from configuration. Callers must Close it.
func (a *app) services() (*host.Services, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	svc, err := host.NewServices(cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize host: %w", err)
	}
	return svc, nil
}
