package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/proxyscript/script-sdk/go/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		token string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve host functions over HTTP",
		Long: `Serve the host functions over HTTP so scripts running in other
processes can call them. Console output is streamed on /v1/console/stream.
Send SIGHUP to reload the scope file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			if addr == "" {
				addr = svc.Config.Server.Addr
			}
			srv := server.New(svc.Registry, svc.Sink,
				server.WithLogger(svc.Logger),
				server.WithSchemas(svc.Schemas),
				server.WithAuthToken(token),
				server.WithAddr(addr),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-hup:
						if err := svc.ReloadScope(); err != nil {
							svc.Logger.Error("scope reload failed", "error", err)
						}
					}
				}
			}()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVar(&token, "token", os.Getenv("SCRIPTHOST_TOKEN"), "Bearer token required by /v1 routes")
	return cmd
}
