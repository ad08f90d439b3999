package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	sdk "github.com/proxyscript/script-sdk/go"
	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/hostfuncs"
)

// requestFlags are shared by send and run.
type requestFlags struct {
	url     string
	method  string
	headers []string
	body    string
}

func (f *requestFlags) register(cmd *cobra.Command, urlRequired bool) {
	cmd.Flags().StringVar(&f.url, "url", "", "Target URL")
	cmd.Flags().StringVarP(&f.method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, `Request header as "Name: value" (repeatable)`)
	cmd.Flags().StringVarP(&f.body, "data", "d", "", "Request body")
	if urlRequired {
		_ = cmd.MarkFlagRequired("url")
	}
}

func (f *requestFlags) spec() (*sdk.RequestSpec, error) {
	spec, err := sdk.NewRequestSpec(f.url)
	if err != nil {
		return nil, err
	}
	spec.SetMethod(strings.ToUpper(f.method))
	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", h)
		}
		spec.AddHeader(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	if f.body != "" {
		spec.SetBody(sdk.BytesFromString(f.body))
	}
	return spec, nil
}

func newSendCmd(a *app) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one request the way scripts do and print the exchange",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.services()
			if err != nil {
				return err
			}
			defer svc.Close()

			resp, err := sendSpec(cmd, svc.Registry, &flags)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	flags.register(cmd, true)
	return cmd
}

// sendSpec sends through the registry so the call takes the same middleware
// path as a script's.
func sendSpec(cmd *cobra.Command, reg *hostfuncs.HandlerRegistry, flags *requestFlags) (entities.SendResponse, error) {
	spec, err := flags.spec()
	if err != nil {
		return entities.SendResponse{}, err
	}
	wire := spec.Wire()
	payload, err := json.Marshal(entities.SendRequest{Spec: &wire})
	if err != nil {
		return entities.SendResponse{}, err
	}

	reply, err := reg.Invoke(cmd.Context(), entities.FuncRequestsSend, payload)
	if err != nil {
		return entities.SendResponse{}, err
	}
	if fault, ok := entities.ParseHostFault(reply); ok {
		return entities.SendResponse{}, fmt.Errorf("%s: %s", fault.Error, fault.Message)
	}

	var resp entities.SendResponse
	if err := json.Unmarshal(reply, &resp); err != nil {
		return entities.SendResponse{}, fmt.Errorf("failed to decode send reply: %w", err)
	}
	if resp.Error != nil {
		return resp, fmt.Errorf("send failed: %s", resp.Error.Message)
	}
	return resp, nil
}
