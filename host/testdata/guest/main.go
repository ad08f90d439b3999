//go:build wasip1

// Package main is a guest used by the host tests. It registers both entry
// points and touches every host function.
package main

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/proxyscript/script-sdk/go"
	"github.com/proxyscript/script-sdk/go/script"
)

func main() {}

func init() {
	script.RegisterPassive(func(ctx context.Context, in sdk.HTTPInput, s *sdk.SDK) error {
		if in.Request == nil || !s.Requests.InScope(in.Request) {
			return nil
		}
		s.Console.Log("guest saw " + in.Request.URL())
		_, err := s.Findings.Create(ctx, sdk.FindingSpec{
			Request:     in.Request,
			Title:       "Guest finding",
			Description: in.Response.Body().Text(),
			Reporter:    "guest",
		})
		return err
	})

	script.RegisterConvert(func(_ context.Context, in sdk.BytesInput, _ *sdk.SDK) (sdk.Data, error) {
		switch text := sdk.AsString(in.Data); text {
		case "":
			return nil, nil
		case "fail":
			return nil, errors.New("convert refused input")
		default:
			return sdk.BytesFromString(strings.ToUpper(text)), nil
		}
	})
}
