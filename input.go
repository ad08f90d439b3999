package sdk

import "context"

// HTTPInput is what a passive script receives for one HTTP observation.
// Either field may be nil; by convention at least one is set.
type HTTPInput struct {
	Request  *Request
	Response *Response
}

// BytesInput is what a convert script receives.
type BytesInput struct {
	Data Bytes
}

// PassiveInput is the former name of HTTPInput.
//
// Deprecated: use HTTPInput.
type PassiveInput = HTTPInput

// ConvertInput is the former name of BytesInput.
//
// Deprecated: use BytesInput.
type ConvertInput = BytesInput

// PassiveScript is the entry point of a script run once per HTTP observation.
type PassiveScript func(ctx context.Context, input HTTPInput, s *SDK) error

// ConvertScript is the entry point of a script that transforms bytes.
// Returning nil Data means the script produced no result.
type ConvertScript func(ctx context.Context, input BytesInput, s *SDK) (Data, error)
