package sdktest

import (
	"context"
	"strings"
	"testing"
	"time"

	sdk "github.com/proxyscript/script-sdk/go"
	"github.com/proxyscript/script-sdk/go/domain/entities"
)

// NewRequest builds a request snapshot for rawURL with the given id, as the
// host would hand it to a passive script. It fails the test on a bad URL.
func NewRequest(t testing.TB, id, method, rawURL string) *sdk.Request {
	t.Helper()

	spec, err := sdk.NewRequestSpec(rawURL)
	if err != nil {
		t.Fatalf("invalid request url %q: %v", rawURL, err)
	}
	spec.SetMethod(method)

	wire := entities.RequestWire{
		CreatedAt: time.Now(),
		ID:        id,
	}
	specWire := spec.Wire()
	wire.Headers = specWire.Headers
	wire.Host = specWire.Host
	wire.Method = specWire.Method
	wire.Path = specWire.Path
	wire.Query = specWire.Query
	wire.Port = specWire.Port
	wire.TLS = specWire.TLS
	return sdk.RequestFromWire(wire)
}

// NewResponse builds a response snapshot.
func NewResponse(id string, code int, body string) *sdk.Response {
	return sdk.ResponseFromWire(entities.ResponseWire{
		CreatedAt: time.Now(),
		Body:      []byte(body),
		ID:        id,
		Code:      code,
	})
}

// PassiveCase defines a test case for a passive script.
type PassiveCase struct {
	Name     string
	Input    sdk.HTTPInput
	Host     *MockHost
	Validate func(t *testing.T, host *MockHost, err error)
}

// RunPassiveTests runs script once per case against a fresh or supplied MockHost.
func RunPassiveTests(t *testing.T, script sdk.PassiveScript, cases []PassiveCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			host := tc.Host
			if host == nil {
				host = NewMockHost()
			}
			err := script(context.Background(), tc.Input, sdk.New(host))
			if tc.Validate != nil {
				tc.Validate(t, host, err)
			}
		})
	}
}

// ConvertCase defines a test case for a convert script.
type ConvertCase struct {
	Name     string
	Input    sdk.Bytes
	Want     sdk.Data
	WantErr  bool
	WantNone bool
}

// RunConvertTests runs script once per case and compares its output.
func RunConvertTests(t *testing.T, script sdk.ConvertScript, cases []ConvertCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := script(context.Background(), sdk.BytesInput{Data: tc.Input}, sdk.New(NewMockHost()))
			switch {
			case tc.WantErr:
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
			case err != nil:
				t.Errorf("unexpected error: %v", err)
			case tc.WantNone:
				if got != nil {
					t.Errorf("expected no result, got %q", got)
				}
			case string(got) != string(tc.Want):
				t.Errorf("expected %q, got %q", tc.Want, got)
			}
		})
	}
}

// AssertLogged asserts the host received a console message at level whose
// text contains substr.
func AssertLogged(t *testing.T, host *MockHost, level, substr string) {
	t.Helper()
	for _, msg := range host.Logs() {
		if msg.Level == level && strings.Contains(msg.Message, substr) {
			return
		}
	}
	t.Errorf("no %s console message containing %q (got %d messages)", level, substr, len(host.Logs()))
}

// AssertFinding asserts a finding with the given title was saved and returns it.
func AssertFinding(t *testing.T, host *MockHost, title string) entities.FindingWire {
	t.Helper()
	for _, f := range host.Findings() {
		if f.Title == title {
			return f
		}
	}
	t.Errorf("no finding titled %q (got %d findings)", title, len(host.Findings()))
	return entities.FindingWire{}
}

// AssertNoFindings asserts nothing was reported.
func AssertNoFindings(t *testing.T, host *MockHost) {
	t.Helper()
	if n := len(host.Findings()); n != 0 {
		t.Errorf("expected no findings, got %d", n)
	}
}
