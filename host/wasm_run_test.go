package host_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/host"
)

type guestBuild struct {
	path   string
	output string
}

var guestBuilds sync.Map // package dir -> guestBuild

// buildGuest compiles the wasip1 reactor in dir and returns its bytes. The
// test is skipped when no Go toolchain is available.
func buildGuest(t *testing.T, dir string) []byte {
	t.Helper()
	if testing.Short() {
		t.Skip("compiling guests is slow")
	}
	gobin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not found")
	}

	if cached, ok := guestBuilds.Load(dir); ok {
		build := cached.(guestBuild)
		require.NotEmpty(t, build.path, "guest build failed earlier:\n%s", build.output)
		wasm, err := os.ReadFile(build.path)
		require.NoError(t, err)
		return wasm
	}

	out := filepath.Join(os.TempDir(), "scripthost-guest-"+filepath.Base(dir)+".wasm")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(ctx, gobin, "build", "-buildmode=c-shared", "-o", out, "./"+dir)
	cmd.Env = append(os.Environ(), "GOOS=wasip1", "GOARCH=wasm", "CGO_ENABLED=0")
	if output, err := cmd.CombinedOutput(); err != nil {
		guestBuilds.Store(dir, guestBuild{output: string(output)})
		t.Fatalf("building %s: %v\n%s", dir, err, output)
	}
	guestBuilds.Store(dir, guestBuild{path: out})

	wasm, err := os.ReadFile(out)
	require.NoError(t, err)
	return wasm
}

func loadGuest(t *testing.T, svc *host.Services, dir string) *host.ScriptInstance {
	t.Helper()
	ctx := context.Background()

	e, err := host.NewExecutor(ctx, host.WithHostFunctions(svc.Registry), host.WithLogger(discardLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close(ctx) })

	inst, err := e.LoadScript(ctx, buildGuest(t, dir), host.WithScriptName(filepath.Base(dir)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = inst.Close(ctx) })
	return inst
}

// drain collects what a console subscription received so far.
func drain(ch <-chan entities.LogMessageWire) []entities.LogMessageWire {
	var msgs []entities.LogMessageWire
	for {
		select {
		case msg := <-ch:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func TestScriptInstance_PassiveGuest(t *testing.T) {
	svc := newServices(t, "allow:\n  - hosts: [\"*.example.com\"]\n")
	inst := loadGuest(t, svc, "testdata/guest")

	console, unsubscribe := svc.Sink.Subscribe()
	defer unsubscribe()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		out, err := inst.Run(ctx, passiveRun("app.example.com", "boom"))
		require.NoError(t, err)
		assert.Nil(t, out.Error)
		assert.False(t, out.HasData)
	}

	out, err := inst.Run(ctx, passiveRun("other.test", "ignored"))
	require.NoError(t, err)
	assert.Nil(t, out.Error)

	findings, err := svc.Findings.List(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 3)
	for _, f := range findings {
		assert.Equal(t, "Guest finding", f.Title)
		assert.Equal(t, "boom", f.Description)
		assert.Equal(t, "req-1", f.RequestID)
		assert.Equal(t, "guest", f.Reporter)
	}

	msgs := drain(console)
	require.Len(t, msgs, 3)
	assert.Equal(t, "info", msgs[0].Level)
	assert.Equal(t, "guest saw https://app.example.com/login", msgs[0].Message)
}

func TestScriptInstance_ConvertGuest(t *testing.T) {
	svc := newServices(t, "")
	inst := loadGuest(t, svc, "testdata/guest")
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		wantData string
		wantErr  string
		hasData  bool
	}{
		{name: "converts", input: "abc", wantData: "ABC", hasData: true},
		{name: "no result", input: ""},
		{name: "script error", input: "fail", wantErr: "convert refused input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := inst.Run(ctx, host.ConvertInput([]byte(tt.input)))
			require.NoError(t, err)
			if tt.wantErr != "" {
				require.NotNil(t, out.Error)
				assert.Contains(t, out.Error.Message, tt.wantErr)
				return
			}
			assert.Nil(t, out.Error)
			assert.Equal(t, tt.hasData, out.HasData)
			assert.Equal(t, tt.wantData, string(out.Data))
		})
	}
}

func TestScriptInstance_ReflectedParamExample(t *testing.T) {
	svc := newServices(t, "")
	inst := loadGuest(t, svc, "../examples/reflected-param")
	ctx := context.Background()

	in := host.PassiveInput(
		&entities.RequestWire{
			ID: "req-7", Host: "shop.example.com", Port: 443, TLS: true,
			Method: "GET", Path: "/search", Query: "q=needle1234&page=1",
		},
		&entities.ResponseWire{
			ID:      "resp-7",
			Code:    200,
			Headers: []entities.HeaderField{{Name: "Content-Type", Values: []string{"text/html; charset=utf-8"}}},
			Body:    []byte("<p>Results for needle1234</p>"),
		},
	)

	out, err := inst.Run(ctx, in)
	require.NoError(t, err)
	assert.Nil(t, out.Error)

	findings, err := svc.Findings.List(ctx)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "Reflected query parameter", findings[0].Title)
	assert.Equal(t, "req-7", findings[0].RequestID)
	assert.Contains(t, findings[0].Description, "q")
}
