package hostfuncs

import (
	"testing"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformScopeCheck(t *testing.T) {
	tests := []struct {
		name     string
		matcher  ports.ScopeMatcher
		host     string
		want     bool
		wantType string
	}{
		{name: "in scope", matcher: hostOnly("example.com"), host: "example.com", want: true},
		{name: "out of scope", matcher: hostOnly("example.com"), host: "evil.test", want: false},
		{name: "no matcher", matcher: nil, host: "example.com", wantType: "scope"},
		{name: "empty host", matcher: allowAll{}, host: "", wantType: "validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := entities.ScopeCheckRequest{Target: entities.ScopeTarget{Host: tt.host, Port: 443, TLS: true}}
			resp := PerformScopeCheck(tt.matcher, req)

			if tt.wantType != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantType, resp.Error.Type)
				assert.False(t, resp.InScope)
				return
			}
			assert.Nil(t, resp.Error)
			assert.Equal(t, tt.want, resp.InScope)
		})
	}
}
