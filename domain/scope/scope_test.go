package scope_test

import (
	"sync"
	"testing"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/scope"
	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

type recordingHandler struct {
	mu      sync.Mutex
	reasons []string
}

func (h *recordingHandler) OnExcluded(_ entities.ScopeTarget, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reasons = append(h.reasons, reason)
}

func TestScope_InScope(t *testing.T) {
	s := scope.New(&entities.ScopeSet{
		Allow: []entities.ScopeRule{
			{Hosts: []string{"example.com", "*.example.com"}, Ports: []string{"80", "443", "8000-8010"}},
			{Hosts: []string{"10.0.0.0/8"}},
		},
		Deny: []entities.ScopeRule{
			{Hosts: []string{"admin.example.com"}},
			{Paths: []string{"/logout", "/static/**"}},
		},
	})

	tests := []struct {
		name   string
		target entities.ScopeTarget
		want   bool
	}{
		{"exact host", entities.ScopeTarget{Host: "example.com", Port: 443, Path: "/"}, true},
		{"wildcard subdomain", entities.ScopeTarget{Host: "api.example.com", Port: 80, Path: "/v1"}, true},
		{"host is case-insensitive", entities.ScopeTarget{Host: "API.Example.COM", Port: 443}, true},
		{"port range", entities.ScopeTarget{Host: "example.com", Port: 8005}, true},
		{"port outside range", entities.ScopeTarget{Host: "example.com", Port: 9000}, false},
		{"cidr", entities.ScopeTarget{Host: "10.1.2.3", Port: 22}, true},
		{"outside cidr", entities.ScopeTarget{Host: "192.168.1.1", Port: 80}, false},
		{"unknown host", entities.ScopeTarget{Host: "google.com", Port: 443}, false},
		{"deny host overrides allow", entities.ScopeTarget{Host: "admin.example.com", Port: 443}, false},
		{"deny path", entities.ScopeTarget{Host: "example.com", Port: 443, Path: "/logout"}, false},
		{"deny path glob", entities.ScopeTarget{Host: "example.com", Port: 443, Path: "/static/css/site.css"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.InScope(tt.target))
		})
	}
}

func TestScope_EmptyAllowAdmitsAll(t *testing.T) {
	assert.True(t, scope.New(nil).InScope(entities.ScopeTarget{Host: "anything.test", Port: 1}))

	s := scope.New(&entities.ScopeSet{
		Deny: []entities.ScopeRule{{Hosts: []string{"blocked.test"}}},
	})
	assert.True(t, s.InScope(entities.ScopeTarget{Host: "open.test", Port: 80}))
	assert.False(t, s.InScope(entities.ScopeTarget{Host: "blocked.test", Port: 80}))
}

func TestScope_TLSRule(t *testing.T) {
	s := scope.New(&entities.ScopeSet{
		Allow: []entities.ScopeRule{{Hosts: []string{"example.com"}, TLS: boolPtr(true)}},
	})

	assert.True(t, s.InScope(entities.ScopeTarget{Host: "example.com", Port: 443, TLS: true}))
	assert.False(t, s.InScope(entities.ScopeTarget{Host: "example.com", Port: 80, TLS: false}))
}

func TestScope_WildcardPort(t *testing.T) {
	s := scope.New(&entities.ScopeSet{
		Allow: []entities.ScopeRule{{Hosts: []string{"example.com"}, Ports: []string{"*"}}},
	})
	assert.True(t, s.InScope(entities.ScopeTarget{Host: "example.com", Port: 31337}))
}

func TestScope_InvalidPatternsIgnored(t *testing.T) {
	s := scope.New(&entities.ScopeSet{
		Allow: []entities.ScopeRule{
			{Hosts: []string{"example.com"}, Ports: []string{"abc", "90-80", "443"}},
		},
	})
	assert.True(t, s.InScope(entities.ScopeTarget{Host: "example.com", Port: 443}))
	assert.False(t, s.InScope(entities.ScopeTarget{Host: "example.com", Port: 85}))
}

func TestScope_Reload(t *testing.T) {
	s := scope.New(&entities.ScopeSet{
		Allow: []entities.ScopeRule{{Hosts: []string{"old.test"}}},
	})
	target := entities.ScopeTarget{Host: "new.test", Port: 443}
	assert.False(t, s.InScope(target))

	s.Reload(&entities.ScopeSet{
		Allow: []entities.ScopeRule{{Hosts: []string{"new.test"}}},
	})
	assert.True(t, s.InScope(target))
}

func TestScope_ExclusionHandler(t *testing.T) {
	h := &recordingHandler{}
	s := scope.New(&entities.ScopeSet{
		Allow: []entities.ScopeRule{{Hosts: []string{"example.com"}}},
		Deny:  []entities.ScopeRule{{Paths: []string{"/private/**"}}},
	}, scope.WithExclusionHandler(h))

	s.InScope(entities.ScopeTarget{Host: "example.com", Path: "/"})
	s.InScope(entities.ScopeTarget{Host: "other.com", Path: "/"})
	s.InScope(entities.ScopeTarget{Host: "example.com", Path: "/private/key"})

	assert.Equal(t, []string{"no allow rule matched", "matched deny rule"}, h.reasons)
}

func TestScope_Concurrent(t *testing.T) {
	s := scope.New(&entities.ScopeSet{
		Allow: []entities.ScopeRule{{Hosts: []string{"*.example.com"}}},
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				s.Reload(&entities.ScopeSet{Allow: []entities.ScopeRule{{Hosts: []string{"*.example.com"}}}})
			}
			assert.True(t, s.InScope(entities.ScopeTarget{Host: "a.example.com", Port: 443}))
		}(i)
	}
	wg.Wait()
}
