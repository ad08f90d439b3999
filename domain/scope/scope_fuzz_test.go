package scope_test

import (
	"testing"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/scope"
)

func FuzzInScope(f *testing.F) {
	s := scope.New(&entities.ScopeSet{
		Allow: []entities.ScopeRule{
			{Hosts: []string{"example.com", "*.internal", "10.0.0.0/8"}, Ports: []string{"80", "8000-8010"}},
		},
		Deny: []entities.ScopeRule{{Paths: []string{"/admin/**"}}},
	})
	f.Add("example.com", "/", 80)
	f.Add("api.internal", "/admin/x", 8005)
	f.Add("10.0.0.1", "", 443)
	f.Add("[::1]", "/%zz", -1)

	f.Fuzz(func(t *testing.T, host, path string, port int) {
		// We just ensure it doesn't panic
		s.InScope(entities.ScopeTarget{Host: host, Path: path, Port: port})
	})
}

func BenchmarkInScope(b *testing.B) {
	s := scope.New(&entities.ScopeSet{
		Allow: []entities.ScopeRule{
			{Hosts: []string{"example.com", "*.internal"}, Ports: []string{"80", "443"}},
		},
	})
	target := entities.ScopeTarget{Host: "example.com", Port: 80, Path: "/"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.InScope(target)
	}
}
