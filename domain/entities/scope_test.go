package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeSet_IsEmpty(t *testing.T) {
	var nilSet *ScopeSet
	assert.True(t, nilSet.IsEmpty())
	assert.True(t, (&ScopeSet{}).IsEmpty())
	assert.False(t, (&ScopeSet{Deny: []ScopeRule{{Hosts: []string{"a"}}}}).IsEmpty())
}

func TestScopeSet_Merge(t *testing.T) {
	s := &ScopeSet{Allow: []ScopeRule{{Hosts: []string{"a.example.com"}}}}
	s.Merge(&ScopeSet{
		Allow: []ScopeRule{{Hosts: []string{"b.example.com"}}},
		Deny:  []ScopeRule{{Paths: []string{"/logout"}}},
	})
	s.Merge(nil)

	require.Len(t, s.Allow, 2)
	require.Len(t, s.Deny, 1)
	assert.Equal(t, "b.example.com", s.Allow[1].Hosts[0])
}

func TestScopeSet_Clone(t *testing.T) {
	tls := true
	orig := &ScopeSet{Allow: []ScopeRule{{Hosts: []string{"example.com"}, TLS: &tls}}}

	clone := orig.Clone()
	clone.Allow[0].Hosts[0] = "changed"
	*clone.Allow[0].TLS = false

	assert.Equal(t, "example.com", orig.Allow[0].Hosts[0])
	assert.True(t, *orig.Allow[0].TLS)

	var nilSet *ScopeSet
	assert.Nil(t, nilSet.Clone())
}
