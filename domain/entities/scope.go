package entities

// ScopeSet is the host-configured rule set that decides which requests scripts
// should act upon.
type ScopeSet struct {
	Allow []ScopeRule `json:"allow,omitempty" yaml:"allow,omitempty"`
	Deny  []ScopeRule `json:"deny,omitempty" yaml:"deny,omitempty"`
}

// ScopeRule matches a request when every non-empty criterion matches.
//
// Hosts are doublestar glob patterns ("*.example.com") or CIDR blocks
// ("10.0.0.0/8"). Ports are single ports, ranges ("8000-8999") or "*".
// Paths are doublestar glob patterns ("/api/**").
type ScopeRule struct {
	TLS   *bool    `json:"tls,omitempty" yaml:"tls,omitempty"`
	Hosts []string `json:"hosts,omitempty" yaml:"hosts,omitempty"`
	Ports []string `json:"ports,omitempty" yaml:"ports,omitempty"`
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// IsEmpty returns true if the set contains no rules.
func (s *ScopeSet) IsEmpty() bool {
	return s == nil || (len(s.Allow) == 0 && len(s.Deny) == 0)
}

// Merge appends the rules of other to s.
func (s *ScopeSet) Merge(other *ScopeSet) {
	if other == nil {
		return
	}
	s.Allow = append(s.Allow, other.Allow...)
	s.Deny = append(s.Deny, other.Deny...)
}

// Clone returns a deep copy of the ScopeSet.
func (s *ScopeSet) Clone() *ScopeSet {
	if s == nil {
		return nil
	}
	return &ScopeSet{
		Allow: cloneRules(s.Allow),
		Deny:  cloneRules(s.Deny),
	}
}

func cloneRules(rules []ScopeRule) []ScopeRule {
	if rules == nil {
		return nil
	}
	out := make([]ScopeRule, len(rules))
	for i, r := range rules {
		out[i] = ScopeRule{
			Hosts: append([]string(nil), r.Hosts...),
			Ports: append([]string(nil), r.Ports...),
			Paths: append([]string(nil), r.Paths...),
		}
		if r.TLS != nil {
			tls := *r.TLS
			out[i].TLS = &tls
		}
	}
	return out
}
