// Package scope evaluates host-configured scope rules against requests.
package scope

import (
	"net"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
)

// scopeConfig holds configuration for the Scope engine.
type scopeConfig struct {
	exclusionHandler ports.ExclusionHandler // Handler invoked when a target is out of scope
}

func defaultScopeConfig() scopeConfig {
	return scopeConfig{
		exclusionHandler: &NopExclusionHandler{},
	}
}

// Option configures the Scope.
type Option func(*scopeConfig)

// WithExclusionHandler sets the handler notified about out-of-scope targets.
func WithExclusionHandler(h ports.ExclusionHandler) Option {
	return func(c *scopeConfig) {
		if h != nil {
			c.exclusionHandler = h
		}
	}
}

// Scope matches targets against a compiled ScopeSet. The set can be swapped
// at runtime with Reload; lookups never block.
type Scope struct {
	compiled atomic.Pointer[compiledScope]
	config   scopeConfig
}

var _ ports.ScopeMatcher = (*Scope)(nil)

type compiledScope struct {
	allow []compiledRule
	deny  []compiledRule
}

type compiledRule struct {
	tls   *bool
	hosts []string
	cidrs []*net.IPNet
	paths []string
	ports []portRange
}

type portRange struct {
	min, max int
}

// New creates a Scope for the given rule set. A nil set admits everything.
func New(set *entities.ScopeSet, opts ...Option) *Scope {
	cfg := defaultScopeConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Scope{config: cfg}
	s.Reload(set)
	return s
}

// Reload replaces the active rule set.
func (s *Scope) Reload(set *entities.ScopeSet) {
	s.compiled.Store(compile(set))
}

// InScope reports whether target matches at least one allow rule (or there
// are none) and no deny rule.
func (s *Scope) InScope(target entities.ScopeTarget) bool {
	c := s.compiled.Load()
	target.Host = strings.ToLower(target.Host)

	for _, rule := range c.deny {
		if rule.matches(target) {
			s.config.exclusionHandler.OnExcluded(target, "matched deny rule")
			return false
		}
	}

	if len(c.allow) == 0 {
		return true
	}
	for _, rule := range c.allow {
		if rule.matches(target) {
			return true
		}
	}

	s.config.exclusionHandler.OnExcluded(target, "no allow rule matched")
	return false
}

func compile(set *entities.ScopeSet) *compiledScope {
	c := &compiledScope{}
	if set == nil {
		return c
	}
	for _, rule := range set.Allow {
		c.allow = append(c.allow, compileRule(rule))
	}
	for _, rule := range set.Deny {
		c.deny = append(c.deny, compileRule(rule))
	}
	return c
}

func compileRule(rule entities.ScopeRule) compiledRule {
	cr := compiledRule{tls: rule.TLS}

	for _, h := range rule.Hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if _, network, err := net.ParseCIDR(h); err == nil {
			cr.cidrs = append(cr.cidrs, network)
			continue
		}
		if doublestar.ValidatePattern(h) {
			cr.hosts = append(cr.hosts, h)
		}
	}

	for _, p := range rule.Paths {
		if doublestar.ValidatePattern(p) {
			cr.paths = append(cr.paths, p)
		}
	}

	for _, portStr := range rule.Ports {
		if pr, ok := parsePortRange(portStr); ok {
			cr.ports = append(cr.ports, pr)
		}
	}

	return cr
}

func parsePortRange(s string) (portRange, bool) {
	s = strings.TrimSpace(s)
	if s == "*" {
		return portRange{0, 65535}, true
	}
	if lo, hi, found := strings.Cut(s, "-"); found {
		minPort, err1 := strconv.Atoi(strings.TrimSpace(lo))
		maxPort, err2 := strconv.Atoi(strings.TrimSpace(hi))
		if err1 != nil || err2 != nil || minPort > maxPort {
			return portRange{}, false
		}
		return portRange{minPort, maxPort}, true
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return portRange{}, false
	}
	return portRange{val, val}, true
}

// matches requires every populated criterion of the rule to match.
func (r compiledRule) matches(t entities.ScopeTarget) bool {
	if r.tls != nil && *r.tls != t.TLS {
		return false
	}
	if (len(r.hosts) > 0 || len(r.cidrs) > 0) && !r.matchHost(t.Host) {
		return false
	}
	if len(r.ports) > 0 && !r.matchPort(t.Port) {
		return false
	}
	if len(r.paths) > 0 && !r.matchPath(t.Path) {
		return false
	}
	return true
}

func (r compiledRule) matchHost(host string) bool {
	for _, pattern := range r.hosts {
		if matched, _ := doublestar.Match(pattern, host); matched {
			return true
		}
	}
	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		for _, network := range r.cidrs {
			if network.Contains(ip) {
				return true
			}
		}
	}
	return false
}

func (r compiledRule) matchPort(port int) bool {
	for _, pr := range r.ports {
		if port >= pr.min && port <= pr.max {
			return true
		}
	}
	return false
}

func (r compiledRule) matchPath(path string) bool {
	if path == "" {
		path = "/"
	}
	for _, pattern := range r.paths {
		if matched, _ := doublestar.Match(pattern, path); matched {
			return true
		}
	}
	return false
}
