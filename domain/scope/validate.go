package scope

import (
	"fmt"
	"net"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
)

// Validate reports the first rule criterion that New would silently drop.
// The returned error is an *errors.ValidationError naming the offending field,
// e.g. "deny[1].ports[0]".
func Validate(set *entities.ScopeSet) error {
	if set == nil {
		return nil
	}
	for i, rule := range set.Allow {
		if err := validateRule(fmt.Sprintf("allow[%d]", i), rule); err != nil {
			return err
		}
	}
	for i, rule := range set.Deny {
		if err := validateRule(fmt.Sprintf("deny[%d]", i), rule); err != nil {
			return err
		}
	}
	return nil
}

func validateRule(prefix string, rule entities.ScopeRule) error {
	for i, h := range rule.Hosts {
		h = strings.TrimSpace(h)
		if h == "" {
			return invalid(fmt.Sprintf("%s.hosts[%d]", prefix, i), "host pattern is empty")
		}
		if _, _, err := net.ParseCIDR(h); err == nil {
			continue
		}
		if strings.Contains(h, "/") {
			return invalid(fmt.Sprintf("%s.hosts[%d]", prefix, i), fmt.Sprintf("invalid CIDR %q", h))
		}
		if !doublestar.ValidatePattern(h) {
			return invalid(fmt.Sprintf("%s.hosts[%d]", prefix, i), fmt.Sprintf("invalid host pattern %q", h))
		}
	}
	for i, p := range rule.Paths {
		if !doublestar.ValidatePattern(p) {
			return invalid(fmt.Sprintf("%s.paths[%d]", prefix, i), fmt.Sprintf("invalid path pattern %q", p))
		}
	}
	for i, p := range rule.Ports {
		pr, ok := parsePortRange(p)
		if !ok || pr.min < 0 || pr.max > 65535 {
			return invalid(fmt.Sprintf("%s.ports[%d]", prefix, i), fmt.Sprintf("invalid port %q", p))
		}
	}
	return nil
}

func invalid(field, msg string) error {
	return &errors.ValidationError{Field: field, Err: fmt.Errorf("%s", msg)}
}
