package ports

import "github.com/proxyscript/script-sdk/go/domain/entities"

// ScopeMatcher decides whether a target belongs to the user-defined scope.
type ScopeMatcher interface {
	InScope(target entities.ScopeTarget) bool
}

// ExclusionHandler is called when a scope check excludes a target.
// Implementations can log, collect metrics, or take other actions.
type ExclusionHandler interface {
	OnExcluded(target entities.ScopeTarget, reason string)
}

// ScopeParser parses raw YAML bytes into a ScopeSet.
type ScopeParser interface {
	Parse(data []byte) (*entities.ScopeSet, error)
}
