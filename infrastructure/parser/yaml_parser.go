// Package parser decodes YAML scope files.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/ports"
	"gopkg.in/yaml.v3"
)

// YamlScopeParser implements ports.ScopeParser for YAML.
type YamlScopeParser struct{}

// NewYamlScopeParser creates a new YamlScopeParser.
func NewYamlScopeParser() ports.ScopeParser {
	return &YamlScopeParser{}
}

// Parse decodes a scope document. Unknown keys are rejected so a typo such as
// "alow" does not silently widen the scope. An empty document yields an empty set.
func (p *YamlScopeParser) Parse(data []byte) (*entities.ScopeSet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var set entities.ScopeSet
	if err := dec.Decode(&set); err != nil {
		if errors.Is(err, io.EOF) {
			return &set, nil
		}
		return nil, fmt.Errorf("invalid scope document: %w", err)
	}
	return &set, nil
}
