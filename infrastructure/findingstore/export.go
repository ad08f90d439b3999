package findingstore

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/proxyscript/script-sdk/go/domain/entities"
	"github.com/proxyscript/script-sdk/go/domain/errors"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Export writes findings to w as an indented JSON array or a YAML sequence.
func Export(w io.Writer, findings []entities.FindingWire, format string) error {
	if findings == nil {
		findings = []entities.FindingWire{}
	}

	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(findings); err != nil {
			return fmt.Errorf("failed to encode findings: %w", err)
		}
		return nil
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(findings); err != nil {
			return fmt.Errorf("failed to encode findings: %w", err)
		}
		return enc.Close()
	default:
		return &errors.ValidationError{Field: "format", Err: fmt.Errorf("unsupported export format %q", format)}
	}
}
