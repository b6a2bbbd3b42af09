// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"encoding/json"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// unresolvedReport is the serialized shape of the unresolved-citation
// report. The count is surfaced explicitly: unresolved citations are an
// expected output, not evidence of failure.
type unresolvedReport struct {
	Unresolved int                        `json:"unresolved" yaml:"unresolved"`
	Citations  []types.UnresolvedCitation `json:"citations" yaml:"citations"`
}

// WriteReportYAML writes the unresolved-citation report as YAML, the
// human-reviewable variant.
func WriteReportYAML(w io.Writer, records []types.UnresolvedCitation) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(unresolvedReport{Unresolved: len(records), Citations: records})
}

// WriteReportJSON writes the unresolved-citation report as indented JSON,
// the machine-readable variant.
func WriteReportJSON(w io.Writer, records []types.UnresolvedCitation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(unresolvedReport{Unresolved: len(records), Citations: records})
}
