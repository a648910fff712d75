// Package project implements the GraphQL project engine: schema and
// document indices, validation, and navigation (definition, references,
// hover) over documents extracted from GraphQL and TypeScript/JavaScript
// sources.
package project

import (
	"encoding/json"
	"fmt"

	"github.com/trevor-scheer/gqlscope/pkg/source"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInformation
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// MarshalJSON renders the severity as its lowercase name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Diagnostic is one validation finding. It is never mutated after creation
// and carries no rendering concerns; locations are always in original-file
// coordinates, mapped through the block's position mapper for extracted
// GraphQL.
type Diagnostic struct {
	Severity Severity        `json:"severity"`
	Location source.Location `json:"location"`
	Message  string          `json:"message"`
	Code     string          `json:"code,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
}
