package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/trevor-scheer/gqlscope/pkg/source"
)

// ErrNoSchema is returned by queries against a project whose schema failed
// to build. The project stays unusable until the schema is fixed and
// reloaded; other projects are unaffected.
var ErrNoSchema = errors.New("project schema is not loaded")

// DuplicateDefinitionError reports a type or directive name defined more
// than once across the merged schema sources. It aborts schema index
// construction: lookups against an ambiguous schema have no sound answer.
type DuplicateDefinitionError struct {
	Kind      string // "type" or "directive"
	Name      string
	Locations []source.Location
}

func (e *DuplicateDefinitionError) Error() string {
	locs := make([]string, len(e.Locations))
	for i, l := range e.Locations {
		locs[i] = l.String()
	}
	return fmt.Sprintf("duplicate %s definition %q (%s)", e.Kind, e.Name, strings.Join(locs, ", "))
}
