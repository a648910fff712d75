package project

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/trevor-scheer/gqlscope/pkg/source"
)

// Scope narrows a find-references search to files matching Include and not
// matching Exclude. Patterns use doublestar glob syntax against the indexed
// paths; an empty scope matches everything.
type Scope struct {
	Include []string
	Exclude []string
}

// Matches reports whether path falls inside the scope.
func (s Scope) Matches(path string) bool {
	if len(s.Include) > 0 {
		hit := false
		for _, pat := range s.Include {
			if ok, err := doublestar.Match(pat, path); err == nil && ok {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, pat := range s.Exclude {
		if ok, err := doublestar.Match(pat, path); err == nil && ok {
			return false
		}
	}
	return true
}

// Resolver answers goto-definition and find-references queries against one
// project's schema and document indexes. It holds no state of its own; every
// query reads a consistent snapshot from the indexes.
type Resolver struct {
	schema *SchemaIndex
	docs   *DocumentIndex
}

// NewResolver builds a resolver. schema may be nil; schema-backed targets
// then resolve to nothing while document-backed ones (fragments, variables)
// still work.
func NewResolver(schema *SchemaIndex, docs *DocumentIndex) *Resolver {
	return &Resolver{schema: schema, docs: docs}
}

// OccurrenceAt finds the smallest occurrence covering an original-file
// position, looking through every block extracted from the file.
func (r *Resolver) OccurrenceAt(path string, pos source.Position) (*Document, *Occurrence, bool) {
	for _, doc := range r.docs.DocumentsForFile(path) {
		off, ok := doc.Mapper.FromForeign(pos)
		if !ok {
			continue
		}
		if occ, ok := doc.OccurrenceAt(off); ok {
			return doc, occ, true
		}
	}
	return nil, nil, false
}

// Definition resolves the identifier at an original-file position to its
// definition site(s). A fragment spread with colliding definitions returns
// every site. An unresolvable identifier returns no locations.
func (r *Resolver) Definition(path string, pos source.Position) []source.Location {
	doc, occ, ok := r.OccurrenceAt(path, pos)
	if !ok {
		return nil
	}
	return r.definitionOf(doc, occ)
}

func (r *Resolver) definitionOf(doc *Document, occ *Occurrence) []source.Location {
	switch occ.Kind {
	case KindFragmentSpread:
		sites := r.docs.Fragments(occ.Name)
		locs := make([]source.Location, 0, len(sites))
		for _, site := range sites {
			locs = append(locs, site.NameLocation())
		}
		return locs

	case KindTypeRef:
		if r.schema == nil {
			return nil
		}
		if loc, ok := r.schema.TypeLocation(occ.Name); ok {
			return []source.Location{loc}
		}

	case KindFieldRef:
		if r.schema == nil || occ.ParentType == "" {
			return nil
		}
		if loc, ok := r.schema.FieldLocation(occ.ParentType, occ.Name); ok {
			return []source.Location{loc}
		}

	case KindArgumentRef:
		if r.schema == nil {
			return nil
		}
		if occ.HostDirective != "" {
			if loc, ok := r.schema.ArgumentLocation(occ.HostDirective, "", occ.Name); ok {
				return []source.Location{loc}
			}
			return nil
		}
		if loc, ok := r.schema.ArgumentLocation(occ.ParentType, occ.HostField, occ.Name); ok {
			return []source.Location{loc}
		}

	case KindEnumValueRef:
		if r.schema == nil || occ.ParentType == "" {
			return nil
		}
		if loc, ok := r.schema.EnumValueLocation(occ.ParentType, occ.Name); ok {
			return []source.Location{loc}
		}

	case KindDirectiveRef:
		if r.schema == nil {
			return nil
		}
		if loc, ok := r.schema.DirectiveLocation(occ.Name); ok {
			return []source.Location{loc}
		}

	case KindVariableRef:
		if loc, ok := variableDefLocation(doc, occ); ok {
			return []source.Location{loc}
		}

	case KindFragmentDef, KindOperationDef, KindVariableDef:
		// Definitions resolve to themselves.
		return []source.Location{doc.Location(occ.Start, occ.End)}
	}
	return nil
}

// variableDefLocation finds the $name definition in the occurrence's own
// operation.
func variableDefLocation(doc *Document, occ *Occurrence) (source.Location, bool) {
	if occ.encOp == nil {
		return source.Location{}, false
	}
	for i := range doc.Occurrences {
		o := &doc.Occurrences[i]
		if o.Kind == KindVariableDef && o.Name == occ.Name && o.encOp == occ.encOp {
			return doc.Location(o.Start, o.End), true
		}
	}
	return source.Location{}, false
}

// References finds every reference to the identifier at an original-file
// position across the project, including the definition sites themselves.
// Results are restricted to documents whose file matches scope. An
// identifier with no resolvable target yields no locations.
func (r *Resolver) References(path string, pos source.Position, scope Scope) []source.Location {
	doc, occ, ok := r.OccurrenceAt(path, pos)
	if !ok {
		return nil
	}

	var locs []source.Location
	switch occ.Kind {
	case KindFragmentSpread, KindFragmentDef:
		for _, site := range r.docs.Fragments(occ.Name) {
			if scope.Matches(site.Doc.ID.Path) {
				locs = append(locs, site.NameLocation())
			}
		}
		locs = append(locs, r.collect(scope, func(d *Document, o *Occurrence) bool {
			return o.Kind == KindFragmentSpread && o.Name == occ.Name
		})...)

	case KindOperationDef:
		for _, site := range r.docs.Operations(occ.Name) {
			if scope.Matches(site.Doc.ID.Path) {
				locs = append(locs, site.NameLocation())
			}
		}

	case KindFieldRef:
		if occ.ParentType == "" {
			return nil
		}
		locs = r.collect(scope, func(d *Document, o *Occurrence) bool {
			return o.Kind == KindFieldRef && o.Name == occ.Name && o.ParentType == occ.ParentType
		})

	case KindTypeRef:
		locs = r.collect(scope, func(d *Document, o *Occurrence) bool {
			return o.Kind == KindTypeRef && o.Name == occ.Name
		})

	case KindVariableRef, KindVariableDef:
		// Variables are scoped to their operation within their document.
		if !scope.Matches(doc.ID.Path) {
			return nil
		}
		for i := range doc.Occurrences {
			o := &doc.Occurrences[i]
			if o.Name != occ.Name || o.encOp != occ.encOp {
				continue
			}
			if o.Kind == KindVariableRef || o.Kind == KindVariableDef {
				locs = append(locs, doc.Location(o.Start, o.End))
			}
		}

	case KindEnumValueRef:
		if occ.ParentType == "" {
			return nil
		}
		locs = r.collect(scope, func(d *Document, o *Occurrence) bool {
			return o.Kind == KindEnumValueRef && o.Name == occ.Name && o.ParentType == occ.ParentType
		})

	case KindArgumentRef:
		locs = r.collect(scope, func(d *Document, o *Occurrence) bool {
			return o.Kind == KindArgumentRef && o.Name == occ.Name &&
				o.ParentType == occ.ParentType && o.HostField == occ.HostField &&
				o.HostDirective == occ.HostDirective
		})

	case KindDirectiveRef:
		locs = r.collect(scope, func(d *Document, o *Occurrence) bool {
			return o.Kind == KindDirectiveRef && o.Name == occ.Name
		})
	}
	return locs
}

func (r *Resolver) collect(scope Scope, match func(*Document, *Occurrence) bool) []source.Location {
	var locs []source.Location
	for _, d := range r.docs.Documents() {
		if !scope.Matches(d.ID.Path) {
			continue
		}
		for i := range d.Occurrences {
			o := &d.Occurrences[i]
			if match(d, o) {
				locs = append(locs, d.Location(o.Start, o.End))
			}
		}
	}
	return locs
}
