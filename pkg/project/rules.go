package project

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/trevor-scheer/gqlscope/pkg/source"
)

// ProjectDiagnostics evaluates the enabled project-wide rules over the
// whole document index. Disabled rules are not evaluated at all.
func (v *Validator) ProjectDiagnostics() []Diagnostic {
	var diags []Diagnostic
	if v.rules.UniqueNames != LevelOff {
		diags = append(diags, v.checkUniqueNames()...)
	}
	if v.rules.DeprecatedField != LevelOff && v.schema != nil {
		diags = append(diags, v.checkDeprecatedFields()...)
	}
	if v.rules.UnusedFields != LevelOff && v.schema != nil {
		diags = append(diags, v.checkUnusedFields()...)
	}
	if v.rules.FragmentCycles != LevelOff {
		diags = append(diags, v.checkFragmentCycles()...)
	}
	return diags
}

// checkUniqueNames reports fragment and named-operation name collisions at
// every colliding location, each cross-referencing the others.
func (v *Validator) checkUniqueNames() []Diagnostic {
	severity := v.rules.UniqueNames.severity()
	var diags []Diagnostic

	for _, name := range v.docs.FragmentNames() {
		sites := v.docs.Fragments(name)
		if len(sites) < 2 {
			continue
		}
		locs := make([]source.Location, len(sites))
		for i, s := range sites {
			locs[i] = s.NameLocation()
		}
		for i, loc := range locs {
			diags = append(diags, Diagnostic{
				Severity: severity,
				Location: loc,
				Message:  fmt.Sprintf("Duplicate fragment name %q (also defined at %s)", name, otherLocations(locs, i)),
				Code:     "unique_names",
			})
		}
	}

	for _, name := range v.docs.OperationNames() {
		sites := v.docs.Operations(name)
		if len(sites) < 2 {
			continue
		}
		locs := make([]source.Location, len(sites))
		for i, s := range sites {
			locs[i] = s.NameLocation()
		}
		for i, loc := range locs {
			diags = append(diags, Diagnostic{
				Severity: severity,
				Location: loc,
				Message:  fmt.Sprintf("Duplicate operation name %q (also defined at %s)", name, otherLocations(locs, i)),
				Code:     "unique_names",
			})
		}
	}
	return diags
}

func otherLocations(locs []source.Location, skip int) string {
	others := make([]string, 0, len(locs)-1)
	for i, l := range locs {
		if i != skip {
			others = append(others, l.String())
		}
	}
	return strings.Join(others, ", ")
}

// checkDeprecatedFields reports every field reference whose target carries
// @deprecated, with the reason when one was given.
func (v *Validator) checkDeprecatedFields() []Diagnostic {
	severity := v.rules.DeprecatedField.severity()
	var diags []Diagnostic
	for _, doc := range v.docs.Documents() {
		for _, occ := range doc.Occurrences {
			if occ.Kind != KindFieldRef || occ.ParentType == "" {
				continue
			}
			field := v.schema.Field(occ.ParentType, occ.Name)
			if field == nil {
				continue
			}
			reason, deprecated := v.schema.Deprecation(field.Directives)
			if !deprecated {
				continue
			}
			message := fmt.Sprintf("Field %q is deprecated", occ.ParentType+"."+occ.Name)
			if reason != "" {
				message += ": " + reason
			}
			diags = append(diags, Diagnostic{
				Severity: severity,
				Location: doc.Location(occ.Start, occ.End),
				Message:  message,
				Code:     "deprecated_field",
			})
		}
	}
	return diags
}

// checkUnusedFields reports schema fields no FieldRef occurrence ever
// targets, at the field's own definition site. Root operation types,
// introspection machinery and configured allowlist entries are exempt. A
// reference through an interface also marks the field on every
// implementing type.
func (v *Validator) checkUnusedFields() []Diagnostic {
	severity := v.rules.UnusedFields.severity()
	ignore := make(map[string]struct{}, len(v.rules.UnusedFieldsIgnore))
	for _, entry := range v.rules.UnusedFieldsIgnore {
		ignore[entry] = struct{}{}
	}

	used := make(map[string]map[string]struct{})
	mark := func(typeName, fieldName string) {
		if used[typeName] == nil {
			used[typeName] = make(map[string]struct{})
		}
		used[typeName][fieldName] = struct{}{}
	}
	schema := v.schema.Schema()
	for _, doc := range v.docs.Documents() {
		for _, occ := range doc.Occurrences {
			if occ.Kind != KindFieldRef || occ.ParentType == "" {
				continue
			}
			mark(occ.ParentType, occ.Name)
			if def := schema.Types[occ.ParentType]; def != nil && def.Kind == ast.Interface {
				for _, impl := range schema.PossibleTypes[occ.ParentType] {
					mark(impl.Name, occ.Name)
				}
			}
		}
	}

	roots := make(map[string]struct{})
	for _, root := range []*ast.Definition{schema.Query, schema.Mutation, schema.Subscription} {
		if root != nil {
			roots[root.Name] = struct{}{}
		}
	}

	typeNames := make([]string, 0, len(schema.Types))
	for name := range schema.Types {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	var diags []Diagnostic
	for _, typeName := range typeNames {
		def := schema.Types[typeName]
		if def.BuiltIn || strings.HasPrefix(typeName, "__") {
			continue
		}
		if def.Kind != ast.Object && def.Kind != ast.Interface {
			continue
		}
		if _, isRoot := roots[typeName]; isRoot {
			continue
		}
		for _, field := range def.Fields {
			if strings.HasPrefix(field.Name, "__") {
				continue
			}
			if _, ok := ignore[typeName+"."+field.Name]; ok {
				continue
			}
			if _, ok := used[typeName][field.Name]; ok {
				continue
			}
			loc, ok := v.schema.FieldLocation(typeName, field.Name)
			if !ok {
				continue
			}
			diags = append(diags, Diagnostic{
				Severity: severity,
				Location: loc,
				Message:  fmt.Sprintf("Field %q is never used in any operation or fragment", typeName+"."+field.Name),
				Code:     "unused_fields",
			})
		}
	}
	return diags
}

// checkFragmentCycles walks the cross-file fragment spread graph with a
// visited set and reports every spread that closes a cycle. Spec validation
// only sees cycles within a single document; spreads resolving across files
// are found here.
func (v *Validator) checkFragmentCycles() []Diagnostic {
	severity := v.rules.FragmentCycles.severity()

	// fragment name → spread names inside it
	edges := make(map[string]map[string]struct{})
	for _, doc := range v.docs.Documents() {
		for _, occ := range doc.Occurrences {
			if occ.Kind != KindFragmentSpread || occ.encFrag == nil {
				continue
			}
			from := occ.encFrag.Name
			if edges[from] == nil {
				edges[from] = make(map[string]struct{})
			}
			edges[from][occ.Name] = struct{}{}
		}
	}

	reaches := func(from, target string) bool {
		visited := make(map[string]struct{})
		stack := []string{from}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if cur == target {
				return true
			}
			if _, ok := visited[cur]; ok {
				continue
			}
			visited[cur] = struct{}{}
			for next := range edges[cur] {
				stack = append(stack, next)
			}
		}
		return false
	}

	var diags []Diagnostic
	for _, doc := range v.docs.Documents() {
		for _, occ := range doc.Occurrences {
			if occ.Kind != KindFragmentSpread || occ.encFrag == nil {
				continue
			}
			if reaches(occ.Name, occ.encFrag.Name) {
				diags = append(diags, Diagnostic{
					Severity: severity,
					Location: doc.Location(occ.Start, occ.End),
					Message:  fmt.Sprintf("Fragment %q cannot be spread here: it cycles back to %q", occ.Name, occ.encFrag.Name),
					Code:     "fragment_cycles",
				})
			}
		}
	}
	return diags
}
