package project

import (
	gqlparser "github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/trevor-scheer/gqlscope/pkg/source"
)

// SchemaIndex is the merged, validated schema of one project plus lookup
// tables into its source texts. It is immutable once built and rebuilt
// wholesale whenever any schema source changes.
type SchemaIndex struct {
	schema *ast.Schema
	texts  map[string]string            // source name → input text
	lines  map[string]*source.LineIndex // source name → line table
}

// BuildSchemaIndex parses and merges the given schema sources. A type or
// directive name defined twice across the merged sources yields a
// *DuplicateDefinitionError and no index.
func BuildSchemaIndex(sources ...*ast.Source) (*SchemaIndex, error) {
	ix := &SchemaIndex{
		texts: make(map[string]string, len(sources)),
		lines: make(map[string]*source.LineIndex, len(sources)),
	}

	typeDefs := make(map[string]*ast.Position)
	directiveDefs := make(map[string]*ast.Position)
	for _, src := range sources {
		doc, err := parser.ParseSchema(src)
		if err != nil {
			return nil, err
		}
		ix.texts[src.Name] = src.Input
		ix.lines[src.Name] = source.NewLineIndex(src.Input)
		for _, def := range doc.Definitions {
			if prev, ok := typeDefs[def.Name]; ok {
				return nil, ix.duplicateError("type", def.Name, prev, def.Position)
			}
			typeDefs[def.Name] = def.Position
		}
		for _, def := range doc.Directives {
			if prev, ok := directiveDefs[def.Name]; ok {
				return nil, ix.duplicateError("directive", def.Name, prev, def.Position)
			}
			directiveDefs[def.Name] = def.Position
		}
	}

	schema, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	ix.schema = schema
	return ix, nil
}

func (ix *SchemaIndex) duplicateError(kind, name string, positions ...*ast.Position) error {
	e := &DuplicateDefinitionError{Kind: kind, Name: name}
	for _, pos := range positions {
		if loc, ok := ix.nameLocation(pos, name); ok {
			e.Locations = append(e.Locations, loc)
		}
	}
	return e
}

// Schema returns the underlying merged schema.
func (ix *SchemaIndex) Schema() *ast.Schema { return ix.schema }

// Type returns the named type definition, or nil.
func (ix *SchemaIndex) Type(name string) *ast.Definition {
	return ix.schema.Types[name]
}

// Field returns the field definition on the named type, or nil.
func (ix *SchemaIndex) Field(typeName, fieldName string) *ast.FieldDefinition {
	def := ix.schema.Types[typeName]
	if def == nil {
		return nil
	}
	return def.Fields.ForName(fieldName)
}

// FieldArgument returns the argument definition on a field, or nil.
func (ix *SchemaIndex) FieldArgument(typeName, fieldName, argName string) *ast.ArgumentDefinition {
	field := ix.Field(typeName, fieldName)
	if field == nil {
		return nil
	}
	return field.Arguments.ForName(argName)
}

// Directive returns the named directive definition, or nil.
func (ix *SchemaIndex) Directive(name string) *ast.DirectiveDefinition {
	return ix.schema.Directives[name]
}

// DirectiveArgument returns the argument definition on a directive, or nil.
func (ix *SchemaIndex) DirectiveArgument(dirName, argName string) *ast.ArgumentDefinition {
	dir := ix.Directive(dirName)
	if dir == nil {
		return nil
	}
	return dir.Arguments.ForName(argName)
}

// EnumValue returns the value definition on the named enum type, or nil.
func (ix *SchemaIndex) EnumValue(typeName, valueName string) *ast.EnumValueDefinition {
	def := ix.schema.Types[typeName]
	if def == nil || def.Kind != ast.Enum {
		return nil
	}
	return def.EnumValues.ForName(valueName)
}

// RootType returns the schema's root type for an operation kind, or nil.
func (ix *SchemaIndex) RootType(op ast.Operation) *ast.Definition {
	switch op {
	case ast.Mutation:
		return ix.schema.Mutation
	case ast.Subscription:
		return ix.schema.Subscription
	default:
		return ix.schema.Query
	}
}

// Deprecation reports whether a directive list carries @deprecated, with
// the reason when one was given.
func (ix *SchemaIndex) Deprecation(directives ast.DirectiveList) (string, bool) {
	d := directives.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}

// TypeLocation returns the location of a type's name token in its schema
// source. Built-in types have no project location.
func (ix *SchemaIndex) TypeLocation(name string) (source.Location, bool) {
	def := ix.schema.Types[name]
	if def == nil || def.BuiltIn {
		return source.Location{}, false
	}
	return ix.nameLocation(def.Position, def.Name)
}

// FieldLocation returns the location of a field's name token.
func (ix *SchemaIndex) FieldLocation(typeName, fieldName string) (source.Location, bool) {
	field := ix.Field(typeName, fieldName)
	if field == nil {
		return source.Location{}, false
	}
	return ix.nameLocation(field.Position, field.Name)
}

// ArgumentLocation returns the location of an argument's name token on a
// field or, when fieldName is empty, on a directive definition.
func (ix *SchemaIndex) ArgumentLocation(typeName, fieldName, argName string) (source.Location, bool) {
	var arg *ast.ArgumentDefinition
	if fieldName == "" {
		arg = ix.DirectiveArgument(typeName, argName)
	} else {
		arg = ix.FieldArgument(typeName, fieldName, argName)
	}
	if arg == nil {
		return source.Location{}, false
	}
	return ix.nameLocation(arg.Position, arg.Name)
}

// EnumValueLocation returns the location of an enum value's name token.
func (ix *SchemaIndex) EnumValueLocation(typeName, valueName string) (source.Location, bool) {
	val := ix.EnumValue(typeName, valueName)
	if val == nil {
		return source.Location{}, false
	}
	return ix.nameLocation(val.Position, val.Name)
}

// DirectiveLocation returns the location of a directive definition's name
// token.
func (ix *SchemaIndex) DirectiveLocation(name string) (source.Location, bool) {
	dir := ix.Directive(name)
	if dir == nil {
		return source.Location{}, false
	}
	return ix.nameLocation(dir.Position, dir.Name)
}

// nameLocation resolves a parser position to the span of the name token
// that follows it. Positions into sources the index does not own (the
// built-in prelude) resolve to nothing.
func (ix *SchemaIndex) nameLocation(pos *ast.Position, name string) (source.Location, bool) {
	if pos == nil || pos.Src == nil {
		return source.Location{}, false
	}
	text, ok := ix.texts[pos.Src.Name]
	if !ok {
		return source.Location{}, false
	}
	lines := ix.lines[pos.Src.Name]
	s, e := identSpan(text, pos.Start, name)
	sl, sc := lines.PositionFor(s)
	el, ec := lines.PositionFor(e)
	return source.Location{
		File:  pos.Src.Name,
		Start: source.Position{Line: sl + 1, Column: sc},
		End:   source.Position{Line: el + 1, Column: ec},
	}, true
}

// baseTypeName returns the underlying named type of a possibly wrapped
// type, e.g. [User!]! yields "User".
func baseTypeName(t *ast.Type) string {
	for t.Elem != nil {
		t = t.Elem
	}
	return t.NamedType
}

// innermostType returns the innermost (named) type node, whose position
// points at the name rather than a wrapper.
func innermostType(t *ast.Type) *ast.Type {
	for t.Elem != nil {
		t = t.Elem
	}
	return t
}
