package project

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/trevor-scheer/gqlscope/pkg/source"
)

// HoverInfo is the rendered summary for an identifier: a GraphQL-syntax
// signature line plus the schema description when one exists.
type HoverInfo struct {
	Signature   string `json:"signature"`
	Description string `json:"description,omitempty"`
}

// Hover builds hover information for the identifier at an original-file
// position. Unresolvable identifiers yield nothing.
func (r *Resolver) Hover(path string, pos source.Position) (HoverInfo, bool) {
	doc, occ, ok := r.OccurrenceAt(path, pos)
	if !ok {
		return HoverInfo{}, false
	}
	return r.hoverOf(doc, occ)
}

func (r *Resolver) hoverOf(doc *Document, occ *Occurrence) (HoverInfo, bool) {
	switch occ.Kind {
	case KindFieldRef:
		return r.fieldHover(occ)
	case KindTypeRef:
		return r.typeHover(occ.Name)
	case KindFragmentSpread, KindFragmentDef:
		return r.fragmentHover(occ.Name)
	case KindOperationDef:
		if occ.encOp == nil {
			return HoverInfo{}, false
		}
		return HoverInfo{Signature: fmt.Sprintf("%s %s", occ.encOp.Operation, occ.Name)}, true
	case KindVariableRef, KindVariableDef:
		return variableHover(doc, occ)
	case KindEnumValueRef:
		return r.enumValueHover(occ)
	case KindArgumentRef:
		return r.argumentHover(occ)
	case KindDirectiveRef:
		return r.directiveHover(occ.Name)
	}
	return HoverInfo{}, false
}

func (r *Resolver) fieldHover(occ *Occurrence) (HoverInfo, bool) {
	if r.schema == nil || occ.ParentType == "" {
		return HoverInfo{}, false
	}
	field := r.schema.Field(occ.ParentType, occ.Name)
	if field == nil {
		return HoverInfo{}, false
	}
	sig := fmt.Sprintf("%s.%s%s: %s", occ.ParentType, field.Name, argumentList(field.Arguments), typeString(field.Type))
	if reason, deprecated := r.schema.Deprecation(field.Directives); deprecated {
		if reason != "" {
			sig += fmt.Sprintf(" (deprecated: %s)", reason)
		} else {
			sig += " (deprecated)"
		}
	}
	return HoverInfo{Signature: sig, Description: field.Description}, true
}

func (r *Resolver) typeHover(name string) (HoverInfo, bool) {
	if r.schema == nil {
		return HoverInfo{}, false
	}
	def := r.schema.Type(name)
	if def == nil {
		return HoverInfo{}, false
	}
	return HoverInfo{
		Signature:   fmt.Sprintf("%s %s", kindKeyword(def.Kind), def.Name),
		Description: def.Description,
	}, true
}

func (r *Resolver) fragmentHover(name string) (HoverInfo, bool) {
	sites := r.docs.Fragments(name)
	if len(sites) == 0 {
		return HoverInfo{}, false
	}
	def := sites[0].Def
	return HoverInfo{Signature: fmt.Sprintf("fragment %s on %s", def.Name, def.TypeCondition)}, true
}

func variableHover(doc *Document, occ *Occurrence) (HoverInfo, bool) {
	if occ.encOp == nil {
		return HoverInfo{}, false
	}
	vd := occ.encOp.VariableDefinitions.ForName(occ.Name)
	if vd == nil {
		return HoverInfo{}, false
	}
	return HoverInfo{Signature: fmt.Sprintf("$%s: %s", vd.Variable, typeString(vd.Type))}, true
}

func (r *Resolver) enumValueHover(occ *Occurrence) (HoverInfo, bool) {
	if r.schema == nil || occ.ParentType == "" {
		return HoverInfo{}, false
	}
	val := r.schema.EnumValue(occ.ParentType, occ.Name)
	if val == nil {
		return HoverInfo{}, false
	}
	return HoverInfo{
		Signature:   fmt.Sprintf("%s.%s", occ.ParentType, val.Name),
		Description: val.Description,
	}, true
}

func (r *Resolver) argumentHover(occ *Occurrence) (HoverInfo, bool) {
	if r.schema == nil {
		return HoverInfo{}, false
	}
	var arg *ast.ArgumentDefinition
	var host string
	if occ.HostDirective != "" {
		arg = r.schema.DirectiveArgument(occ.HostDirective, occ.Name)
		host = "@" + occ.HostDirective
	} else if occ.ParentType != "" && occ.HostField != "" {
		arg = r.schema.FieldArgument(occ.ParentType, occ.HostField, occ.Name)
		host = occ.ParentType + "." + occ.HostField
	}
	if arg == nil {
		return HoverInfo{}, false
	}
	return HoverInfo{
		Signature:   fmt.Sprintf("%s(%s: %s)", host, arg.Name, typeString(arg.Type)),
		Description: arg.Description,
	}, true
}

func (r *Resolver) directiveHover(name string) (HoverInfo, bool) {
	if r.schema == nil {
		return HoverInfo{}, false
	}
	dir := r.schema.Directive(name)
	if dir == nil {
		return HoverInfo{}, false
	}
	return HoverInfo{
		Signature:   "@" + dir.Name + argumentList(dir.Arguments),
		Description: dir.Description,
	}, true
}

// typeString renders a possibly wrapped type in GraphQL syntax, e.g.
// [User!]!.
func typeString(t *ast.Type) string {
	requiredStr := ""
	if t.NonNull {
		requiredStr = "!"
	}
	if t.Elem != nil {
		return fmt.Sprintf("[%s]%s", typeString(t.Elem), requiredStr)
	}
	return t.NamedType + requiredStr
}

func argumentList(args ast.ArgumentDefinitionList) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprintf("%s: %s", a.Name, typeString(a.Type))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func kindKeyword(kind ast.DefinitionKind) string {
	switch kind {
	case ast.Object:
		return "type"
	case ast.Interface:
		return "interface"
	case ast.Union:
		return "union"
	case ast.Enum:
		return "enum"
	case ast.InputObject:
		return "input"
	case ast.Scalar:
		return "scalar"
	}
	return strings.ToLower(string(kind))
}
