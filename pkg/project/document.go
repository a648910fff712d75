package project

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/trevor-scheer/gqlscope/pkg/source"
)

// DocumentID is the stable identity of one indexed document: the file it
// lives in plus the extracted block's ordinal for files embedding several
// GraphQL templates. It is the unit of invalidation on edit.
type DocumentID struct {
	Path  string
	Block int
}

func (id DocumentID) String() string {
	return fmt.Sprintf("%s#%d", id.Path, id.Block)
}

// OccurrenceKind tags every identifier reference site recorded by the
// indexer. The set is closed: resolution dispatches over it exhaustively.
type OccurrenceKind int

const (
	KindFieldRef OccurrenceKind = iota
	KindFragmentSpread
	KindTypeRef
	KindVariableRef
	KindArgumentRef
	KindEnumValueRef
	KindDirectiveRef
	KindFragmentDef
	KindOperationDef
	KindVariableDef
)

func (k OccurrenceKind) String() string {
	switch k {
	case KindFieldRef:
		return "field"
	case KindFragmentSpread:
		return "fragment-spread"
	case KindTypeRef:
		return "type"
	case KindVariableRef:
		return "variable"
	case KindArgumentRef:
		return "argument"
	case KindEnumValueRef:
		return "enum-value"
	case KindDirectiveRef:
		return "directive"
	case KindFragmentDef:
		return "fragment-definition"
	case KindOperationDef:
		return "operation-definition"
	case KindVariableDef:
		return "variable-definition"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Occurrence is a single identifier site within a document. Start and End
// are byte offsets into the block's own text; public results always go
// through the document's mapper so callers only ever see original-file
// coordinates.
type Occurrence struct {
	Kind OccurrenceKind
	Name string
	Start, End int

	// ParentType is the statically resolved containing type for a FieldRef,
	// the enum type for an EnumValueRef, and the host field's parent type
	// for an ArgumentRef. Empty when the schema cannot resolve it; the
	// occurrence is still recorded.
	ParentType string
	// HostField is the field whose argument list contains an ArgumentRef.
	HostField string
	// HostDirective is the directive whose argument list contains an
	// ArgumentRef.
	HostDirective string
	// Enclosing names the operation or fragment the occurrence sits in
	// ("" inside an anonymous operation).
	Enclosing string

	encOp   *ast.OperationDefinition
	encFrag *ast.FragmentDefinition
}

// Document is one parsed GraphQL unit: a whole .graphql file or one
// extracted block of a foreign file.
type Document struct {
	ID     DocumentID
	Text   string
	Mapper *source.Mapper
	// AST is nil when the text failed to parse as an executable document.
	AST *ast.QueryDocument
	// IsSchema marks content that parses as a type-system document; such
	// files are excluded from executable-document validation.
	IsSchema         bool
	ParseDiagnostics []Diagnostic
	Occurrences      []Occurrence
}

// BuildDocument parses text and collects every definition and identifier
// occurrence in a single pass. The schema index may be nil (project with a
// broken schema); occurrences are then recorded without resolved parent
// types. Building the same text twice yields an identical document.
func BuildDocument(id DocumentID, text string, mapper *source.Mapper, schema *SchemaIndex) *Document {
	if mapper == nil {
		mapper = source.IdentityMapper(text)
	}
	d := &Document{ID: id, Text: text, Mapper: mapper}

	qdoc, err := parser.ParseQuery(&ast.Source{Name: id.Path, Input: text})
	if err != nil {
		if sdoc, serr := parser.ParseSchema(&ast.Source{Name: id.Path, Input: text}); serr == nil && len(sdoc.Definitions)+len(sdoc.Extensions) > 0 {
			d.IsSchema = true
			return d
		}
		d.addParseError(err)
		return d
	}
	d.AST = qdoc

	w := &walker{doc: d, schema: schema, text: text}
	for _, op := range qdoc.Operations {
		w.operation(op)
	}
	for _, frag := range qdoc.Fragments {
		w.fragment(frag)
	}
	return d
}

// Location converts a span of block-text offsets into an original-file
// location via the document's mapper.
func (d *Document) Location(start, end int) source.Location {
	return source.Location{
		File:  d.ID.Path,
		Start: d.Mapper.ToForeign(start),
		End:   d.Mapper.ToForeign(end),
	}
}

// OccurrenceAt returns the smallest occurrence whose span contains the
// block-text offset, end-inclusive.
func (d *Document) OccurrenceAt(offset int) (*Occurrence, bool) {
	var best *Occurrence
	for i := range d.Occurrences {
		o := &d.Occurrences[i]
		if o.Start <= offset && offset <= o.End {
			if best == nil || o.End-o.Start < best.End-best.Start {
				best = o
			}
		}
	}
	return best, best != nil
}

func (d *Document) addParseError(err error) {
	var list gqlerror.List
	if errors.As(err, &list) {
		for _, e := range list {
			d.ParseDiagnostics = append(d.ParseDiagnostics, d.diagnosticFromGQLError(e, "graphql/parse"))
		}
		return
	}
	var one *gqlerror.Error
	if errors.As(err, &one) {
		d.ParseDiagnostics = append(d.ParseDiagnostics, d.diagnosticFromGQLError(one, "graphql/parse"))
		return
	}
	d.ParseDiagnostics = append(d.ParseDiagnostics, Diagnostic{
		Severity: SeverityError,
		Location: d.Location(0, 0),
		Message:  err.Error(),
		Code:     "graphql/parse",
	})
}

// diagnosticFromGQLError maps a gqlparser error onto original-file
// coordinates, widening the span over the identifier at the error offset
// so renderers can underline the whole token.
func (d *Document) diagnosticFromGQLError(e *gqlerror.Error, code string) Diagnostic {
	if e.Rule != "" {
		code = e.Rule
	}
	start := source.Position{Line: 1, Column: 0}
	end := start
	if len(e.Locations) > 0 {
		loc := e.Locations[0]
		start = d.Mapper.Translate(loc.Line, loc.Column)
		end = start
		if off, ok := d.Mapper.LocalOffset(loc.Line, loc.Column); ok {
			stop := off
			for stop < len(d.Text) && isIdentChar(d.Text[stop]) {
				stop++
			}
			if stop > off {
				end = d.Mapper.ToForeign(stop)
			}
		}
	}
	return Diagnostic{
		Severity: SeverityError,
		Location: source.Location{File: d.ID.Path, Start: start, End: end},
		Message:  e.Message,
		Code:     code,
	}
}

// walker performs the single indexing pass over a parsed document,
// carrying the statically resolved parent type down each selection path.
type walker struct {
	doc    *Document
	schema *SchemaIndex
	text   string
}

func (w *walker) add(o Occurrence) {
	w.doc.Occurrences = append(w.doc.Occurrences, o)
}

func posStart(pos *ast.Position) int {
	if pos == nil {
		return 0
	}
	return pos.Start
}

func (w *walker) operation(op *ast.OperationDefinition) {
	enc := op.Name
	if op.Name != "" {
		s, e := identSpan(w.text, posStart(op.Position)+len(string(op.Operation)), op.Name)
		w.add(Occurrence{Kind: KindOperationDef, Name: op.Name, Start: s, End: e, Enclosing: enc, encOp: op})
	}
	for _, vd := range op.VariableDefinitions {
		s, e := identSpan(w.text, posStart(vd.Position), vd.Variable)
		w.add(Occurrence{Kind: KindVariableDef, Name: vd.Variable, Start: s, End: e, Enclosing: enc, encOp: op})
		w.typeRef(vd.Type, enc, op, nil)
		if vd.DefaultValue != nil {
			w.value(vd.DefaultValue, vd.Type, enc, op, nil)
		}
	}
	w.directives(op.Directives, "", enc, op, nil)

	root := ""
	if w.schema != nil {
		if rt := w.schema.RootType(op.Operation); rt != nil {
			root = rt.Name
		}
	}
	w.selectionSet(op.SelectionSet, root, enc, op, nil)
}

func (w *walker) fragment(frag *ast.FragmentDefinition) {
	s, e := identSpan(w.text, posStart(frag.Position)+len("fragment"), frag.Name)
	w.add(Occurrence{Kind: KindFragmentDef, Name: frag.Name, Start: s, End: e, Enclosing: frag.Name, encFrag: frag})
	if frag.TypeCondition != "" {
		ts, te := identSpan(w.text, e, frag.TypeCondition)
		w.add(Occurrence{Kind: KindTypeRef, Name: frag.TypeCondition, Start: ts, End: te, Enclosing: frag.Name, encFrag: frag})
	}
	w.directives(frag.Directives, "", frag.Name, nil, frag)
	w.selectionSet(frag.SelectionSet, frag.TypeCondition, frag.Name, nil, frag)
}

func (w *walker) selectionSet(sel ast.SelectionSet, parent, enc string, op *ast.OperationDefinition, frag *ast.FragmentDefinition) {
	for _, s := range sel {
		switch node := s.(type) {
		case *ast.Field:
			w.field(node, parent, enc, op, frag)
		case *ast.FragmentSpread:
			ns, ne := identSpan(w.text, posStart(node.Position), node.Name)
			w.add(Occurrence{Kind: KindFragmentSpread, Name: node.Name, Start: ns, End: ne, Enclosing: enc, encOp: op, encFrag: frag})
			w.directives(node.Directives, parent, enc, op, frag)
		case *ast.InlineFragment:
			next := parent
			if node.TypeCondition != "" {
				ts, te := identSpan(w.text, posStart(node.Position), node.TypeCondition)
				w.add(Occurrence{Kind: KindTypeRef, Name: node.TypeCondition, Start: ts, End: te, Enclosing: enc, encOp: op, encFrag: frag})
				next = node.TypeCondition
			}
			w.directives(node.Directives, parent, enc, op, frag)
			w.selectionSet(node.SelectionSet, next, enc, op, frag)
		}
	}
}

func (w *walker) field(f *ast.Field, parent, enc string, op *ast.OperationDefinition, frag *ast.FragmentDefinition) {
	from := posStart(f.Position)
	if f.Alias != "" && f.Alias != f.Name {
		_, aliasEnd := identSpan(w.text, from, f.Alias)
		from = aliasEnd
	}
	fs, fe := identSpan(w.text, from, f.Name)
	w.add(Occurrence{Kind: KindFieldRef, Name: f.Name, Start: fs, End: fe, ParentType: parent, Enclosing: enc, encOp: op, encFrag: frag})

	var fieldDef *ast.FieldDefinition
	if w.schema != nil && parent != "" {
		fieldDef = w.schema.Field(parent, f.Name)
	}

	for _, arg := range f.Arguments {
		as, ae := identSpan(w.text, posStart(arg.Position), arg.Name)
		w.add(Occurrence{Kind: KindArgumentRef, Name: arg.Name, Start: as, End: ae, ParentType: parent, HostField: f.Name, Enclosing: enc, encOp: op, encFrag: frag})
		var expected *ast.Type
		if fieldDef != nil {
			if argDef := fieldDef.Arguments.ForName(arg.Name); argDef != nil {
				expected = argDef.Type
			}
		}
		w.value(arg.Value, expected, enc, op, frag)
	}
	w.directives(f.Directives, parent, enc, op, frag)

	child := ""
	if fieldDef != nil {
		child = baseTypeName(fieldDef.Type)
	}
	w.selectionSet(f.SelectionSet, child, enc, op, frag)
}

func (w *walker) directives(list ast.DirectiveList, parent, enc string, op *ast.OperationDefinition, frag *ast.FragmentDefinition) {
	for _, dir := range list {
		ds, de := identSpan(w.text, posStart(dir.Position), dir.Name)
		w.add(Occurrence{Kind: KindDirectiveRef, Name: dir.Name, Start: ds, End: de, ParentType: parent, Enclosing: enc, encOp: op, encFrag: frag})
		for _, arg := range dir.Arguments {
			as, ae := identSpan(w.text, posStart(arg.Position), arg.Name)
			w.add(Occurrence{Kind: KindArgumentRef, Name: arg.Name, Start: as, End: ae, HostDirective: dir.Name, Enclosing: enc, encOp: op, encFrag: frag})
			var expected *ast.Type
			if w.schema != nil {
				if argDef := w.schema.DirectiveArgument(dir.Name, arg.Name); argDef != nil {
					expected = argDef.Type
				}
			}
			w.value(arg.Value, expected, enc, op, frag)
		}
	}
}

func (w *walker) typeRef(t *ast.Type, enc string, op *ast.OperationDefinition, frag *ast.FragmentDefinition) {
	if t == nil {
		return
	}
	inner := innermostType(t)
	if inner.NamedType == "" {
		return
	}
	s, e := identSpan(w.text, posStart(inner.Position), inner.NamedType)
	w.add(Occurrence{Kind: KindTypeRef, Name: inner.NamedType, Start: s, End: e, Enclosing: enc, encOp: op, encFrag: frag})
}

// value records variable and enum-value references inside argument values,
// resolving expected types through list elements and input object fields so
// nested enum values still know their enum type.
func (w *walker) value(v *ast.Value, expected *ast.Type, enc string, op *ast.OperationDefinition, frag *ast.FragmentDefinition) {
	if v == nil {
		return
	}
	switch v.Kind {
	case ast.Variable:
		s, e := identSpan(w.text, posStart(v.Position), v.Raw)
		w.add(Occurrence{Kind: KindVariableRef, Name: v.Raw, Start: s, End: e, Enclosing: enc, encOp: op, encFrag: frag})
	case ast.EnumValue:
		enumType := ""
		if w.schema != nil && expected != nil {
			if def := w.schema.Type(baseTypeName(expected)); def != nil && def.Kind == ast.Enum {
				enumType = def.Name
			}
		}
		s, e := identSpan(w.text, posStart(v.Position), v.Raw)
		w.add(Occurrence{Kind: KindEnumValueRef, Name: v.Raw, Start: s, End: e, ParentType: enumType, Enclosing: enc, encOp: op, encFrag: frag})
	case ast.ListValue:
		elem := expected
		if expected != nil && expected.Elem != nil {
			elem = expected.Elem
		}
		for _, child := range v.Children {
			w.value(child.Value, elem, enc, op, frag)
		}
	case ast.ObjectValue:
		var inputDef *ast.Definition
		if w.schema != nil && expected != nil {
			inputDef = w.schema.Type(baseTypeName(expected))
		}
		for _, child := range v.Children {
			var fieldType *ast.Type
			if inputDef != nil {
				if f := inputDef.Fields.ForName(child.Name); f != nil {
					fieldType = f.Type
				}
			}
			w.value(child.Value, fieldType, enc, op, frag)
		}
	}
}
