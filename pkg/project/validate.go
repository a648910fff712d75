package project

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// RuleLevel is the configured level of a project-wide rule.
type RuleLevel int

const (
	LevelOff RuleLevel = iota
	LevelWarning
	LevelError
)

func (l RuleLevel) severity() Severity {
	if l == LevelError {
		return SeverityError
	}
	return SeverityWarning
}

// RuleSettings enables each project-wide rule at a level. A disabled rule
// produces no diagnostics and costs no evaluation.
type RuleSettings struct {
	UniqueNames     RuleLevel
	UnusedFields    RuleLevel
	DeprecatedField RuleLevel
	FragmentCycles  RuleLevel

	// UnusedFieldsIgnore lists "Type.field" entries exempt from the
	// unused-fields rule.
	UnusedFieldsIgnore []string
}

// DefaultRuleSettings mirrors the recommended preset: name collisions and
// fragment cycles are errors, deprecated usage warns, unused-field
// detection is opt-in.
func DefaultRuleSettings() RuleSettings {
	return RuleSettings{
		UniqueNames:     LevelError,
		UnusedFields:    LevelOff,
		DeprecatedField: LevelWarning,
		FragmentCycles:  LevelError,
	}
}

// Validator runs spec-level GraphQL validation and the project-wide rules
// over a document index.
type Validator struct {
	schema *SchemaIndex
	docs   *DocumentIndex
	rules  RuleSettings
}

// NewValidator builds a validator. schema may be nil when the project's
// schema failed to build; spec validation is then skipped and only parse
// diagnostics are reported.
func NewValidator(schema *SchemaIndex, docs *DocumentIndex, rules RuleSettings) *Validator {
	return &Validator{schema: schema, docs: docs, rules: rules}
}

// ValidateDocument returns the parse and spec-validation diagnostics for
// one document. Schema documents are excluded from executable validation.
// The document's own AST is never touched: validation re-parses the text so
// concurrent readers of the index see an immutable document.
func (v *Validator) ValidateDocument(d *Document) []Diagnostic {
	if d.IsSchema {
		return nil
	}
	diags := append([]Diagnostic(nil), d.ParseDiagnostics...)
	if d.AST == nil || v.schema == nil {
		return diags
	}

	qdoc, err := parser.ParseQuery(&ast.Source{Name: d.ID.Path, Input: d.Text})
	if err != nil {
		return diags
	}
	for _, e := range validator.Validate(v.schema.Schema(), qdoc) {
		if v.suppressed(e.Rule, e.Message, d) {
			continue
		}
		diags = append(diags, d.diagnosticFromGQLError(e, "graphql/validate"))
	}
	return diags
}

// suppressed drops per-document findings that only arise because spec
// validation sees one document at a time while fragments resolve across
// the whole project.
func (v *Validator) suppressed(rule, message string, d *Document) bool {
	switch rule {
	case "KnownFragmentNames":
		// A spread may target a fragment defined in another file.
		for name := range v.crossFileSpreads(d) {
			if containsQuoted(message, name) {
				return true
			}
		}
	case "NoUnusedFragments":
		// A fragment defined here may be spread from another file.
		for _, frag := range fragmentNamesOf(d) {
			if containsQuoted(message, frag) && v.spreadAnywhere(frag) {
				return true
			}
		}
	case "NoUnusedVariables":
		// Variables can be carried into fragments this document cannot see.
		if len(v.crossFileSpreads(d)) > 0 {
			return true
		}
	case "NoUndefinedVariables":
		// A fragment spread from another file receives its variables from
		// the spreading operation.
		for _, frag := range fragmentNamesOf(d) {
			if v.spreadFromOtherDocument(frag, d) {
				return true
			}
		}
	}
	return false
}

func (v *Validator) spreadFromOtherDocument(name string, d *Document) bool {
	for _, doc := range v.docs.Documents() {
		if doc.ID == d.ID {
			continue
		}
		for _, occ := range doc.Occurrences {
			if occ.Kind == KindFragmentSpread && occ.Name == name {
				return true
			}
		}
	}
	return false
}

// crossFileSpreads returns the spread names of d that have no local
// definition but at least one definition elsewhere in the project.
func (v *Validator) crossFileSpreads(d *Document) map[string]struct{} {
	local := make(map[string]struct{})
	for _, frag := range fragmentNamesOf(d) {
		local[frag] = struct{}{}
	}
	out := make(map[string]struct{})
	for _, occ := range d.Occurrences {
		if occ.Kind != KindFragmentSpread {
			continue
		}
		if _, ok := local[occ.Name]; ok {
			continue
		}
		for _, site := range v.docs.Fragments(occ.Name) {
			if site.Doc.ID != d.ID {
				out[occ.Name] = struct{}{}
				break
			}
		}
	}
	return out
}

func (v *Validator) spreadAnywhere(name string) bool {
	for _, doc := range v.docs.Documents() {
		for _, occ := range doc.Occurrences {
			if occ.Kind == KindFragmentSpread && occ.Name == name {
				return true
			}
		}
	}
	return false
}

func fragmentNamesOf(d *Document) []string {
	if d.AST == nil {
		return nil
	}
	names := make([]string, 0, len(d.AST.Fragments))
	for _, frag := range d.AST.Fragments {
		names = append(names, frag.Name)
	}
	return names
}

func containsQuoted(message, name string) bool {
	return name != "" && strings.Contains(message, `"`+name+`"`)
}
