// Package config loads gqlscope project configuration from graphql-config
// style files (.graphqlrc.yml, graphql.config.yaml, JSON variants). A config
// holds one or more named projects, each with schema sources, document glob
// patterns, extraction tags, and lint rule severities.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Severity is the configured level of a lint rule.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityOff   Severity = "off"
)

// Rule names recognized in the lint block.
const (
	RuleUniqueNames     = "unique_names"
	RuleUnusedFields    = "unused_fields"
	RuleDeprecatedField = "deprecated_field"
	RuleFragmentCycles  = "fragment_cycles"
)

var ruleDefaults = map[string]Severity{
	RuleUniqueNames:     SeverityError,
	RuleUnusedFields:    SeverityOff,
	RuleDeprecatedField: SeverityWarn,
	RuleFragmentCycles:  SeverityError,
}

// UnmarshalYAML validates the severity value.
func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch Severity(raw) {
	case SeverityError, SeverityWarn, SeverityOff:
		*s = Severity(raw)
		return nil
	}
	return fmt.Errorf("invalid severity %q (valid: error, warn, off)", raw)
}

// StringList accepts either a single YAML scalar or a sequence of scalars.
// graphql-config allows `schema: ./schema.graphql` and
// `schema: [a.graphql, b.graphql]` interchangeably.
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}
	var items []string
	if err := value.Decode(&items); err != nil {
		return err
	}
	*l = StringList(items)
	return nil
}

// ExtractOptions configures GraphQL extraction from foreign files.
type ExtractOptions struct {
	// Tags are the recognized template tag identifiers (default: gql, graphql).
	Tags []string `yaml:"tags"`
}

// LintOptions carries per-rule options beyond a severity.
type LintOptions struct {
	// UnusedFieldsIgnore lists "Type.field" entries exempt from the
	// unused_fields rule, for schema-only fields intentionally exposed
	// to future clients.
	UnusedFieldsIgnore []string `yaml:"unused_fields_ignore"`
}

// Extensions is the tool-specific extension block of a project.
type Extensions struct {
	Extract     ExtractOptions      `yaml:"extract"`
	Lint        map[string]Severity `yaml:"lint"`
	LintOptions LintOptions         `yaml:"lint_options"`
}

// Project is the configuration of one GraphQL project.
type Project struct {
	Schema     StringList `yaml:"schema"`
	Documents  StringList `yaml:"documents"`
	Include    StringList `yaml:"include"`
	Exclude    StringList `yaml:"exclude"`
	Extensions Extensions `yaml:"extensions"`
}

// RuleSeverity returns the effective severity for a rule, falling back to
// the rule's default when the lint block does not mention it. Unknown rule
// names are off.
func (p *Project) RuleSeverity(rule string) Severity {
	if s, ok := p.Extensions.Lint[rule]; ok {
		return s
	}
	if s, ok := ruleDefaults[rule]; ok {
		return s
	}
	return SeverityOff
}

// Config is a parsed configuration file.
type Config struct {
	// Path is the file the config was loaded from ("" for in-memory configs).
	Path string
	// Projects maps project name to its configuration. Single-project files
	// appear under the name "default".
	Projects map[string]*Project
}

// DefaultProjectName is the name given to the project of a single-project
// configuration file.
const DefaultProjectName = "default"

// UnmarshalYAML handles both layouts: a top-level `projects:` map, or a
// single project's fields at the top level.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var multi struct {
		Projects map[string]*Project `yaml:"projects"`
	}
	if err := value.Decode(&multi); err == nil && len(multi.Projects) > 0 {
		c.Projects = multi.Projects
		return nil
	}
	var single Project
	if err := value.Decode(&single); err != nil {
		return err
	}
	c.Projects = map[string]*Project{DefaultProjectName: &single}
	return nil
}

// Project returns the named project, treating "" as the default project
// when the config has exactly one.
func (c *Config) Project(name string) (*Project, bool) {
	if name == "" {
		if len(c.Projects) == 1 {
			for _, p := range c.Projects {
				return p, true
			}
		}
		name = DefaultProjectName
	}
	p, ok := c.Projects[name]
	return p, ok
}

func (c *Config) validate() error {
	if len(c.Projects) == 0 {
		return fmt.Errorf("config has no projects")
	}
	for name, p := range c.Projects {
		if p == nil || len(p.Schema) == 0 {
			return fmt.Errorf("project %q has no schema configured", name)
		}
		for _, s := range p.Schema {
			if s == "" {
				return fmt.Errorf("project %q has an empty schema path", name)
			}
		}
		for _, d := range p.Documents {
			if d == "" {
				return fmt.Errorf("project %q has an empty document pattern", name)
			}
		}
	}
	return nil
}
