// Package loader builds live projects from configuration: it expands schema
// and document globs against the filesystem, reads the matched files, and
// feeds them into the project state.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/trevor-scheer/gqlscope/pkg/config"
	"github.com/trevor-scheer/gqlscope/pkg/project"
	"github.com/trevor-scheer/gqlscope/pkg/source"
)

// LoadProject builds the named project from cfg, loading its schema and
// every document matched by its globs. The returned project carries a
// schema error rather than failing outright when the schema does not
// build, so document-level diagnostics still work.
func LoadProject(cfg *config.Config, name string) (*project.Project, error) {
	pcfg, ok := cfg.Project(name)
	if !ok {
		return nil, fmt.Errorf("project %q not found in %s", name, cfg.Path)
	}

	p := project.NewProject(projectName(cfg, name), ruleSettings(pcfg), pcfg.Extensions.Extract.Tags)

	sources, err := schemaSources(cfg.Dir(), pcfg.Schema)
	if err != nil {
		return nil, err
	}
	// Duplicate definitions and schema validation errors are retained on
	// the project; callers surface them alongside document diagnostics.
	_ = p.LoadSchema(sources...)

	paths, err := DocumentPaths(cfg.Dir(), pcfg)
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := p.UpdateDocument(path, string(data)); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// LoadWorkspace builds every project in cfg.
func LoadWorkspace(cfg *config.Config) (*project.Workspace, error) {
	w := project.NewWorkspace()
	names := make([]string, 0, len(cfg.Projects))
	for name := range cfg.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p, err := LoadProject(cfg, name)
		if err != nil {
			return nil, err
		}
		pcfg, _ := cfg.Project(name)
		w.AddProject(p, project.Scope{
			Include: append([]string(nil), pcfg.Documents...),
			Exclude: append([]string(nil), pcfg.Exclude...),
		})
	}
	return w, nil
}

// ruleSettings converts configured lint severities into rule levels.
func ruleSettings(pcfg *config.Project) project.RuleSettings {
	return project.RuleSettings{
		UniqueNames:        ruleLevel(pcfg.RuleSeverity(config.RuleUniqueNames)),
		UnusedFields:       ruleLevel(pcfg.RuleSeverity(config.RuleUnusedFields)),
		DeprecatedField:    ruleLevel(pcfg.RuleSeverity(config.RuleDeprecatedField)),
		FragmentCycles:     ruleLevel(pcfg.RuleSeverity(config.RuleFragmentCycles)),
		UnusedFieldsIgnore: append([]string(nil), pcfg.Extensions.LintOptions.UnusedFieldsIgnore...),
	}
}

func ruleLevel(s config.Severity) project.RuleLevel {
	switch s {
	case config.SeverityError:
		return project.LevelError
	case config.SeverityWarn:
		return project.LevelWarning
	default:
		return project.LevelOff
	}
}

func projectName(cfg *config.Config, name string) string {
	if name == "" && len(cfg.Projects) == 1 {
		for only := range cfg.Projects {
			return only
		}
	}
	if name == "" {
		return config.DefaultProjectName
	}
	return name
}

// schemaSources reads every schema file matched by the configured patterns.
// Patterns without glob metacharacters are treated as literal paths so a
// missing schema file is a hard error rather than an empty match.
func schemaSources(dir string, patterns []string) ([]*ast.Source, error) {
	paths, err := expandGlobs(dir, patterns, isSchemaPath)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no schema files matched %v", patterns)
	}
	sources := make([]*ast.Source, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, &ast.Source{Name: path, Input: string(data)})
	}
	return sources, nil
}

// DocumentPaths expands the project's document patterns against the
// filesystem, minus its exclusions, keeping only files whose extension the
// extractor understands.
func DocumentPaths(dir string, pcfg *config.Project) ([]string, error) {
	patterns := append([]string(nil), pcfg.Documents...)
	patterns = append(patterns, pcfg.Include...)

	paths, err := expandGlobs(dir, patterns, func(path string) bool {
		_, ok := source.LanguageForPath(path)
		return ok
	})
	if err != nil {
		return nil, err
	}

	var kept []string
	for _, path := range paths {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		excluded := false
		for _, pat := range pcfg.Exclude {
			if ok, err := doublestar.Match(pat, filepath.ToSlash(rel)); err == nil && ok {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, path)
		}
	}
	return kept, nil
}

func expandGlobs(dir string, patterns []string, keep func(string) bool) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		// A literal path that exists but did not match (FilepathGlob only
		// returns existing entries) needs no special case; a literal path
		// that does not exist surfaces as zero matches for its pattern.
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if !keep(m) {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func isSchemaPath(path string) bool {
	lang, ok := source.LanguageForPath(path)
	return ok && lang == source.LangGraphQL
}
