package project

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/trevor-scheer/gqlscope/pkg/source"
)

// Project is the live state of one configured GraphQL project: its merged
// schema, its document index, and the rule settings that govern validation.
// Reads (diagnostics, navigation, hover) run concurrently with each other
// and with updates; each mutation is applied atomically per file.
type Project struct {
	name      string
	rules     RuleSettings
	extractor *source.Extractor

	// writeMu serializes mutations. Readers never take it; they go through
	// the schema RWMutex and the document index's own lock.
	writeMu sync.Mutex

	mu            sync.RWMutex
	schema        *SchemaIndex
	schemaErr     error
	schemaSources []*ast.Source

	docs *DocumentIndex

	// texts retains the latest content of every open document so the whole
	// index can be rebuilt when the schema changes.
	textsMu sync.Mutex
	texts   map[string]string
}

// NewProject builds an empty project. tags configures which template tags
// extraction recognizes in foreign files; nil keeps the defaults.
func NewProject(name string, rules RuleSettings, tags []string) *Project {
	return &Project{
		name:      name,
		rules:     rules,
		extractor: source.NewExtractor(tags...),
		docs:      NewDocumentIndex(),
		texts:     make(map[string]string),
	}
}

// Name returns the project's configured name.
func (p *Project) Name() string { return p.name }

// Rules returns the project's rule settings.
func (p *Project) Rules() RuleSettings { return p.rules }

// Schema returns the current schema index and the error from the last
// schema build. Exactly one of the two is meaningful.
func (p *Project) Schema() (*SchemaIndex, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.schema, p.schemaErr
}

// LoadSchema parses and merges the given schema sources, replacing any
// previous schema. Every indexed document is rebuilt against the new schema
// so parent-type resolution stays consistent. On failure the schema becomes
// unavailable and the error is retained; documents keep indexing without
// resolved parents.
func (p *Project) LoadSchema(sources ...*ast.Source) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	schema, err := BuildSchemaIndex(sources...)

	p.mu.Lock()
	p.schema = schema
	p.schemaErr = err
	p.schemaSources = sources
	p.mu.Unlock()

	p.reindexAll(schema)
	return err
}

// ReloadSchema rebuilds the schema from the sources given to the last
// LoadSchema call. Used when a schema file changes on disk and the caller
// re-reads it.
func (p *Project) ReloadSchema(sources ...*ast.Source) error {
	if len(sources) == 0 {
		p.mu.RLock()
		sources = p.schemaSources
		p.mu.RUnlock()
	}
	if len(sources) == 0 {
		return ErrNoSchema
	}
	return p.LoadSchema(sources...)
}

// reindexAll rebuilds every retained document against schema.
func (p *Project) reindexAll(schema *SchemaIndex) {
	p.textsMu.Lock()
	retained := make(map[string]string, len(p.texts))
	for path, text := range p.texts {
		retained[path] = text
	}
	p.textsMu.Unlock()

	for path, text := range retained {
		docs, fileDiags := p.buildDocuments(path, text, schema)
		p.docs.Replace(path, docs, fileDiags)
	}
}

// UpdateDocument replaces the indexed state derived from one file with the
// state derived from text. Unrecognized file extensions are rejected;
// foreign files with syntax errors index whatever blocks were recoverable
// and carry a file-level diagnostic.
func (p *Project) UpdateDocument(path, text string) error {
	if _, ok := source.LanguageForPath(path); !ok {
		return fmt.Errorf("unsupported file type: %s", path)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.textsMu.Lock()
	p.texts[path] = text
	p.textsMu.Unlock()

	schema, _ := p.Schema()
	docs, fileDiags := p.buildDocuments(path, text, schema)
	p.docs.Replace(path, docs, fileDiags)
	return nil
}

// CloseDocument drops every entry derived from path.
func (p *Project) CloseDocument(path string) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.textsMu.Lock()
	delete(p.texts, path)
	p.textsMu.Unlock()

	p.docs.Remove(path)
}

func (p *Project) buildDocuments(path, text string, schema *SchemaIndex) ([]*Document, []Diagnostic) {
	lang, _ := source.LanguageForPath(path)
	blocks, err := p.extractor.Extract(lang, []byte(text))

	var fileDiags []Diagnostic
	if err != nil {
		fileDiags = append(fileDiags, Diagnostic{
			Severity: SeverityWarning,
			Location: source.Location{
				File:  path,
				Start: source.Position{Line: 1, Column: 0},
				End:   source.Position{Line: 1, Column: 0},
			},
			Message: err.Error(),
			Code:    "source/extract",
		})
	}

	docs := make([]*Document, 0, len(blocks))
	for _, b := range blocks {
		id := DocumentID{Path: path, Block: b.Index}
		docs = append(docs, BuildDocument(id, b.Text, b.Mapper(), schema))
	}
	return docs, fileDiags
}

// Documents exposes the project's document index for navigation queries.
func (p *Project) Documents() *DocumentIndex { return p.docs }

// Diagnostics returns every diagnostic for one file: extraction findings,
// parse errors, and schema validation results for each of its blocks.
func (p *Project) Diagnostics(path string) []Diagnostic {
	schema, _ := p.Schema()
	v := NewValidator(schema, p.docs, p.rules)

	diags := p.docs.FileDiagnostics(path)
	for _, doc := range p.docs.DocumentsForFile(path) {
		diags = append(diags, v.ValidateDocument(doc)...)
	}
	return diags
}

// Validate runs per-document validation over every indexed file
// concurrently and returns the results keyed by file path. Files with no
// findings are omitted.
func (p *Project) Validate() map[string][]Diagnostic {
	schema, _ := p.Schema()
	v := NewValidator(schema, p.docs, p.rules)
	paths := p.docs.Files()

	type result struct {
		path  string
		diags []Diagnostic
	}

	jobs := make(chan string, len(paths))
	results := make(chan result, len(paths))

	workers := runtime.NumCPU()
	if workers > len(paths) {
		workers = len(paths)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				diags := append([]Diagnostic(nil), p.docs.FileDiagnostics(path)...)
				for _, doc := range p.docs.DocumentsForFile(path) {
					diags = append(diags, v.ValidateDocument(doc)...)
				}
				results <- result{path: path, diags: diags}
			}
		}()
	}
	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := make(map[string][]Diagnostic)
	for r := range results {
		if len(r.diags) > 0 {
			out[r.path] = r.diags
		}
	}
	return out
}

// Lint runs the project-wide rules and returns their findings sorted by
// location.
func (p *Project) Lint() []Diagnostic {
	schema, _ := p.Schema()
	v := NewValidator(schema, p.docs, p.rules)
	diags := v.ProjectDiagnostics()
	sortDiagnostics(diags)
	return diags
}

// Definition resolves the identifier at an original-file position to its
// definition site(s).
func (p *Project) Definition(path string, pos source.Position) []source.Location {
	schema, _ := p.Schema()
	return NewResolver(schema, p.docs).Definition(path, pos)
}

// References finds every reference to the identifier at an original-file
// position, restricted to files matching scope.
func (p *Project) References(path string, pos source.Position, scope Scope) []source.Location {
	schema, _ := p.Schema()
	return NewResolver(schema, p.docs).References(path, pos, scope)
}

// Hover builds hover information for the identifier at an original-file
// position.
func (p *Project) Hover(path string, pos source.Position) (HoverInfo, bool) {
	schema, _ := p.Schema()
	return NewResolver(schema, p.docs).Hover(path, pos)
}

func sortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Location, diags[j].Location
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Start.Line != b.Start.Line {
			return a.Start.Line < b.Start.Line
		}
		return a.Start.Column < b.Start.Column
	})
}
