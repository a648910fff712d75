package project

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/trevor-scheer/gqlscope/pkg/source"
)

func newTestProject(t *testing.T) *Project {
	t.Helper()
	p := NewProject("default", DefaultRuleSettings(), nil)
	err := p.LoadSchema(&ast.Source{Name: "schema.graphql", Input: testSchema})
	require.NoError(t, err)
	return p
}

func TestProject_UpdateAndDiagnostics(t *testing.T) {
	p := newTestProject(t)

	require.NoError(t, p.UpdateDocument("q.graphql", "query {\n  user(id: \"1\") {\n    nmae\n  }\n}\n"))

	diags := p.Diagnostics("q.graphql")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "nmae")
	assert.Equal(t, 3, diags[0].Location.Start.Line)
}

func TestProject_UpdateReplacesPreviousState(t *testing.T) {
	p := newTestProject(t)

	require.NoError(t, p.UpdateDocument("q.graphql", "query { user(id: \"1\") { nmae } }\n"))
	require.NotEmpty(t, p.Diagnostics("q.graphql"))

	require.NoError(t, p.UpdateDocument("q.graphql", "query { user(id: \"1\") { name } }\n"))
	assert.Empty(t, p.Diagnostics("q.graphql"))
}

func TestProject_TypeScriptDocument(t *testing.T) {
	p := newTestProject(t)

	src := "import gql from 'graphql-tag';\n" +
		"const Q = gql`\n" +
		"  query {\n" +
		"    user(id: \"1\") { nmae }\n" +
		"  }\n" +
		"`;\n"
	require.NoError(t, p.UpdateDocument("src/app.ts", src))

	diags := p.Diagnostics("src/app.ts")
	require.Len(t, diags, 1)
	// The finding points into the TypeScript file, not the extracted block.
	assert.Equal(t, 4, diags[0].Location.Start.Line)
	assert.Equal(t, 20, diags[0].Location.Start.Column)
}

func TestProject_ForeignSyntaxError(t *testing.T) {
	p := newTestProject(t)

	src := "const Q = gql`query { user(id: \"1\") { id } }`;\nfunction broken( {\n"
	require.NoError(t, p.UpdateDocument("src/app.ts", src))

	diags := p.Diagnostics("src/app.ts")
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, "source/extract", diags[0].Code)

	// The recoverable block is still indexed and navigable.
	locs := p.Definition("src/app.ts", source.Position{Line: 1, Column: 23})
	assert.NotEmpty(t, locs)
}

func TestProject_UnsupportedFileType(t *testing.T) {
	p := newTestProject(t)
	err := p.UpdateDocument("README.md", "# hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestProject_CloseDocument(t *testing.T) {
	p := newTestProject(t)

	require.NoError(t, p.UpdateDocument("q.graphql", "query Named { user(id: \"1\") { id } }\n"))
	require.Len(t, p.Documents().Operations("Named"), 1)

	p.CloseDocument("q.graphql")
	assert.Empty(t, p.Documents().Operations("Named"))
	assert.Empty(t, p.Diagnostics("q.graphql"))
}

func TestProject_Validate_AllFiles(t *testing.T) {
	p := newTestProject(t)

	require.NoError(t, p.UpdateDocument("good.graphql", "query { user(id: \"1\") { name } }\n"))
	require.NoError(t, p.UpdateDocument("bad.graphql", "query { user(id: \"1\") { nmae } }\n"))
	require.NoError(t, p.UpdateDocument("worse.graphql", "query {{{\n"))

	results := p.Validate()
	assert.NotContains(t, results, "good.graphql")
	assert.Contains(t, results, "bad.graphql")
	assert.Contains(t, results, "worse.graphql")
}

func TestProject_Lint(t *testing.T) {
	p := newTestProject(t)

	require.NoError(t, p.UpdateDocument("a.graphql", "fragment Bits on User { email }\n"))
	require.NoError(t, p.UpdateDocument("b.graphql", "fragment Bits on User { name }\n"))

	diags := p.Lint()

	var codes []string
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, "unique_names")
	assert.Contains(t, codes, "deprecated_field")

	// Sorted by file then position.
	for i := 1; i < len(diags); i++ {
		prev, cur := diags[i-1].Location, diags[i].Location
		if prev.File == cur.File {
			assert.False(t, cur.Start.Before(prev.Start))
		} else {
			assert.Less(t, prev.File, cur.File)
		}
	}
}

func TestProject_SchemaReload_ReindexesDocuments(t *testing.T) {
	p := newTestProject(t)
	require.NoError(t, p.UpdateDocument("q.graphql", "query { user(id: \"1\") { nickname } }\n"))
	require.NotEmpty(t, p.Diagnostics("q.graphql"))

	// The schema gains the missing field; existing documents revalidate
	// cleanly without being re-sent.
	amended := testSchema + "\nextend type User {\n  nickname: String\n}\n"
	require.NoError(t, p.ReloadSchema(&ast.Source{Name: "schema.graphql", Input: amended}))

	assert.Empty(t, p.Diagnostics("q.graphql"))
}

func TestProject_BrokenSchemaKeepsDocuments(t *testing.T) {
	p := NewProject("default", DefaultRuleSettings(), nil)
	err := p.LoadSchema(&ast.Source{Name: "schema.graphql", Input: "type {{{"})
	require.Error(t, err)

	_, schemaErr := p.Schema()
	assert.Error(t, schemaErr)

	// Documents still index; diagnostics carry parse findings only.
	require.NoError(t, p.UpdateDocument("q.graphql", "query Named { anything }\n"))
	assert.Len(t, p.Documents().Operations("Named"), 1)
	assert.Empty(t, p.Diagnostics("q.graphql"))
}

func TestProject_ConcurrentUpdatesAndQueries(t *testing.T) {
	p := newTestProject(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			path := fmt.Sprintf("f%d.graphql", n%4)
			for j := 0; j < 30; j++ {
				text := fmt.Sprintf("query Q%d { user(id: \"1\") { name } }\n", n)
				if err := p.UpdateDocument(path, text); err != nil {
					t.Error(err)
					return
				}
				p.Diagnostics(path)
				p.Definition(path, source.Position{Line: 1, Column: 30})
				p.Validate()
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, p.Documents().Files(), 4)
}

func TestWorkspace_ProjectForFile(t *testing.T) {
	w := NewWorkspace()
	app := NewProject("app", DefaultRuleSettings(), nil)
	admin := NewProject("admin", DefaultRuleSettings(), nil)
	w.AddProject(app, Scope{Include: []string{"app/**"}})
	w.AddProject(admin, Scope{Include: []string{"admin/**"}})

	assert.Equal(t, app, w.ProjectForFile("app/src/q.graphql"))
	assert.Equal(t, admin, w.ProjectForFile("admin/q.graphql"))
	assert.Nil(t, w.ProjectForFile("elsewhere/q.graphql"))

	assert.Equal(t, app, w.Project("app"))
	assert.Nil(t, w.Project("missing"))

	names := []string{}
	for _, p := range w.Projects() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"admin", "app"}, names)
}
