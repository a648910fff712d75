package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trevor-scheer/gqlscope/pkg/config"
)

const loaderSchema = `type User {
  id: ID!
  name: String!
}

type Query {
  user(id: ID!): User
}
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func loadConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	cfg, err := config.Load(filepath.Join(dir, ".graphqlrc.yml"))
	require.NoError(t, err)
	return cfg
}

func TestLoadProject_GraphQLDocuments(t *testing.T) {
	dir := writeTree(t, map[string]string{
		".graphqlrc.yml": "schema: schema.graphql\ndocuments: 'queries/**/*.graphql'\n",
		"schema.graphql": loaderSchema,
		"queries/get.graphql":        "query Get { user(id: \"1\") { name } }\n",
		"queries/nested/bad.graphql": "query Bad { user(id: \"1\") { nope } }\n",
	})

	p, err := LoadProject(loadConfig(t, dir), "")
	require.NoError(t, err)

	results := p.Validate()
	require.Len(t, results, 1)
	for path, diags := range results {
		assert.Contains(t, path, "bad.graphql")
		require.Len(t, diags, 1)
		assert.Contains(t, diags[0].Message, "nope")
	}
}

func TestLoadProject_TypeScriptDocuments(t *testing.T) {
	dir := writeTree(t, map[string]string{
		".graphqlrc.yml": "schema: schema.graphql\ndocuments: 'src/**/*.{ts,tsx}'\n",
		"schema.graphql": loaderSchema,
		"src/q.ts":       "const Q = gql`query { user(id: \"1\") { name } }`;\n",
		"src/skip.css":   "div {}\n",
	})

	p, err := LoadProject(loadConfig(t, dir), "")
	require.NoError(t, err)
	assert.Len(t, p.Documents().Files(), 1)
	assert.Empty(t, p.Validate())
}

func TestLoadProject_ExcludePatterns(t *testing.T) {
	dir := writeTree(t, map[string]string{
		".graphqlrc.yml": "schema: schema.graphql\ndocuments: '**/*.graphql'\nexclude: '**/*.test.graphql'\n",
		"schema.graphql": loaderSchema,
		"ok.graphql":     "query Ok { user(id: \"1\") { id } }\n",
		"no.test.graphql": "query No { user(id: \"1\") { id } }\n",
	})

	cfg := loadConfig(t, dir)
	pcfg, ok := cfg.Project("")
	require.True(t, ok)

	paths, err := DocumentPaths(cfg.Dir(), pcfg)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	// schema.graphql and ok.graphql match; the test file is excluded.
	assert.Contains(t, paths[0]+paths[1], "ok.graphql")
	assert.NotContains(t, paths[0]+paths[1], "no.test.graphql")
}

func TestLoadProject_MissingSchema(t *testing.T) {
	dir := writeTree(t, map[string]string{
		".graphqlrc.yml": "schema: nowhere.graphql\n",
	})

	_, err := LoadProject(loadConfig(t, dir), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema files matched")
}

func TestLoadProject_BrokenSchemaRetained(t *testing.T) {
	dir := writeTree(t, map[string]string{
		".graphqlrc.yml": "schema: schema.graphql\n",
		"schema.graphql": "type {{{",
	})

	p, err := LoadProject(loadConfig(t, dir), "")
	require.NoError(t, err)

	_, schemaErr := p.Schema()
	assert.Error(t, schemaErr)
}

func TestLoadProject_UnknownProjectName(t *testing.T) {
	dir := writeTree(t, map[string]string{
		".graphqlrc.yml": "projects:\n  app:\n    schema: schema.graphql\n",
		"schema.graphql": loaderSchema,
	})

	_, err := LoadProject(loadConfig(t, dir), "web")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "web")
}

func TestLoadWorkspace_MultiProject(t *testing.T) {
	dir := writeTree(t, map[string]string{
		".graphqlrc.yml": "projects:\n" +
			"  app:\n    schema: app/schema.graphql\n    documents: 'app/**/*.graphql'\n" +
			"  admin:\n    schema: admin/schema.graphql\n    documents: 'admin/**/*.graphql'\n",
		"app/schema.graphql":   loaderSchema,
		"admin/schema.graphql": "type Query { ping: String }\n",
		"app/get.graphql":      "query Get { user(id: \"1\") { id } }\n",
		"admin/ping.graphql":   "query Ping { ping }\n",
	})

	cfg, err := config.Load(filepath.Join(dir, ".graphqlrc.yml"))
	require.NoError(t, err)

	w, err := LoadWorkspace(cfg)
	require.NoError(t, err)
	require.Len(t, w.Projects(), 2)

	app := w.Project("app")
	require.NotNil(t, app)
	assert.Len(t, app.Documents().Operations("Get"), 1)

	admin := w.Project("admin")
	require.NotNil(t, admin)
	assert.Len(t, admin.Documents().Operations("Ping"), 1)
}
