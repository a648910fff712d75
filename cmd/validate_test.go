package cmd_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trevor-scheer/gqlscope/cmd"
)

const schemaOnlyConfig = "schema: schema.graphql\n"

func writeQueryFile(t *testing.T, dir, query string) string {
	t.Helper()
	path := filepath.Join(dir, "query.graphql")
	require.NoError(t, os.WriteFile(path, []byte(query), 0o644))
	return path
}

func TestValidate_ValidQueryFile(t *testing.T) {
	dir, cfg := writeCliProject(t, schemaOnlyConfig, nil)
	queryPath := writeQueryFile(t, dir, "query { user(id: \"1\") { id name } }\n")

	stdout, _, err := cmd.ExecuteWithArgs([]string{"validate", queryPath, "-c", cfg, "-f", "text"})
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Query is valid")
}

func TestValidate_UnknownFieldSuggestsClosest(t *testing.T) {
	dir, cfg := writeCliProject(t, schemaOnlyConfig, nil)
	queryPath := writeQueryFile(t, dir, "query { user(id: \"1\") { nmae } }\n")

	stdout, _, err := cmd.ExecuteWithArgs([]string{"validate", queryPath, "-c", cfg, "-f", "text"})
	assert.True(t, isValidationError(err))
	assert.Contains(t, stdout, "✗ Query has 1 error")
	assert.Contains(t, stdout, "Cannot query field \"nmae\" on type \"User\"")
	assert.Contains(t, stdout, "did you mean `name`?")
}

func TestValidate_Stdin(t *testing.T) {
	_, cfg := writeCliProject(t, schemaOnlyConfig, nil)

	stdin := bytes.NewBufferString("query { user(id: \"1\") { id } }\n")
	stdout, _, err := cmd.ExecuteWithArgsAndStdin([]string{"validate", "-c", cfg, "-f", "text"}, stdin)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ Query is valid")
}

func TestValidate_StdinInvalid(t *testing.T) {
	_, cfg := writeCliProject(t, schemaOnlyConfig, nil)

	stdin := bytes.NewBufferString("query { nothere }\n")
	stdout, _, err := cmd.ExecuteWithArgsAndStdin([]string{"validate", "-c", cfg, "-f", "text"}, stdin)
	assert.True(t, isValidationError(err))
	assert.Contains(t, stdout, "stdin")
}

func TestValidate_JSONOutput(t *testing.T) {
	dir, cfg := writeCliProject(t, schemaOnlyConfig, nil)
	queryPath := writeQueryFile(t, dir, "query { user(id: \"1\") { nmae } }\n")

	stdout, _, err := cmd.ExecuteWithArgs([]string{"validate", queryPath, "-c", cfg, "-f", "json"})
	assert.True(t, isValidationError(err))

	var result cmd.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "FieldsOnCorrectType", result.Errors[0].Rule)
	require.NotEmpty(t, result.Errors[0].Locations)
	assert.Equal(t, 1, result.Errors[0].Locations[0].Line)
}

func TestValidate_ParseError(t *testing.T) {
	dir, cfg := writeCliProject(t, schemaOnlyConfig, nil)
	queryPath := writeQueryFile(t, dir, "query {\n")

	stdout, _, err := cmd.ExecuteWithArgs([]string{"validate", queryPath, "-c", cfg, "-f", "text"})
	assert.True(t, isValidationError(err))
	assert.Contains(t, stdout, "✗ Query has 1 error")
}

func TestValidate_MissingQueryFile(t *testing.T) {
	dir, cfg := writeCliProject(t, schemaOnlyConfig, nil)

	_, _, err := cmd.ExecuteWithArgs([]string{"validate", filepath.Join(dir, "nope.graphql"), "-c", cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read query file")
}

func TestValidate_BrokenSchema(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".graphqlrc.yml"), []byte(schemaOnlyConfig), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.graphql"), []byte("type {{{"), 0o644))

	stdin := bytes.NewBufferString("query { user { id } }\n")
	_, _, err := cmd.ExecuteWithArgsAndStdin([]string{"validate", "-c", filepath.Join(dir, ".graphqlrc.yml")}, stdin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema failed to build")
}
