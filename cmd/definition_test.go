package cmd_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trevor-scheer/gqlscope/cmd"
)

func TestDefinition_FragmentSpreadResolvesAcrossFiles(t *testing.T) {
	dir, cfg := writeCliProject(t, docsConfig, map[string]string{
		"frag.graphql": "fragment Bits on User { name }\n",
		"q.graphql":    "query { user(id: \"1\") { ...Bits } }\n",
	})

	arg := fmt.Sprintf("%s:1:27", filepath.Join(dir, "q.graphql"))
	stdout, _, err := cmd.ExecuteWithArgs([]string{"definition", arg, "-c", cfg, "-f", "text"})
	require.NoError(t, err)
	assert.Contains(t, stdout, "frag.graphql:1:9")
}

func TestDefinition_FieldResolvesIntoSchema(t *testing.T) {
	dir, cfg := writeCliProject(t, docsConfig, map[string]string{
		"frag.graphql": "fragment Bits on User { name }\n",
	})

	arg := fmt.Sprintf("%s:1:24", filepath.Join(dir, "frag.graphql"))
	stdout, _, err := cmd.ExecuteWithArgs([]string{"definition", arg, "-c", cfg, "-f", "text"})
	require.NoError(t, err)
	// User.name is declared on line 4 of the schema.
	assert.Contains(t, stdout, "schema.graphql:4:2")
}

func TestDefinition_NothingAtPosition(t *testing.T) {
	dir, cfg := writeCliProject(t, docsConfig, map[string]string{
		"q.graphql": "query { user(id: \"1\") { name } }\n",
	})

	arg := fmt.Sprintf("%s:1:5", filepath.Join(dir, "q.graphql"))
	_, _, err := cmd.ExecuteWithArgs([]string{"definition", arg, "-c", cfg, "-f", "text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no definition found")
}

func TestDefinition_InvalidPositionArgument(t *testing.T) {
	_, cfg := writeCliProject(t, docsConfig, nil)

	_, _, err := cmd.ExecuteWithArgs([]string{"definition", "not-a-position", "-c", cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid position")
}
