/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trevor-scheer/gqlscope/pkg/render"
)

var (
	configFilePath string
	projectName    string
	outputFormat   render.Format
)

func formatFlag() string {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return string(render.FormatPretty)
	}
	return string(render.FormatText)
}

// NewRootCmd creates and returns the root command with all subcommands attached.
// This function creates a fresh command tree, ensuring no state leaks between invocations.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gqlscope",
		Short: "GraphQL project intelligence: validate, lint, and navigate operations across files",
		Long: `gqlscope understands GraphQL wherever it lives in your project: standalone
.graphql files and gql-tagged template literals inside TypeScript and
JavaScript. Every diagnostic and navigation result points at the original
file with exact line and column, even for GraphQL embedded mid-file.

Projects are described by a graphql-config style file (.graphqlrc.yml or
graphql.config.yaml) discovered by walking up from the current directory.
It names the schema files and the document globs; multi-project configs
select a project with -p.

Output can be formatted as pretty diagnostics (default in terminals), plain
text (default when piping), JSON for integration with other tools, or ci
for GitHub annotations.`,
		Example: `  # Validate every document in the project
  gqlscope check

  # Run project-wide lint rules (duplicate names, deprecated fields, cycles)
  gqlscope lint

  # Where is the fragment under the cursor defined?
  gqlscope definition src/queries.ts:12:24

  # Every usage of the identifier at a position, excluding tests
  gqlscope references src/queries.ts:12:24 --exclude '**/*.test.ts'

  # Signature and docs for the field at a position
  gqlscope hover src/queries.ts:14:8

  # Type-check a single query against the project schema
  echo "query { user { id } }" | gqlscope validate`,
	}

	// Persistent flags
	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", "", "Path to graphql config file (default: discovered from cwd)")
	cmd.PersistentFlags().StringVarP(&projectName, "project", "p", "", "Project name in a multi-project config")

	var formatStr string
	cmd.PersistentFlags().StringVarP(&formatStr, "format", "f", formatFlag(), "Output format: json, text, pretty, ci (default: pretty if interactive, text otherwise)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		outputFormat, err = render.ParseFormat(formatStr)
		return err
	}

	// Add all subcommands
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewLintCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewDefinitionCmd())
	cmd.AddCommand(NewReferencesCmd())
	cmd.AddCommand(NewHoverCmd())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// ExecuteWithArgs runs the CLI with the given arguments and returns stdout, stderr, and any error.
// This is useful for testing.
func ExecuteWithArgs(args []string) (stdout string, stderr string, err error) {
	return ExecuteWithArgsAndStdin(args, nil)
}

// ExecuteWithArgsAndStdin runs the CLI with the given arguments and stdin, returns stdout, stderr, and any error.
// This is useful for testing commands that read from stdin.
func ExecuteWithArgsAndStdin(args []string, stdin *bytes.Buffer) (stdout string, stderr string, err error) {
	cmd := NewRootCmd()

	stdoutBuf := new(bytes.Buffer)
	stderrBuf := new(bytes.Buffer)

	cmd.SetOut(stdoutBuf)
	cmd.SetErr(stderrBuf)
	cmd.SetArgs(args)
	if stdin != nil {
		cmd.SetIn(stdin)
	}

	err = cmd.Execute()

	return stdoutBuf.String(), stderrBuf.String(), err
}
