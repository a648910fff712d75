/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/trevor-scheer/gqlscope/pkg/project"
)

func NewLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Run project-wide lint rules over every document",
		Long: `Runs rules that need the whole project in view, not just one document:

  unique_names      fragment and operation names must be unique project-wide
  deprecated_field  flags usage of @deprecated schema fields
  unused_fields     flags schema fields no operation or fragment selects
  fragment_cycles   flags fragment spreads that cycle across files

Severities come from the lint block of the project config; rules set to
"off" are skipped entirely.

Exit codes:
  0 - No errors (warnings allowed)
  1 - At least one error-severity finding`,
		Example: `  # Lint the project
  gqlscope lint

  # JSON for tooling
  gqlscope lint -f json | jq '.[].code'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runLintCmd,
	}
	return cmd
}

func runLintCmd(cmd *cobra.Command, args []string) error {
	p, err := loadProjectForCli()
	if err != nil {
		return err
	}

	var diags []DiagnosticInfo
	errorCount := 0
	for _, d := range p.Lint() {
		if d.Severity == project.SeverityError {
			errorCount++
		}
		diags = append(diags, diagnosticInfo(d))
	}

	if err := renderDiagnostics(cmd, diags); err != nil {
		return err
	}
	if errorCount > 0 {
		return ErrValidationFailed
	}
	return nil
}
