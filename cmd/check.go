/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/trevor-scheer/gqlscope/pkg/project"
	"github.com/trevor-scheer/gqlscope/pkg/render"
)

func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Validate every GraphQL document in the project against the schema",
		Long: `Parses and validates every document the project config matches: whole
.graphql files and GraphQL embedded in TypeScript/JavaScript template
literals. Diagnostics point at the original file, with embedded GraphQL
mapped back to its exact line and column.

With file arguments, only those files are reported.

Exit codes:
  0 - No errors (warnings allowed)
  1 - At least one error-severity finding`,
		Example: `  # Check the whole project
  gqlscope check

  # Check specific files
  gqlscope check src/queries.ts src/fragments.graphql

  # Annotate a pull request
  gqlscope check -f ci`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCheckCmd,
	}
	return cmd
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	p, err := loadProjectForCli()
	if err != nil {
		return err
	}

	byFile := p.Validate()
	if len(args) > 0 {
		wanted := make(map[string]struct{}, len(args))
		for _, a := range args {
			wanted[a] = struct{}{}
		}
		for path := range byFile {
			if _, ok := wanted[path]; !ok {
				delete(byFile, path)
			}
		}
	}

	paths := make([]string, 0, len(byFile))
	for path := range byFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var diags []DiagnosticInfo
	errorCount := 0
	for _, path := range paths {
		for _, d := range byFile[path] {
			if d.Severity == project.SeverityError {
				errorCount++
			}
			diags = append(diags, diagnosticInfo(d))
		}
	}

	if err := renderDiagnostics(cmd, diags); err != nil {
		return err
	}
	if errorCount > 0 {
		return ErrValidationFailed
	}
	return nil
}

// renderDiagnostics writes findings in the selected output format, with a
// short summary for the human-facing formats.
func renderDiagnostics(cmd *cobra.Command, diags []DiagnosticInfo) error {
	if len(diags) == 0 && outputFormat != render.FormatJSON {
		if outputFormat != render.FormatCI {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ No problems found")
		}
		return nil
	}

	r := render.Renderer[DiagnosticInfo]{
		Data:       diags,
		TextFormat: formatDiagnosticText,
		CIFormat:   formatDiagnosticCI,
		PrettyFormat: func(items []DiagnosticInfo) string {
			return formatDiagnosticsPretty(items)
		},
	}
	out, err := r.Render(outputFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if outputFormat == render.FormatText || outputFormat == render.FormatPretty {
		errs, warns := 0, 0
		for _, d := range diags {
			if d.Severity == "error" {
				errs++
			} else {
				warns++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n✗ %d error(s), %d warning(s)\n", errs, warns)
	}
	return nil
}
