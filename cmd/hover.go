/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trevor-scheer/gqlscope/pkg/project"
	"github.com/trevor-scheer/gqlscope/pkg/render"
)

func NewHoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hover <file:line:column>",
		Short: "Show the signature and docs of the identifier at a position",
		Long: `Shows a GraphQL-syntax signature for the identifier at a source position,
plus its schema description when one exists. Fields include their argument
list, return type and deprecation; types show their kind; fragments show
their type condition; variables show their declared type.

The position uses a 1-based line and 0-based column, matching the
coordinates printed by check and lint.`,
		Example: `  # Field signature under the cursor
  gqlscope hover src/queries.ts:14:8

  # JSON for editor integration
  gqlscope hover src/queries.ts:14:8 -f json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runHoverCmd,
	}
	return cmd
}

func runHoverCmd(cmd *cobra.Command, args []string) error {
	path, pos, err := parseFileLineCol(args[0])
	if err != nil {
		return err
	}

	p, err := loadProjectForCli()
	if err != nil {
		return err
	}

	info, ok := p.Hover(path, pos)
	if !ok {
		return fmt.Errorf("nothing to show at %s", args[0])
	}

	r := render.Renderer[project.HoverInfo]{
		Data: []project.HoverInfo{info},
		TextFormat: func(h project.HoverInfo) string {
			if h.Description == "" {
				return h.Signature
			}
			return h.Signature + "\n" + h.Description
		},
		PrettyFormat: func(items []project.HoverInfo) string {
			t := makeTable().Headers("SIGNATURE", "DESCRIPTION")
			for _, h := range items {
				t.Row(h.Signature, h.Description)
			}
			return t.Render()
		},
		CIFormat: func(h project.HoverInfo) string {
			return h.Signature
		},
	}
	out, err := r.Render(outputFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
