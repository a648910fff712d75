/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trevor-scheer/gqlscope/pkg/render"
)

func NewDefinitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "definition <file:line:column>",
		Short: "Resolve the identifier at a position to its definition",
		Long: `Resolves the GraphQL identifier at a source position to where it is
defined: fields, types, arguments, enum values and directives resolve into
the schema files; fragment spreads resolve to their definition, wherever in
the project it lives; variables resolve within their operation.

The position uses a 1-based line and 0-based column, matching the
coordinates printed by check and lint. The file can be a .graphql file or
a TypeScript/JavaScript file with embedded GraphQL.

A fragment name defined more than once resolves to every definition site.`,
		Example: `  # Definition of the field under the cursor
  gqlscope definition src/queries.ts:12:24

  # Definition of a fragment spread
  gqlscope definition operations/user.graphql:8:6`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDefinitionCmd,
	}
	return cmd
}

func runDefinitionCmd(cmd *cobra.Command, args []string) error {
	path, pos, err := parseFileLineCol(args[0])
	if err != nil {
		return err
	}

	p, err := loadProjectForCli()
	if err != nil {
		return err
	}

	locs := p.Definition(path, pos)
	if len(locs) == 0 {
		return fmt.Errorf("no definition found at %s", args[0])
	}

	infos := make([]LocationInfo, 0, len(locs))
	for _, l := range locs {
		infos = append(infos, locationInfo(l))
	}
	return renderLocations(cmd, infos)
}

func renderLocations(cmd *cobra.Command, infos []LocationInfo) error {
	r := render.Renderer[LocationInfo]{
		Data: infos,
		TextFormat: func(l LocationInfo) string {
			return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
		},
		PrettyFormat: func(items []LocationInfo) string {
			t := makeTable().Headers("FILE", "LINE", "COLUMN")
			for _, l := range items {
				t.Row(l.File, fmt.Sprintf("%d", l.Line), fmt.Sprintf("%d", l.Column))
			}
			return t.Render()
		},
		CIFormat: func(l LocationInfo) string {
			return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
		},
	}
	out, err := r.Render(outputFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
