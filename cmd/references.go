/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trevor-scheer/gqlscope/pkg/project"
)

type referencesOptions struct {
	include []string
	exclude []string
}

func NewReferencesCmd() *cobra.Command {
	opts := &referencesOptions{}

	cmd := &cobra.Command{
		Use:   "references <file:line:column>",
		Short: "Find every usage of the identifier at a position",
		Long: `Finds every reference to the GraphQL identifier at a source position
across the whole project: a schema field's usages in every operation and
fragment, a fragment's spreads, a variable's usages within its operation,
or an enum value's appearances in arguments.

Definition sites are included in the results. The position uses a 1-based
line and 0-based column, matching the coordinates printed by check and
lint.

Results can be narrowed with --include and --exclude glob patterns matched
against file paths (doublestar syntax, e.g. 'src/**/*.ts').`,
		Example: `  # All usages of the field under the cursor
  gqlscope references src/queries.ts:12:24

  # Usages of a fragment, excluding tests
  gqlscope references operations/user.graphql:3:10 --exclude '**/*.test.ts'

  # Only usages under src/
  gqlscope references schema/user.graphql:14:2 --include 'src/**'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReferencesCmd(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.include, "include", nil, "Only report references in files matching this glob (repeatable)")
	cmd.Flags().StringArrayVar(&opts.exclude, "exclude", nil, "Skip references in files matching this glob (repeatable)")

	return cmd
}

func runReferencesCmd(cmd *cobra.Command, args []string, opts *referencesOptions) error {
	path, pos, err := parseFileLineCol(args[0])
	if err != nil {
		return err
	}

	p, err := loadProjectForCli()
	if err != nil {
		return err
	}

	scope := project.Scope{Include: opts.include, Exclude: opts.exclude}
	locs := p.References(path, pos, scope)
	if len(locs) == 0 {
		return fmt.Errorf("no references found at %s", args[0])
	}

	infos := make([]LocationInfo, 0, len(locs))
	for _, l := range locs {
		infos = append(infos, locationInfo(l))
	}
	return renderLocations(cmd, infos)
}
