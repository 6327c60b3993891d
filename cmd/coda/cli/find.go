package cli

import (
	"context"
	"fmt"

	"github.com/mwantia/coda/pkg/db/store"
	"github.com/mwantia/coda/pkg/repository"
	"github.com/spf13/cobra"
)

func NewFindCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <key> <value>",
		Short: "Find files with the given metadata",
		Long:  "Find every tracked file whose metadata holds exactly the given key and value.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(ctx context.Context, repo repository.Service) error {
				c, found, err := repo.Find(ctx, store.Query{args[0]: args[1]})
				if err != nil {
					return err
				}
				if found {
					fmt.Fprintln(cmd.OutOrStdout(), c.String())
				}
				return nil
			})
		},
	}

	return cmd
}
