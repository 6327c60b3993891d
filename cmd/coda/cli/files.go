package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mwantia/coda/pkg/repository"
	"github.com/spf13/cobra"
)

func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <paths...>",
		Short: "Show the metadata of tracked files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(ctx context.Context, repo repository.Service) error {
				c, err := accumulate(ctx, repo, args)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				for f := range c.All() {
					data, err := json.MarshalIndent(f.Metadata().ToMap(), "", "    ")
					if err != nil {
						return fmt.Errorf("failed to encode metadata of '%s': %w", f.Path(), err)
					}
					fmt.Fprintf(w, "\n%s\n%s\n", f.Path(), data)
				}
				return nil
			})
		},
	}

	return cmd
}

func NewAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <paths...>",
		Short: "Start tracking files",
		Long:  "Add files, or every file below a directory, to the store for tracking.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(ctx context.Context, repo repository.Service) error {
				c, err := accumulate(ctx, repo, args)
				if err != nil {
					return err
				}
				return repo.Save(ctx, c)
			})
		},
	}

	return cmd
}

func NewDeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <paths...>",
		Short: "Stop tracking files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd, func(ctx context.Context, repo repository.Service) error {
				c, err := accumulate(ctx, repo, args)
				if err != nil {
					return err
				}
				return repo.Delete(ctx, c)
			})
		},
	}

	return cmd
}

func NewTagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag <paths...> <key> <value>",
		Short: "Tag files with metadata",
		Long:  "Set the key to value on every given file and save the files, tracking them if needed.",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, key, value := args[:len(args)-2], args[len(args)-2], args[len(args)-1]

			return withRepository(cmd, func(ctx context.Context, repo repository.Service) error {
				c, err := accumulate(ctx, repo, paths)
				if err != nil {
					return err
				}

				c.AddMetadata(map[string]any{key: value})
				return repo.Save(ctx, c)
			})
		},
	}

	return cmd
}
