package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type VersionInfo struct {
	Version string
	Commit  string
}

func NewRootCommand(info VersionInfo) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:           "coda",
		Short:         "Coda file metadata tracking",
		Long:          "Tag files with arbitrary key/value metadata, store it in a document store and query files by their metadata.",
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(path)
		},
	}

	cmd.PersistentFlags().StringVarP(&path, "config", "c", "", "config file (default is ./coda.yaml)")
	cmd.PersistentFlags().Bool("no-color", false, "Disables colored log output")
	cmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("store-type", "", "store type (sqlite, postgres, badger, consul, s3, memory)")
	cmd.PersistentFlags().String("store-path", "", "sqlite database file or badger directory")

	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.no_color", cmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("store.type", cmd.PersistentFlags().Lookup("store-type"))
	viper.BindPFlag("store.path", cmd.PersistentFlags().Lookup("store-path"))

	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	cmd.AddCommand(NewVersionCommand(info))
	cmd.AddCommand(NewStatusCommand())
	cmd.AddCommand(NewFindCommand())
	cmd.AddCommand(NewShowCommand())
	cmd.AddCommand(NewAddCommand())
	cmd.AddCommand(NewDeleteCommand())
	cmd.AddCommand(NewTagCommand())
	cmd.AddCommand(NewConfigCommand())

	return cmd
}

func NewVersionCommand(info VersionInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), info.Version)
			return nil
		},
	}
}
