package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mwantia/coda/internal/config"
	"github.com/mwantia/coda/internal/session"
	"github.com/mwantia/coda/pkg/db/store"
	"github.com/spf13/cobra"
)

func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the store configuration and connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			w := cmd.ErrOrStderr()
			fmt.Fprintln(w, "\nStore configuration:")
			printPairs(w, storeOptions(cfg.Store))

			sess, err := session.NewSession(cfg)
			if err != nil {
				return err
			}
			defer sess.Close(context.Background())

			fmt.Fprint(w, "\nTesting connection ... ")
			if err := probe(cmd.Context(), sess); err != nil {
				sess.Logger().Debug("Connection probe failed: %v", err)
				fmt.Fprintln(w, "could not connect!")
				fmt.Fprintln(w)
				return nil
			}
			fmt.Fprintln(w, "good to go!")

			if sql, ok := sess.Store().(*store.SQLStore); ok {
				statuses, err := sql.MigrationStatus(cmd.Context())
				if err != nil {
					return err
				}

				pairs := make([][2]string, 0, len(statuses))
				for _, status := range statuses {
					state := "pending"
					if status.Applied {
						state = "applied " + status.AppliedAt.Format(time.RFC3339)
					}
					pairs = append(pairs, [2]string{
						fmt.Sprintf("v%d %s", status.Version, status.Description), state,
					})
				}

				fmt.Fprintln(w, "\nMigrations:")
				printPairs(w, pairs)
			}

			fmt.Fprintln(w)
			return nil
		},
	}

	return cmd
}

func probe(ctx context.Context, sess *session.Session) error {
	if err := sess.Open(ctx); err != nil {
		return err
	}

	repo, err := sess.Repository(ctx)
	if err != nil {
		return err
	}
	return repo.Status(ctx)
}

func storeOptions(cfg config.StoreConfig) [][2]string {
	pairs := [][2]string{
		{"type", cfg.Type},
		{"host", cfg.Host},
		{"port", strconv.Itoa(cfg.Port)},
		{"write", strconv.FormatBool(cfg.Write)},
		{"dbname", cfg.DBName},
		{"timeout", cfg.Timeout},
	}

	optional := [][2]string{
		{"path", cfg.Path},
		{"user", cfg.User},
		{"password", mask(cfg.Password)},
		{"token", mask(cfg.Token)},
		{"datacenter", cfg.Datacenter},
		{"prefix", cfg.Prefix},
		{"bucket", cfg.Bucket},
		{"access_key", cfg.AccessKey},
		{"secret_key", mask(cfg.SecretKey)},
	}
	for _, pair := range optional {
		if pair[1] != "" {
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
