package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"

	"github.com/mwantia/coda/internal/config"
	"github.com/mwantia/coda/internal/session"
	"github.com/mwantia/coda/pkg/db/store"
	"github.com/mwantia/coda/pkg/entity"
	"github.com/mwantia/coda/pkg/repository"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// withRepository opens a session for the duration of fn.
func withRepository(cmd *cobra.Command, fn func(ctx context.Context, repo repository.Service) error) (err error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	defer func() {
		err = stderrors.Join(err, sess.Close(context.Background()))
	}()

	if err := sess.Open(ctx); err != nil {
		return err
	}

	repo, err := sess.Repository(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, repo)
}

// accumulate turns the path arguments into one collection. Directories expand
// into every file below them, and files that are already tracked carry their
// stored metadata.
func accumulate(ctx context.Context, repo repository.Service, args []string) (*entity.Collection, error) {
	fs := afero.NewOsFs()

	var files []*entity.File
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve '%s': %w", arg, err)
		}

		if dir, _ := afero.IsDir(fs, path); dir {
			c, err := entity.NewCollectionFromDir(path, entity.WithFs(fs))
			if err != nil {
				return nil, err
			}
			files = append(files, c.Files()...)
			continue
		}

		f, err := entity.NewFile(path, entity.WithFs(fs))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	for _, f := range files {
		stored, found, err := repo.FindOne(ctx, store.Query{store.FieldPath: f.Path()})
		if err != nil {
			return nil, err
		}
		if found {
			stored.Metadata().Range(func(key string, value any) bool {
				f.Set(key, value)
				return true
			})
		}
	}

	return entity.NewCollection(files), nil
}
