package session

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/mwantia/coda/internal/config"
	"github.com/mwantia/coda/pkg/db/store"
	"github.com/mwantia/coda/pkg/errors"
	"github.com/mwantia/coda/pkg/log"
	"github.com/mwantia/coda/pkg/repository"
	"github.com/mwantia/fabric/pkg/container"
)

// Session owns the services a single command invocation works with.
type Session struct {
	mutex sync.RWMutex

	cfg   *config.Config
	sc    *container.ServiceContainer
	log   log.LoggerService
	store store.DocumentStore

	open func(config.StoreConfig) (store.DocumentStore, error)
}

func NewSession(cfg *config.Config) (*Session, error) {
	logger, err := log.NewLoggerService("coda", cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &Session{
		cfg: cfg,
		sc:   container.NewServiceContainer(),
		log:  logger,
		open: store.Open,
	}, nil
}

// Open connects and migrates the configured store and registers the
// repository built on top of it.
func (s *Session) Open(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.store != nil {
		return nil
	}

	st, err := s.open(s.cfg.Store)
	if err != nil {
		return err
	}

	timeout, err := time.ParseDuration(s.cfg.Store.Timeout)
	if err != nil {
		// Set default of 10 seconds if error
		timeout = 10 * time.Second
	}

	connect, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.log.Debug("Connecting to %s store...", st.Name())
	if err := st.Connect(connect); err != nil {
		st.Close()
		return errors.Persistence(err, "failed to connect to %s store", st.Name())
	}

	if err := st.Migrate(connect); err != nil {
		st.Close()
		return errors.Persistence(err, "failed to migrate %s store", st.Name())
	}

	s.store = st
	return s.setupServices()
}

func (s *Session) setupServices() error {
	errs := container.Errors{}

	opts := []repository.Option{
		repository.WithLogger(s.log.Named("repository")),
	}
	if !s.cfg.Store.Write {
		opts = append(opts, repository.WithReadOnly())
	}
	repo := repository.NewRepository(s.store, opts...)

	s.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](s.sc,
		container.With[log.LoggerService](),
		container.WithInstance(s.log)))

	s.log.Debug("Registering 'RepositoryService'...")
	errs.Add(container.Register[repository.Repository](s.sc,
		container.With[repository.Service](),
		container.WithInstance(repo)))

	return errs.Errors()
}

// Repository resolves the repository registered by Open.
func (s *Session) Repository(ctx context.Context) (repository.Service, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ok, resolved := s.sc.ResolveByType(ctx, reflect.TypeOf((*repository.Service)(nil)).Elem())
	if !ok {
		return nil, fmt.Errorf("no repository registered, session is not open")
	}

	repo, ok := resolved.(repository.Service)
	if !ok {
		return nil, fmt.Errorf("resolved service is not a repository")
	}
	return repo, nil
}

// Store returns the connected store or nil before Open.
func (s *Session) Store() store.DocumentStore {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.store
}

func (s *Session) Logger() log.LoggerService {
	return s.log
}

func (s *Session) Close(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	errs := container.Errors{}
	if err := s.sc.Cleanup(ctx); err != nil {
		errs.Add(fmt.Errorf("failed to complete service container cleanup: %w", err))
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs.Add(errors.Persistence(err, "failed to close %s store", s.store.Name()))
		}
		s.store = nil
	}

	return errs.Errors()
}
