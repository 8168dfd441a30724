package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/iudanet/accountkeeper/internal/client/accounts"
	"github.com/iudanet/accountkeeper/internal/client/iocli"
	"github.com/iudanet/accountkeeper/internal/client/storage"
	"github.com/iudanet/accountkeeper/internal/client/storage/boltdb"
	"github.com/iudanet/accountkeeper/internal/client/storage/memory"
	"github.com/iudanet/accountkeeper/internal/client/storage/sealed"
	"github.com/iudanet/accountkeeper/internal/client/storage/sqlite"
	"github.com/iudanet/accountkeeper/internal/config"
	"github.com/iudanet/accountkeeper/internal/validation"
)

// BuildInfo version information set via ldflags during build
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// App связывает репозиторий, движок валидации и консоль для одной команды
type App struct {
	io      iocli.IO
	repo    *accounts.Repository
	engine  *validation.Engine
	logger  *slog.Logger
	cfg     *config.Config
	closeFn func() error
}

// NewApp wires a repository over store and restores the persisted collection
func NewApp(ctx context.Context, console iocli.IO, store storage.Store, cfg *config.Config, logger *slog.Logger) *App {
	repo := accounts.New(store,
		accounts.WithLogger(logger),
		accounts.WithKey(cfg.Storage.Key),
	)
	engine := validation.NewEngine(cfg.Rules())

	repo.Subscribe(func(e accounts.Event) {
		logger.Debug("accounts changed", "event", e.Kind.String(), "account_id", e.AccountID)
	})
	// Результаты валидации удаленной записи больше не нужны
	repo.Subscribe(func(e accounts.Event) {
		switch e.Kind {
		case accounts.Deleted:
			engine.Remove(e.AccountID)
		case accounts.Cleared, accounts.Restored:
			engine.ClearAll()
		}
	})

	repo.Restore(ctx)

	return &App{
		io:     console,
		repo:   repo,
		engine: engine,
		logger: logger,
		cfg:    cfg,
	}
}

// Close releases the underlying store
func (a *App) Close() error {
	if a.closeFn == nil {
		return nil
	}
	return a.closeFn()
}

// OpenStore opens the configured backend, wrapping it with encryption when a
// passphrase is set. The returned close function must be called when done.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, func() error, error) {
	var (
		store  storage.Store
		closer io.Closer
	)

	switch cfg.Backend {
	case config.BackendBolt:
		s, err := boltdb.New(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		store, closer = s, s
	case config.BackendSQLite:
		s, err := sqlite.New(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		store, closer = s, s
	case config.BackendMemory:
		s := memory.New()
		store, closer = s, s
	default:
		return nil, nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}

	if cfg.Passphrase != "" {
		s, err := sealed.New(store, cfg.Passphrase)
		if err != nil {
			_ = closer.Close()
			return nil, nil, fmt.Errorf("failed to enable encryption: %w", err)
		}
		store = s
	}

	return store, closer.Close, nil
}

// saveError converts an absorbed persist failure into a command error:
// a CLI process exits right after the command, so unsaved changes are lost.
func (a *App) saveError() error {
	if err := a.repo.LastError(); err != nil {
		return fmt.Errorf("changes were not saved: %w", err)
	}
	return nil
}
