// Package app wires configuration, the account directory, services and the
// terminal front end into the runnable unidesk application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/unidesk/internal/cli"
	"github.com/dmitrijs2005/unidesk/internal/config"
	"github.com/dmitrijs2005/unidesk/internal/logging"
	"github.com/dmitrijs2005/unidesk/internal/repositories/repomanager"
	"github.com/dmitrijs2005/unidesk/internal/services"
	"github.com/dmitrijs2005/unidesk/internal/storage"
)

// MemoryDSN selects the in-memory directory instead of PostgreSQL.
const MemoryDSN = "memory"

// seams for tests
var (
	openPostgres       = repomanager.OpenPostgres
	newPostgresManager = func() repomanager.RepositoryManager { return repomanager.NewPostgresRepositoryManager() }
	logOutput          io.Writer = os.Stderr
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	accounts *services.AccountService
	backups  *services.BackupService
	memory   bool
}

// NewApp opens the directory named by c.DatabaseDSN, applies pending
// migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(logOutput, c.LogLevel, c.LogFormat)

	var (
		db      *sql.DB
		manager repomanager.RepositoryManager
		memory  = c.DatabaseDSN == MemoryDSN
	)

	if memory {
		manager = repomanager.NewMemoryRepositoryManager()
	} else {
		var err error
		db, err = openPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}

		manager = newPostgresManager()
		if err := manager.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
	}

	accounts := services.NewAccountService(db, manager, c, logger)
	backups := services.NewBackupService(accounts, storage.NewS3Uploader(c), logger)

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		accounts: accounts,
		backups:  backups,
		memory:   memory,
	}, nil
}

// Run starts the REPL on stdin/stdout and blocks until the user exits or a
// termination signal arrives. The in-memory directory is seeded first so it
// has accounts to log in with.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	if app.memory {
		if _, err := app.Seed(ctx); err != nil {
			return err
		}
	}

	cli.NewApp(app.accounts, app.backups, os.Stdin, os.Stdout, app.logger).Run(ctx)

	app.logger.Info(ctx, "Stopped")
	return nil
}

// Seed loads the accounts of config.SeedFile, or the built-in bootstrap
// accounts when none is set, into the directory.
func (app *App) Seed(ctx context.Context) (services.SeedResult, error) {
	list := services.DefaultSeedAccounts()
	if app.config.SeedFile != "" {
		var err error
		if list, err = services.LoadSeedFile(app.config.SeedFile); err != nil {
			return services.SeedResult{}, err
		}
	}

	res, err := app.accounts.Seed(ctx, list)
	if err != nil {
		return res, err
	}

	app.logger.Info(ctx, "seeding finished", "created", res.Created, "updated", res.Updated)
	return res, nil
}

// Close releases the database pool, if any.
func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}
